package config

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/bahasaku/gateway/internal/core/domain"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// BackendURL is the base URL of the Bahasaku API server.
	BackendURL string `env:"BACKEND_URL, default=http://localhost:5000"`

	Session  SessionConfig
	Snapshot SnapshotConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

// SessionConfig overrides the canonical session policy. The defaults are
// the documented constants; changing them is a deliberate operational
// decision, not something to drift per deployment.
type SessionConfig struct {
	DefaultTTL   time.Duration `env:"SESSION_DEFAULT_TTL,   default=8h"`
	RememberTTL  time.Duration `env:"SESSION_REMEMBER_TTL,  default=720h"`
	AuditWorkers int           `env:"SESSION_AUDIT_WORKERS, default=4"`
}

type SnapshotConfig struct {
	// Backend selects where session snapshots persist: "file" or "redis".
	Backend string `env:"SNAPSHOT_BACKEND, default=file"`
	Dir     string `env:"SNAPSHOT_DIR,     default=./data/sessions"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=bahasaku_gateway"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context, log zerolog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.Session.DefaultTTL != domain.DefaultSessionTTL || cfg.Session.RememberTTL != domain.RememberedSessionTTL {
		log.Warn().
			Dur("default_ttl", cfg.Session.DefaultTTL).
			Dur("remember_ttl", cfg.Session.RememberTTL).
			Msg("session policy overridden from canonical constants")
	}
	return &cfg
}

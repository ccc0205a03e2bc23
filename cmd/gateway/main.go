package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bahasaku/gateway/internal/api"
	"github.com/bahasaku/gateway/internal/api/handler"
	"github.com/bahasaku/gateway/internal/core/ports"
	"github.com/bahasaku/gateway/internal/core/service"
	"github.com/bahasaku/gateway/internal/infrastructure/config"
	mongodb "github.com/bahasaku/gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/bahasaku/gateway/internal/infrastructure/db/redis"
	"github.com/bahasaku/gateway/internal/infrastructure/queue"
	"github.com/bahasaku/gateway/internal/infrastructure/snapshot"
	"github.com/bahasaku/gateway/internal/upstream"
	"github.com/bahasaku/gateway/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

// @title Bahasaku Gateway API
// @version 1.0
// @description Session, profile and content gateway in front of the Bahasaku API server.
// @BasePath /api
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.Load(ctx, bootstrap)

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	mongoClient, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	var (
		snapshots   ports.SnapshotStore
		redisClient *goredis.Client
	)
	switch cfg.Snapshot.Backend {
	case "redis":
		redisClient, err = redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		snapshots = redisdb.NewSnapshotStore(redisClient)
	case "file":
		store, err := snapshot.NewFileStore(cfg.Snapshot.Dir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.Snapshot.Dir).Msg("snapshot directory unusable")
		}
		snapshots = store
	default:
		log.Fatal().Str("backend", cfg.Snapshot.Backend).Msg("unknown snapshot backend")
	}

	auditRepo := mongodb.NewAuditRepository(mongoDB)
	dispatcher := queue.NewDispatcher(cfg.Session.AuditWorkers, auditRepo, log)
	dispatcher.Start(ctx)

	sessions := service.NewSessionService(snapshots, log,
		service.WithTTLs(cfg.Session.DefaultTTL, cfg.Session.RememberTTL),
		service.WithAudit(dispatcher),
	)

	backend := upstream.NewClient(cfg.BackendURL, log)

	e := api.NewRouter(api.Deps{
		Sessions: sessions,
		Backend:  backend,
		Audit:    auditRepo,
		Health:   handler.NewHealthHandler(mongoDB, redisClient),
		Log:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("gateway listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

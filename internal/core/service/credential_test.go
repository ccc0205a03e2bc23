package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/bahasaku/gateway/internal/core/domain"
)

func TestWarnShortLivedCredential(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	var buf bytes.Buffer
	log := zerolog.New(&buf)

	warnShortLivedCredential(log, domain.Session{
		Credential: signed,
		Identity:   testIdentity(),
		IssuedAt:   now,
		MaxAge:     domain.RememberedSessionTTL,
	})
	if !strings.Contains(buf.String(), "backend token outlived by local session") {
		t.Fatalf("expected warning, got %q", buf.String())
	}

	// Opaque credentials and tokens without exp stay silent.
	buf.Reset()
	warnShortLivedCredential(log, domain.Session{
		Credential: "opaque-token",
		IssuedAt:   now,
		MaxAge:     domain.DefaultSessionTTL,
	})
	if buf.Len() != 0 {
		t.Fatalf("unexpected log for opaque credential: %q", buf.String())
	}
}

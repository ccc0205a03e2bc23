package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/bahasaku/gateway/internal/core/domain"
)

// warnShortLivedCredential peeks at the credential without verification and
// logs when the backend token expires before the local session does. The
// credential stays opaque for every decision the gateway makes — this is
// diagnostics only, since a dead token with a live session produces a
// confusing stream of 401s.
func warnShortLivedCredential(log zerolog.Logger, session domain.Session) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(session.Credential, claims); err != nil {
		return // not a JWT, nothing to learn
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if exp.Time.Before(session.ExpiresAt()) {
		log.Warn().
			Int64("user_id", session.Identity.ID).
			Time("token_expires", exp.Time).
			Time("session_expires", session.ExpiresAt()).
			Msg("backend token outlived by local session")
	}
}

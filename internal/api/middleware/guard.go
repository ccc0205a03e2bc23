package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bahasaku/gateway/internal/api/cookie"
	"github.com/bahasaku/gateway/internal/metrics"
	"github.com/bahasaku/gateway/internal/core/domain"
	"github.com/bahasaku/gateway/internal/core/ports"
)

// Context keys set by the Session middleware.
const (
	CtxSessionID = "session_id"
	CtxSession   = "session"
)

// Session resolves the session cookie into a live session and injects it
// into the request context. A session ID not seen since the last restart is
// restored from the snapshot store once; absent, expired or corrupt sessions
// send the client to loginPath with the stale cookie cleared.
func Session(sessions ports.SessionService, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(cookie.Name)
			if err != nil || ck.Value == "" {
				metrics.GuardDenials.WithLabelValues("unauthenticated").Inc()
				return c.Redirect(http.StatusFound, loginPath)
			}
			id := ck.Value

			session, ok := sessions.Current(id)
			if !ok {
				session, err = sessions.Restore(c.Request().Context(), id)
				if errors.Is(err, domain.ErrNoSession) {
					cookie.Clear(c.Response())
					metrics.GuardDenials.WithLabelValues("unauthenticated").Inc()
					return c.Redirect(http.StatusFound, loginPath)
				}
				if err != nil {
					return err
				}
			}

			c.Set(CtxSessionID, id)
			c.Set(CtxSession, session)
			return next(c)
		}
	}
}

// RequireRole gates a route on the session identity's role, compared
// case-insensitively. A failed check redirects exactly like a missing
// session, so clients cannot tell a protected route exists. The role claim
// is UX gating only — the backend re-authorizes every privileged call.
func RequireRole(role, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, ok := c.Get(CtxSession).(domain.Session)
			if !ok || !session.Identity.HasRole(role) {
				metrics.GuardDenials.WithLabelValues("forbidden").Inc()
				return c.Redirect(http.StatusFound, loginPath)
			}
			return next(c)
		}
	}
}

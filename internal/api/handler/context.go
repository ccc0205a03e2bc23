package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bahasaku/gateway/internal/api/middleware"
	"github.com/bahasaku/gateway/internal/core/domain"
)

// ctxSession extracts the session injected by the Session middleware.
// Handlers behind the guard always have one; its absence means the route is
// miswired, which surfaces as a 401 rather than a panic.
func ctxSession(c echo.Context) (string, domain.Session, error) {
	id, _ := c.Get(middleware.CtxSessionID).(string)
	session, ok := c.Get(middleware.CtxSession).(domain.Session)
	if !ok || id == "" {
		return "", domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return id, session, nil
}

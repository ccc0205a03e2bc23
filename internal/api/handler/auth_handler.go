package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bahasaku/gateway/internal/api/cookie"
	"github.com/bahasaku/gateway/internal/core/domain"
	"github.com/bahasaku/gateway/internal/core/ports"
)

// AuthHandler serves login, logout and registration. It is the only writer
// of the session cookie.
type AuthHandler struct {
	sessions ports.SessionService
	backend  ports.Upstream
}

func NewAuthHandler(sessions ports.SessionService, backend ports.Upstream) *AuthHandler {
	return &AuthHandler{sessions: sessions, backend: backend}
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type registerRequest struct {
	FullName  string `json:"full_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	UserType  string `json:"user_type" validate:"required,oneof=Tuli Dengar Umum"`
	Location  string `json:"location"`
	BirthDate string `json:"birth_date"`
}

type sessionResponse struct {
	User      domain.Identity `json:"user"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Login authenticates against the backend and opens a gateway session.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity, credential, err := h.backend.Login(c.Request().Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		// A rejected login leaves any prior session untouched.
		return err
	}

	return h.openSession(c, identity, credential, req.RememberMe, http.StatusOK)
}

// Register creates an account on the backend. The backend logs the new user
// in automatically, so the gateway opens a session right away.
//
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity, credential, err := h.backend.Register(c.Request().Context(), ports.RegisterInput{
		FullName:  req.FullName,
		Email:     req.Email,
		Password:  req.Password,
		UserType:  req.UserType,
		Location:  req.Location,
		BirthDate: req.BirthDate,
	})
	if err != nil {
		return err
	}

	return h.openSession(c, identity, credential, false, http.StatusCreated)
}

// Logout closes the session. Idempotent: a missing or unknown cookie still
// yields a clean logged-out response.
//
// @Summary      Log out
// @Tags         auth
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if ck, err := c.Cookie(cookie.Name); err == nil && ck.Value != "" {
		if err := h.sessions.Logout(c.Request().Context(), ck.Value); err != nil {
			return err
		}
	}
	cookie.Clear(c.Response())
	return c.NoContent(http.StatusNoContent)
}

// Session returns the live session's identity and expiry.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	_, session, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{User: session.Identity, ExpiresAt: session.ExpiresAt()})
}

func (h *AuthHandler) openSession(c echo.Context, identity domain.Identity, credential string, remember bool, status int) error {
	id, err := cookie.GenerateID()
	if err != nil {
		return err
	}
	session, err := h.sessions.Login(c.Request().Context(), id, identity, credential, remember)
	if err != nil {
		return err
	}
	cookie.Set(c.Response(), id, session.ExpiresAt())
	return c.JSON(status, sessionResponse{User: session.Identity, ExpiresAt: session.ExpiresAt()})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bahasaku/gateway/internal/core/ports"
)

// ProfileHandler serves the logged-in user's own profile. Every change is
// pushed to the backend first and the refreshed identity replaces the
// session's copy wholesale.
type ProfileHandler struct {
	sessions ports.SessionService
	backend  ports.Upstream
}

func NewProfileHandler(sessions ports.SessionService, backend ports.Upstream) *ProfileHandler {
	return &ProfileHandler{sessions: sessions, backend: backend}
}

// Get fetches the caller's profile from the backend and refreshes the
// session identity with it.
//
// @Summary      Own profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  domain.Identity
// @Failure      401  {object}  map[string]string
// @Router       /api/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	id, session, err := ctxSession(c)
	if err != nil {
		return err
	}

	identity, err := h.backend.Profile(c.Request().Context(), session.Credential, session.Identity.ID)
	if err != nil {
		return err
	}
	if _, err := h.sessions.RefreshIdentity(c.Request().Context(), id, identity); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}

// Update edits profile fields and, when a "photo" file part is present,
// uploads a new profile picture. Multipart form fields: full_name,
// location, birth_date, photo.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Success      200  {object}  domain.Identity
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	id, session, err := ctxSession(c)
	if err != nil {
		return err
	}

	update := ports.ProfileUpdate{
		FullName:  c.FormValue("full_name"),
		Location:  c.FormValue("location"),
		BirthDate: c.FormValue("birth_date"),
	}

	if file, err := c.FormFile("photo"); err == nil {
		src, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable photo")
		}
		defer src.Close()
		update.PhotoName = file.Filename
		update.Photo = src
	}

	identity, err := h.backend.UpdateProfile(c.Request().Context(), session.Credential, session.Identity.ID, update)
	if err != nil {
		return err
	}
	if _, err := h.sessions.RefreshIdentity(c.Request().Context(), id, identity); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}

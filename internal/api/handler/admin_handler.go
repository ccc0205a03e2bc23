package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bahasaku/gateway/internal/core/ports"
)

// AdminHandler serves the back-office views. Routes are admin-gated by the
// route guard, but that gate is UX only: each proxied call carries the
// session credential and the backend enforces the Admin role itself.
type AdminHandler struct {
	backend ports.Upstream
	audit   ports.AuditReader
}

func NewAdminHandler(backend ports.Upstream, audit ports.AuditReader) *AdminHandler {
	return &AdminHandler{backend: backend, audit: audit}
}

// ListUsers returns all registered users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.Identity
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	_, session, err := ctxSession(c)
	if err != nil {
		return err
	}
	users, err := h.backend.Users(c.Request().Context(), session.Credential)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// DeleteUser removes one user account.
//
// @Summary      Delete user
// @Tags         admin
// @Param        id  path  int  true  "User ID"
// @Success      204
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	_, session, err := ctxSession(c)
	if err != nil {
		return err
	}
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := h.backend.DeleteUser(c.Request().Context(), session.Credential, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UserSessions lists recent session activity for one user from the gateway's
// own audit trail.
//
// @Summary      User session activity
// @Tags         admin
// @Produce      json
// @Param        id  path  int  true  "User ID"
// @Success      200  {array}  domain.SessionEvent
// @Router       /api/admin/users/{id}/sessions [get]
func (h *AdminHandler) UserSessions(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	events, err := h.audit.RecentForUser(c.Request().Context(), userID, 50)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

type vocabularyRequest struct {
	Text          string `json:"text" validate:"required"`
	VideoFilePath string `json:"video_file_path" validate:"required"`
	Category      string `json:"category"`
}

// CreateVocabulary adds a text→video entry. The backend has no edit or
// delete for vocabulary; a wrong entry is replaced by creating a new one.
//
// @Summary      Create vocabulary entry
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      vocabularyRequest  true  "Vocabulary entry"
// @Success      201   {object}  domain.VocabularyEntry
// @Failure      400   {object}  map[string]string
// @Router       /api/admin/vocabulary [post]
func (h *AdminHandler) CreateVocabulary(c echo.Context) error {
	_, session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req vocabularyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.backend.CreateVocabulary(c.Request().Context(), session.Credential, ports.VocabularyInput{
		Text:          req.Text,
		VideoFilePath: req.VideoFilePath,
		Category:      req.Category,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entry)
}

// CreateInformation publishes an information post. Multipart form fields:
// title, content, image (optional).
//
// @Summary      Create information post
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Success      201  {object}  domain.InformationPost
// @Failure      400  {object}  map[string]string
// @Router       /api/admin/information [post]
func (h *AdminHandler) CreateInformation(c echo.Context) error {
	_, session, err := ctxSession(c)
	if err != nil {
		return err
	}
	in, closeImage, err := informationInput(c)
	defer closeImage()
	if err != nil {
		return err
	}
	if in.Title == "" || in.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and content are required")
	}
	post, err := h.backend.CreateInformation(c.Request().Context(), session.Credential, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// UpdateInformation edits an information post. Empty fields keep the
// backend's current values.
//
// @Summary      Update information post
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        id  path  int  true  "Post ID"
// @Success      200  {object}  domain.InformationPost
// @Failure      400  {object}  map[string]string
// @Router       /api/admin/information/{id} [put]
func (h *AdminHandler) UpdateInformation(c echo.Context) error {
	_, session, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	in, closeImage, err := informationInput(c)
	defer closeImage()
	if err != nil {
		return err
	}
	post, err := h.backend.UpdateInformation(c.Request().Context(), session.Credential, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// DeleteInformation removes an information post.
//
// @Summary      Delete information post
// @Tags         admin
// @Param        id  path  int  true  "Post ID"
// @Success      204
// @Router       /api/admin/information/{id} [delete]
func (h *AdminHandler) DeleteInformation(c echo.Context) error {
	_, session, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	if err := h.backend.DeleteInformation(c.Request().Context(), session.Credential, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// informationInput reads the multipart form both information writes share.
// The returned closer releases the image file, if one was attached.
func informationInput(c echo.Context) (ports.InformationInput, func(), error) {
	in := ports.InformationInput{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
	}
	closer := func() {}
	if file, err := c.FormFile("image"); err == nil {
		src, err := file.Open()
		if err != nil {
			return ports.InformationInput{}, closer, echo.NewHTTPError(http.StatusBadRequest, "unreadable image")
		}
		in.ImageName = file.Filename
		in.Image = src
		closer = func() { src.Close() }
	}
	return in, closer, nil
}

// ListFeedback returns all feedback tickets.
//
// @Summary      List feedback
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.Feedback
// @Router       /api/admin/feedback [get]
func (h *AdminHandler) ListFeedback(c echo.Context) error {
	_, session, err := ctxSession(c)
	if err != nil {
		return err
	}
	feedback, err := h.backend.ListFeedback(c.Request().Context(), session.Credential)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, feedback)
}

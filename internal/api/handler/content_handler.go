package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bahasaku/gateway/internal/core/ports"
)

// ContentHandler serves the translation widgets and public content.
type ContentHandler struct {
	backend ports.Upstream
}

func NewContentHandler(backend ports.Upstream) *ContentHandler {
	return &ContentHandler{backend: backend}
}

// Vocabulary looks up sign-language videos for a word or phrase (the
// text→video widget). Public, like the backend's own listing.
//
// @Summary      Vocabulary lookup
// @Tags         content
// @Produce      json
// @Param        q  query  string  false  "Word or phrase"
// @Success      200  {array}  domain.VocabularyEntry
// @Router       /api/vocabulary [get]
func (h *ContentHandler) Vocabulary(c echo.Context) error {
	entries, err := h.backend.SearchVocabulary(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// Information lists informational posts.
//
// @Summary      Information posts
// @Tags         content
// @Produce      json
// @Success      200  {array}  domain.InformationPost
// @Router       /api/information [get]
func (h *ContentHandler) Information(c echo.Context) error {
	posts, err := h.backend.ListInformation(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

type translateResponse struct {
	Prediction string `json:"prediction"`
}

// Translate proxies a captured frame to the AI inference endpoint (the
// video→text widget). Multipart field: image.
//
// @Summary      Translate sign video
// @Tags         content
// @Accept       multipart/form-data
// @Produce      json
// @Success      200  {object}  translateResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/translate [post]
func (h *ContentHandler) Translate(c echo.Context) error {
	_, session, err := ctxSession(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no image sent")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable image")
	}
	defer src.Close()

	prediction, err := h.backend.TranslateVideo(c.Request().Context(), session.Credential, file.Filename, src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, translateResponse{Prediction: prediction})
}

type feedbackRequest struct {
	Message string `json:"message" validate:"required,min=3"`
}

// Feedback files a feedback ticket for the logged-in user.
//
// @Summary      Submit feedback
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        body  body  feedbackRequest  true  "Feedback message"
// @Success      201  {object}  domain.Feedback
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/feedback [post]
func (h *ContentHandler) Feedback(c echo.Context) error {
	_, session, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ticket, err := h.backend.CreateFeedback(c.Request().Context(), session.Credential, session.Identity.ID, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ticket)
}

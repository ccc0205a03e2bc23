// Package upstream is the gateway's only path to the Bahasaku backend API.
// Every request is built here, so credential attachment happens in exactly
// one place: protected calls stamp `Authorization: Bearer <credential>` and
// refuse to go out without one. The backend stays the authority on
// authorization — the gateway never substitutes for its checks.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bahasaku/gateway/internal/metrics"
	"github.com/bahasaku/gateway/internal/core/domain"
	"github.com/bahasaku/gateway/internal/core/ports"
)

const defaultTimeout = 30 * time.Second

// Client implements ports.Upstream over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

var _ ports.Upstream = (*Client)(nil)

func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// errorEnvelope is the backend's error shape: {"error": "<message>"}.
type errorEnvelope struct {
	Error string `json:"error"`
}

// authEnvelope is the backend's login/register response.
type authEnvelope struct {
	Message     string          `json:"message"`
	AccessToken string          `json:"access_token"`
	User        domain.Identity `json:"user"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

func (c *Client) Login(ctx context.Context, email, password string, remember bool) (domain.Identity, string, error) {
	var out authEnvelope
	err := c.doJSON(ctx, "login", http.MethodPost, "/api/users/login", "",
		loginRequest{Email: email, Password: password, RememberMe: remember}, &out)
	if err != nil {
		return domain.Identity{}, "", err
	}
	return out.User, out.AccessToken, nil
}

func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (domain.Identity, string, error) {
	var out authEnvelope
	if err := c.doJSON(ctx, "register", http.MethodPost, "/api/users/register", "", in, &out); err != nil {
		return domain.Identity{}, "", err
	}
	return out.User, out.AccessToken, nil
}

func (c *Client) Profile(ctx context.Context, credential string, userID int64) (domain.Identity, error) {
	var out domain.Identity
	err := c.doJSON(ctx, "profile", http.MethodGet, "/api/users/"+formatID(userID), credential, nil, &out)
	return out, err
}

type profileUpdateRequest struct {
	FullName  string `json:"full_name,omitempty"`
	Location  string `json:"location,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
}

func (c *Client) UpdateProfile(ctx context.Context, credential string, userID int64, in ports.ProfileUpdate) (domain.Identity, error) {
	var out struct {
		Message string          `json:"message"`
		User    domain.Identity `json:"user"`
	}
	req := profileUpdateRequest{FullName: in.FullName, Location: in.Location, BirthDate: in.BirthDate}
	if err := c.doJSON(ctx, "update_profile", http.MethodPut, "/api/users/"+formatID(userID), credential, req, &out); err != nil {
		return domain.Identity{}, err
	}
	identity := out.User

	if in.Photo != nil {
		updated, err := c.uploadPhoto(ctx, credential, userID, in.PhotoName, in.Photo)
		if err != nil {
			return domain.Identity{}, err
		}
		identity = updated
	}
	return identity, nil
}

// uploadPhoto posts the profile picture as a multipart body. The multipart
// writer supplies the Content-Type, boundary included; nothing else may set
// that header.
func (c *Client) uploadPhoto(ctx context.Context, credential string, userID int64, filename string, photo io.Reader) (domain.Identity, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("photo", filename)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("build photo part: %w", err)
	}
	if _, err := io.Copy(part, photo); err != nil {
		return domain.Identity{}, fmt.Errorf("copy photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return domain.Identity{}, fmt.Errorf("finish multipart body: %w", err)
	}

	var out struct {
		Message string          `json:"message"`
		User    domain.Identity `json:"user"`
	}
	err = c.doMultipart(ctx, "upload_photo", http.MethodPost, "/api/users/"+formatID(userID)+"/photo",
		credential, &body, mw.FormDataContentType(), &out)
	if err != nil {
		return domain.Identity{}, err
	}
	return out.User, nil
}

func (c *Client) Users(ctx context.Context, credential string) ([]domain.Identity, error) {
	var out []domain.Identity
	err := c.doJSON(ctx, "users", http.MethodGet, "/api/users/", credential, nil, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, credential string, userID int64) error {
	return c.doJSON(ctx, "delete_user", http.MethodDelete, "/api/users/"+formatID(userID), credential, nil, nil)
}

func (c *Client) SearchVocabulary(ctx context.Context, query string) ([]domain.VocabularyEntry, error) {
	var all []domain.VocabularyEntry
	if err := c.doJSON(ctx, "vocabulary", http.MethodGet, "/api/kosa-kata/", "", nil, &all); err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}
	// The backend has no search parameter; filter here.
	matched := make([]domain.VocabularyEntry, 0, len(all))
	for _, entry := range all {
		if strings.Contains(strings.ToLower(entry.Text), strings.ToLower(query)) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// CreateVocabulary adds one text→video entry. The backend rejects duplicate
// texts with a 400; that surfaces as domain.ErrInvalidRequest.
func (c *Client) CreateVocabulary(ctx context.Context, credential string, in ports.VocabularyInput) (domain.VocabularyEntry, error) {
	var out struct {
		Message  string                 `json:"message"`
		KosaKata domain.VocabularyEntry `json:"kosa_kata"`
	}
	err := c.doJSON(ctx, "create_vocabulary", http.MethodPost, "/api/kosa-kata/", credential, in, &out)
	return out.KosaKata, err
}

func (c *Client) ListInformation(ctx context.Context) ([]domain.InformationPost, error) {
	var out []domain.InformationPost
	err := c.doJSON(ctx, "information", http.MethodGet, "/api/information/", "", nil, &out)
	return out, err
}

// informationBody builds the multipart form the information routes expect:
// title and content fields plus an optional image file part.
func informationBody(in ports.InformationInput) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("title", in.Title); err != nil {
		return nil, "", fmt.Errorf("build title field: %w", err)
	}
	if err := mw.WriteField("content", in.Content); err != nil {
		return nil, "", fmt.Errorf("build content field: %w", err)
	}
	if in.Image != nil {
		part, err := mw.CreateFormFile("image", in.ImageName)
		if err != nil {
			return nil, "", fmt.Errorf("build image part: %w", err)
		}
		if _, err := io.Copy(part, in.Image); err != nil {
			return nil, "", fmt.Errorf("copy image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("finish multipart body: %w", err)
	}
	return &body, mw.FormDataContentType(), nil
}

func (c *Client) CreateInformation(ctx context.Context, credential string, in ports.InformationInput) (domain.InformationPost, error) {
	body, contentType, err := informationBody(in)
	if err != nil {
		return domain.InformationPost{}, err
	}
	var out struct {
		Message string                 `json:"message"`
		Data    domain.InformationPost `json:"data"`
	}
	err = c.doMultipart(ctx, "create_information", http.MethodPost, "/api/information/", credential, body, contentType, &out)
	return out.Data, err
}

func (c *Client) UpdateInformation(ctx context.Context, credential string, id int64, in ports.InformationInput) (domain.InformationPost, error) {
	body, contentType, err := informationBody(in)
	if err != nil {
		return domain.InformationPost{}, err
	}
	var out struct {
		Message string                 `json:"message"`
		Data    domain.InformationPost `json:"data"`
	}
	err = c.doMultipart(ctx, "update_information", http.MethodPut, "/api/information/"+formatID(id), credential, body, contentType, &out)
	return out.Data, err
}

func (c *Client) DeleteInformation(ctx context.Context, credential string, id int64) error {
	return c.doJSON(ctx, "delete_information", http.MethodDelete, "/api/information/"+formatID(id), credential, nil, nil)
}

type feedbackRequest struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

func (c *Client) CreateFeedback(ctx context.Context, credential string, userID int64, message string) (domain.Feedback, error) {
	var out struct {
		Message  string          `json:"message"`
		Feedback domain.Feedback `json:"feedback"`
	}
	err := c.doJSON(ctx, "create_feedback", http.MethodPost, "/api/feedback/", credential,
		feedbackRequest{UserID: userID, Message: message}, &out)
	return out.Feedback, err
}

func (c *Client) ListFeedback(ctx context.Context, credential string) ([]domain.Feedback, error) {
	var out []domain.Feedback
	err := c.doJSON(ctx, "feedback", http.MethodGet, "/api/feedback/", credential, nil, &out)
	return out, err
}

// TranslateVideo proxies a captured frame or clip to the AI inference
// endpoint and returns the recognised text.
func (c *Client) TranslateVideo(ctx context.Context, credential, filename string, video io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("build video part: %w", err)
	}
	if _, err := io.Copy(part, video); err != nil {
		return "", fmt.Errorf("copy video: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finish multipart body: %w", err)
	}

	var out struct {
		Prediction string `json:"prediction"`
	}
	err = c.doMultipart(ctx, "translate", http.MethodPost, "/api/ai/predict", credential, &body, mw.FormDataContentType(), &out)
	if err != nil {
		return "", err
	}
	return out.Prediction, nil
}

// doJSON builds and sends one JSON request. An empty credential on the
// public endpoints (login, register, vocabulary, information) skips the
// authorization header; everywhere else the caller must have pre-checked the
// session and an empty credential is refused before any bytes leave.
func (c *Client) doJSON(ctx context.Context, endpoint, method, path, credential string, in, out any) error {
	if credential == "" && !publicEndpoint(endpoint) {
		return domain.ErrNoCredential
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, endpoint, credential, out)
}

func (c *Client) doMultipart(ctx context.Context, endpoint, method, path, credential string, body io.Reader, contentType string, out any) error {
	if credential == "" {
		return domain.ErrNoCredential
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.send(req, endpoint, credential, out)
}

func (c *Client) send(req *http.Request, endpoint, credential string, out any) error {
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequests.WithLabelValues(endpoint, statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		return c.apiError(resp, endpoint, credential != "")
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", endpoint, err)
		}
	}
	return nil
}

// apiError maps backend failures onto domain errors. A 401 on an
// authenticated call means the stored credential is dead and the user must
// log in again; it is never a generic failure.
func (c *Client) apiError(resp *http.Response, endpoint string, authed bool) error {
	var envelope errorEnvelope
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&envelope)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		if envelope.Error != "" {
			return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, envelope.Error)
		}
		return domain.ErrInvalidRequest
	case http.StatusUnauthorized:
		if authed {
			return domain.ErrCredentialRejected
		}
		return domain.ErrInvalidCredentials
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrUserNotFound
	case http.StatusConflict:
		return domain.ErrUserExists
	}

	msg := envelope.Error
	if msg == "" {
		msg = resp.Status
	}
	c.log.Error().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Str("error", msg).
		Msg("backend call failed")
	return fmt.Errorf("%s: backend returned %d: %s", endpoint, resp.StatusCode, msg)
}

func publicEndpoint(endpoint string) bool {
	switch endpoint {
	case "login", "register", "vocabulary", "information":
		return true
	}
	return false
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

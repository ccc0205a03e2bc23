package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bahasaku/gateway/internal/core/domain"
)

func adminCookie(t *testing.T, env *gatewayEnv) *http.Cookie {
	t.Helper()
	env.backend.AddUser(9, "Admin Bahasaku", "admin@example.com", "adminpass", domain.RoleAdmin)
	rec := env.postJSON(t, "/api/auth/login", `{"email":"admin@example.com","password":"adminpass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

func TestAdminListUsers(t *testing.T) {
	env := newGatewayEnv(t)
	ck := adminCookie(t, env)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var users []domain.Identity
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("got %d users, want 2", len(users))
	}
}

func TestAdminRoutes_RedirectNonAdmins(t *testing.T) {
	env := newGatewayEnv(t)
	ck := loginCookie(t, env)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect location = %q, want %q", loc, "/login")
	}
}

func TestAdminDeleteUser(t *testing.T) {
	env := newGatewayEnv(t)
	ck := adminCookie(t, env)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/1", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	// Deleting the same user again surfaces the backend's 404.
	req = httptest.NewRequest(http.MethodDelete, "/api/admin/users/1", nil)
	req.AddCookie(ck)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("repeat delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAdminListFeedback(t *testing.T) {
	env := newGatewayEnv(t)
	userCk := loginCookie(t, env)

	if rec := env.postJSON(t, "/api/feedback", `{"message":"Tolong tambah kosakata daerah"}`, userCk); rec.Code != http.StatusCreated {
		t.Fatalf("feedback status = %d (body: %s)", rec.Code, rec.Body.String())
	}

	ck := adminCookie(t, env)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/feedback", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var tickets []domain.Feedback
	if err := json.Unmarshal(rec.Body.Bytes(), &tickets); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(tickets) != 1 || tickets[0].Message != "Tolong tambah kosakata daerah" {
		t.Errorf("tickets = %+v, want the one submitted message", tickets)
	}
}

func TestAdminCreateVocabulary(t *testing.T) {
	env := newGatewayEnv(t)
	ck := adminCookie(t, env)

	body := `{"text":"sama-sama","video_file_path":"/static/videos/sama-sama.mp4","category":"Sapaan"}`
	rec := env.postJSON(t, "/api/admin/vocabulary", body, ck)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var entry domain.VocabularyEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if entry.Text != "sama-sama" {
		t.Errorf("text = %q, want %q", entry.Text, "sama-sama")
	}

	// The new entry is visible through the public lookup.
	req := httptest.NewRequest(http.MethodGet, "/api/vocabulary?q=sama", nil)
	recList := httptest.NewRecorder()
	env.router.ServeHTTP(recList, req)
	var entries []domain.VocabularyEntry
	if err := json.Unmarshal(recList.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("lookup found %d entries, want 1", len(entries))
	}
}

func TestAdminCreateVocabulary_DuplicateText(t *testing.T) {
	env := newGatewayEnv(t)
	ck := adminCookie(t, env)

	body := `{"text":"halo","video_file_path":"/static/videos/halo-2.mp4"}`
	rec := env.postJSON(t, "/api/admin/vocabulary", body, ck)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestAdminCreateVocabulary_RedirectsNonAdmins(t *testing.T) {
	env := newGatewayEnv(t)
	ck := loginCookie(t, env)

	body := `{"text":"maaf","video_file_path":"/static/videos/maaf.mp4"}`
	rec := env.postJSON(t, "/api/admin/vocabulary", body, ck)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect location = %q, want %q", loc, "/login")
	}
}

// informationForm builds the multipart body the information endpoints take.
func informationForm(t *testing.T, title, content, imageName string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("title", title); err != nil {
		t.Fatalf("write title: %v", err)
	}
	if err := mw.WriteField("content", content); err != nil {
		t.Fatalf("write content: %v", err)
	}
	if imageName != "" {
		part, err := mw.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("create image part: %v", err)
		}
		if _, err := part.Write([]byte("pngbytes")); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestAdminInformationLifecycle(t *testing.T) {
	env := newGatewayEnv(t)
	ck := adminCookie(t, env)

	// Create with an image.
	body, contentType := informationForm(t, "Lomba BISINDO", "Pendaftaran dibuka.", "poster.png")
	req := httptest.NewRequest(http.MethodPost, "/api/admin/information", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var post domain.InformationPost
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("decode created post: %v", err)
	}
	if post.ImageURL == "" {
		t.Error("image URL not set after upload")
	}

	// Update the title, keep everything else.
	body, contentType = informationForm(t, "Lomba BISINDO 2026", "", "")
	req = httptest.NewRequest(http.MethodPut, "/api/admin/information/2", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(ck)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("decode updated post: %v", err)
	}
	if post.Title != "Lomba BISINDO 2026" {
		t.Errorf("title = %q, want the updated one", post.Title)
	}
	if post.Content != "Pendaftaran dibuka." {
		t.Errorf("content = %q, want it unchanged", post.Content)
	}

	// Delete, then confirm the public listing no longer has it.
	req = httptest.NewRequest(http.MethodDelete, "/api/admin/information/2", nil)
	req.AddCookie(ck)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/information", nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	var posts []domain.InformationPost
	if err := json.Unmarshal(rec.Body.Bytes(), &posts); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	for _, p := range posts {
		if p.ID == 2 {
			t.Error("deleted post still listed")
		}
	}
}

func TestAdminCreateInformation_RequiresTitleAndContent(t *testing.T) {
	env := newGatewayEnv(t)
	ck := adminCookie(t, env)

	body, contentType := informationForm(t, "", "Konten tanpa judul.", "")
	req := httptest.NewRequest(http.MethodPost, "/api/admin/information", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

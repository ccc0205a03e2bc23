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

func TestProfileGet_RefreshesSessionIdentity(t *testing.T) {
	env := newGatewayEnv(t)
	ck := loginCookie(t, env)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var identity domain.Identity
	if err := json.Unmarshal(rec.Body.Bytes(), &identity); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if identity.Email != "sari@example.com" {
		t.Errorf("email = %q, want %q", identity.Email, "sari@example.com")
	}
}

func TestProfileUpdate_PushesFieldsAndPhoto(t *testing.T) {
	env := newGatewayEnv(t)
	ck := loginCookie(t, env)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("full_name", "Sari Dewi Lestari"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.WriteField("location", "Bandung"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := mw.CreateFormFile("photo", "avatar.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("pngbytes")); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/profile", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var identity domain.Identity
	if err := json.Unmarshal(rec.Body.Bytes(), &identity); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if identity.FullName != "Sari Dewi Lestari" {
		t.Errorf("full name = %q, want %q", identity.FullName, "Sari Dewi Lestari")
	}
	if identity.Location != "Bandung" {
		t.Errorf("location = %q, want %q", identity.Location, "Bandung")
	}
	if identity.ProfilePicURL == "" {
		t.Error("profile picture URL not set after photo upload")
	}

	// The session copy follows the backend's version.
	session, ok := env.sessions.Current(ck.Value)
	if !ok {
		t.Fatal("session vanished after profile update")
	}
	if session.Identity.FullName != "Sari Dewi Lestari" {
		t.Errorf("session full name = %q, want the refreshed identity", session.Identity.FullName)
	}
}

// Package upstreamtest provides an in-memory stand-in for the Bahasaku
// backend API, faithful enough for gateway tests: bcrypt-checked logins,
// HS256 bearer tokens, and the JSON shapes the real backend returns.
package upstreamtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bahasaku/gateway/internal/core/domain"
)

// Server is a fake Bahasaku backend.
type Server struct {
	*httptest.Server

	secret      string
	users       map[string]*account // by email
	feedback    []domain.Feedback
	vocabulary  []domain.VocabularyEntry
	information []domain.InformationPost
}

type account struct {
	identity     domain.Identity
	passwordHash []byte
}

// New starts a fake backend with the given JWT signing secret.
func New(secret string) *Server {
	s := &Server{
		secret: secret,
		users:  make(map[string]*account),
		vocabulary: []domain.VocabularyEntry{
			{ID: 1, Text: "terima kasih", VideoFilePath: "/static/videos/terima-kasih.mp4"},
			{ID: 2, Text: "halo", VideoFilePath: "/static/videos/halo.mp4"},
		},
		information: []domain.InformationPost{
			{ID: 1, Title: "Kelas BISINDO pemula", Content: "Pendaftaran dibuka setiap awal bulan."},
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/login", s.handleLogin)
	mux.HandleFunc("POST /api/users/register", s.handleRegister)
	mux.HandleFunc("GET /api/users/", s.handleUsers)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /api/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /api/users/{id}", s.handleDeleteUser)
	mux.HandleFunc("POST /api/users/{id}/photo", s.handlePhoto)
	mux.HandleFunc("GET /api/kosa-kata/", s.handleVocabulary)
	mux.HandleFunc("POST /api/kosa-kata/", s.handleCreateVocabulary)
	mux.HandleFunc("GET /api/information/", s.handleInformation)
	mux.HandleFunc("POST /api/information/", s.handleCreateInformation)
	mux.HandleFunc("PUT /api/information/{id}", s.handleUpdateInformation)
	mux.HandleFunc("DELETE /api/information/{id}", s.handleDeleteInformation)
	mux.HandleFunc("POST /api/feedback/", s.handleCreateFeedback)
	mux.HandleFunc("GET /api/feedback/", s.handleListFeedback)
	mux.HandleFunc("POST /api/ai/predict", s.handlePredict)
	s.Server = httptest.NewServer(mux)
	return s
}

// AddUser registers a fixture account and returns its identity.
func (s *Server) AddUser(id int64, fullName, email, password, role string) domain.Identity {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic("upstreamtest: hash password: " + err.Error())
	}
	identity := domain.Identity{
		ID:       id,
		FullName: fullName,
		Email:    email,
		Role:     role,
		UserType: "Umum",
	}
	s.users[email] = &account{identity: identity, passwordHash: hash}
	return identity
}

// Token mints a bearer token the fake backend will accept for the user.
func (s *Server) Token(userID int64) string {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
	})
	signed, err := t.SignedString([]byte(s.secret))
	if err != nil {
		panic("upstreamtest: sign token: " + err.Error())
	}
	return signed
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe bool   `json:"remember_me"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	acct, ok := s.users[req.Email]
	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Email atau password salah")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Login berhasil",
		"access_token": s.Token(acct.identity.ID),
		"user":         acct.identity,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName  string `json:"full_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		UserType  string `json:"user_type"`
		Location  string `json:"location"`
		BirthDate string `json:"birth_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if _, exists := s.users[req.Email]; exists {
		writeError(w, http.StatusConflict, "Email sudah terdaftar")
		return
	}

	var id int64 = 1
	for _, acct := range s.users {
		if acct.identity.ID >= id {
			id = acct.identity.ID + 1
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hash failure")
		return
	}
	identity := domain.Identity{
		ID:        id,
		FullName:  req.FullName,
		Email:     req.Email,
		Role:      domain.RoleUser,
		UserType:  req.UserType,
		Location:  req.Location,
		BirthDate: req.BirthDate,
	}
	s.users[req.Email] = &account{identity: identity, passwordHash: hash}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "Registrasi berhasil",
		"access_token": s.Token(id),
		"user":         identity,
	})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if !caller.HasRole(domain.RoleAdmin) {
		writeError(w, http.StatusForbidden, "Akses ditolak. Diperlukan hak Admin.")
		return
	}
	users := make([]domain.Identity, 0, len(s.users))
	for _, acct := range s.users {
		users = append(users, acct.identity)
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if caller.ID != id && !caller.HasRole(domain.RoleAdmin) {
		writeError(w, http.StatusForbidden, "Akses ditolak.")
		return
	}
	for _, acct := range s.users {
		if acct.identity.ID == id {
			writeJSON(w, http.StatusOK, acct.identity)
			return
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	_, acct, ok := s.resolveTarget(w, r)
	if !ok {
		return
	}
	var req struct {
		FullName  string `json:"full_name"`
		Location  string `json:"location"`
		BirthDate string `json:"birth_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.FullName != "" {
		acct.identity.FullName = req.FullName
	}
	if req.Location != "" {
		acct.identity.Location = req.Location
	}
	if req.BirthDate != "" {
		acct.identity.BirthDate = req.BirthDate
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profil diperbarui",
		"user":    acct.identity,
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if !caller.HasRole(domain.RoleAdmin) {
		writeError(w, http.StatusForbidden, "Akses ditolak. Diperlukan hak Admin.")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	for email, acct := range s.users {
		if acct.identity.ID == id {
			delete(s.users, email)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Pengguna dihapus"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
}

func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	_, acct, ok := s.resolveTarget(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	_, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No photo sent")
		return
	}
	acct.identity.ProfilePicURL = "/static/profile_pics/" + header.Filename
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Foto profil diperbarui",
		"user":    acct.identity,
	})
}

// resolveTarget authenticates the caller and looks up the account named in
// the path, enforcing the self-or-admin rule the real backend applies.
func (s *Server) resolveTarget(w http.ResponseWriter, r *http.Request) (domain.Identity, *account, bool) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return domain.Identity{}, nil, false
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return domain.Identity{}, nil, false
	}
	if caller.ID != id && !caller.HasRole(domain.RoleAdmin) {
		writeError(w, http.StatusForbidden, "Akses ditolak.")
		return domain.Identity{}, nil, false
	}
	for _, acct := range s.users {
		if acct.identity.ID == id {
			return caller, acct, true
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
	return domain.Identity{}, nil, false
}

func (s *Server) handleVocabulary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.vocabulary)
}

// handleCreateVocabulary mirrors the real endpoint, which carries no JWT
// requirement and rejects duplicate texts with a 400.
func (s *Server) handleCreateVocabulary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text          string `json:"text"`
		VideoFilePath string `json:"video_file_path"`
		Category      string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" || req.VideoFilePath == "" {
		writeError(w, http.StatusBadRequest, "text and video_file_path are required")
		return
	}
	for _, entry := range s.vocabulary {
		if entry.Text == req.Text {
			writeError(w, http.StatusBadRequest, "text must be unique")
			return
		}
	}
	entry := domain.VocabularyEntry{
		ID:            int64(len(s.vocabulary) + 1),
		Text:          req.Text,
		VideoFilePath: req.VideoFilePath,
		Category:      req.Category,
	}
	s.vocabulary = append(s.vocabulary, entry)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "KosaKata created",
		"kosa_kata": entry,
	})
}

func (s *Server) handleInformation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.information)
}

func (s *Server) handleCreateInformation(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	title, content := r.FormValue("title"), r.FormValue("content")
	if title == "" || content == "" {
		writeError(w, http.StatusBadRequest, "Judul dan Konten wajib diisi")
		return
	}
	post := domain.InformationPost{
		ID:      int64(len(s.information) + 1),
		Title:   title,
		Content: content,
	}
	if _, header, err := r.FormFile("image"); err == nil {
		post.ImageURL = "/static/info_images/" + header.Filename
	}
	s.information = append(s.information, post)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Informasi berhasil dibuat",
		"data":    post,
	})
}

func (s *Server) handleUpdateInformation(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "information not found")
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	for i := range s.information {
		if s.information[i].ID != id {
			continue
		}
		if title := r.FormValue("title"); title != "" {
			s.information[i].Title = title
		}
		if content := r.FormValue("content"); content != "" {
			s.information[i].Content = content
		}
		if _, header, err := r.FormFile("image"); err == nil {
			s.information[i].ImageURL = "/static/info_images/" + header.Filename
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Informasi berhasil diupdate",
			"data":    s.information[i],
		})
		return
	}
	writeError(w, http.StatusNotFound, "information not found")
}

func (s *Server) handleDeleteInformation(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "information not found")
		return
	}
	for i, post := range s.information {
		if post.ID == id {
			s.information = append(s.information[:i], s.information[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Informasi berhasil dihapus"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "information not found")
}

// requireAdmin authenticates the caller and enforces the Admin role. On
// failure it writes the response and returns false.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return false
	}
	if !caller.HasRole(domain.RoleAdmin) {
		writeError(w, http.StatusForbidden, "Unauthorized")
		return false
	}
	return true
}

func (s *Server) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	var req struct {
		UserID  int64  `json:"user_id"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	fb := domain.Feedback{ID: int64(len(s.feedback) + 1), UserID: req.UserID, Message: req.Message}
	s.feedback = append(s.feedback, fb)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Terima kasih atas masukannya",
		"feedback": fb,
	})
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if !caller.HasRole(domain.RoleAdmin) {
		writeError(w, http.StatusForbidden, "Akses ditolak. Diperlukan hak Admin.")
		return
	}
	writeJSON(w, http.StatusOK, s.feedback)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	if _, _, err := r.FormFile("image"); err != nil {
		writeError(w, http.StatusBadRequest, "No image sent")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"prediction": "terima kasih"})
}

// authenticate enforces the bearer contract and resolves the caller. On
// failure it writes a 401 and returns ok=false.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		writeError(w, http.StatusUnauthorized, "missing authorization header")
		return domain.Identity{}, false
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return domain.Identity{}, false
	}

	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token identity")
		return domain.Identity{}, false
	}
	for _, acct := range s.users {
		if acct.identity.ID == id {
			return acct.identity, true
		}
	}
	writeError(w, http.StatusUnauthorized, "unknown user")
	return domain.Identity{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

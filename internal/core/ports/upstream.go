package ports

import (
	"context"
	"io"

	"github.com/bahasaku/gateway/internal/core/domain"
)

// RegisterInput is the payload forwarded to the backend's register endpoint.
type RegisterInput struct {
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserType  string `json:"user_type"`
	Location  string `json:"location,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
}

// ProfileUpdate carries editable profile fields plus an optional photo.
// Photo, when non-nil, is sent as a multipart file part.
type ProfileUpdate struct {
	FullName  string
	Location  string
	BirthDate string
	PhotoName string
	Photo     io.Reader
}

// VocabularyInput is the payload for creating a vocabulary entry. The
// backend exposes create only; entries are never edited in place.
type VocabularyInput struct {
	Text          string `json:"text"`
	VideoFilePath string `json:"video_file_path"`
	Category      string `json:"category,omitempty"`
}

// InformationInput carries an information post's fields plus an optional
// header image, sent as a multipart file part when non-nil.
type InformationInput struct {
	Title     string
	Content   string
	ImageName string
	Image     io.Reader
}

// Upstream is the one place requests to the Bahasaku backend are built.
// Every protected call stamps the given credential as a bearer token; an
// empty credential fails with domain.ErrNoCredential before any request is
// made, and a 401 from the backend surfaces as domain.ErrCredentialRejected.
type Upstream interface {
	Login(ctx context.Context, email, password string, remember bool) (domain.Identity, string, error)
	Register(ctx context.Context, in RegisterInput) (domain.Identity, string, error)

	Profile(ctx context.Context, credential string, userID int64) (domain.Identity, error)
	UpdateProfile(ctx context.Context, credential string, userID int64, in ProfileUpdate) (domain.Identity, error)

	Users(ctx context.Context, credential string) ([]domain.Identity, error)
	DeleteUser(ctx context.Context, credential string, userID int64) error

	SearchVocabulary(ctx context.Context, query string) ([]domain.VocabularyEntry, error)
	CreateVocabulary(ctx context.Context, credential string, in VocabularyInput) (domain.VocabularyEntry, error)

	ListInformation(ctx context.Context) ([]domain.InformationPost, error)
	CreateInformation(ctx context.Context, credential string, in InformationInput) (domain.InformationPost, error)
	UpdateInformation(ctx context.Context, credential string, id int64, in InformationInput) (domain.InformationPost, error)
	DeleteInformation(ctx context.Context, credential string, id int64) error

	CreateFeedback(ctx context.Context, credential string, userID int64, message string) (domain.Feedback, error)
	ListFeedback(ctx context.Context, credential string) ([]domain.Feedback, error)

	TranslateVideo(ctx context.Context, credential, filename string, video io.Reader) (string, error)
}

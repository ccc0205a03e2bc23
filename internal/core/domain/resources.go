package domain

// Resource payloads proxied verbatim between the browser and the Bahasaku
// backend. The gateway never interprets these beyond routing.

// VocabularyEntry maps a word or phrase to its sign-language video.
type VocabularyEntry struct {
	ID            int64  `json:"id"`
	Text          string `json:"text"`
	VideoFilePath string `json:"video_file_path"`
	Category      string `json:"category,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// InformationPost is an informational article shown on the platform.
type InformationPost struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
}

// Feedback is a user-submitted feedback ticket.
type Feedback struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Message   string `json:"message"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

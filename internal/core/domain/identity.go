package domain

import "strings"

const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// Identity is the backend-issued description of the authenticated principal.
// The gateway stores and returns it verbatim; only Role is ever inspected,
// and only to gate rendering of protected views. The backend remains the
// authority and re-checks authorization on every privileged call.
type Identity struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	UserType      string `json:"user_type,omitempty"`
	Location      string `json:"location,omitempty"`
	BirthDate     string `json:"birth_date,omitempty"`
	ProfilePicURL string `json:"profile_pic_url,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// HasRole reports whether the identity carries the given role. Role values
// have shipped with inconsistent casing ("admin" vs "Admin"), so the
// comparison is case-insensitive.
func (i Identity) HasRole(role string) bool {
	return strings.EqualFold(i.Role, role)
}

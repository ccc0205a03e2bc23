package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Session policy durations. A session's max age is chosen once at login from
// exactly these two values and is never extended by activity; only a fresh
// login resets it. Earlier revisions of the platform disagreed on the default
// (24h vs 8h) — 8h/30d is the canonical pair.
const (
	DefaultSessionTTL    = 8 * time.Hour
	RememberedSessionTTL = 30 * 24 * time.Hour
)

var (
	// ErrNoSession is returned when no live or restorable session exists
	// for a session ID. Expired and corrupt snapshots degrade to this
	// error rather than surfacing their cause.
	ErrNoSession = errors.New("no active session")

	// ErrSnapshotNotFound is returned by snapshot stores when nothing is
	// persisted under a session ID.
	ErrSnapshotNotFound = errors.New("session snapshot not found")

	// ErrSnapshotInvalid is returned when a persisted snapshot is missing
	// required fields or cannot be parsed.
	ErrSnapshotInvalid = errors.New("session snapshot invalid")

	// ErrInvalidCredentials is the backend's login rejection.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNoCredential is returned when a protected upstream call is
	// attempted without a stored credential.
	ErrNoCredential = errors.New("no credential for authenticated request")

	// ErrCredentialRejected is returned when the backend refuses a stored
	// credential (401); callers must treat it as "log in again", not as a
	// generic failure.
	ErrCredentialRejected = errors.New("credential rejected by backend")

	ErrUserExists   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
	ErrForbidden    = errors.New("access forbidden")

	// ErrInvalidRequest is the backend's rejection of a well-formed but
	// unacceptable payload (400), e.g. a duplicate vocabulary text.
	ErrInvalidRequest = errors.New("invalid request")
)

// Session is the live state of one authenticated session: who is logged in,
// with what credential, until when.
type Session struct {
	Credential string
	Identity   Identity
	IssuedAt   time.Time
	MaxAge     time.Duration
}

// ExpiresAt returns the instant the session's credential stops being
// accepted locally.
func (s Session) ExpiresAt() time.Time {
	return s.IssuedAt.Add(s.MaxAge)
}

// ExpiredAt reports whether the session has outlived its max age at the
// given instant.
func (s Session) ExpiredAt(now time.Time) bool {
	return now.Sub(s.IssuedAt) > s.MaxAge
}

// persistedSession is the durable wire form of a Session. Timestamps and
// durations are epoch/duration milliseconds encoded as strings, matching the
// snapshot format the platform has always used.
type persistedSession struct {
	Credential string          `json:"credential"`
	Identity   json.RawMessage `json:"identity"`
	IssuedAt   string          `json:"issued_at"`
	MaxAge     string          `json:"max_age"`
}

// MarshalBinary encodes the session into its durable snapshot form. All four
// fields are always written together.
func (s Session) MarshalBinary() ([]byte, error) {
	identity, err := json.Marshal(s.Identity)
	if err != nil {
		return nil, fmt.Errorf("marshal identity: %w", err)
	}
	return json.Marshal(persistedSession{
		Credential: s.Credential,
		Identity:   identity,
		IssuedAt:   strconv.FormatInt(s.IssuedAt.UnixMilli(), 10),
		MaxAge:     strconv.FormatInt(s.MaxAge.Milliseconds(), 10),
	})
}

// UnmarshalBinary decodes a durable snapshot. Any missing or unparseable
// field yields ErrSnapshotInvalid: partial snapshots are treated as absent,
// never as a crash.
func (s *Session) UnmarshalBinary(data []byte) error {
	var p persistedSession
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if p.Credential == "" {
		return fmt.Errorf("%w: credential missing", ErrSnapshotInvalid)
	}
	if len(p.Identity) == 0 {
		return fmt.Errorf("%w: identity missing", ErrSnapshotInvalid)
	}
	var identity Identity
	if err := json.Unmarshal(p.Identity, &identity); err != nil {
		return fmt.Errorf("%w: identity unparseable: %v", ErrSnapshotInvalid, err)
	}
	issuedMS, err := strconv.ParseInt(p.IssuedAt, 10, 64)
	if err != nil || issuedMS <= 0 {
		return fmt.Errorf("%w: issued_at unparseable", ErrSnapshotInvalid)
	}
	maxAgeMS, err := strconv.ParseInt(p.MaxAge, 10, 64)
	if err != nil || maxAgeMS <= 0 {
		return fmt.Errorf("%w: max_age unparseable", ErrSnapshotInvalid)
	}

	s.Credential = p.Credential
	s.Identity = identity
	s.IssuedAt = time.UnixMilli(issuedMS).UTC()
	s.MaxAge = time.Duration(maxAgeMS) * time.Millisecond
	return nil
}

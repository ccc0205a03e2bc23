package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bahasaku/gateway/internal/metrics"
	"github.com/bahasaku/gateway/internal/core/domain"
	"github.com/bahasaku/gateway/internal/core/ports"
)

// SessionService owns live session state and its durable snapshots.
//
// Live memory is authoritative for the lifetime of the process: expiry is
// checked only at Restore, never on a timer and never on Current reads, so a
// session that outlives its max age while the process stays up remains live
// until the next restart. That matches the behaviour the rest of the
// platform was built against.
type SessionService struct {
	snapshots ports.SnapshotStore
	audit     ports.AuditSink
	log       zerolog.Logger

	defaultTTL  time.Duration
	rememberTTL time.Duration
	now         func() time.Time

	mu   sync.RWMutex
	live map[string]domain.Session
}

// Option tweaks a SessionService at construction time.
type Option func(*SessionService)

// WithClock replaces the wall clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SessionService) { s.now = now }
}

// WithTTLs overrides the session policy durations. Non-positive values keep
// the canonical constants.
func WithTTLs(defaultTTL, rememberTTL time.Duration) Option {
	return func(s *SessionService) {
		if defaultTTL > 0 {
			s.defaultTTL = defaultTTL
		}
		if rememberTTL > 0 {
			s.rememberTTL = rememberTTL
		}
	}
}

// WithAudit attaches an asynchronous audit sink for lifecycle events.
func WithAudit(sink ports.AuditSink) Option {
	return func(s *SessionService) { s.audit = sink }
}

func NewSessionService(snapshots ports.SnapshotStore, log zerolog.Logger, opts ...Option) *SessionService {
	s := &SessionService{
		snapshots:   snapshots,
		log:         log,
		defaultTTL:  domain.DefaultSessionTTL,
		rememberTTL: domain.RememberedSessionTTL,
		now:         time.Now,
		live:        make(map[string]domain.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login replaces any prior session under id wholesale: the snapshot is
// written with all four fields at once and live memory is swapped in a
// single step, so readers never observe a mix of two sessions. The max age
// is fixed here and only a later Login resets it.
func (s *SessionService) Login(ctx context.Context, id string, identity domain.Identity, credential string, remember bool) (domain.Session, error) {
	maxAge := s.defaultTTL
	if remember {
		maxAge = s.rememberTTL
	}

	session := domain.Session{
		Credential: credential,
		Identity:   identity,
		IssuedAt:   s.now().UTC(),
		MaxAge:     maxAge,
	}

	warnShortLivedCredential(s.log, session)

	if err := s.snapshots.Write(ctx, id, session); err != nil {
		return domain.Session{}, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.live[id] = session
	s.mu.Unlock()

	metrics.SessionLogins.WithLabelValues(rememberLabel(remember)).Inc()
	s.emit(domain.SessionEvent{
		SessionID: id,
		UserID:    identity.ID,
		Email:     identity.Email,
		Kind:      domain.AuditLogin,
		Remember:  remember,
		At:        session.IssuedAt,
	})

	return session, nil
}

// Restore re-admits a persisted session after a process restart. It is a
// point-in-time check: a missing, corrupt or expired snapshot degrades to
// domain.ErrNoSession (clearing whatever was persisted), never to a failure
// the user sees.
func (s *SessionService) Restore(ctx context.Context, id string) (domain.Session, error) {
	session, err := s.snapshots.Read(ctx, id)
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		metrics.SessionRestores.WithLabelValues("missing").Inc()
		return domain.Session{}, domain.ErrNoSession
	case errors.Is(err, domain.ErrSnapshotInvalid):
		s.log.Warn().Str("session_id", id).Err(err).Msg("discarding corrupt session snapshot")
		s.clear(ctx, id)
		metrics.SessionRestores.WithLabelValues("invalid").Inc()
		s.emit(domain.SessionEvent{SessionID: id, Kind: domain.AuditRestoreRejected, At: s.now().UTC()})
		return domain.Session{}, domain.ErrNoSession
	case err != nil:
		return domain.Session{}, fmt.Errorf("read session snapshot: %w", err)
	}

	if session.ExpiredAt(s.now()) {
		s.clear(ctx, id)
		metrics.SessionRestores.WithLabelValues("expired").Inc()
		s.emit(domain.SessionEvent{
			SessionID: id,
			UserID:    session.Identity.ID,
			Email:     session.Identity.Email,
			Kind:      domain.AuditRestoreExpired,
			At:        s.now().UTC(),
		})
		return domain.Session{}, domain.ErrNoSession
	}

	s.mu.Lock()
	s.live[id] = session
	s.mu.Unlock()

	metrics.SessionRestores.WithLabelValues("active").Inc()
	return session, nil
}

// Logout clears the persisted snapshot and live memory. Idempotent.
func (s *SessionService) Logout(ctx context.Context, id string) error {
	s.mu.Lock()
	session, wasLive := s.live[id]
	delete(s.live, id)
	s.mu.Unlock()

	if err := s.snapshots.Clear(ctx, id); err != nil {
		return fmt.Errorf("clear session snapshot: %w", err)
	}

	if wasLive {
		metrics.SessionLogouts.Inc()
		s.emit(domain.SessionEvent{
			SessionID: id,
			UserID:    session.Identity.ID,
			Email:     session.Identity.Email,
			Kind:      domain.AuditLogout,
			At:        s.now().UTC(),
		})
	}
	return nil
}

// Current reads live memory only. It reflects the latest Login, Logout or
// Restore with no staleness and performs no I/O.
func (s *SessionService) Current(id string) (domain.Session, bool) {
	s.mu.RLock()
	session, ok := s.live[id]
	s.mu.RUnlock()
	return session, ok
}

// RefreshIdentity replaces the stored identity wholesale after a profile
// update, keeping the credential and session policy untouched.
func (s *SessionService) RefreshIdentity(ctx context.Context, id string, identity domain.Identity) (domain.Session, error) {
	s.mu.Lock()
	session, ok := s.live[id]
	if ok {
		session.Identity = identity
		s.live[id] = session
	}
	s.mu.Unlock()
	if !ok {
		return domain.Session{}, domain.ErrNoSession
	}

	if err := s.snapshots.Write(ctx, id, session); err != nil {
		return domain.Session{}, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

func (s *SessionService) clear(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()
	if err := s.snapshots.Clear(ctx, id); err != nil {
		s.log.Error().Str("session_id", id).Err(err).Msg("clearing session snapshot failed")
	}
}

func (s *SessionService) emit(event domain.SessionEvent) {
	if s.audit != nil {
		s.audit.Emit(event)
	}
}

func rememberLabel(remember bool) string {
	if remember {
		return "remembered"
	}
	return "default"
}

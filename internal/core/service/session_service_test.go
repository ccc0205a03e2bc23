package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bahasaku/gateway/internal/core/domain"
)

type stubSnapshotStore struct {
	data map[string][]byte
}

func newStubSnapshotStore() *stubSnapshotStore {
	return &stubSnapshotStore{data: make(map[string][]byte)}
}

func (s *stubSnapshotStore) Write(_ context.Context, id string, session domain.Session) error {
	raw, err := session.MarshalBinary()
	if err != nil {
		return err
	}
	s.data[id] = raw
	return nil
}

func (s *stubSnapshotStore) Read(_ context.Context, id string) (domain.Session, error) {
	raw, ok := s.data[id]
	if !ok {
		return domain.Session{}, domain.ErrSnapshotNotFound
	}
	var session domain.Session
	if err := session.UnmarshalBinary(raw); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *stubSnapshotStore) Clear(_ context.Context, id string) error {
	delete(s.data, id)
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

type recordingSink struct {
	events []domain.SessionEvent
}

func (r *recordingSink) Emit(e domain.SessionEvent) { r.events = append(r.events, e) }

func testIdentity() domain.Identity {
	return domain.Identity{
		ID:       7,
		FullName: "Siti Rahma",
		Email:    "siti@example.com",
		Role:     domain.RoleUser,
		UserType: "Tuli",
	}
}

func newTestService(t *testing.T) (*SessionService, *stubSnapshotStore, *fakeClock) {
	t.Helper()
	store := newStubSnapshotStore()
	clock := newFakeClock()
	svc := NewSessionService(store, zerolog.Nop(), WithClock(clock.Now))
	return svc, store, clock
}

func TestLogin_MaxAgePerRememberFlag(t *testing.T) {
	svc, _, clock := newTestService(t)

	short, err := svc.Login(context.Background(), "s1", testIdentity(), "tok-a", false)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if short.MaxAge != domain.DefaultSessionTTL {
		t.Fatalf("expected default TTL %v, got %v", domain.DefaultSessionTTL, short.MaxAge)
	}

	long, err := svc.Login(context.Background(), "s2", testIdentity(), "tok-b", true)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if long.MaxAge != domain.RememberedSessionTTL {
		t.Fatalf("expected remembered TTL %v, got %v", domain.RememberedSessionTTL, long.MaxAge)
	}

	// Activity does not slide the policy.
	clock.Advance(3 * time.Hour)
	got, ok := svc.Current("s1")
	if !ok {
		t.Fatalf("session s1 not live")
	}
	if got.MaxAge != domain.DefaultSessionTTL || !got.IssuedAt.Equal(short.IssuedAt) {
		t.Fatalf("session policy changed without a login: %+v", got)
	}
}

func TestRestore_AroundExpiry(t *testing.T) {
	svc, store, clock := newTestService(t)

	issued, err := svc.Login(context.Background(), "s1", testIdentity(), "tok", false)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Fresh process, just before expiry: session comes back intact.
	clock.Advance(domain.DefaultSessionTTL - time.Millisecond)
	fresh := NewSessionService(store, zerolog.Nop(), WithClock(clock.Now))
	restored, err := fresh.Restore(context.Background(), "s1")
	if err != nil {
		t.Fatalf("restore before expiry: %v", err)
	}
	if restored.Credential != "tok" {
		t.Fatalf("credential changed across restore: %q", restored.Credential)
	}
	if restored.Identity != issued.Identity {
		t.Fatalf("identity changed across restore: %+v", restored.Identity)
	}

	// Just past expiry: no session, and the snapshot is gone.
	clock.Advance(2 * time.Millisecond)
	stale := NewSessionService(store, zerolog.Nop(), WithClock(clock.Now))
	if _, err := stale.Restore(context.Background(), "s1"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after expiry, got %v", err)
	}
	if _, ok := store.data["s1"]; ok {
		t.Fatalf("expired snapshot not cleared")
	}
	if _, ok := stale.Current("s1"); ok {
		t.Fatalf("expired session still live")
	}
}

func TestRestore_MissingSnapshot(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Restore(context.Background(), "ghost"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestRestore_MalformedSnapshots(t *testing.T) {
	cases := map[string]string{
		"not json":           `{{{`,
		"credential missing": `{"identity":{"id":7,"email":"x@y.z"},"issued_at":"1700000000000","max_age":"28800000"}`,
		"issued_at missing":  `{"credential":"tok","identity":{"id":7},"max_age":"28800000"}`,
		"issued_at garbage":  `{"credential":"tok","identity":{"id":7},"issued_at":"yesterday","max_age":"28800000"}`,
		"max_age garbage":    `{"credential":"tok","identity":{"id":7},"issued_at":"1700000000000","max_age":"-"}`,
		"identity missing":   `{"credential":"tok","issued_at":"1700000000000","max_age":"28800000"}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			svc, store, _ := newTestService(t)
			store.data["s1"] = []byte(raw)

			if _, err := svc.Restore(context.Background(), "s1"); !errors.Is(err, domain.ErrNoSession) {
				t.Fatalf("expected ErrNoSession, got %v", err)
			}
			if _, ok := store.data["s1"]; ok {
				t.Fatalf("corrupt snapshot not cleared")
			}
		})
	}
}

func TestLogout_ThenRestore(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Login(context.Background(), "s1", testIdentity(), "tok", true); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), "s1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := svc.Current("s1"); ok {
		t.Fatalf("session still live after logout")
	}
	if _, err := svc.Restore(context.Background(), "s1"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}

	// Idempotent on an already-absent session.
	if err := svc.Logout(context.Background(), "s1"); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestLogin_OverwritesPriorSession(t *testing.T) {
	svc, store, _ := newTestService(t)

	first := testIdentity()
	second := domain.Identity{ID: 9, FullName: "Budi Santoso", Email: "budi@example.com", Role: domain.RoleAdmin}

	if _, err := svc.Login(context.Background(), "s1", first, "tok-1", true); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := svc.Login(context.Background(), "s1", second, "tok-2", false); err != nil {
		t.Fatalf("second login: %v", err)
	}

	got, ok := svc.Current("s1")
	if !ok {
		t.Fatalf("session not live")
	}
	if got.Identity != second || got.Credential != "tok-2" {
		t.Fatalf("first session leaked into second: %+v", got)
	}
	if got.MaxAge != domain.DefaultSessionTTL {
		t.Fatalf("policy from first login leaked: %v", got.MaxAge)
	}

	var persisted domain.Session
	if err := persisted.UnmarshalBinary(store.data["s1"]); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if persisted.Identity != second || persisted.Credential != "tok-2" {
		t.Fatalf("snapshot kept first session: %+v", persisted)
	}
}

func TestRefreshIdentity(t *testing.T) {
	svc, _, _ := newTestService(t)

	issued, err := svc.Login(context.Background(), "s1", testIdentity(), "tok", false)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	updated := testIdentity()
	updated.FullName = "Siti R. Dewi"
	updated.Location = "Bandung"

	session, err := svc.RefreshIdentity(context.Background(), "s1", updated)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if session.Identity != updated {
		t.Fatalf("identity not replaced: %+v", session.Identity)
	}
	if !session.IssuedAt.Equal(issued.IssuedAt) || session.MaxAge != issued.MaxAge {
		t.Fatalf("refresh changed the session policy")
	}

	if _, err := svc.RefreshIdentity(context.Background(), "nope", updated); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestAuditEvents(t *testing.T) {
	store := newStubSnapshotStore()
	clock := newFakeClock()
	sink := &recordingSink{}
	svc := NewSessionService(store, zerolog.Nop(), WithClock(clock.Now), WithAudit(sink))

	_, _ = svc.Login(context.Background(), "s1", testIdentity(), "tok", false)
	_ = svc.Logout(context.Background(), "s1")

	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sink.events))
	}
	if sink.events[0].Kind != domain.AuditLogin || sink.events[1].Kind != domain.AuditLogout {
		t.Fatalf("unexpected event kinds: %+v", sink.events)
	}
	if sink.events[0].UserID != 7 {
		t.Fatalf("login event missing user: %+v", sink.events[0])
	}
}

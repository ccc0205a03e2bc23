package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bahasaku/gateway/internal/core/domain"
)

func testSession() domain.Session {
	return domain.Session{
		Credential: "tok-123",
		Identity:   domain.Identity{ID: 7, FullName: "Siti Rahma", Email: "siti@example.com", Role: domain.RoleUser},
		IssuedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		MaxAge:     domain.DefaultSessionTTL,
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	want := testSession()
	if err := store.Write(ctx, "s1", want); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := store.Read(ctx, "s1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Credential != want.Credential || got.Identity != want.Identity {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.IssuedAt.Equal(want.IssuedAt) || got.MaxAge != want.MaxAge {
		t.Fatalf("policy fields mismatch: %+v", got)
	}
}

func TestFileStore_MissingAndCleared(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Read(ctx, "nope"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}

	if err := store.Write(ctx, "s1", testSession()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.Read(ctx, "s1"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound after clear, got %v", err)
	}
	// Clearing twice is fine.
	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "s1.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	if _, err := store.Read(context.Background(), "s1"); !errors.Is(err, domain.ErrSnapshotInvalid) {
		t.Fatalf("expected ErrSnapshotInvalid, got %v", err)
	}
}

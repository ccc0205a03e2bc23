package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bahasaku/gateway/internal/core/domain"
)

type collectingRepo struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (r *collectingRepo) Record(_ context.Context, e domain.SessionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *collectingRepo) snapshot() []domain.SessionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SessionEvent, len(r.events))
	copy(out, r.events)
	return out
}

func TestDispatcher_PreservesPerSessionOrder(t *testing.T) {
	repo := &collectingRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	kinds := []string{domain.AuditLogin, domain.AuditLogout, domain.AuditLogin, domain.AuditRestoreExpired}
	for _, k := range kinds {
		d.Emit(domain.SessionEvent{SessionID: "s1", Kind: k, At: time.Now()})
	}

	deadline := time.After(2 * time.Second)
	for {
		got := repo.snapshot()
		if len(got) == len(kinds) {
			for i, e := range got {
				if e.Kind != kinds[i] {
					t.Fatalf("event %d out of order: got %s, want %s", i, e.Kind, kinds[i])
				}
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for events, got %d", len(repo.snapshot()))
		case <-time.After(10 * time.Millisecond):
		}
	}
}

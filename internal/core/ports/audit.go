package ports

import (
	"context"

	"github.com/bahasaku/gateway/internal/core/domain"
)

// AuditRepository persists session lifecycle events.
type AuditRepository interface {
	Record(ctx context.Context, event domain.SessionEvent) error
}

// AuditReader serves the admin back-office's session activity view.
type AuditReader interface {
	RecentForUser(ctx context.Context, userID int64, limit int64) ([]domain.SessionEvent, error)
}

// AuditSink accepts events for asynchronous recording. Implementations must
// never block the session operation that emits the event.
type AuditSink interface {
	Emit(event domain.SessionEvent)
}

package ports

import (
	"context"

	"github.com/bahasaku/gateway/internal/core/domain"
)

// SnapshotStore persists session snapshots durably so sessions survive
// gateway restarts. A snapshot is written and cleared as one unit; stores
// must never expose partial state.
type SnapshotStore interface {
	Write(ctx context.Context, id string, session domain.Session) error
	// Read returns domain.ErrSnapshotNotFound when nothing is persisted
	// under the ID and domain.ErrSnapshotInvalid for corrupt data.
	Read(ctx context.Context, id string) (domain.Session, error)
	Clear(ctx context.Context, id string) error
}

// SessionService is the single source of truth for who is logged in, with
// what credential, until when. Live reads never touch storage; Restore is
// the only operation that re-admits a persisted session, and the only point
// at which expiry is checked.
type SessionService interface {
	Login(ctx context.Context, id string, identity domain.Identity, credential string, remember bool) (domain.Session, error)
	Restore(ctx context.Context, id string) (domain.Session, error)
	Logout(ctx context.Context, id string) error
	Current(id string) (domain.Session, bool)
	RefreshIdentity(ctx context.Context, id string, identity domain.Identity) (domain.Session, error)
}

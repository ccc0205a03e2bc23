package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bahasaku/gateway/internal/core/domain"
)

const keyPrefix = "session:"

// minTTL keeps snapshots that are at or past their expiry around just long
// enough for Restore to observe and reject them.
const minTTL = time.Minute

// SnapshotStore persists session snapshots in Redis, one key per session.
// Keys carry a TTL matching the session's remaining max age as storage
// hygiene; expiry decisions are still made by the session service at
// restore time.
type SnapshotStore struct {
	client *redis.Client
}

func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

func (s *SnapshotStore) key(id string) string {
	return keyPrefix + id
}

func (s *SnapshotStore) Write(ctx context.Context, id string, session domain.Session) error {
	ttl := time.Until(session.ExpiresAt())
	if ttl < minTTL {
		ttl = minTTL
	}
	// domain.Session implements encoding.BinaryMarshaler, so go-redis
	// serializes it directly.
	if err := s.client.Set(ctx, s.key(id), session, ttl).Err(); err != nil {
		return fmt.Errorf("write session snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Read(ctx context.Context, id string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return domain.Session{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("read session snapshot: %w", err)
	}

	var session domain.Session
	if err := session.UnmarshalBinary(raw); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *SnapshotStore) Clear(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("clear session snapshot: %w", err)
	}
	return nil
}

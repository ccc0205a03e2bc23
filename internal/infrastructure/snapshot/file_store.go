// Package snapshot provides a file-backed session snapshot store for
// single-process deployments. Each session is one JSON file; writes go
// through a temp file and rename so a snapshot is always either complete or
// absent.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bahasaku/gateway/internal/core/domain"
)

type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store rooted
// at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *FileStore) Write(_ context.Context, id string, session domain.Session) error {
	raw, err := session.MarshalBinary()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(id)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (f *FileStore) Read(_ context.Context, id string) (domain.Session, error) {
	raw, err := os.ReadFile(f.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return domain.Session{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("read snapshot: %w", err)
	}

	var session domain.Session
	if err := session.UnmarshalBinary(raw); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (f *FileStore) Clear(_ context.Context, id string) error {
	err := os.Remove(f.path(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

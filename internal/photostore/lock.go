package photostore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"sitephoto/internal/config"
)

// ErrLocked is returned when another process holds the folder lock.
var ErrLocked = errors.New("folder is locked by another sitephoto process")

const lockName = "sitephoto.lock"

// FolderLock is an exclusive advisory lock on a photo folder.
type FolderLock struct {
	path string
	lock *flock.Flock
}

// Lock acquires the folder lock without blocking.
func Lock(cfg *config.Config, folder string) (*FolderLock, error) {
	stateDir := cfg.StateDir(folder)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	path := filepath.Join(stateDir, lockName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &FolderLock{path: path, lock: lock}, nil
}

// Path returns the lock file path.
func (l *FolderLock) Path() string { return l.path }

// Unlock releases the lock.
func (l *FolderLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

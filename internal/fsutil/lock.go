package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created inside every output directory while a run owns it.
const LockFileName = ".fashionset.lock"

// ErrOutputLocked reports that another run currently holds the output directory.
var ErrOutputLocked = errors.New("output directory is locked by another run")

// DirLock is an exclusive advisory lock on an output directory.
type DirLock struct {
	lock *flock.Flock
	path string
}

// LockDir creates dir if needed and takes its lock without blocking.
func LockDir(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %q: %w", dir, err)
	}
	path := filepath.Join(dir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, dir)
	}
	return &DirLock{lock: lock, path: path}, nil
}

// Path returns the lock file location.
func (l *DirLock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Unlock releases the lock and removes the lock file.
func (l *DirLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	_ = os.Remove(l.path)
	return nil
}

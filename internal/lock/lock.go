// Package lock provides advisory file locks that serialise access to shared
// state files between deckhand processes.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrLocked indicates the lock is held by another process.
var ErrLocked = errors.New("lock is held by another process")

// Lock represents a file-based lock.
type Lock struct {
	path string
	file *os.File
}

// New creates a lock backed by the file at path.
func New(path string) *Lock {
	return &Lock{path: path}
}

// For returns the lock guarding the given state file, stored next to it as
// "<file>.lock".
func For(stateFile string) *Lock {
	return New(stateFile + ".lock")
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire blocks until the exclusive lock is held.
func (l *Lock) Acquire() error {
	return l.acquire(unix.LOCK_EX)
}

// TryAcquire takes the lock without waiting.
// It returns ErrLocked if another process holds it.
func (l *Lock) TryAcquire() error {
	return l.acquire(unix.LOCK_EX | unix.LOCK_NB)
}

func (l *Lock) acquire(how int) error {
	if l.file != nil {
		return fmt.Errorf("lock %s already acquired", l.path)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return fmt.Errorf("%s: %w", l.path, ErrLocked)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// PID for debugging
	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Release releases the lock. The lock file is left in place so that
// waiting processes keep locking the same inode.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// WithLock executes fn while holding the lock for stateFile.
func WithLock(stateFile string, fn func() error) error {
	l := For(stateFile)
	if err := l.Acquire(); err != nil {
		return err
	}
	defer l.Release()

	return fn()
}

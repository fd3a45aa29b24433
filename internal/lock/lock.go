// Package lock provides file-based locking so that concurrent renders into
// the same project do not interleave their writes.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrLocked indicates another process holds the lock.
var ErrLocked = errors.New("lock held by another process")

// Dir is the project-relative directory holding lock files.
const Dir = ".chartlib/locks"

// Lock represents a file-based lock.
type Lock struct {
	operation string
	path      string
	file      *os.File
}

// New creates a lock for operation under root.
func New(root, operation string) *Lock {
	return &Lock{
		operation: operation,
		path:      filepath.Join(root, filepath.FromSlash(Dir), operation+".lock"),
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the lock without blocking. It fails with ErrLocked if the
// lock is already held.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	held, err := tryLock(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !held {
		f.Close()
		return fmt.Errorf("%w: another %s operation is already running", ErrLocked, l.operation)
	}

	// PID for debugging stale locks.
	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Release releases the lock and removes the lock file.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	err := unlock(l.file)
	l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}

	os.Remove(l.path)
	return nil
}

// WithLock runs fn while holding the lock for operation under root.
func WithLock(root, operation string, fn func() error) error {
	l := New(root, operation)
	if err := l.Acquire(); err != nil {
		return err
	}
	defer l.Release()

	return fn()
}

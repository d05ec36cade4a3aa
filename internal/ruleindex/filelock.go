package ruleindex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// ErrLockTimeout indicates the index lock could not be acquired in time.
var ErrLockTimeout = errors.New("index lock acquisition timed out")

const (
	minPollInterval = 10 * time.Millisecond
	maxPollInterval = 500 * time.Millisecond
)

// FileLock is an exclusive flock(2) lock on a file. It coordinates index
// rebuilds between processes and is released by the kernel if the holder dies.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates an unlocked lock on path.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// TryLock acquires the lock without blocking. It reports false, with no
// error, when another process holds it.
func (l *FileLock) TryLock() (bool, error) {
	if err := l.open(); err != nil {
		return false, err
	}

	acquired, err := l.flock()
	if err != nil || !acquired {
		l.release()
	}
	return acquired, err
}

// Lock acquires the lock, polling until timeout expires or ctx is canceled.
func (l *FileLock) Lock(ctx context.Context, timeout time.Duration) error {
	if err := l.open(); err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	poll := minPollInterval
	for {
		acquired, err := l.flock()
		if err != nil {
			l.release()
			return err
		}
		if acquired {
			return nil
		}

		if time.Now().After(deadline) {
			l.release()
			return fmt.Errorf("%w after %s: %s", ErrLockTimeout, timeout, l.path)
		}

		select {
		case <-ctx.Done():
			l.release()
			return ctx.Err()
		case <-time.After(poll):
			poll = min(poll*2, maxPollInterval)
		}
	}
}

// Unlock releases the lock. Unlocking an unlocked FileLock is a no-op.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if err != nil {
		return fmt.Errorf("flock unlock failed: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("close failed: %w", closeErr)
	}
	return nil
}

// IsLocked returns true if this instance holds the lock.
func (l *FileLock) IsLocked() bool {
	return l.file != nil
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

func (l *FileLock) flock() (bool, error) {
	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, syscall.EWOULDBLOCK) {
		return false, nil
	}
	return false, fmt.Errorf("flock failed: %w", err)
}

func (l *FileLock) release() {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
}

// open creates the lock file and its parent directories if needed.
func (l *FileLock) open() error {
	if l.file != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	l.file = file
	return nil
}

// Package lock provides an advisory cross-process lock over the data
// directory, so an agent applying a pushed configuration and a CLI
// invocation editing profiles never interleave writes.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sderrors "github.com/sshdeck/sshdeck/internal/errors"
)

// ErrLocked is returned by TryAcquire when the lock is held by another
// process. This is a sentinel error that can be checked with errors.Is().
var ErrLocked = errors.New("lock is held by another process")

const (
	// DefaultTimeout bounds how long Acquire waits for a contended lock.
	DefaultTimeout = 5 * time.Second

	// DefaultStale is the age past which a lock from a dead process is
	// reclaimed. Normal store mutations finish in milliseconds.
	DefaultStale = 30 * time.Second

	retryInterval = 50 * time.Millisecond
)

// Lock represents an acquired lock on a data directory.
type Lock struct {
	Dir  string    // The lock directory path
	Info *LockInfo // Info about the lock holder (us)
}

// Acquire attempts to acquire the lock for dataDir.
// It uses mkdir as an atomic primitive (mkdir fails if the directory exists).
// If the lock is held, it will wait and retry until timeout.
// Stale locks (older than stale) are automatically removed.
func Acquire(dataDir string, timeout, stale time.Duration) (*Lock, error) {
	lockDir := LockDir(dataDir)
	infoFile := filepath.Join(lockDir, "info.json")

	info := NewLockInfo()
	startTime := time.Now()

	for {
		l, err := tryOnce(lockDir, infoFile, info, stale)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, ErrLocked) {
			return nil, err
		}

		if time.Since(startTime) > timeout {
			// Read who holds the lock for a better error message
			holder := readLockHolder(infoFile)
			return nil, sderrors.New(sderrors.ErrStore,
				fmt.Sprintf("Timed out waiting for the data directory lock after %s", timeout),
				fmt.Sprintf("Lock held by: %s. If that process is gone, remove %s.", holder, lockDir))
		}

		time.Sleep(retryInterval)
	}
}

// TryAcquire makes a single attempt at the lock, returning ErrLocked when
// another live process holds it.
func TryAcquire(dataDir string, stale time.Duration) (*Lock, error) {
	lockDir := LockDir(dataDir)
	return tryOnce(lockDir, filepath.Join(lockDir, "info.json"), NewLockInfo(), stale)
}

// Release removes the lock, allowing others to acquire it.
func (l *Lock) Release() error {
	if l == nil {
		return nil // Nothing to release
	}
	return os.RemoveAll(l.Dir)
}

// Holder returns information about who holds the lock (if readable).
func Holder(dataDir string) string {
	return readLockHolder(filepath.Join(LockDir(dataDir), "info.json"))
}

// LockDir returns the lock directory path for a data directory.
func LockDir(dataDir string) string {
	return filepath.Join(dataDir, ".sshdeck.lock")
}

func tryOnce(lockDir, infoFile string, info *LockInfo, stale time.Duration) (*Lock, error) {
	if isLockStale(infoFile, stale) {
		// Reclaim; a failed removal just means we keep waiting
		_ = os.RemoveAll(lockDir)
	}

	if err := os.Mkdir(lockDir, 0o700); err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, sderrors.WrapWithCode(err, sderrors.ErrStore,
			"Could not create lock directory "+lockDir,
			"Check permissions on the data directory.")
	}

	infoJSON, err := info.Marshal()
	if err != nil {
		os.RemoveAll(lockDir)
		return nil, sderrors.WrapWithCode(err, sderrors.ErrStore,
			"Failed to serialize lock info", "")
	}
	if err := os.WriteFile(infoFile, infoJSON, 0o600); err != nil {
		os.RemoveAll(lockDir)
		return nil, sderrors.WrapWithCode(err, sderrors.ErrStore,
			"Failed to write lock info file",
			"Check disk space and permissions.")
	}

	return &Lock{Dir: lockDir, Info: info}, nil
}

// isLockStale checks if the lock's info file is older than the stale threshold.
func isLockStale(infoFile string, staleThreshold time.Duration) bool {
	if staleThreshold <= 0 {
		return false
	}

	data, err := os.ReadFile(infoFile)
	if err != nil {
		return false // Can't read, assume not stale
	}
	info, err := ParseLockInfo(data)
	if err != nil {
		return false
	}
	return info.Age() > staleThreshold
}

// readLockHolder reads the lock info file and returns a description of the holder.
func readLockHolder(infoFile string) string {
	data, err := os.ReadFile(infoFile)
	if err != nil {
		return "unknown"
	}
	info, err := ParseLockInfo(data)
	if err != nil {
		return "unknown"
	}
	return info.String()
}

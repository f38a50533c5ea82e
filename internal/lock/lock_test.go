package lock

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir, DefaultTimeout, DefaultStale)
	require.NoError(t, err)
	require.NotNil(t, l)

	// Lock dir exists with our info
	assert.DirExists(t, LockDir(dir))
	assert.Equal(t, os.Getpid(), l.Info.PID)

	require.NoError(t, l.Release())
	assert.NoDirExists(t, LockDir(dir))
}

func TestTryAcquireContended(t *testing.T) {
	dir := t.TempDir()

	l, err := TryAcquire(dir, DefaultStale)
	require.NoError(t, err)
	defer l.Release()

	_, err = TryAcquire(dir, DefaultStale)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestAcquireTimesOutWithHolder(t *testing.T) {
	dir := t.TempDir()

	l, err := TryAcquire(dir, DefaultStale)
	require.NoError(t, err)
	defer l.Release()

	_, err = Acquire(dir, 100*time.Millisecond, DefaultStale)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Timed out waiting")
	assert.Contains(t, err.Error(), l.Info.String())
}

func TestStaleLockIsReclaimed(t *testing.T) {
	dir := t.TempDir()

	// Simulate a lock left behind by a dead process
	lockDir := LockDir(dir)
	require.NoError(t, os.Mkdir(lockDir, 0o700))
	old := &LockInfo{User: "ghost", Hostname: "gone", Started: time.Now().Add(-time.Hour), PID: 99999}
	data, err := old.Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(lockDir, "info.json"), data, 0o600))

	l, err := TryAcquire(dir, 30*time.Second)
	require.NoError(t, err)
	defer l.Release()
	assert.Equal(t, os.Getpid(), l.Info.PID)
}

func TestFreshLockIsNotReclaimed(t *testing.T) {
	dir := t.TempDir()

	l, err := TryAcquire(dir, time.Hour)
	require.NoError(t, err)
	defer l.Release()

	_, err = TryAcquire(dir, time.Hour)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestHolder(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "unknown", Holder(dir))

	l, err := TryAcquire(dir, DefaultStale)
	require.NoError(t, err)
	defer l.Release()

	assert.Equal(t, l.Info.String(), Holder(dir))
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
}

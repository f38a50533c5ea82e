package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/logger"
	"github.com/sshdeck/sshdeck/internal/store"
)

// fakeCloud counts ticks and optionally serves one staged push.
type fakeCloud struct {
	mu           sync.Mutex
	heartbeats   int
	polls        int
	heartbeatErr error
	pending      *store.Snapshot
}

func (f *fakeCloud) Heartbeat(deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heartbeats++
	return f.heartbeatErr
}

func (f *fakeCloud) CheckAndApplyPendingPush(deviceID string, local store.Store) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.pending == nil {
		return false, nil
	}
	snap := *f.pending
	f.pending = nil
	return true, local.ReplaceAll(snap.Profiles, snap.Commands)
}

func (f *fakeCloud) counts() (heartbeats, polls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.heartbeats, f.polls
}

func TestSessionTicksBothLoops(t *testing.T) {
	cloud := &fakeCloud{}
	s := New(cloud, store.NewMemStore(), "dev-1",
		WithIntervals(5*time.Millisecond, 5*time.Millisecond),
		WithLogger(logger.Noop()))

	s.Start()
	require.Eventually(t, func() bool {
		heartbeats, polls := cloud.counts()
		return heartbeats >= 2 && polls >= 2
	}, time.Second, time.Millisecond)
	s.Stop()

	// No ticks after Stop.
	heartbeats, polls := cloud.counts()
	time.Sleep(30 * time.Millisecond)
	gotHeartbeats, gotPolls := cloud.counts()
	assert.Equal(t, heartbeats, gotHeartbeats)
	assert.Equal(t, polls, gotPolls)
}

func TestSessionAppliesPendingPush(t *testing.T) {
	snap := store.Snapshot{
		Profiles: []store.Profile{{Title: "web", Host: "h", Username: "u", Password: "p", Port: 22}},
	}
	cloud := &fakeCloud{pending: &snap}
	local := store.NewMemStore()

	var applied sync.WaitGroup
	applied.Add(1)
	s := New(cloud, local, "dev-1",
		WithIntervals(time.Minute, 5*time.Millisecond),
		WithLogger(logger.Noop()))
	s.OnPushApplied = func() { applied.Done() }

	s.Start()
	defer s.Stop()

	waitDone(t, &applied, time.Second)

	profiles, err := local.ListProfiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "web", profiles[0].Title)
}

func TestSessionSurvivesFailedTicks(t *testing.T) {
	cloud := &fakeCloud{heartbeatErr: errors.New(errors.ErrSync, "down", "")}
	s := New(cloud, store.NewMemStore(), "dev-1",
		WithIntervals(5*time.Millisecond, time.Minute),
		WithLogger(logger.Noop()))

	s.Start()
	defer s.Stop()

	// Failures are logged and the loop keeps ticking.
	require.Eventually(t, func() bool {
		heartbeats, _ := cloud.counts()
		return heartbeats >= 3
	}, time.Second, time.Millisecond)
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	cloud := &fakeCloud{}
	s := New(cloud, store.NewMemStore(), "dev-1",
		WithIntervals(time.Minute, time.Minute),
		WithLogger(logger.Noop()))

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func waitDone(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("timed out waiting")
	}
}

// Package session owns the background timers that run while a device is
// logged in: the heartbeat sender and the pending-push poller. Both are
// best-effort loops; a failed tick is logged and retried on the next
// interval, never escalated.
package session

import (
	"sync"
	"time"

	"github.com/sshdeck/sshdeck/internal/logger"
	"github.com/sshdeck/sshdeck/internal/store"
)

// Default tick intervals. Staleness up to one interval is an accepted
// tradeoff of the polling design.
const (
	DefaultHeartbeatInterval = 2 * time.Minute
	DefaultPollInterval      = 30 * time.Second
)

// Cloud is the slice of the sync client the session uses.
type Cloud interface {
	Heartbeat(deviceID string) error
	CheckAndApplyPendingPush(deviceID string, local store.Store) (bool, error)
}

// Session runs the per-login timers. Start and Stop bracket the login
// lifetime; timers never outlive an explicit logout.
type Session struct {
	cloud    Cloud
	local    store.Store
	deviceID string
	log      logger.Logger

	heartbeatEvery time.Duration
	pollEvery      time.Duration

	// OnPushApplied, when set, runs after a staged push replaces the local
	// store. The CLI uses it to refresh its display.
	OnPushApplied func()

	mu   sync.Mutex
	stop chan struct{}
	done sync.WaitGroup
}

// Option configures a Session.
type Option func(*Session)

// WithIntervals overrides both tick intervals, for tests.
func WithIntervals(heartbeat, poll time.Duration) Option {
	return func(s *Session) {
		s.heartbeatEvery = heartbeat
		s.pollEvery = poll
	}
}

// WithLogger overrides the session logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Session) { s.log = log }
}

// New creates a stopped session for the given device.
func New(cloud Cloud, local store.Store, deviceID string, opts ...Option) *Session {
	s := &Session{
		cloud:          cloud,
		local:          local,
		deviceID:       deviceID,
		log:            logger.Default(),
		heartbeatEvery: DefaultHeartbeatInterval,
		pollEvery:      DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches both timer loops. Calling Start on a running session is a
// no-op.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	stop := make(chan struct{})
	s.stop = stop

	s.done.Add(2)
	go s.loop(stop, s.heartbeatEvery, s.heartbeatTick)
	go s.loop(stop, s.pollEvery, s.pollTick)
}

// Stop halts both loops and waits for in-flight ticks to finish. Calling
// Stop on a stopped session is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stop == nil {
		s.mu.Unlock()
		return
	}
	close(s.stop)
	s.stop = nil
	s.mu.Unlock()

	s.done.Wait()
}

func (s *Session) loop(stop <-chan struct{}, every time.Duration, tick func()) {
	defer s.done.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tick()
		case <-stop:
			return
		}
	}
}

func (s *Session) heartbeatTick() {
	if err := s.cloud.Heartbeat(s.deviceID); err != nil {
		s.log.Warn("heartbeat failed: %v", err)
	}
}

func (s *Session) pollTick() {
	applied, err := s.cloud.CheckAndApplyPendingPush(s.deviceID, s.local)
	if err != nil {
		s.log.Warn("pending-push poll failed: %v", err)
		return
	}
	if applied {
		s.log.Info("applied configuration pushed from another device")
		if s.OnPushApplied != nil {
			s.OnPushApplied()
		}
	}
}

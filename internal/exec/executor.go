// Package exec runs saved commands against their SSH profiles.
//
// One invocation means one connection and one exec channel. Stdout and
// stderr are merged in arrival order, matching what a user would see in a
// terminal on the remote host. There is no retry: a failed run surfaces its
// error and the user decides.
package exec

import (
	"bytes"
	"time"

	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/logger"
	"github.com/sshdeck/sshdeck/internal/store"
	"github.com/sshdeck/sshdeck/pkg/sshx"
)

// DefaultTimeout bounds command execution when the config doesn't override it.
const DefaultTimeout = 10 * time.Second

// TimedOutOutput replaces all collected output when a run hits the timeout.
// The partial output is discarded, not appended to.
const TimedOutOutput = "Command timed out"

// ProfileResolver is the slice of the store the executor needs.
type ProfileResolver interface {
	GetProfile(title string) (store.Profile, error)
}

// Result is the outcome of one command run. Output is the merged
// stdout+stderr text, or TimedOutOutput when TimedOut is set. The remote
// exit code is intentionally not part of the result: the transport reports
// channel-level failures only, and callers treat any completed run as done.
type Result struct {
	Output   string
	TimedOut bool
	Duration time.Duration
}

// Executor runs one-shot commands over SSH.
type Executor struct {
	resolver ProfileResolver
	dialer   sshx.Dialer
	timeout  time.Duration
	log      logger.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout overrides the execution timeout. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger overrides the executor's logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Executor) {
		e.log = log
	}
}

// New creates an Executor resolving profiles from resolver and connecting
// through dialer.
func New(resolver ProfileResolver, dialer sshx.Dialer, opts ...Option) *Executor {
	e := &Executor{
		resolver: resolver,
		dialer:   dialer,
		timeout:  DefaultTimeout,
		log:      logger.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes commandText against the profile named profileTitle.
//
// The profile is resolved before any network activity, so a dangling
// reference never opens a connection. Connection and channel failures are
// wrapped with suggestions; a timeout is not an error but a Result with
// TimedOut set and the literal timed-out message as output.
func (e *Executor) Run(commandText, profileTitle string) (Result, error) {
	profile, err := e.resolver.GetProfile(profileTitle)
	if err != nil {
		return Result{}, err
	}

	target := sshx.Target{
		Host:     profile.Host,
		Port:     profile.PortOrDefault(),
		User:     profile.Username,
		Password: profile.Password,
	}

	start := time.Now()
	e.log.Debug("dialing %s as %s", target.Addr(), target.User)

	conn, err := e.dialer.Dial(target, e.timeout)
	if err != nil {
		return Result{}, errors.WrapWithCode(err, errors.ErrSSH,
			"Connection error: "+target.Addr(),
			"Check that the host is reachable and the profile's credentials are current.")
	}
	defer conn.Close()

	var out bytes.Buffer
	done, err := conn.Exec(commandText, &out)
	if err != nil {
		return Result{}, errors.WrapWithCode(err, errors.ErrExec,
			"Execution error: could not start command",
			"The connection succeeded but no exec channel could be opened. The remote server may restrict command execution.")
	}

	// The clock starts once the channel is open: dial time doesn't count
	// against the command.
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case execErr := <-done:
		// Non-zero exits arrive here as errors; they are logged but the run
		// still counts as completed with whatever output it produced.
		if execErr != nil {
			e.log.Debug("command finished with error: %v", execErr)
		}
		return Result{Output: out.String(), Duration: time.Since(start)}, nil
	case <-timer.C:
		e.log.Debug("command timed out after %s, tearing down connection", e.timeout)
		conn.Close()
		return Result{
			Output:   TimedOutOutput,
			TimedOut: true,
			Duration: time.Since(start),
		}, nil
	}
}

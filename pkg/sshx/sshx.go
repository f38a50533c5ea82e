// Package sshx provides the SSH transport used by the command executor.
//
// The Dialer/Conn interfaces exist so SSH-dependent code can be tested
// without real connections; sshxtest provides a scriptable mock that
// replays stdout/stderr/close events.
package sshx

import (
	"fmt"
	"io"
	"time"
)

// Target identifies one remote endpoint and its password credentials.
type Target struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Addr returns the host:port string for dialing.
func (t Target) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// Dialer opens SSH connections. The real implementation lives in this
// package; tests use sshxtest.MockDialer.
type Dialer interface {
	// Dial connects and authenticates against the target. Transport and
	// auth failures are returned as-is; the caller wraps them into its own
	// error taxonomy.
	Dial(target Target, timeout time.Duration) (Conn, error)
}

// Conn is one authenticated SSH connection. Exactly one exec channel is
// opened per executor invocation.
type Conn interface {
	// Exec starts cmd on a fresh exec channel, draining both stdout and
	// stderr into out in arrival order. The returned channel receives the
	// remote completion result once the channel closes, then is closed.
	// Command-level failures (non-zero exit) arrive on the channel and are
	// deliberately not distinguished from success by callers.
	Exec(cmd string, out io.Writer) (<-chan error, error)

	// Close tears down the active exec channel (if any) and the underlying
	// connection. Safe to call more than once.
	Close() error
}

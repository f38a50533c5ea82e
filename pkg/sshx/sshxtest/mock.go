// Package sshxtest provides a scriptable mock SSH transport for testing
// the command executor without real connections.
package sshxtest

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sshdeck/sshdeck/pkg/sshx"
)

// Event is one scripted transport event replayed by the mock during Exec.
type Event struct {
	Data   string        // written to the combined output (stdout)
	Stderr string        // written to the combined output (stderr)
	Delay  time.Duration // pause before emitting this event
}

// Script controls how a mock connection behaves for one Exec call.
type Script struct {
	Events []Event

	// NeverClose keeps the exec channel open forever; the executor's
	// timeout has to tear the connection down.
	NeverClose bool

	// ExitErr is delivered on the done channel after all events (simulates
	// a non-zero exit). Nil means clean close.
	ExitErr error

	// ExecErr makes Exec itself fail (the exec channel couldn't be opened).
	ExecErr error
}

// MockDialer implements sshx.Dialer against scripted connections.
type MockDialer struct {
	mu sync.Mutex

	// DialErr makes every Dial fail (simulates transport/auth failure).
	DialErr error

	script Script

	dialCount int
	conns     []*MockConn
}

// NewMockDialer creates a dialer whose connections replay the given script.
func NewMockDialer(script Script) *MockDialer {
	return &MockDialer{script: script}
}

// NewFailingDialer creates a dialer whose Dial always fails with message.
func NewFailingDialer(message string) *MockDialer {
	return &MockDialer{DialErr: errors.New(message)}
}

func (d *MockDialer) Dial(target sshx.Target, timeout time.Duration) (sshx.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dialCount++
	if d.DialErr != nil {
		return nil, d.DialErr
	}

	conn := &MockConn{script: d.script, target: target}
	d.conns = append(d.conns, conn)
	return conn, nil
}

// DialCount returns how many times Dial was called, including failures.
func (d *MockDialer) DialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dialCount
}

// Conns returns the connections handed out so far.
func (d *MockDialer) Conns() []*MockConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*MockConn, len(d.conns))
	copy(out, d.conns)
	return out
}

// MockConn is one scripted connection. It records Exec and Close calls so
// tests can assert resource cleanup.
type MockConn struct {
	mu     sync.Mutex
	script Script
	target sshx.Target

	execCount int
	closed    bool
}

func (c *MockConn) Exec(cmd string, out io.Writer) (<-chan error, error) {
	c.mu.Lock()
	c.execCount++
	script := c.script
	c.mu.Unlock()

	if script.ExecErr != nil {
		return nil, script.ExecErr
	}

	done := make(chan error, 1)
	go func() {
		for _, ev := range script.Events {
			if ev.Delay > 0 {
				time.Sleep(ev.Delay)
			}
			if c.Closed() {
				return
			}
			if ev.Data != "" {
				out.Write([]byte(ev.Data))
			}
			if ev.Stderr != "" {
				out.Write([]byte(ev.Stderr))
			}
		}
		if script.NeverClose {
			return
		}
		done <- script.ExitErr
		close(done)
	}()
	return done, nil
}

func (c *MockConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *MockConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ExecCount returns how many exec channels were opened.
func (c *MockConn) ExecCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execCount
}

// Target returns the target this connection was dialed against.
func (c *MockConn) Target() sshx.Target {
	return c.target
}

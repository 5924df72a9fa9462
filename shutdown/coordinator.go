// Package shutdown coordinates graceful drain of in-flight HTTP requests.
// The coordinator gates request admission and keeps the process alive until
// every admitted request has released its slot.
package shutdown

import (
	"context"
	"sync"

	"github.com/quantalabs/analysis-api/apperrors"
	"github.com/quantalabs/analysis-api/logging"
)

// State is the coordinator lifecycle state.
type State int

const (
	// StateAccepting admits new requests. Initial state.
	StateAccepting State = iota

	// StateDraining rejects new requests while admitted ones finish.
	StateDraining

	// StateStopped is terminal: drained to zero, never reset.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateAccepting:
		return "accepting"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Coordinator tracks the in-flight request count and the accepting flag
// under a single mutex, so an admission can never slip in between the flag
// flip and the drain wait.
type Coordinator struct {
	mu      sync.Mutex
	state   State
	active  int64
	stopped chan struct{} // closed when the last in-flight request drains
}

// NewCoordinator returns a coordinator in the accepting state.
func NewCoordinator() *Coordinator {
	return &Coordinator{stopped: make(chan struct{})}
}

// Admit registers one in-flight request. Once draining has begun it fails
// with an AdmissionRejected error; admission never reopens.
func (c *Coordinator) Admit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAccepting {
		return apperrors.Admission("service is shutting down")
	}
	c.active++
	return nil
}

// Release balances one successful Admit and must run on every exit path of
// the request it was admitted for. The release that brings the count to zero
// while draining completes the drain.
func (c *Coordinator) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == 0 {
		logging.Warn("Release called without a matching Admit")
		return
	}

	c.active--
	if c.state == StateDraining && c.active == 0 {
		c.state = StateStopped
		close(c.stopped)
	}
}

// InitiateShutdown stops admission and blocks until every in-flight request
// has released or ctx expires. It is idempotent: the transition happens
// once, and every caller waits on the same drain signal. ctx carries the
// caller's grace period; the coordinator itself never times out.
func (c *Coordinator) InitiateShutdown(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateAccepting {
		c.state = StateDraining
		logging.Info("Shutdown initiated, draining", "active_requests", c.active)
		if c.active == 0 {
			c.state = StateStopped
			close(c.stopped)
		}
	}
	c.mu.Unlock()

	select {
	case <-c.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Accepting reports whether new requests are admitted.
func (c *Coordinator) Accepting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateAccepting
}

// ActiveRequests returns the current in-flight count.
func (c *Coordinator) ActiveRequests() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// CurrentState returns the lifecycle state.
func (c *Coordinator) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done returns a channel closed once the coordinator reaches the stopped
// state.
func (c *Coordinator) Done() <-chan struct{} {
	return c.stopped
}

package controller

import (
	"errors"
	"fmt"
	"time"

	"semaphore/semos/kernel"
	"semaphore/semos/trafficlight"
)

// Request is an operator command waiting for the control task.
type Request uint8

const (
	RequestNone Request = iota
	RequestEmergencyStop
	RequestRecover
)

func (r Request) String() string {
	switch r {
	case RequestNone:
		return "none"
	case RequestEmergencyStop:
		return "emergency stop"
	case RequestRecover:
		return "recover"
	default:
		return "unknown"
	}
}

// SharedContext is the state the control and monitor tasks share. One
// kernel mutex guards all of it, and the machine along with it: the
// fields are only reachable through the Guard passed to WithLock.
type SharedContext struct {
	mu *kernel.Mutex

	machine     *trafficlight.Machine
	active      bool
	transitions uint32
	request     Request
}

// NewSharedContext allocates the context's mutex from k. The context
// starts active.
func NewSharedContext(k *kernel.Kernel, m *trafficlight.Machine) (*SharedContext, error) {
	if m == nil {
		return nil, errors.New("controller: nil state machine")
	}
	mu, err := k.NewMutex()
	if err != nil {
		return nil, fmt.Errorf("controller: shared context mutex: %w", err)
	}
	return &SharedContext{mu: mu, machine: m, active: true}, nil
}

// TryLock acquires the context lock within timeout (kernel.Forever waits
// indefinitely).
func (c *SharedContext) TryLock(timeout time.Duration) bool { return c.mu.TryLock(timeout) }

func (c *SharedContext) Unlock() { c.mu.Unlock() }

// WithLock runs fn while holding the lock and reports whether the lock
// was acquired. The lock is released however fn exits, panics included.
// The Guard must not be kept after fn returns.
func (c *SharedContext) WithLock(timeout time.Duration, fn func(g *Guard)) bool {
	if !c.mu.TryLock(timeout) {
		return false
	}
	g := &Guard{c: c}
	defer func() {
		g.c = nil
		c.mu.Unlock()
	}()
	fn(g)
	return true
}

// SetActive sets the active flag under the lock.
func (c *SharedContext) SetActive(active bool) {
	c.WithLock(kernel.Forever, func(g *Guard) { g.SetActive(active) })
}

// Active reads the active flag under the lock.
func (c *SharedContext) Active() bool {
	var active bool
	c.WithLock(kernel.Forever, func(g *Guard) { active = g.Active() })
	return active
}

// Post queues r for the control task. A newer request replaces an
// unserved one.
func (c *SharedContext) Post(r Request) {
	c.WithLock(kernel.Forever, func(g *Guard) { g.c.request = r })
}

// Guard is the view of a locked SharedContext.
type Guard struct {
	c *SharedContext
}

func (g *Guard) Machine() *trafficlight.Machine { return g.c.machine }

func (g *Guard) Active() bool { return g.c.active }

func (g *Guard) SetActive(active bool) { g.c.active = active }

func (g *Guard) IncrementTransitions() { g.c.transitions++ }

func (g *Guard) Transitions() uint32 { return g.c.transitions }

// Request returns the pending request without clearing it.
func (g *Guard) Request() Request { return g.c.request }

// TakeRequest returns the pending request and clears it.
func (g *Guard) TakeRequest() Request {
	r := g.c.request
	g.c.request = RequestNone
	return r
}

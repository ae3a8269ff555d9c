package kernel

import (
	"runtime"
	"time"
)

// Context provides task-local access to kernel operations.
//
// The wait calls return false when the task has been deleted or the
// kernel is stopping; the task must return promptly after that.
type Context struct {
	k *Kernel
	t *task
}

// TaskID returns the current task ID.
func (c *Context) TaskID() TaskID { return c.t.id }

// Name returns the name the task was spawned with.
func (c *Context) Name() string { return c.t.name }

func (c *Context) Priority() Priority { return c.t.prio }

// NowTick returns the current tick value.
func (c *Context) NowTick() uint64 { return c.k.Ticks() }

// Uptime returns the kernel uptime.
func (c *Context) Uptime() time.Duration { return c.k.Uptime() }

// Delay blocks for at least d, measured in whole ticks from now.
func (c *Context) Delay(d time.Duration) bool {
	return c.k.waitUntil(c.t, c.k.Ticks()+TicksFor(d))
}

// DelayUntil blocks until *last + period and then stores that deadline
// in *last. Because the deadline is derived from the previous one rather
// than from the wake-up time, a periodic loop does not drift. If the
// deadline has already passed it returns immediately.
func (c *Context) DelayUntil(last *uint64, period time.Duration) bool {
	*last += TicksFor(period)
	return c.k.waitUntil(c.t, *last)
}

// Yield gives other goroutines a chance to run and honours a pending
// suspend or delete.
func (c *Context) Yield() bool {
	runtime.Gosched()
	return c.checkpoint()
}

func (c *Context) checkpoint() bool {
	return c.k.waitUntil(c.t, 0)
}

// TicksFor converts d to ticks, rounding up. Non-positive durations are
// zero ticks.
func TicksFor(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64((d + TickPeriod - 1) / TickPeriod)
}

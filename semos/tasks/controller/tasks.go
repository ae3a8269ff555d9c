package controller

import (
	"strconv"
	"time"

	"semaphore/hal"
	"semaphore/semos/kernel"
	"semaphore/semos/proto"
	"semaphore/semos/trafficlight"
)

// Config holds the task parameters.
type Config struct {
	ControlPeriod   time.Duration
	MonitorPeriod   time.Duration
	ControlPriority kernel.Priority
	MonitorPriority kernel.Priority

	// Recover is the policy applied to a RequestRecover.
	Recover trafficlight.RecoverPolicy
}

func DefaultConfig() Config {
	return Config{
		ControlPeriod:   10 * time.Millisecond,
		MonitorPeriod:   time.Second,
		ControlPriority: 2,
		MonitorPriority: 1,
		Recover:         trafficlight.RecoverResume,
	}
}

// ControlTask returns the task that advances the state machine. Each
// iteration locks the context, serves a pending operator request, calls
// Update and counts the transition, then sleeps for cfg.ControlPeriod.
func ControlTask(shared *SharedContext, cfg Config, log hal.Logger) kernel.TaskFunc {
	return func(ctx *kernel.Context) {
		if shared == nil {
			log.WriteLineString("[ERROR] Semaphore task: null context!")
			return
		}
		log.WriteLineString("[TASK] Semaphore Control Task started")

		for {
			shared.WithLock(kernel.Forever, func(g *Guard) {
				if !g.Active() {
					return
				}
				m := g.Machine()
				serve(m, g.TakeRequest(), cfg.Recover, log)
				if m.Update() {
					g.IncrementTransitions()
				}
			})
			if !ctx.Delay(cfg.ControlPeriod) {
				return
			}
		}
	}
}

func serve(m *trafficlight.Machine, r Request, policy trafficlight.RecoverPolicy, log hal.Logger) {
	switch r {
	case RequestEmergencyStop:
		if !m.Stopped() {
			m.EmergencyStop()
			log.WriteLineString("[EMERGENCY] Operator emergency stop")
		}
	case RequestRecover:
		if m.Recover(policy) {
			log.WriteLineString("[INFO] Operator recovery (" + policy.String() + ")")
		}
	}
}

// MonitorTask returns the task that reports status every cfg.MonitorPeriod.
// Wake-ups are spaced from the previous deadline, not from when the task
// happened to run. If board is non-nil each snapshot is published there.
func MonitorTask(shared *SharedContext, cfg Config, log hal.Logger, board *kernel.SharedBuffer) kernel.TaskFunc {
	return func(ctx *kernel.Context) {
		if shared == nil {
			log.WriteLineString("[ERROR] Monitor task: null context!")
			return
		}
		log.WriteLineString("[TASK] Monitor Task started")

		period := kernel.TicksFor(cfg.MonitorPeriod)
		last := ctx.NowTick()
		for ctx.DelayUntil(&last, cfg.MonitorPeriod) {
			// After a suspension, skip the missed periods but stay on the grid.
			if now := ctx.NowTick(); period > 0 && now-last >= period {
				last = now - (now-last)%period
			}
			shared.WithLock(kernel.Forever, func(g *Guard) {
				if !g.Active() {
					return
				}
				st := Snapshot(g, ctx.Uptime())
				for _, line := range StatusLines(st) {
					log.WriteLineString(line)
				}
				if board != nil {
					board.Write(proto.StatusPayload(st))
				}
			})
		}
	}
}

// Snapshot reads a status record through a held guard.
func Snapshot(g *Guard, uptime time.Duration) proto.Status {
	m := g.Machine()
	return proto.Status{
		State:       uint8(m.CurrentState()),
		Active:      g.Active(),
		Stopped:     m.Stopped(),
		Remaining:   m.TimeRemaining(),
		Cycles:      m.CycleCount(),
		Transitions: g.Transitions(),
		FreeHeap:    proto.SaturateHeap(kernel.FreeHeap()),
		Uptime:      uptime,
	}
}

// StatusLines renders the periodic status report.
func StatusLines(st proto.Status) []string {
	lines := []string{
		"========== SYSTEM STATUS ==========",
		"Current State: " + strconv.Itoa(int(st.State)) + " (" + trafficlight.State(st.State).String() + ")",
		"Time Remaining: " + strconv.FormatInt(int64(st.Remaining/time.Second), 10) + "s",
		"Cycle Count: " + strconv.FormatUint(uint64(st.Cycles), 10),
		"Total Transitions: " + strconv.FormatUint(uint64(st.Transitions), 10),
		"Free Heap: " + strconv.FormatUint(uint64(st.FreeHeap), 10) + " bytes",
	}
	if st.Stopped {
		lines = append(lines, "Emergency Stop: LATCHED")
	}
	return append(lines, "===================================")
}

package trafficlight

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"semaphore/hal"
)

// Clock returns the monotonic uptime.
type Clock func() time.Duration

// RecoverPolicy selects how Recover brings the lights back after an
// emergency stop.
type RecoverPolicy uint8

const (
	// RecoverResume re-applies the interrupted state with a fresh timer.
	RecoverResume RecoverPolicy = iota
	// RecoverRestart starts over at GREEN_CAR, keeping the cycle count.
	RecoverRestart
)

func (p RecoverPolicy) String() string {
	switch p {
	case RecoverResume:
		return "resume"
	case RecoverRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// ParseRecoverPolicy accepts the names returned by String.
func ParseRecoverPolicy(s string) (RecoverPolicy, error) {
	switch s {
	case "resume":
		return RecoverResume, nil
	case "restart":
		return RecoverRestart, nil
	default:
		return 0, fmt.Errorf("trafficlight: unknown recover policy %q", s)
	}
}

var ErrNoClock = errors.New("trafficlight: nil clock")

// Machine advances the light cycle against a clock and drives an
// OutputPort. It is not synchronized: one goroutine calls Update, and
// readers on other goroutines must hold the same lock as that caller.
type Machine struct {
	port  OutputPort
	table Table
	clock Clock
	log   hal.Logger
	debug bool

	state       State
	started     time.Duration
	cycles      uint32
	initialized bool
	stopped     bool
}

// NewMachine returns a machine in GREEN_CAR that has not been initialized.
// log may be nil; transitions are only logged when debug is set.
func NewMachine(port OutputPort, table Table, clock Clock, log hal.Logger, debug bool) (*Machine, error) {
	if port == nil {
		return nil, errors.New("trafficlight: nil output port")
	}
	if clock == nil {
		return nil, ErrNoClock
	}
	return &Machine{
		port:  port,
		table: table,
		clock: clock,
		log:   log,
		debug: debug,
		state: GreenCar,
	}, nil
}

// Initialize puts the port into its OFF baseline. Only the first call
// touches the hardware.
func (m *Machine) Initialize() {
	if m.initialized {
		return
	}
	m.port.Initialize()
	m.initialized = true
}

// Begin starts the cycle at GREEN_CAR with the cycle counter at 1.
func (m *Machine) Begin() {
	m.Initialize()

	m.state = GreenCar
	m.started = m.clock()
	m.cycles = 1
	m.stopped = false

	m.apply()
	m.logState()
}

// Update performs at most one transition and reports whether it did.
// It is a no-op before Initialize and while an emergency stop is latched.
func (m *Machine) Update() bool {
	if !m.initialized || m.stopped {
		return false
	}
	if m.elapsed() < m.table.Duration(m.state) {
		return false
	}

	prev := m.state
	m.state = Next(prev)
	if prev == SafetyGapAfter && m.state == GreenCar {
		m.cycles++
	}
	m.started = m.clock()

	m.apply()
	m.logState()
	return true
}

func (m *Machine) CurrentState() State { return m.state }

func (m *Machine) CycleCount() uint32 { return m.cycles }

// TimeRemaining returns the time left in the current state, never negative.
func (m *Machine) TimeRemaining() time.Duration {
	left := m.table.Duration(m.state) - m.elapsed()
	if left < 0 {
		return 0
	}
	return left
}

// Entry returns the table entry of the current state.
func (m *Machine) Entry() Entry { return m.table.Entry(m.state) }

// Table returns a copy of the machine's state table.
func (m *Machine) Table() Table { return m.table }

// EmergencyStop turns every lamp off and latches the machine. The logical
// state is kept so Recover can pick it up again.
func (m *Machine) EmergencyStop() {
	m.port.AllOff()
	m.stopped = true
	m.logLine("[EMERGENCY] All LEDs turned OFF")
}

// Recover clears an emergency stop. It returns false if none is latched.
func (m *Machine) Recover(policy RecoverPolicy) bool {
	if !m.stopped {
		return false
	}
	m.stopped = false

	if policy == RecoverRestart {
		m.state = GreenCar
	}
	m.started = m.clock()

	m.apply()
	m.logLine("[INFO] Recovered from emergency stop (" + policy.String() + ")")
	m.logState()
	return true
}

// Stopped reports whether an emergency stop is latched.
func (m *Machine) Stopped() bool { return m.stopped }

func (m *Machine) Initialized() bool { return m.initialized }

func (m *Machine) elapsed() time.Duration {
	d := m.clock() - m.started
	if d < 0 {
		return 0
	}
	return d
}

func (m *Machine) apply() {
	m.port.Apply(m.table.Outputs(m.state))
}

func (m *Machine) logState() {
	if !m.debug || m.log == nil {
		return
	}
	m.log.WriteLineString("[STATE] Cycle: " + strconv.FormatUint(uint64(m.cycles), 10) +
		" | State: " + strconv.Itoa(int(m.state)) +
		" | " + m.table.Description(m.state))
}

func (m *Machine) logLine(s string) {
	if !m.debug || m.log == nil {
		return
	}
	m.log.WriteLineString(s)
}

package trafficlight

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"semaphore/hal"
)

type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration      { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now += d }
func (c *fakeClock) Set(d time.Duration)     { c.now = d }
func (c *fakeClock) clock() Clock            { return c.Now }

type lineLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *lineLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *lineLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *lineLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// write is one pin write seen by a recordingGPIO.
type write struct {
	pin   int
	level bool
}

// recordingGPIO is a GPIO bank that logs every write and tracks levels,
// so tests can inspect the exact sequence a port emits.
type recordingGPIO struct {
	mu     sync.Mutex
	pins   []*recordingPin
	writes []write
	// onWrite runs after every write with the levels at that instant.
	onWrite func(levels map[int]bool)
}

func newRecordingGPIO(count int, caps hal.GPIOCaps) *recordingGPIO {
	g := &recordingGPIO{}
	for i := 0; i < count; i++ {
		g.pins = append(g.pins, &recordingPin{bank: g, id: i, caps: caps})
	}
	return g
}

func (g *recordingGPIO) PinCount() int { return len(g.pins) }

func (g *recordingGPIO) Pin(id int) hal.GPIOPin {
	if id < 0 || id >= len(g.pins) {
		return nil
	}
	return g.pins[id]
}

func (g *recordingGPIO) Writes() []write {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]write(nil), g.writes...)
}

func (g *recordingGPIO) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.writes = nil
}

func (g *recordingGPIO) Level(id int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pins[id].level
}

func (g *recordingGPIO) levelsLocked() map[int]bool {
	out := make(map[int]bool, len(g.pins))
	for _, p := range g.pins {
		out[p.id] = p.level
	}
	return out
}

type recordingPin struct {
	bank   *recordingGPIO
	id     int
	caps   hal.GPIOCaps
	output bool
	level  bool
}

func (p *recordingPin) Name() string       { return fmt.Sprintf("P%d", p.id) }
func (p *recordingPin) Caps() hal.GPIOCaps { return p.caps }

func (p *recordingPin) Configure(mode hal.GPIOMode, _ hal.GPIOPull) error {
	p.bank.mu.Lock()
	defer p.bank.mu.Unlock()
	p.output = mode == hal.GPIOModeOutput
	return nil
}

func (p *recordingPin) Read() (bool, error) {
	p.bank.mu.Lock()
	defer p.bank.mu.Unlock()
	return p.level, nil
}

func (p *recordingPin) Write(level bool) error {
	p.bank.mu.Lock()
	if !p.output {
		p.bank.mu.Unlock()
		return errors.New("not an output")
	}
	p.level = level
	p.bank.writes = append(p.bank.writes, write{pin: p.id, level: level})
	hook := p.bank.onWrite
	levels := p.bank.levelsLocked()
	p.bank.mu.Unlock()

	if hook != nil {
		hook(levels)
	}
	return nil
}

// rig is a machine wired to a recording bank with the default pin map.
type rig struct {
	clock *fakeClock
	gpio  *recordingGPIO
	port  *GPIOPort
	log   *lineLogger
	m     *Machine
}

func newRig(debug bool) (*rig, error) {
	r := &rig{
		clock: &fakeClock{},
		gpio:  newRecordingGPIO(14, hal.GPIOCapInput|hal.GPIOCapOutput),
		log:   &lineLogger{},
	}
	port, err := NewGPIOPort(r.gpio, DefaultPinMap())
	if err != nil {
		return nil, err
	}
	r.port = port

	table, err := NewTable(DefaultTiming())
	if err != nil {
		return nil, err
	}
	m, err := NewMachine(port, table, r.clock.clock(), r.log, debug)
	if err != nil {
		return nil, err
	}
	r.m = m
	return r, nil
}

// lit returns the pattern currently on the pins of the default map.
func (r *rig) lit() Outputs {
	pins := DefaultPinMap()
	return Outputs{
		CarRed:          r.gpio.Level(pins.CarRed),
		CarYellow:       r.gpio.Level(pins.CarYellow),
		CarGreen:        r.gpio.Level(pins.CarGreen),
		PedestrianRed:   r.gpio.Level(pins.PedestrianRed),
		PedestrianGreen: r.gpio.Level(pins.PedestrianGreen),
	}
}

// runFor polls Update every step until d has elapsed and returns the
// states entered, in order.
func (r *rig) runFor(d, step time.Duration) []State {
	var seen []State
	end := r.clock.Now() + d
	for r.clock.Now() < end {
		r.clock.Advance(step)
		if r.m.Update() {
			seen = append(seen, r.m.CurrentState())
		}
	}
	return seen
}

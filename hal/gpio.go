package hal

import (
	"errors"
	"fmt"
	"sync"
)

// GPIOMode selects whether a pin is an input or output.
type GPIOMode uint8

const (
	GPIOModeInput GPIOMode = iota
	GPIOModeOutput
)

// GPIOPull selects the pull resistor configuration.
type GPIOPull uint8

const (
	GPIOPullNone GPIOPull = iota
	GPIOPullUp
	GPIOPullDown
)

// GPIOCaps declares what operations a pin supports.
type GPIOCaps uint8

const (
	GPIOCapInput GPIOCaps = 1 << iota
	GPIOCapOutput
	GPIOCapPullUp
	GPIOCapPullDown
)

// ErrPinConfig reports a mode or pull a pin cannot provide.
var ErrPinConfig = errors.New("gpio: unsupported pin configuration")

// GPIO is a bank of digital pins addressed by board number. Pin returns
// nil for numbers the board does not expose.
type GPIO interface {
	PinCount() int
	Pin(id int) GPIOPin
}

// GPIOPin is a single digital IO pin.
type GPIOPin interface {
	Name() string
	Caps() GPIOCaps
	Configure(mode GPIOMode, pull GPIOPull) error
	Read() (level bool, err error)
	Write(level bool) error
}

// PinBank is a GPIO made of a fixed pin slice. Nil entries are numbers the
// board reserves (UART, unused headers).
type PinBank struct {
	pins []GPIOPin
}

// NewPinBank wraps pins; pins[i] is board pin i.
func NewPinBank(pins []GPIOPin) *PinBank {
	return &PinBank{pins: pins}
}

// NewVirtualGPIO returns an in-memory bank with count bidirectional pins
// named D0..D<count-1>, matching the Arduino digital pin numbering. Host
// runs drive the lamps through it and the display reads them back.
func NewVirtualGPIO(count int) *PinBank {
	pins := make([]GPIOPin, 0, count)
	for i := 0; i < count; i++ {
		pins = append(pins, &virtualPin{
			name: fmt.Sprintf("D%d", i),
			caps: GPIOCapInput | GPIOCapOutput | GPIOCapPullUp | GPIOCapPullDown,
		})
	}
	return NewPinBank(pins)
}

func (b *PinBank) PinCount() int {
	if b == nil {
		return 0
	}
	return len(b.pins)
}

func (b *PinBank) Pin(id int) GPIOPin {
	if b == nil || id < 0 || id >= len(b.pins) {
		return nil
	}
	return b.pins[id]
}

// Fail makes every later Write to virtual pin id return err, modelling a
// dead lamp driver. A nil err repairs the pin. It reports false when id is
// not a virtual pin.
func (b *PinBank) Fail(id int, err error) bool {
	p, ok := b.Pin(id).(*virtualPin)
	if !ok {
		return false
	}
	p.mu.Lock()
	p.fault = err
	p.mu.Unlock()
	return true
}

// Writes returns how many successful writes virtual pin id has taken.
func (b *PinBank) Writes(id int) uint32 {
	p, ok := b.Pin(id).(*virtualPin)
	if !ok {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}

// virtualPin starts as an input at low, like a pin after reset.
type virtualPin struct {
	mu     sync.Mutex
	name   string
	caps   GPIOCaps
	mode   GPIOMode
	pull   GPIOPull
	level  bool
	writes uint32
	fault  error
}

func (p *virtualPin) Name() string   { return p.name }
func (p *virtualPin) Caps() GPIOCaps { return p.caps }

func (p *virtualPin) Configure(mode GPIOMode, pull GPIOPull) error {
	var need GPIOCaps
	switch mode {
	case GPIOModeInput:
		need = GPIOCapInput
	case GPIOModeOutput:
		need = GPIOCapOutput
	default:
		return fmt.Errorf("%w: pin %s: mode %d", ErrPinConfig, p.name, mode)
	}
	switch pull {
	case GPIOPullNone:
	case GPIOPullUp:
		need |= GPIOCapPullUp
	case GPIOPullDown:
		need |= GPIOCapPullDown
	default:
		return fmt.Errorf("%w: pin %s: pull %d", ErrPinConfig, p.name, pull)
	}
	if p.caps&need != need {
		return fmt.Errorf("%w: pin %s: mode %d pull %d", ErrPinConfig, p.name, mode, pull)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
	p.pull = pull
	if mode == GPIOModeInput {
		p.level = pull == GPIOPullUp
	}
	return nil
}

func (p *virtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

func (p *virtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fault != nil {
		return fmt.Errorf("gpio: pin %s: %w", p.name, p.fault)
	}
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.level = level
	p.writes++
	return nil
}

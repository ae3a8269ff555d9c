package trafficlight

import (
	"errors"
	"fmt"
	"sync/atomic"

	"semaphore/hal"
)

// Channel is one physical lamp.
type Channel uint8

const (
	ChannelCarRed Channel = iota
	ChannelCarYellow
	ChannelCarGreen
	ChannelPedestrianRed
	ChannelPedestrianGreen

	channelCount
)

// Channels returns every channel in wiring order.
func Channels() []Channel {
	return []Channel{ChannelCarRed, ChannelCarYellow, ChannelCarGreen, ChannelPedestrianRed, ChannelPedestrianGreen}
}

func (c Channel) String() string {
	switch c {
	case ChannelCarRed:
		return "car red"
	case ChannelCarYellow:
		return "car yellow"
	case ChannelCarGreen:
		return "car green"
	case ChannelPedestrianRed:
		return "pedestrian red"
	case ChannelPedestrianGreen:
		return "pedestrian green"
	default:
		return "unknown"
	}
}

// Outputs is the lamp pattern for one state.
type Outputs struct {
	CarRed          bool
	CarYellow       bool
	CarGreen        bool
	PedestrianRed   bool
	PedestrianGreen bool
}

// Level returns the level of ch in o.
func (o Outputs) Level(ch Channel) bool {
	switch ch {
	case ChannelCarRed:
		return o.CarRed
	case ChannelCarYellow:
		return o.CarYellow
	case ChannelCarGreen:
		return o.CarGreen
	case ChannelPedestrianRed:
		return o.PedestrianRed
	case ChannelPedestrianGreen:
		return o.PedestrianGreen
	default:
		return false
	}
}

// Conflicting reports whether pedestrians get green while vehicles may move.
func (o Outputs) Conflicting() bool {
	return o.PedestrianGreen && (o.CarGreen || o.CarYellow)
}

// OutputPort drives the five lamps. Writes are fire-and-forget.
type OutputPort interface {
	// Initialize configures every channel as an output at OFF. Repeating
	// it is harmless.
	Initialize()
	Set(ch Channel, on bool)
	// Apply turns every channel off before writing o, so no two patterns
	// are ever lit at once.
	Apply(o Outputs)
	AllOff()
}

// PinMap assigns a GPIO pin id to each channel.
type PinMap struct {
	CarRed          int
	CarYellow       int
	CarGreen        int
	PedestrianRed   int
	PedestrianGreen int
}

// DefaultPinMap matches the reference wiring on an Arduino-style header.
func DefaultPinMap() PinMap {
	return PinMap{
		CarRed:          13,
		CarYellow:       12,
		CarGreen:        11,
		PedestrianRed:   9,
		PedestrianGreen: 10,
	}
}

// Pin returns the pin id wired to ch, or -1.
func (m PinMap) Pin(ch Channel) int {
	switch ch {
	case ChannelCarRed:
		return m.CarRed
	case ChannelCarYellow:
		return m.CarYellow
	case ChannelCarGreen:
		return m.CarGreen
	case ChannelPedestrianRed:
		return m.PedestrianRed
	case ChannelPedestrianGreen:
		return m.PedestrianGreen
	default:
		return -1
	}
}

var ErrPinMap = errors.New("trafficlight: invalid pin map")

// Validate rejects negative and shared pin ids.
func (m PinMap) Validate() error {
	seen := make(map[int]Channel, channelCount)
	for _, ch := range Channels() {
		id := m.Pin(ch)
		if id < 0 {
			return fmt.Errorf("%w: %s has pin %d", ErrPinMap, ch, id)
		}
		if other, dup := seen[id]; dup {
			return fmt.Errorf("%w: pin %d shared by %s and %s", ErrPinMap, id, other, ch)
		}
		seen[id] = ch
	}
	return nil
}

// GPIOPort is an OutputPort on top of a hal.GPIO bank.
type GPIOPort struct {
	pins   [channelCount]hal.GPIOPin
	faults atomic.Uint32
}

// NewGPIOPort resolves every channel of m to an output-capable pin.
func NewGPIOPort(g hal.GPIO, m PinMap) (*GPIOPort, error) {
	if g == nil {
		return nil, errors.New("trafficlight: no GPIO bank")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	p := &GPIOPort{}
	for _, ch := range Channels() {
		id := m.Pin(ch)
		pin := g.Pin(id)
		if pin == nil {
			return nil, fmt.Errorf("trafficlight: %s: pin %d not present (bank has %d)", ch, id, g.PinCount())
		}
		if pin.Caps()&hal.GPIOCapOutput == 0 {
			return nil, fmt.Errorf("trafficlight: %s: pin %s cannot drive an output", ch, pin.Name())
		}
		p.pins[ch] = pin
	}
	return p, nil
}

func (p *GPIOPort) Initialize() {
	for _, pin := range p.pins {
		if err := pin.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err != nil {
			p.faults.Add(1)
			continue
		}
		p.write(pin, false)
	}
}

func (p *GPIOPort) Set(ch Channel, on bool) {
	if ch >= channelCount {
		return
	}
	p.write(p.pins[ch], on)
}

func (p *GPIOPort) Apply(o Outputs) {
	p.AllOff()
	for _, ch := range Channels() {
		p.Set(ch, o.Level(ch))
	}
}

func (p *GPIOPort) AllOff() {
	for _, pin := range p.pins {
		p.write(pin, false)
	}
}

// Pin returns the GPIO pin behind ch so it can be read back.
func (p *GPIOPort) Pin(ch Channel) hal.GPIOPin {
	if ch >= channelCount {
		return nil
	}
	return p.pins[ch]
}

// Faults returns the number of failed pin operations.
func (p *GPIOPort) Faults() uint32 { return p.faults.Load() }

func (p *GPIOPort) write(pin hal.GPIOPin, level bool) {
	if err := pin.Write(level); err != nil {
		p.faults.Add(1)
	}
}

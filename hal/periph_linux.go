//go:build linux && !tinygo && !disablegpio

// This file provides a GPIO bank on Linux single-board computers using the
// periph.io library. Pins are addressed by their BCM numbers, so pin id 13
// is "GPIO13".

package hal

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// NewPeriphGPIO initialises periph host drivers and returns a bank exposing
// pins GPIO0..GPIO<count-1>. Pins unknown to the host are nil.
func NewPeriphGPIO(count int) (GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	pins := make([]GPIOPin, count)
	found := 0
	for i := 0; i < count; i++ {
		p := gpioreg.ByName(fmt.Sprintf("GPIO%d", i))
		if p == nil {
			continue
		}
		pins[i] = &periphPin{pin: p}
		found++
	}
	if found == 0 {
		return nil, fmt.Errorf("periph: no GPIO pins registered")
	}
	return NewPinBank(pins), nil
}

type periphPin struct {
	mu   sync.Mutex
	pin  gpio.PinIO
	mode GPIOMode
}

func (p *periphPin) Name() string { return p.pin.Name() }

func (p *periphPin) Caps() GPIOCaps {
	return GPIOCapInput | GPIOCapOutput | GPIOCapPullUp | GPIOCapPullDown
}

func (p *periphPin) Configure(mode GPIOMode, pull GPIOPull) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch mode {
	case GPIOModeOutput:
		if err := p.pin.Out(gpio.Low); err != nil {
			return fmt.Errorf("gpio: pin %s: %w", p.pin.Name(), err)
		}
	case GPIOModeInput:
		pp := gpio.Float
		switch pull {
		case GPIOPullUp:
			pp = gpio.PullUp
		case GPIOPullDown:
			pp = gpio.PullDown
		}
		if err := p.pin.In(pp, gpio.NoEdge); err != nil {
			return fmt.Errorf("gpio: pin %s: %w", p.pin.Name(), err)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", p.pin.Name())
	}
	p.mode = mode
	return nil
}

func (p *periphPin) Read() (bool, error) {
	return p.pin.Read() == gpio.High, nil
}

func (p *periphPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.pin.Name())
	}
	l := gpio.Low
	if level {
		l = gpio.High
	}
	return p.pin.Out(l)
}

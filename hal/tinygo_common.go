//go:build tinygo && baremetal

package hal

import (
	"fmt"
	"machine"
	"time"
)

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

type machinePin struct {
	pin  machine.Pin
	name string
	mode GPIOMode
}

func (p *machinePin) Name() string { return p.name }

func (p *machinePin) Caps() GPIOCaps {
	return GPIOCapInput | GPIOCapOutput | GPIOCapPullUp | GPIOCapPullDown
}

func (p *machinePin) Configure(mode GPIOMode, pull GPIOPull) error {
	switch mode {
	case GPIOModeOutput:
		p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.pin.Low()
	case GPIOModeInput:
		m := machine.PinInput
		switch pull {
		case GPIOPullUp:
			m = machine.PinInputPullup
		case GPIOPullDown:
			m = machine.PinInputPulldown
		}
		p.pin.Configure(machine.PinConfig{Mode: m})
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", p.name)
	}
	p.mode = mode
	return nil
}

func (p *machinePin) Read() (bool, error) { return p.pin.Get(), nil }

func (p *machinePin) Write(level bool) error {
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.pin.Set(level)
	return nil
}

// uartKeyboard turns bytes received on the console UART into key presses.
type uartKeyboard struct {
	uart    *machine.UART
	ch      chan KeyEvent
	started bool
}

func (k *uartKeyboard) Events() <-chan KeyEvent {
	if !k.started {
		k.started = true
		go k.pump()
	}
	return k.ch
}

func (k *uartKeyboard) pump() {
	for {
		if k.uart.Buffered() == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		b, err := k.uart.ReadByte()
		if err != nil {
			continue
		}
		ev := KeyEvent{Press: true, Rune: rune(b)}
		if b == '\r' || b == '\n' {
			ev = KeyEvent{Code: KeyEnter, Press: true}
		}
		select {
		case k.ch <- ev:
		default:
		}
	}
}

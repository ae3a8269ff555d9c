//go:build tinygo && baremetal

package hal

import (
	"machine"
	"strconv"
)

// lampPinCount covers GP0..GP15; GP0/GP1 are reserved for the UART.
const lampPinCount = 16

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	gpio   GPIO
	kbd    Keyboard
	t      *tinyGoTime
}

// New returns a Raspberry Pi Pico HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	pins := make([]GPIOPin, lampPinCount)
	for i := 2; i < lampPinCount; i++ {
		pins[i] = &machinePin{pin: machine.Pin(i), name: "GP" + strconv.Itoa(i)}
	}

	return &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		led:    &pinLED{pin: ledPin},
		gpio:   NewPinBank(pins),
		kbd:    &uartKeyboard{uart: uart, ch: make(chan KeyEvent, 16)},
		t:      newTinyGoTime(),
	}
}

func (h *tinyGoHAL) Logger() Logger { return h.logger }
func (h *tinyGoHAL) LED() LED       { return h.led }
func (h *tinyGoHAL) GPIO() GPIO     { return h.gpio }

// Display is nil: the bare Pico has no panel, so the lamps are the only output.
func (h *tinyGoHAL) Display() Display { return nil }

func (h *tinyGoHAL) Input() Input { return tinyGoInput{kbd: h.kbd} }
func (h *tinyGoHAL) Time() Time   { return h.t }

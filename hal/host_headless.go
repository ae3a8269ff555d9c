//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Ticks   uint64

	// Periph drives the lamp pins through periph.io instead of virtual pins.
	Periph bool
	// Keys forwards stdin bytes as key presses.
	Keys bool
}

// RunHeadless runs the controller without opening a window.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 100
	}

	h := newHost(os.Stdout, NewVirtualGPIO(hostPinCount))
	if cfg.Periph {
		gpio, err := NewPeriphGPIO(hostPinCount)
		if err != nil {
			return fmt.Errorf("periph gpio: %w", err)
		}
		h.gpio = gpio
	}
	if cfg.Keys {
		go h.serial.pumpKeys(h.kbd)
	}

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	step := newApp(h)

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.step()
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

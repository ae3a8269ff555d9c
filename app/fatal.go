package app

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"semaphore/semos/gfx"
	"semaphore/semos/kernel"
	"semaphore/semos/trafficlight"
)

// blinkHalfPeriod is the on and the off time of the fatal blink pattern.
const blinkHalfPeriod = 250 * time.Millisecond

var fatalBackground = color.RGBA{R: 0x90, G: 0x00, B: 0x00, A: 0xff}

func (s *System) installPanicHandler() {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		detail := []string{
			fmt.Sprintf("task: %s (%d)", info.Name, info.TaskID),
			fmt.Sprintf("panic: %v", info.Value),
		}
		if len(info.Stack) > 0 {
			detail = append(detail, "stack:")
			for _, line := range strings.Split(string(info.Stack), "\n") {
				if line != "" {
					detail = append(detail, line)
				}
			}
		} else {
			detail = append(detail, "stack: unavailable")
		}
		s.println(fmt.Sprintf("[CRITICAL] Task panic: %s: %v", info.Name, info.Value))

		// The handler runs on the panicking task, which Stop waits for.
		go s.Fatal("task "+info.Name+" panicked", detail)
	})
}

// Fatal stops the controller for good: the kernel is stopped, the lamps
// are forced off, a fatal screen is drawn and every lamp plus the board
// LED blinks until Stop. Only the first call has an effect. It must not be
// called from a task.
func (s *System) Fatal(reason string, detail []string) {
	s.fatalOnce.Do(func() {
		s.println("")
		s.println("[FATAL ERROR] System halted!")
		s.println("[FATAL] " + reason)
		for _, line := range detail {
			s.println("  " + line)
		}
		s.println("[FATAL] Boot ID: " + s.bootID.String())

		if s.k != nil {
			s.k.Stop()
		}
		s.drawFatalScreen(reason, detail)

		if s.port == nil {
			s.println("[FATAL] No lamp port available")
			close(s.halted)
			return
		}
		s.port.AllOff()
		s.println("[FATAL] All LEDs will blink to indicate error state.")

		s.blink.Add(1)
		go s.blinkLoop()
		close(s.halted)
	})
}

func (s *System) blinkLoop() {
	defer s.blink.Done()

	t := time.NewTicker(blinkHalfPeriod)
	defer t.Stop()

	on := false
	for {
		select {
		case <-s.quit:
			return
		case <-t.C:
		}
		on = !on
		s.setAll(on)
	}
}

func (s *System) setAll(on bool) {
	for _, ch := range trafficlight.Channels() {
		s.port.Set(ch, on)
	}
	if led := s.h.LED(); led != nil {
		if on {
			led.High()
		} else {
			led.Low()
		}
	}
}

func (s *System) drawFatalScreen(reason string, detail []string) {
	d := s.h.Display()
	if d == nil {
		return
	}
	c := gfx.NewCanvas(d.Framebuffer())
	if !c.Ok() {
		return
	}

	c.Clear(fatalBackground)
	lines := []string{"FATAL ERROR", "System halted", reason, "boot " + s.bootID.String()}
	lines = append(lines, detail...)

	_, height := c.Size()
	y := int16(2)
	for _, line := range gfx.Wrap(lines, c.Columns()-1) {
		if y+gfx.LineHeight > height {
			break
		}
		c.Text(2, y, line, gfx.White)
		y += gfx.LineHeight
	}
	_ = c.Display()
}

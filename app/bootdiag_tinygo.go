//go:build tinygo && bootdebug

package app

import (
	"machine"
	"sync"
	"time"

	"semaphore/hal"
	"semaphore/semos/gfx"
)

var (
	bootDiagMu   sync.Mutex
	bootDiagStep string
	bootDiagOnce sync.Once
)

// bootDiagStart repeats the current startup step every 250 ms on the
// logger and on USB CDC, so a board that hangs during init still says where.
func bootDiagStart(h hal.HAL) {
	bootDiagOnce.Do(func() {
		l := h.Logger()
		go func() {
			for {
				bootDiagMu.Lock()
				step := bootDiagStep
				bootDiagMu.Unlock()

				if step == "" {
					step = "<empty>"
				}
				line := "bootdiag: " + step
				if l != nil {
					l.WriteLineString(line)
				}
				if usb := machine.USBCDC; usb != nil {
					_, _ = usb.Write([]byte(line + "\r\n"))
				}
				time.Sleep(250 * time.Millisecond)
			}
		}()
	})
}

// bootStep records msg and shows it on the framebuffer.
func bootStep(h hal.HAL, msg string) {
	bootDiagMu.Lock()
	bootDiagStep = msg
	bootDiagMu.Unlock()

	disp := h.Display()
	if disp == nil {
		return
	}
	c := gfx.NewCanvas(disp.Framebuffer())
	if !c.Ok() {
		return
	}
	c.Clear(gfx.Black)
	c.Text(0, 2, "Semaphore boot", gfx.White)
	c.Text(0, 2+gfx.LineHeight, msg, gfx.White)
	_ = c.Display()
}

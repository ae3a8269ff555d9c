//go:build !tinygo && cgo

package hal

import (
	"semaphore/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow starts a desktop window that displays the framebuffer and forwards keyboard input.
// It blocks until the window closes.
func RunWindow(newApp func(HAL) func() error) error {
	h := New().(*hostHAL)
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle("Semaphore (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetTPS(100)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h     *hostHAL
	pix   []byte
	frame *ebiten.Image
	step  func() error
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.h.t.step()
	if g.step == nil {
		return nil
	}
	return g.step()
}

// Draw blits the last presented frame; the controller draws at its own
// pace from the display task.
func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.frame == nil {
		g.frame = ebiten.NewImage(fb.width, fb.height)
		g.pix = make([]byte, fb.width*fb.height*4)
	}
	fb.snapshotRGBA(g.pix)
	g.frame.WritePixels(g.pix)
	screen.DrawImage(g.frame, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}

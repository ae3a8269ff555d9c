//go:build tinygo && !baremetal

package hal

// New returns the HAL for `tinygo run` on a host (linux, wasm): virtual
// lamp pins, an in-memory framebuffer and logging to the runtime console.
// There is no key source, so the operator console stays idle.
func New() HAL {
	return &tinyGoHostHAL{
		gpio: NewVirtualGPIO(14),
		fb:   newHostFramebuffer(240, 320),
		kbd:  idleKeyboard{},
		t:    newTinyGoTime(),
	}
}

type tinyGoHostHAL struct {
	led  consoleLED
	gpio GPIO
	fb   *hostFramebuffer
	kbd  Keyboard
	t    *tinyGoTime
}

func (h *tinyGoHostHAL) Logger() Logger   { return consoleLogger{} }
func (h *tinyGoHostHAL) LED() LED         { return &h.led }
func (h *tinyGoHostHAL) GPIO() GPIO       { return h.gpio }
func (h *tinyGoHostHAL) Display() Display { return tinyGoHostDisplay{fb: h.fb} }
func (h *tinyGoHostHAL) Input() Input     { return tinyGoInput{kbd: h.kbd} }
func (h *tinyGoHostHAL) Time() Time       { return h.t }

type tinyGoHostDisplay struct {
	fb Framebuffer
}

func (d tinyGoHostDisplay) Framebuffer() Framebuffer { return d.fb }

type consoleLogger struct{}

func (consoleLogger) WriteLineString(s string) { println(s) }
func (consoleLogger) WriteLineBytes(b []byte)  { println(string(b)) }

// consoleLED reports board LED changes on the console, the only place a
// TinyGo host run can show them.
type consoleLED struct {
	on bool
}

func (l *consoleLED) High() {
	if !l.on {
		println("[LED] on")
	}
	l.on = true
}

func (l *consoleLED) Low() {
	if l.on {
		println("[LED] off")
	}
	l.on = false
}

type idleKeyboard struct{}

func (idleKeyboard) Events() <-chan KeyEvent { return nil }

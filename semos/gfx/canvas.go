// Package gfx draws onto a hal.Framebuffer through the tinygo drivers
// Displayer interface, so tinyfont can render text into it.
package gfx

import (
	"image/color"
	"strings"
	"unicode/utf8"

	"semaphore/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Font is the UI font.
var Font tinyfont.Fonter = &proggy.TinySZ8pt7b

const (
	// LineHeight is the row pitch for Font.
	LineHeight = 12
	// baseline is the distance from the top of a row to Font's baseline.
	baseline = 10
)

var (
	Black = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	White = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	Dim   = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
)

var _ drivers.Displayer = (*Canvas)(nil)

// Canvas adapts an RGB565 framebuffer. A nil framebuffer is a no-op canvas.
type Canvas struct {
	fb hal.Framebuffer
}

func NewCanvas(fb hal.Framebuffer) *Canvas {
	if fb != nil && fb.Format() != hal.PixelFormatRGB565 {
		fb = nil
	}
	return &Canvas{fb: fb}
}

// Ok reports whether the canvas has a framebuffer behind it.
func (c *Canvas) Ok() bool { return c.fb != nil }

func (c *Canvas) Size() (x, y int16) {
	if c.fb == nil {
		return 0, 0
	}
	return int16(c.fb.Width()), int16(c.fb.Height())
}

func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	if c.fb == nil {
		return
	}
	buf := c.fb.Buffer()
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= c.fb.Width() || iy < 0 || iy >= c.fb.Height() {
		return
	}

	pixel := hal.RGB565(col.R, col.G, col.B)
	off := iy*c.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

// Display presents the frame.
func (c *Canvas) Display() error {
	if c.fb == nil {
		return nil
	}
	return c.fb.Present()
}

func (c *Canvas) Clear(col color.RGBA) {
	if c.fb == nil {
		return
	}
	c.fb.ClearRGB(col.R, col.G, col.B)
}

// FillRect fills the clipped rectangle.
func (c *Canvas) FillRect(x, y, width, height int16, col color.RGBA) {
	if c.fb == nil {
		return
	}
	buf := c.fb.Buffer()
	w, h := c.fb.Width(), c.fb.Height()

	x0 := clampInt(int(x), 0, w)
	y0 := clampInt(int(y), 0, h)
	x1 := clampInt(int(x)+int(width), 0, w)
	y1 := clampInt(int(y)+int(height), 0, h)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	pixel := hal.RGB565(col.R, col.G, col.B)
	lo, hi := byte(pixel), byte(pixel>>8)
	stride := c.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off+1 >= len(buf) {
				continue
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
}

// FillCircle fills a disc of radius r around (cx, cy).
func (c *Canvas) FillCircle(cx, cy, r int16, col color.RGBA) {
	if r <= 0 {
		return
	}
	rr := int(r) * int(r)
	for dy := -int(r); dy <= int(r); dy++ {
		// Widest dx with dx*dx + dy*dy <= r*r.
		dx := 0
		for (dx+1)*(dx+1)+dy*dy <= rr {
			dx++
		}
		c.FillRect(cx-int16(dx), cy+int16(dy), int16(2*dx+1), 1, col)
	}
}

// Text draws s with its row top at y.
func (c *Canvas) Text(x, y int16, s string, col color.RGBA) {
	if c.fb == nil || s == "" {
		return
	}
	tinyfont.WriteLine(c, Font, x, y+baseline, s, col)
}

// CharWidth returns Font's advance for a digit.
func CharWidth() int16 {
	_, outbox := tinyfont.LineWidth(Font, "0")
	if outbox == 0 {
		return 6
	}
	return int16(outbox)
}

// Columns returns how many characters fit across the canvas.
func (c *Canvas) Columns() int16 {
	w, _ := c.Size()
	cols := w / CharWidth()
	if cols <= 0 {
		return 1
	}
	return cols
}

// Wrap splits every line into chunks of at most cols runes, dropping
// empty lines and the spaces at each break.
func Wrap(lines []string, cols int16) []string {
	var out []string
	for _, line := range lines {
		for len(line) > 0 {
			chunk, rest := TakeRunes(line, cols)
			if chunk == "" {
				break
			}
			out = append(out, chunk)
			line = strings.TrimLeft(rest, " ")
		}
	}
	return out
}

// TakeRunes splits s after n runes.
func TakeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

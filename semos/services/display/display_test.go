package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semaphore/hal"
	"semaphore/semos/kernel"
	"semaphore/semos/proto"
	"semaphore/semos/trafficlight"
)

type testFB struct {
	w, h     int
	buf      []byte
	presents int
}

func newTestFB() *testFB { return &testFB{w: 240, h: 320, buf: make([]byte, 240*320*2)} }

func (f *testFB) Width() int              { return f.w }
func (f *testFB) Height() int             { return f.h }
func (f *testFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *testFB) StrideBytes() int        { return f.w * 2 }
func (f *testFB) Buffer() []byte          { return f.buf }

func (f *testFB) Present() error {
	f.presents++
	return nil
}

func (f *testFB) ClearRGB(r, g, b uint8) {
	p := hal.RGB565(r, g, b)
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i] = byte(p)
		f.buf[i+1] = byte(p >> 8)
	}
}

func (f *testFB) at(x, y int16) uint16 {
	off := int(y)*f.w*2 + int(x)*2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}

func newPort(t *testing.T) *trafficlight.GPIOPort {
	t.Helper()
	port, err := trafficlight.NewGPIOPort(hal.NewVirtualGPIO(14), trafficlight.DefaultPinMap())
	require.NoError(t, err)
	port.Initialize()
	return port
}

func TestRenderMirrorsPins(t *testing.T) {
	fb := newTestFB()
	port := newPort(t)
	port.Apply(trafficlight.Outputs{CarGreen: true, PedestrianRed: true})

	s := New(fb, port.Pin, nil, "test")
	require.NoError(t, s.Render(0))
	assert.Equal(t, 1, fb.presents)

	for _, l := range s.lamps {
		lit := fb.at(l.x, l.y) == hal.RGB565(l.on.R, l.on.G, l.on.B)
		want := l.ch == trafficlight.ChannelCarGreen || l.ch == trafficlight.ChannelPedestrianRed
		assert.Equal(t, want, lit, l.ch.String())
	}
}

func TestStatusLines(t *testing.T) {
	board := &kernel.SharedBuffer{}
	s := New(newTestFB(), nil, board, "test")

	assert.Equal(t, []string{"waiting for monitor..."}, s.statusLines(0))

	board.Write(proto.StatusPayload(proto.Status{
		State:     uint8(trafficlight.YellowCar),
		Remaining: 2 * time.Second,
		Cycles:    4,
		Stopped:   true,
	}))
	lines := s.statusLines(100)
	assert.Contains(t, lines, "state: YELLOW_CAR")
	assert.Contains(t, lines, "remaining: 2s")
	assert.Contains(t, lines, "EMERGENCY STOP - press r")
	assert.NotContains(t, lines, "(status stale)")

	lines = s.statusLines(100 + kernel.TicksFor(staleAfter))
	assert.Contains(t, lines, "(status stale)")
}

func TestRunDrawsFrames(t *testing.T) {
	k := kernel.New()
	s := New(newTestFB(), newPort(t).Pin, nil, "test")
	_, err := k.Spawn("display", 0, s.Run)
	require.NoError(t, err)
	require.NoError(t, k.Start())

	for i := uint64(1); i <= 50; i++ {
		k.TickTo(i * 100)
		time.Sleep(time.Millisecond)
	}
	k.Stop()
	assert.Greater(t, s.Frames(), uint32(1))
}

package display

import (
	"image/color"
	"strconv"
	"time"

	"semaphore/hal"
	"semaphore/semos/gfx"
	"semaphore/semos/kernel"
	"semaphore/semos/proto"
	"semaphore/semos/trafficlight"
)

// DefaultPeriod is the redraw interval.
const DefaultPeriod = 100 * time.Millisecond

// staleAfter is how long the status board may go unchanged before the
// screen flags it.
const staleAfter = 2500 * time.Millisecond

const lampRadius = 22

type lamp struct {
	ch   trafficlight.Channel
	pin  hal.GPIOPin
	on   color.RGBA
	x, y int16
}

// Service mirrors the lamps and the status board on the framebuffer. It
// only reads the lamp pins; the control task stays their sole writer.
type Service struct {
	canvas *gfx.Canvas
	board  *kernel.SharedBuffer
	title  string
	period time.Duration
	lamps  []lamp

	buf      [kernel.MaxMessageBytes]byte
	seq      uint32
	seqTick  uint64
	frames   uint32
	readErrs uint32
}

// New returns a display service. pin resolves a channel to the GPIO pin
// to read back; channels it returns nil for are drawn dark.
func New(fb hal.Framebuffer, pin func(trafficlight.Channel) hal.GPIOPin, board *kernel.SharedBuffer, title string) *Service {
	s := &Service{
		canvas: gfx.NewCanvas(fb),
		board:  board,
		title:  title,
		period: DefaultPeriod,
	}

	place := []struct {
		ch   trafficlight.Channel
		on   color.RGBA
		x, y int16
	}{
		{trafficlight.ChannelCarRed, color.RGBA{R: 0xff, G: 0x20, B: 0x20, A: 0xff}, 64, 72},
		{trafficlight.ChannelCarYellow, color.RGBA{R: 0xff, G: 0xc0, B: 0x00, A: 0xff}, 64, 124},
		{trafficlight.ChannelCarGreen, color.RGBA{R: 0x20, G: 0xe0, B: 0x40, A: 0xff}, 64, 176},
		{trafficlight.ChannelPedestrianRed, color.RGBA{R: 0xff, G: 0x20, B: 0x20, A: 0xff}, 176, 98},
		{trafficlight.ChannelPedestrianGreen, color.RGBA{R: 0x20, G: 0xe0, B: 0x40, A: 0xff}, 176, 150},
	}
	for _, p := range place {
		var gp hal.GPIOPin
		if pin != nil {
			gp = pin(p.ch)
		}
		s.lamps = append(s.lamps, lamp{ch: p.ch, pin: gp, on: p.on, x: p.x, y: p.y})
	}
	return s
}

// Run is the task entry point.
func (s *Service) Run(ctx *kernel.Context) {
	if !s.canvas.Ok() {
		return
	}
	for {
		_ = s.Render(ctx.NowTick())
		if !ctx.Delay(s.period) {
			return
		}
	}
}

// Render draws one frame as of tick now and presents it.
func (s *Service) Render(now uint64) error {
	c := s.canvas
	if !c.Ok() {
		return nil
	}
	c.Clear(gfx.Black)
	c.Text(4, 2, s.title, gfx.White)
	c.Text(40, 30, "VEHICLE", gfx.White)
	c.Text(144, 56, "PEDESTRIAN", gfx.White)

	for _, l := range s.lamps {
		col := gfx.Dim
		if s.level(l.pin) {
			col = l.on
		}
		c.FillCircle(l.x, l.y, lampRadius, col)
	}

	y := int16(212)
	for _, line := range s.statusLines(now) {
		c.Text(4, y, line, gfx.White)
		y += gfx.LineHeight
	}

	s.frames++
	return c.Display()
}

// Frames returns the number of frames drawn.
func (s *Service) Frames() uint32 { return s.frames }

func (s *Service) level(pin hal.GPIOPin) bool {
	if pin == nil {
		return false
	}
	on, err := pin.Read()
	if err != nil {
		s.readErrs++
		return false
	}
	return on
}

func (s *Service) statusLines(now uint64) []string {
	if s.board == nil {
		return nil
	}
	seq, n := s.board.Read(s.buf[:])
	if seq == 0 {
		return []string{"waiting for monitor..."}
	}
	if seq != s.seq {
		s.seq = seq
		s.seqTick = now
	}
	st, ok := proto.DecodeStatus(s.buf[:n])
	if !ok {
		return []string{"status: bad payload"}
	}

	lines := []string{
		"state: " + trafficlight.State(st.State).String(),
		"remaining: " + strconv.FormatInt(int64(st.Remaining/time.Second), 10) + "s",
		"cycle: " + strconv.FormatUint(uint64(st.Cycles), 10) +
			"  transitions: " + strconv.FormatUint(uint64(st.Transitions), 10),
		"uptime: " + (st.Uptime / time.Second * time.Second).String(),
	}
	if st.Stopped {
		lines = append(lines, "EMERGENCY STOP - press r")
	}
	if now-s.seqTick >= kernel.TicksFor(staleAfter) {
		lines = append(lines, "(status stale)")
	}
	return gfx.Wrap(lines, s.canvas.Columns())
}

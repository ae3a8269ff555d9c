package logger

import (
	"strconv"
	"time"

	"semaphore/hal"
	"semaphore/semos/kernel"
	"semaphore/semos/proto"
)

// DefaultPeriod is how often the service drains its mailbox.
const DefaultPeriod = 20 * time.Millisecond

// Queue is a hal.Logger for tasks: lines go to the logger service's
// mailbox and never block the caller. Lines that do not fit are dropped.
type Queue struct {
	mb *kernel.Mailbox
}

func NewQueue(mb *kernel.Mailbox) *Queue {
	return &Queue{mb: mb}
}

func (q *Queue) WriteLineString(s string) {
	q.mb.TrySend(kernel.NewMessage(uint16(proto.MsgLogLine), proto.LogLinePayload(s)))
}

func (q *Queue) WriteLineBytes(b []byte) {
	q.WriteLineString(string(b))
}

// Dropped returns the number of lines lost to a full mailbox.
func (q *Queue) Dropped() uint32 { return q.mb.Dropped() }

// Service copies queued lines to the platform logger.
type Service struct {
	out    hal.Logger
	mb     *kernel.Mailbox
	period time.Duration

	reported uint32
}

func New(out hal.Logger, mb *kernel.Mailbox) *Service {
	return &Service{out: out, mb: mb, period: DefaultPeriod}
}

// Run is the task entry point. It drains once more on the way out so
// shutdown messages are not lost.
func (s *Service) Run(ctx *kernel.Context) {
	for {
		s.Drain()
		if !ctx.Delay(s.period) {
			s.Drain()
			return
		}
	}
}

// Drain writes every queued line and returns how many it wrote.
func (s *Service) Drain() int {
	n := 0
	for {
		msg, ok := s.mb.TryRecv()
		if !ok {
			break
		}
		if s.out == nil || msg.Kind != uint16(proto.MsgLogLine) {
			continue
		}
		s.out.WriteLineBytes(msg.Payload())
		n++
	}

	if dropped := s.mb.Dropped(); dropped != s.reported && s.out != nil {
		s.out.WriteLineString("[WARN] logger: " + strconv.FormatUint(uint64(dropped-s.reported), 10) + " lines dropped")
		s.reported = dropped
	}
	return n
}

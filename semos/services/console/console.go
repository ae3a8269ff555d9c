package console

import (
	"time"
	"unicode"

	"semaphore/hal"
	"semaphore/semos/kernel"
)

// DefaultPeriod is the keyboard poll interval.
const DefaultPeriod = 20 * time.Millisecond

// Operator carries out console commands.
type Operator interface {
	EmergencyStop()
	Recover()
	Pause()
	Resume()
}

// Command is a console action.
type Command uint8

const (
	CmdNone Command = iota
	CmdEmergencyStop
	CmdRecover
	CmdPause
	CmdResume
)

func (c Command) String() string {
	switch c {
	case CmdEmergencyStop:
		return "emergency stop"
	case CmdRecover:
		return "recover"
	case CmdPause:
		return "pause"
	case CmdResume:
		return "resume"
	default:
		return "none"
	}
}

// Decode maps a key press to a command. Releases map to CmdNone.
func Decode(ev hal.KeyEvent) Command {
	if !ev.Press {
		return CmdNone
	}
	if ev.Code == hal.KeyEscape {
		return CmdEmergencyStop
	}
	switch unicode.ToLower(ev.Rune) {
	case 'e':
		return CmdEmergencyStop
	case 'r':
		return CmdRecover
	case 'p':
		return CmdPause
	case 'c':
		return CmdResume
	default:
		return CmdNone
	}
}

// Service polls a keyboard and forwards commands to an Operator.
type Service struct {
	kbd    hal.Keyboard
	op     Operator
	log    hal.Logger
	period time.Duration
}

func New(kbd hal.Keyboard, op Operator, log hal.Logger) *Service {
	return &Service{kbd: kbd, op: op, log: log, period: DefaultPeriod}
}

// Help lists the key bindings.
func Help() []string {
	return []string{
		"Keys: e/Esc emergency stop, r recover, p pause, c continue",
	}
}

// Run is the task entry point.
func (s *Service) Run(ctx *kernel.Context) {
	if s.kbd == nil || s.op == nil {
		return
	}
	for {
		s.Poll()
		if !ctx.Delay(s.period) {
			return
		}
	}
}

// Poll handles every pending key event and returns how many commands ran.
func (s *Service) Poll() int {
	events := s.kbd.Events()
	n := 0
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return n
			}
			if s.dispatch(Decode(ev)) {
				n++
			}
		default:
			return n
		}
	}
}

func (s *Service) dispatch(cmd Command) bool {
	switch cmd {
	case CmdEmergencyStop:
		s.op.EmergencyStop()
	case CmdRecover:
		s.op.Recover()
	case CmdPause:
		s.op.Pause()
	case CmdResume:
		s.op.Resume()
	default:
		return false
	}
	if s.log != nil {
		s.log.WriteLineString("[INFO] console: " + cmd.String())
	}
	return true
}

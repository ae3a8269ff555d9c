package app

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"semaphore/hal"
	"semaphore/internal/buildinfo"
	"semaphore/semos/kernel"
	"semaphore/semos/services/console"
	"semaphore/semos/services/display"
	"semaphore/semos/services/logger"
	"semaphore/semos/tasks/controller"
	"semaphore/semos/trafficlight"

	"github.com/google/uuid"
)

const (
	loggerTaskName  = "Logger"
	displayTaskName = "Display"
	consoleTaskName = "Console"

	consolePriority kernel.Priority = 3
	loggerPriority  kernel.Priority = 1
	displayPriority kernel.Priority = 0
)

// ErrConfig reports an inconsistent configuration.
var ErrConfig = errors.New("app: invalid config")

// Config gathers the build-time constants of the controller.
type Config struct {
	Timing trafficlight.Timing
	Pins   trafficlight.PinMap
	Tasks  controller.Config
	Kernel kernel.Config

	// Debug enables the [STATE] transition log.
	Debug bool

	Display bool
	Console bool
}

func DefaultConfig() Config {
	return Config{
		Timing:  trafficlight.DefaultTiming(),
		Pins:    trafficlight.DefaultPinMap(),
		Tasks:   controller.DefaultConfig(),
		Kernel:  kernel.Config{},
		Debug:   true,
		Display: true,
		Console: true,
	}
}

// Validate checks the configuration. The control period must be at most a
// tenth of the shortest state so a transition is never late by more than
// that fraction.
func (c Config) Validate() error {
	if err := c.Timing.Validate(); err != nil {
		return err
	}
	if err := c.Pins.Validate(); err != nil {
		return err
	}
	if c.Tasks.ControlPeriod <= 0 || c.Tasks.MonitorPeriod <= 0 {
		return fmt.Errorf("%w: task periods must be positive", ErrConfig)
	}
	if limit := c.Timing.Shortest() / 10; c.Tasks.ControlPeriod > limit {
		return fmt.Errorf("%w: control period %v exceeds %v", ErrConfig, c.Tasks.ControlPeriod, limit)
	}
	if c.Tasks.ControlPriority <= c.Tasks.MonitorPriority {
		return fmt.Errorf("%w: control priority must be above monitor priority", ErrConfig)
	}
	return nil
}

// System owns every subsystem of a running controller.
type System struct {
	h      hal.HAL
	cfg    Config
	out    hal.Logger
	bootID uuid.UUID

	k       *kernel.Kernel
	mailbox *kernel.Mailbox
	log     *logger.Queue
	board   *kernel.SharedBuffer
	port    *trafficlight.GPIOPort
	machine *trafficlight.Machine
	shared  *controller.SharedContext
	tasks   *controller.Manager

	started bool
	quit    chan struct{}
	stop    sync.Once

	fatalOnce sync.Once
	halted    chan struct{}
	blink     sync.WaitGroup
}

var _ console.Operator = (*System)(nil)

// New builds the controller: banner, hardware port, state machine, shared
// context and tasks, in that order. The scheduler is not started; call
// Start.
func New(h hal.HAL, cfg Config) (*System, error) {
	s, err := build(h, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// build returns the partially constructed system even on failure so the
// fatal path can still reach whatever hardware was set up.
func build(h hal.HAL, cfg Config) (*System, error) {
	s := &System{
		h:      h,
		cfg:    cfg,
		out:    h.Logger(),
		bootID: bootID(),
		quit:   make(chan struct{}),
		halted: make(chan struct{}),
	}
	if s.out == nil {
		s.out = discard{}
	}

	bootDiagStart(h)
	if err := cfg.Validate(); err != nil {
		return s, fmt.Errorf("config: %w", err)
	}
	s.banner()

	s.println("========== INITIALIZATION SEQUENCE ==========")

	s.initStep("[INIT] Initializing hardware...")
	port, err := trafficlight.NewGPIOPort(h.GPIO(), cfg.Pins)
	if err != nil {
		s.println("[ERROR] Hardware initialization failed!")
		return s, fmt.Errorf("hardware: %w", err)
	}
	port.Initialize()
	s.port = port
	s.println("[OK] Hardware initialized successfully")

	s.k = kernel.NewWithConfig(cfg.Kernel)
	s.mailbox = kernel.NewMailbox(kernel.DefaultMailboxSlots)
	s.log = logger.NewQueue(s.mailbox)
	s.board = &kernel.SharedBuffer{}

	s.initStep("[INIT] Initializing state machine...")
	table, err := trafficlight.NewTable(cfg.Timing)
	if err != nil {
		return s, fmt.Errorf("state table: %w", err)
	}
	m, err := trafficlight.NewMachine(port, table, s.k.Uptime, s.log, cfg.Debug)
	if err != nil {
		return s, fmt.Errorf("state machine: %w", err)
	}
	m.Initialize()
	m.Begin()
	s.machine = m
	s.println("[OK] State machine initialized")

	s.initStep("[INIT] Creating shared context...")
	shared, err := controller.NewSharedContext(s.k, m)
	if err != nil {
		s.println("[ERROR] Failed to create mutex!")
		return s, fmt.Errorf("shared context: %w", err)
	}
	s.shared = shared
	s.println("[OK] Shared context created")

	s.initStep("[INIT] Creating tasks...")
	if err := s.spawnServices(); err != nil {
		return s, fmt.Errorf("services: %w", err)
	}
	s.tasks = controller.NewManager(s.k, shared, cfg.Tasks, s.log, s.board)
	if err := s.tasks.CreateTasks(); err != nil {
		return s, fmt.Errorf("tasks: %w", err)
	}
	s.println("[OK] Tasks created")

	s.println("========== INITIALIZATION COMPLETE ==========")
	return s, nil
}

func (s *System) spawnServices() error {
	logSvc := logger.New(s.out, s.mailbox)
	if _, err := s.k.Spawn(loggerTaskName, loggerPriority, logSvc.Run); err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	if s.cfg.Display {
		if d := s.h.Display(); d != nil {
			if fb := d.Framebuffer(); fb != nil {
				svc := display.New(fb, s.port.Pin, s.board, "SEMAPHORE "+buildinfo.Short())
				if _, err := s.k.Spawn(displayTaskName, displayPriority, svc.Run); err != nil {
					return fmt.Errorf("display: %w", err)
				}
			}
		}
	}

	if s.cfg.Console {
		if in := s.h.Input(); in != nil {
			if kbd := in.Keyboard(); kbd != nil {
				svc := console.New(kbd, s, s.log)
				if _, err := s.k.Spawn(consoleTaskName, consolePriority, svc.Run); err != nil {
					return fmt.Errorf("console: %w", err)
				}
				for _, line := range console.Help() {
					s.println(line)
				}
			}
		}
	}
	return nil
}

// Start installs the fatal handler, starts the scheduler and feeds it the
// platform ticks.
func (s *System) Start() error {
	if s.started {
		return kernel.ErrAlreadyStarted
	}
	s.installPanicHandler()

	s.println("[INFO] Starting scheduler...")
	if err := s.k.Start(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	s.started = true

	if ht := s.h.Time(); ht != nil {
		if ch := ht.Ticks(); ch != nil {
			go s.pumpTicks(ch)
		}
	}
	s.println("[INFO] System is now running!")
	return nil
}

func (s *System) pumpTicks(ch <-chan uint64) {
	for {
		select {
		case seq, ok := <-ch:
			if !ok {
				return
			}
			s.k.TickTo(seq)
		case <-s.quit:
			return
		}
	}
}

// Stop halts every task and the fatal blinker and turns all lamps off.
// It must not be called from a task.
func (s *System) Stop() {
	s.stop.Do(func() {
		close(s.quit)
		if s.k != nil {
			s.k.Stop()
		}
		s.blink.Wait()
		if s.port != nil {
			s.port.AllOff()
		}
		s.println("[INFO] System stopped")
	})
}

// BootID identifies this boot in logs and on the fatal screen.
func (s *System) BootID() uuid.UUID { return s.bootID }

// Halted is closed once the fatal path has taken over.
func (s *System) Halted() <-chan struct{} { return s.halted }

// EmergencyStop asks the control task to latch the emergency stop.
func (s *System) EmergencyStop() { s.shared.Post(controller.RequestEmergencyStop) }

// Recover asks the control task to clear the emergency latch.
func (s *System) Recover() { s.shared.Post(controller.RequestRecover) }

func (s *System) Pause() { s.tasks.SuspendAll() }

func (s *System) Resume() { s.tasks.ResumeAll() }

func (s *System) banner() {
	t := s.cfg.Timing
	s.println("")
	s.println("+---------------------------------------+")
	s.println("|    TRAFFIC LIGHT CONTROL SYSTEM       |")
	s.println("|    " + padRight(buildinfo.Short(), 35) + "|")
	s.println("+---------------------------------------+")
	s.println("")
	s.println("System Configuration:")
	s.println("  - Green Car Duration: " + seconds(t.CarGreen))
	s.println("  - Yellow Car Duration: " + seconds(t.CarYellow))
	s.println("  - Safety Gap Duration: " + seconds(t.SafetyGap))
	s.println("  - Green Pedestrian Duration: " + seconds(t.PedestrianGreen))
	if table, err := trafficlight.NewTable(t); err == nil {
		s.println("  - Total Cycle Time: " + seconds(table.CycleDuration()))
	}
	s.println("  - Boot ID: " + s.bootID.String())
	s.println("")
	s.println("Pin Configuration:")
	s.println("  Cars:")
	s.printPin("Red", trafficlight.ChannelCarRed)
	s.printPin("Yellow", trafficlight.ChannelCarYellow)
	s.printPin("Green", trafficlight.ChannelCarGreen)
	s.println("  Pedestrians:")
	s.printPin("Red", trafficlight.ChannelPedestrianRed)
	s.printPin("Green", trafficlight.ChannelPedestrianGreen)
	s.println("")
}

func (s *System) printPin(label string, ch trafficlight.Channel) {
	id := s.cfg.Pins.Pin(ch)
	line := "    - " + label + ": Pin " + strconv.Itoa(id)
	if g := s.h.GPIO(); g != nil && id < g.PinCount() {
		if p := g.Pin(id); p != nil {
			line += " (" + p.Name() + ")"
		}
	}
	s.println(line)
}

func (s *System) println(line string) { s.out.WriteLineString(line) }

func (s *System) initStep(line string) {
	s.println(line)
	bootStep(s.h, line)
}

func bootID() uuid.UUID {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil
	}
	return id
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}

func padRight(s string, n int) string {
	for len(s) < n {
		s += " "
	}
	return s
}

type discard struct{}

func (discard) WriteLineString(string) {}
func (discard) WriteLineBytes([]byte)  {}

// NewWithConfig builds and starts the controller for the host runners. A
// startup failure enters the fatal path instead of returning an error.
func NewWithConfig(h hal.HAL, cfg Config) func() error {
	s, err := build(h, cfg)
	if err == nil {
		err = s.Start()
	}
	if err != nil {
		s.Fatal("startup: "+err.Error(), nil)
	}
	return func() error { return nil }
}

// Run starts the controller with the default config and blocks forever
// (TinyGo/native entrypoint).
func Run(h hal.HAL) {
	RunWithConfig(h, DefaultConfig())
}

func RunWithConfig(h hal.HAL, cfg Config) {
	_ = NewWithConfig(h, cfg)
	select {}
}

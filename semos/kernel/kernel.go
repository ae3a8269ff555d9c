package kernel

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// TickPeriod is the duration of one kernel tick.
const TickPeriod = time.Millisecond

const (
	defaultMaxTasks   = 8
	defaultMaxMutexes = 8

	// TaskID is a uint8, so the table can never grow past this.
	taskTableLimit = 256
)

var (
	ErrNilTask        = errors.New("kernel: nil task function")
	ErrTooManyTasks   = errors.New("kernel: task limit reached")
	ErrTooManyMutexes = errors.New("kernel: mutex limit reached")
	ErrNoTask         = errors.New("kernel: no such task")
	ErrAlreadyStarted = errors.New("kernel: already started")
	ErrStopped        = errors.New("kernel: stopped")
)

type TaskID uint8

// Priority orders tasks; higher values run first.
type Priority uint8

// TaskState is the scheduling state of a task.
type TaskState uint8

const (
	TaskReady TaskState = iota
	TaskSuspended
	TaskDeleted
)

func (s TaskState) String() string {
	switch s {
	case TaskReady:
		return "ready"
	case TaskSuspended:
		return "suspended"
	case TaskDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// TaskFunc is a task entry point. It should loop until one of the
// Context wait calls returns false, then return.
type TaskFunc func(ctx *Context)

// TaskInfo is a read-only view of a task table entry.
type TaskInfo struct {
	ID       TaskID
	Name     string
	Priority Priority
	State    TaskState
}

// Config bounds the resources a kernel hands out.
type Config struct {
	MaxTasks   int
	MaxMutexes int
}

type task struct {
	id    TaskID
	name  string
	prio  Priority
	fn    TaskFunc
	state TaskState

	wake     chan struct{}
	waiting  bool
	deadline uint64
	launched bool
}

// Kernel schedules goroutine-backed tasks against a millisecond tick.
//
// Tasks only give up control at Context wait points (Delay, DelayUntil,
// Yield). Suspend and Delete take effect at the next such point.
type Kernel struct {
	cfg Config

	mu      sync.Mutex
	tasks   []*task
	live    int
	mutexes int
	tick    uint64
	running bool
	stopped bool

	wg sync.WaitGroup
}

// New creates a kernel with the default resource limits.
func New() *Kernel {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a kernel. Zero limits fall back to the defaults.
func NewWithConfig(cfg Config) *Kernel {
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = defaultMaxTasks
	}
	if cfg.MaxTasks > taskTableLimit {
		cfg.MaxTasks = taskTableLimit
	}
	if cfg.MaxMutexes <= 0 {
		cfg.MaxMutexes = defaultMaxMutexes
	}
	return &Kernel{cfg: cfg}
}

// Spawn registers a task. Tasks spawned after Start begin immediately.
func (k *Kernel) Spawn(name string, prio Priority, fn TaskFunc) (TaskID, error) {
	if fn == nil {
		return 0, ErrNilTask
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.stopped {
		return 0, ErrStopped
	}
	if k.live >= k.cfg.MaxTasks || len(k.tasks) >= taskTableLimit {
		return 0, fmt.Errorf("%w: %q", ErrTooManyTasks, name)
	}

	t := &task{
		id:   TaskID(len(k.tasks)),
		name: name,
		prio: prio,
		fn:   fn,
		wake: make(chan struct{}, 1),
	}
	k.tasks = append(k.tasks, t)
	k.live++
	if k.running {
		k.launch(t)
	}
	return t.id, nil
}

// Start launches every registered task, highest priority first.
func (k *Kernel) Start() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.stopped {
		return ErrStopped
	}
	if k.running {
		return ErrAlreadyStarted
	}
	k.running = true

	for _, t := range k.byPriority(k.tasks) {
		if t.state != TaskDeleted {
			k.launch(t)
		}
	}
	return nil
}

// Stop makes every wait point return false and waits for the tasks to
// return. It must not be called from a task.
func (k *Kernel) Stop() {
	k.mu.Lock()
	if !k.stopped {
		k.stopped = true
		for _, t := range k.tasks {
			signal(t)
		}
	}
	k.mu.Unlock()
	k.wg.Wait()
}

// Running reports whether Start succeeded and Stop has not been called.
func (k *Kernel) Running() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.running && !k.stopped
}

func (k *Kernel) Suspend(id TaskID) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	t, err := k.lookup(id)
	if err != nil {
		return err
	}
	if t.state == TaskReady {
		t.state = TaskSuspended
	}
	return nil
}

func (k *Kernel) Resume(id TaskID) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	t, err := k.lookup(id)
	if err != nil {
		return err
	}
	if t.state == TaskSuspended {
		t.state = TaskReady
		signal(t)
	}
	return nil
}

// Delete removes a task. Deleting an already deleted task is a no-op.
func (k *Kernel) Delete(id TaskID) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if int(id) >= len(k.tasks) {
		return ErrNoTask
	}
	t := k.tasks[id]
	if t.state != TaskDeleted {
		k.retire(t)
		signal(t)
	}
	return nil
}

// State returns the scheduling state of a task.
func (k *Kernel) State(id TaskID) (TaskState, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if int(id) >= len(k.tasks) {
		return TaskDeleted, ErrNoTask
	}
	return k.tasks[id].state, nil
}

// Tasks returns a snapshot of the task table in creation order.
func (k *Kernel) Tasks() []TaskInfo {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make([]TaskInfo, 0, len(k.tasks))
	for _, t := range k.tasks {
		out = append(out, TaskInfo{ID: t.id, Name: t.name, Priority: t.prio, State: t.state})
	}
	return out
}

// TickTo advances the tick counter to seq and wakes every task whose
// deadline has passed, highest priority first. Older values are ignored.
func (k *Kernel) TickTo(seq uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.advance(seq)
}

// Tick advances the tick counter by one.
func (k *Kernel) Tick() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.advance(k.tick + 1)
}

// Ticks returns the current tick counter.
func (k *Kernel) Ticks() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tick
}

// Uptime returns the time represented by the tick counter.
func (k *Kernel) Uptime() time.Duration {
	return time.Duration(k.Ticks()) * TickPeriod
}

func (k *Kernel) advance(seq uint64) {
	if seq <= k.tick {
		return
	}
	k.tick = seq

	var due []*task
	for _, t := range k.tasks {
		if t.waiting && t.state == TaskReady && seq >= t.deadline {
			due = append(due, t)
		}
	}
	for _, t := range k.byPriority(due) {
		t.waiting = false
		signal(t)
	}
}

func (k *Kernel) launch(t *task) {
	t.launched = true
	k.wg.Add(1)
	go k.run(t)
}

func (k *Kernel) run(t *task) {
	defer k.wg.Done()
	defer k.exit(t)
	defer func() {
		if r := recover(); r != nil {
			triggerPanic(PanicInfo{TaskID: t.id, Name: t.name, Value: r})
		}
	}()

	ctx := &Context{k: k, t: t}
	if !ctx.checkpoint() {
		return
	}
	t.fn(ctx)
}

func (k *Kernel) exit(t *task) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if t.state != TaskDeleted {
		k.retire(t)
	}
	t.waiting = false
}

// retire marks t deleted and frees its slot. Callers hold k.mu.
func (k *Kernel) retire(t *task) {
	t.state = TaskDeleted
	k.live--
}

// waitUntil blocks t until the tick reaches deadline while t is ready.
// It returns false once t is deleted or the kernel stops.
func (k *Kernel) waitUntil(t *task, deadline uint64) bool {
	k.mu.Lock()
	for {
		if k.stopped || t.state == TaskDeleted {
			t.waiting = false
			k.mu.Unlock()
			return false
		}
		if t.state == TaskReady && k.tick >= deadline {
			t.waiting = false
			k.mu.Unlock()
			return true
		}
		t.waiting = true
		t.deadline = deadline
		k.mu.Unlock()

		<-t.wake

		k.mu.Lock()
	}
}

func (k *Kernel) lookup(id TaskID) (*task, error) {
	if int(id) >= len(k.tasks) || k.tasks[id].state == TaskDeleted {
		return nil, ErrNoTask
	}
	return k.tasks[id], nil
}

func (k *Kernel) byPriority(in []*task) []*task {
	out := make([]*task, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].prio > out[j].prio })
	return out
}

func signal(t *task) {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

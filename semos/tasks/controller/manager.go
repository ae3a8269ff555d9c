package controller

import (
	"errors"
	"fmt"
	"sync/atomic"

	"semaphore/hal"
	"semaphore/semos/kernel"
)

const (
	ControlTaskName = "SemaphoreCtrl"
	MonitorTaskName = "Monitor"
)

// Manager creates the control and monitor tasks and pauses them together.
type Manager struct {
	k      *kernel.Kernel
	shared *SharedContext
	cfg    Config
	log    hal.Logger
	board  *kernel.SharedBuffer

	control   kernel.TaskID
	monitor   kernel.TaskID
	created   bool
	suspended atomic.Bool
}

// NewManager returns a manager. board may be nil.
func NewManager(k *kernel.Kernel, shared *SharedContext, cfg Config, log hal.Logger, board *kernel.SharedBuffer) *Manager {
	return &Manager{k: k, shared: shared, cfg: cfg, log: log, board: board}
}

// CreateTasks spawns both tasks. A second call does nothing. If the
// monitor task cannot be created the control task is deleted again.
func (m *Manager) CreateTasks() error {
	if m.created {
		m.log.WriteLineString("[WARN] Tasks already created!")
		return nil
	}
	if m.shared == nil {
		return errors.New("controller: nil shared context")
	}

	ctl, err := m.k.Spawn(ControlTaskName, m.cfg.ControlPriority, ControlTask(m.shared, m.cfg, m.log))
	if err != nil {
		m.log.WriteLineString("[ERROR] Failed to create Semaphore task!")
		return fmt.Errorf("create control task: %w", err)
	}

	mon, err := m.k.Spawn(MonitorTaskName, m.cfg.MonitorPriority, MonitorTask(m.shared, m.cfg, m.log, m.board))
	if err != nil {
		m.log.WriteLineString("[ERROR] Failed to create Monitor task!")
		if derr := m.k.Delete(ctl); derr != nil {
			return fmt.Errorf("create monitor task: %w (rollback: %v)", err, derr)
		}
		return fmt.Errorf("create monitor task: %w", err)
	}

	m.control, m.monitor = ctl, mon
	m.created = true
	m.log.WriteLineString("[INFO] All tasks created successfully!")
	return nil
}

// SuspendAll clears the active flag, then suspends both tasks.
func (m *Manager) SuspendAll() {
	if !m.created {
		return
	}
	m.shared.SetActive(false)
	m.k.Suspend(m.control)
	m.k.Suspend(m.monitor)
	m.suspended.Store(true)
	m.log.WriteLineString("[INFO] All tasks suspended")
}

// ResumeAll sets the active flag, then resumes both tasks.
func (m *Manager) ResumeAll() {
	if !m.created {
		return
	}
	m.shared.SetActive(true)
	m.k.Resume(m.control)
	m.k.Resume(m.monitor)
	m.suspended.Store(false)
	m.log.WriteLineString("[INFO] All tasks resumed")
}

func (m *Manager) Created() bool { return m.created }

func (m *Manager) Suspended() bool { return m.suspended.Load() }

// TaskIDs returns the control and monitor task ids. They are only
// meaningful once Created reports true.
func (m *Manager) TaskIDs() (control, monitor kernel.TaskID) {
	return m.control, m.monitor
}

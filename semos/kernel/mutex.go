package kernel

import "time"

// Forever makes TryLock wait without a bound.
const Forever time.Duration = -1

// Mutex is a kernel-allocated lock. Lock and unlock are a send and a
// receive on a one-slot channel, which gives the usual happens-before
// edge between an unlock and the next lock.
type Mutex struct {
	ch chan struct{}
}

// NewMutex allocates a mutex, failing once the kernel's limit is reached.
func (k *Kernel) NewMutex() (*Mutex, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.mutexes >= k.cfg.MaxMutexes {
		return nil, ErrTooManyMutexes
	}
	k.mutexes++
	return &Mutex{ch: make(chan struct{}, 1)}, nil
}

// TryLock acquires the mutex, waiting at most timeout. A zero timeout
// polls once; Forever waits indefinitely.
func (m *Mutex) TryLock(timeout time.Duration) bool {
	select {
	case m.ch <- struct{}{}:
		return true
	default:
	}

	switch {
	case timeout == 0:
		return false
	case timeout < 0:
		m.ch <- struct{}{}
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case m.ch <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

func (m *Mutex) Lock() { m.TryLock(Forever) }

// Unlock releases the mutex. Unlocking an unlocked mutex panics.
func (m *Mutex) Unlock() {
	select {
	case <-m.ch:
	default:
		panic("kernel: unlock of unlocked mutex")
	}
}

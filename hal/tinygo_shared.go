//go:build tinygo

package hal

import "time"

// tinyGoTime emits one sequence number per millisecond. Ticks the kernel
// is too slow to take are dropped; TickTo catches up from the next one.
type tinyGoTime struct {
	ch chan uint64
}

func newTinyGoTime() *tinyGoTime {
	t := &tinyGoTime{ch: make(chan uint64, 16)}
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		var seq uint64
		for range ticker.C {
			seq++
			select {
			case t.ch <- seq:
			default:
			}
		}
	}()
	return t
}

func (t *tinyGoTime) Ticks() <-chan uint64 { return t.ch }

type tinyGoInput struct {
	kbd Keyboard
}

func (in tinyGoInput) Keyboard() Keyboard { return in.kbd }

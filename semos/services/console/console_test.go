package console

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"semaphore/hal"
)

type fakeKeyboard struct {
	ch chan hal.KeyEvent
}

func (k *fakeKeyboard) Events() <-chan hal.KeyEvent { return k.ch }

type recorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, s)
}

func (r *recorder) EmergencyStop() { r.add("stop") }
func (r *recorder) Recover()       { r.add("recover") }
func (r *recorder) Pause()         { r.add("pause") }
func (r *recorder) Resume()        { r.add("resume") }

func press(r rune) hal.KeyEvent { return hal.KeyEvent{Press: true, Rune: r} }

func TestDecode(t *testing.T) {
	assert.Equal(t, CmdEmergencyStop, Decode(press('e')))
	assert.Equal(t, CmdEmergencyStop, Decode(press('E')))
	assert.Equal(t, CmdEmergencyStop, Decode(hal.KeyEvent{Code: hal.KeyEscape, Press: true}))
	assert.Equal(t, CmdRecover, Decode(press('r')))
	assert.Equal(t, CmdPause, Decode(press('p')))
	assert.Equal(t, CmdResume, Decode(press('c')))
	assert.Equal(t, CmdNone, Decode(press('x')))
	assert.Equal(t, CmdNone, Decode(hal.KeyEvent{Rune: 'e'}))
}

func TestPollDispatches(t *testing.T) {
	kbd := &fakeKeyboard{ch: make(chan hal.KeyEvent, 8)}
	op := &recorder{}
	s := New(kbd, op, nil)

	for _, ev := range []hal.KeyEvent{press('p'), {Rune: 'p'}, press('c'), press('e'), press('?'), press('r')} {
		kbd.ch <- ev
	}
	assert.Equal(t, 4, s.Poll())
	assert.Equal(t, []string{"pause", "resume", "stop", "recover"}, op.ops)
	assert.Zero(t, s.Poll())
}

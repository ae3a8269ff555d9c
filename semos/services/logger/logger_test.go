package logger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semaphore/semos/kernel"
)

type lines struct {
	mu  sync.Mutex
	out []string
}

func (l *lines) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = append(l.out, s)
}

func (l *lines) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *lines) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.out...)
}

func TestQueueDrainsInOrder(t *testing.T) {
	mb := kernel.NewMailbox(8)
	q := NewQueue(mb)
	out := &lines{}
	svc := New(out, mb)

	q.WriteLineString("[TASK] control started")
	q.WriteLineBytes([]byte("[TASK] monitor started\n"))

	assert.Equal(t, 2, svc.Drain())
	assert.Equal(t, []string{"[TASK] control started", "[TASK] monitor started"}, out.get())
	assert.Zero(t, svc.Drain())
}

func TestQueueReportsDrops(t *testing.T) {
	mb := kernel.NewMailbox(2)
	q := NewQueue(mb)
	out := &lines{}
	svc := New(out, mb)

	for i := 0; i < 5; i++ {
		q.WriteLineString("x")
	}
	assert.Equal(t, uint32(3), q.Dropped())

	svc.Drain()
	got := out.get()
	require.Len(t, got, 3)
	assert.Equal(t, "[WARN] logger: 3 lines dropped", got[2])

	// The same drops are not reported twice.
	svc.Drain()
	assert.Len(t, out.get(), 3)
}

func TestServiceRunsAsTask(t *testing.T) {
	k := kernel.New()
	mb := kernel.NewMailbox(0)
	out := &lines{}
	svc := New(out, mb)

	_, err := k.Spawn("logger", 0, svc.Run)
	require.NoError(t, err)
	require.NoError(t, k.Start())

	NewQueue(mb).WriteLineString("[INFO] hello")
	for seq := uint64(1); seq <= 200; seq++ {
		k.TickTo(seq * 10)
		if len(out.get()) > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	k.Stop()

	assert.Equal(t, []string{"[INFO] hello"}, out.get())
}

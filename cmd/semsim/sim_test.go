package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"semaphore/semos/trafficlight"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateExactPoll(t *testing.T) {
	r, err := simulate(simConfig{Timing: trafficlight.DefaultTiming(), Poll: 10 * time.Millisecond, Cycles: 2})
	require.NoError(t, err)

	require.Len(t, r.Transitions, 10)
	assert.Equal(t, 106*time.Second, r.Elapsed)
	assert.Zero(t, r.Conflicts)

	last := r.Transitions[len(r.Transitions)-1]
	assert.Equal(t, trafficlight.SafetyGapAfter, last.From)
	assert.Equal(t, trafficlight.GreenCar, last.To)
	assert.EqualValues(t, 3, last.Cycle)

	for _, s := range trafficlight.States() {
		d := r.Dwell[s]
		require.NotNil(t, d, s.String())
		assert.Equal(t, 2, d.Count, s.String())
		assert.Equal(t, d.Nominal, d.Min, s.String())
		assert.Equal(t, d.Nominal, d.Max, s.String())
		assert.Zero(t, d.Late(), s.String())
	}
}

func TestSimulateCoarsePollStaysWithinOnePoll(t *testing.T) {
	poll := 7 * time.Millisecond
	r, err := simulate(simConfig{Timing: trafficlight.DefaultTiming(), Poll: poll, Cycles: 3})
	require.NoError(t, err)

	require.Len(t, r.Transitions, 15)
	for i, tr := range r.Transitions {
		assert.Equal(t, trafficlight.Next(tr.From), tr.To, "transition %d", i)
	}
	for _, s := range trafficlight.States() {
		d := r.Dwell[s]
		assert.GreaterOrEqual(t, d.Min, d.Nominal, s.String())
		assert.Less(t, d.Late(), poll, s.String())
	}
}

func TestSimulateRejectsBadInput(t *testing.T) {
	_, err := simulate(simConfig{Timing: trafficlight.DefaultTiming(), Poll: 0, Cycles: 1})
	assert.ErrorIs(t, err, errPoll)

	bad := trafficlight.DefaultTiming()
	bad.CarYellow = 0
	_, err = simulate(simConfig{Timing: bad, Poll: time.Millisecond, Cycles: 1})
	assert.ErrorIs(t, err, trafficlight.ErrTiming)
}

func TestReportWrite(t *testing.T) {
	r, err := simulate(simConfig{Timing: trafficlight.DefaultTiming(), Poll: 10 * time.Millisecond, Cycles: 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.write(&buf, true))
	out := buf.String()
	assert.Contains(t, out, "TIME")
	assert.Contains(t, out, "YELLOW_CAR")
	assert.Contains(t, out, "conflicting patterns: 0")

	buf.Reset()
	require.NoError(t, r.write(&buf, false))
	assert.False(t, strings.Contains(buf.String(), "TIME"))
	assert.Contains(t, buf.String(), "STATE")
}

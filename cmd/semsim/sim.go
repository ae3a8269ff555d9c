//go:build !tinygo

package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"semaphore/semos/trafficlight"
)

type simConfig struct {
	Timing trafficlight.Timing
	Poll   time.Duration
	Cycles uint32
}

type transition struct {
	At    time.Duration
	Cycle uint32
	From  trafficlight.State
	To    trafficlight.State
}

type dwell struct {
	Nominal  time.Duration
	Count    int
	Min, Max time.Duration
	total    time.Duration
}

func (d *dwell) add(v time.Duration) {
	if d.Count == 0 || v < d.Min {
		d.Min = v
	}
	if v > d.Max {
		d.Max = v
	}
	d.Count++
	d.total += v
}

func (d *dwell) Mean() time.Duration {
	if d.Count == 0 {
		return 0
	}
	return d.total / time.Duration(d.Count)
}

// Late is the worst overshoot past the nominal duration.
func (d *dwell) Late() time.Duration {
	if d.Count == 0 {
		return 0
	}
	return d.Max - d.Nominal
}

type report struct {
	Config      simConfig
	Transitions []transition
	Dwell       map[trafficlight.State]*dwell
	Elapsed     time.Duration
	Conflicts   int
}

// recordingPort remembers the last pattern and counts conflicting ones.
type recordingPort struct {
	outputs   trafficlight.Outputs
	conflicts int
}

func (p *recordingPort) Initialize() { p.outputs = trafficlight.Outputs{} }

func (p *recordingPort) Set(ch trafficlight.Channel, on bool) {
	switch ch {
	case trafficlight.ChannelCarRed:
		p.outputs.CarRed = on
	case trafficlight.ChannelCarYellow:
		p.outputs.CarYellow = on
	case trafficlight.ChannelCarGreen:
		p.outputs.CarGreen = on
	case trafficlight.ChannelPedestrianRed:
		p.outputs.PedestrianRed = on
	case trafficlight.ChannelPedestrianGreen:
		p.outputs.PedestrianGreen = on
	}
}

func (p *recordingPort) Apply(o trafficlight.Outputs) {
	p.outputs = o
	if o.Conflicting() {
		p.conflicts++
	}
}

func (p *recordingPort) AllOff() { p.outputs = trafficlight.Outputs{} }

var errPoll = errors.New("semsim: poll interval must be positive")

// simulate steps the machine every cfg.Poll of simulated time until it
// enters cycle cfg.Cycles+1.
func simulate(cfg simConfig) (*report, error) {
	if cfg.Poll <= 0 {
		return nil, errPoll
	}
	table, err := trafficlight.NewTable(cfg.Timing)
	if err != nil {
		return nil, err
	}

	var now time.Duration
	port := &recordingPort{}
	m, err := trafficlight.NewMachine(port, table, func() time.Duration { return now }, nil, false)
	if err != nil {
		return nil, err
	}
	m.Initialize()
	m.Begin()

	r := &report{Config: cfg, Dwell: make(map[trafficlight.State]*dwell)}
	for _, e := range table.Entries() {
		r.Dwell[e.State] = &dwell{Nominal: e.Duration}
	}

	entered := now
	// Every state must be left within its duration plus one poll.
	limit := time.Duration(cfg.Cycles+1) * (table.CycleDuration() + time.Duration(len(table.Entries()))*cfg.Poll)
	for m.CycleCount() <= cfg.Cycles {
		if now > limit {
			return nil, fmt.Errorf("semsim: no progress after %v", now)
		}
		now += cfg.Poll
		from := m.CurrentState()
		if !m.Update() {
			continue
		}
		r.Dwell[from].add(now - entered)
		entered = now
		r.Transitions = append(r.Transitions, transition{At: now, Cycle: m.CycleCount(), From: from, To: m.CurrentState()})
	}
	r.Elapsed = now
	r.Conflicts = port.conflicts
	return r, nil
}

func (r *report) write(w io.Writer, timeline bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "cycles: %d\tpoll: %v\tsimulated: %v\n", r.Config.Cycles, r.Config.Poll, r.Elapsed)

	if timeline {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "TIME\tCYCLE\tFROM\tTO")
		for _, t := range r.Transitions {
			fmt.Fprintf(tw, "%v\t%d\t%s\t%s\n", t.At, t.Cycle, t.From, t.To)
		}
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "STATE\tNOMINAL\tCOUNT\tMIN\tMEAN\tMAX\tLATE")
	for _, s := range trafficlight.States() {
		d := r.Dwell[s]
		if d == nil {
			continue
		}
		fmt.Fprintf(tw, "%s\t%v\t%d\t%v\t%v\t%v\t%v\n", s, d.Nominal, d.Count, d.Min, d.Mean(), d.Max, d.Late())
	}
	fmt.Fprintf(tw, "\nconflicting patterns: %d\n", r.Conflicts)
	return tw.Flush()
}

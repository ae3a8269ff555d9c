package trafficlight

import (
	"errors"
	"fmt"
	"time"
)

// Timing holds the per-phase durations. Both safety gaps share one value.
type Timing struct {
	CarGreen        time.Duration
	CarYellow       time.Duration
	SafetyGap       time.Duration
	PedestrianGreen time.Duration
}

// DefaultTiming is the reference cycle: 20 s, 3 s, 5 s, 20 s, 5 s.
func DefaultTiming() Timing {
	return Timing{
		CarGreen:        20 * time.Second,
		CarYellow:       3 * time.Second,
		SafetyGap:       5 * time.Second,
		PedestrianGreen: 20 * time.Second,
	}
}

var ErrTiming = errors.New("trafficlight: invalid timing")

func (t Timing) Validate() error {
	for _, f := range []struct {
		name string
		d    time.Duration
	}{
		{"car green", t.CarGreen},
		{"car yellow", t.CarYellow},
		{"safety gap", t.SafetyGap},
		{"pedestrian green", t.PedestrianGreen},
	} {
		if f.d <= 0 {
			return fmt.Errorf("%w: %s duration %s", ErrTiming, f.name, f.d)
		}
	}
	return nil
}

// Shortest returns the shortest phase duration.
func (t Timing) Shortest() time.Duration {
	m := t.CarGreen
	for _, d := range []time.Duration{t.CarYellow, t.SafetyGap, t.PedestrianGreen} {
		if d < m {
			m = d
		}
	}
	return m
}

// Entry describes one state.
type Entry struct {
	State       State
	Duration    time.Duration
	Outputs     Outputs
	Description string
}

// Table is the fixed state table. It is a value: copies cannot change
// the machine that owns the original.
type Table struct {
	entries [stateCount]Entry
}

// NewTable builds the table for t.
func NewTable(t Timing) (Table, error) {
	if err := t.Validate(); err != nil {
		return Table{}, err
	}

	allRed := Outputs{CarRed: true, PedestrianRed: true}
	return Table{entries: [stateCount]Entry{
		GreenCar: {
			State:       GreenCar,
			Duration:    t.CarGreen,
			Outputs:     Outputs{CarGreen: true, PedestrianRed: true},
			Description: "GREEN_CAR: Green to cars, red to pedestrians",
		},
		YellowCar: {
			State:       YellowCar,
			Duration:    t.CarYellow,
			Outputs:     Outputs{CarYellow: true, PedestrianRed: true},
			Description: "YELLOW_CAR: Yellow to cars, red to pedestrians",
		},
		SafetyGapBefore: {
			State:       SafetyGapBefore,
			Duration:    t.SafetyGap,
			Outputs:     allRed,
			Description: "SAFETY_GAP_BEFORE: All red before pedestrians get green",
		},
		GreenPedestrian: {
			State:       GreenPedestrian,
			Duration:    t.PedestrianGreen,
			Outputs:     Outputs{CarRed: true, PedestrianGreen: true},
			Description: "GREEN_PEDESTRIAN: Green to pedestrians, red to cars",
		},
		SafetyGapAfter: {
			State:       SafetyGapAfter,
			Duration:    t.SafetyGap,
			Outputs:     allRed,
			Description: "SAFETY_GAP_AFTER: All red after pedestrians had green",
		},
	}}, nil
}

// Entry returns the entry for s. Invalid states get the zero entry.
func (t *Table) Entry(s State) Entry {
	if !s.Valid() {
		return Entry{}
	}
	return t.entries[s]
}

func (t *Table) Duration(s State) time.Duration { return t.Entry(s).Duration }
func (t *Table) Outputs(s State) Outputs        { return t.Entry(s).Outputs }
func (t *Table) Description(s State) string     { return t.Entry(s).Description }

// Entries returns the table in cycle order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, stateCount)
	for _, s := range States() {
		out = append(out, t.entries[s])
	}
	return out
}

// CycleDuration is the sum of all state durations.
func (t *Table) CycleDuration() time.Duration {
	var total time.Duration
	for _, e := range t.entries {
		total += e.Duration
	}
	return total
}

//go:build !tinygo

// Command semsim runs the light cycle against a simulated clock and prints
// the transition timeline with per-state dwell statistics.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"semaphore/semos/trafficlight"
)

func main() {
	t := trafficlight.DefaultTiming()
	var (
		cycles   = flag.Uint("cycles", 3, "Number of full cycles to simulate.")
		poll     = flag.Duration("poll", 10*time.Millisecond, "Interval between state machine updates.")
		timeline = flag.Bool("timeline", true, "Print every transition.")
	)
	flag.DurationVar(&t.CarGreen, "car-green", t.CarGreen, "Green time for cars.")
	flag.DurationVar(&t.CarYellow, "car-yellow", t.CarYellow, "Yellow time for cars.")
	flag.DurationVar(&t.SafetyGap, "gap", t.SafetyGap, "All-red safety gap.")
	flag.DurationVar(&t.PedestrianGreen, "ped-green", t.PedestrianGreen, "Green time for pedestrians.")
	flag.Parse()

	if *cycles == 0 {
		fmt.Fprintln(os.Stderr, "error: -cycles must be at least 1")
		os.Exit(2)
	}

	r, err := simulate(simConfig{Timing: t, Poll: *poll, Cycles: uint32(*cycles)})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if err := r.write(os.Stdout, *timeline); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if r.Conflicts > 0 {
		os.Exit(1)
	}
}

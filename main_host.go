//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"semaphore/app"
	"semaphore/hal"
	"semaphore/semos/trafficlight"
)

func main() {
	cfg := app.DefaultConfig()
	var hcfg hal.HeadlessConfig
	var policy string

	flag.BoolVar(&hcfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", 100, "Tick batches per second in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.BoolVar(&hcfg.Periph, "periph", false, "Drive the lamps through periph.io GPIO (Linux).")
	flag.BoolVar(&hcfg.Keys, "keys", false, "Read operator keys from stdin in headless mode.")
	flag.DurationVar(&cfg.Timing.CarGreen, "car-green", cfg.Timing.CarGreen, "Green time for cars.")
	flag.DurationVar(&cfg.Timing.CarYellow, "car-yellow", cfg.Timing.CarYellow, "Yellow time for cars.")
	flag.DurationVar(&cfg.Timing.SafetyGap, "gap", cfg.Timing.SafetyGap, "All-red safety gap.")
	flag.DurationVar(&cfg.Timing.PedestrianGreen, "ped-green", cfg.Timing.PedestrianGreen, "Green time for pedestrians.")
	flag.DurationVar(&cfg.Tasks.ControlPeriod, "control-period", cfg.Tasks.ControlPeriod, "Control task period.")
	flag.DurationVar(&cfg.Tasks.MonitorPeriod, "monitor-period", cfg.Tasks.MonitorPeriod, "Monitor task period.")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Log every state transition.")
	flag.BoolVar(&cfg.Display, "display", cfg.Display, "Draw the lamps and status on the framebuffer.")
	flag.StringVar(&policy, "recover", cfg.Tasks.Recover.String(), "Emergency recovery policy: resume|restart.")
	flag.Parse()

	p, err := trafficlight.ParseRecoverPolicy(policy)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	cfg.Tasks.Recover = p
	cfg.Console = !hcfg.Enabled || hcfg.Keys

	newApp := func(h hal.HAL) func() error { return app.NewWithConfig(h, cfg) }

	if hcfg.Enabled {
		if err := runHeadless(newApp, hcfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	err = hal.RunWindow(newApp)
	if errors.Is(err, hal.ErrNoWindow) {
		fmt.Fprintln(os.Stderr, "no window support in this build, running headless")
		hcfg.Enabled = true
		err = runHeadless(newApp, hcfg)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runHeadless(newApp func(hal.HAL) func() error, cfg hal.HeadlessConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := hal.RunHeadless(ctx, newApp, cfg)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// This file is part of Beamsync.
//
// Beamsync is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Beamsync is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Beamsync.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/bradleyjkemp/memviz"
	"golang.org/x/time/rate"

	"beamsync/clock"
	"beamsync/logger"
	"beamsync/modalflag"
	"beamsync/schedule"
	"beamsync/statsview"
	"beamsync/timing"
	"beamsync/version"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("RUN", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "VERSION":
		ver, rev, _ := version.Version()
		fmt.Printf("%s (%s)\n", version.ApplicationName, ver)
		if rev != "" {
			fmt.Printf("  revision: %s\n", rev)
		}

	case "RUN":
		if err := run(md); err != nil {
			fmt.Fprintf(os.Stderr, "* %v\n", err)
			os.Exit(10)
		}
	}
}

// platformHook stands in for the display driver. it records the enable
// state so that the simulated pulse source knows when to emit pulses.
type platformHook struct {
	enabled atomic.Bool
}

// SetVsyncEnabled implements the schedule.SchedulerCallback interface.
func (h *platformHook) SetVsyncEnabled(id timing.DisplayID, enabled bool) {
	h.enabled.Store(enabled)
	logger.Logf("platform", "%s: hardware vsync enabled = %v", id, enabled)
}

func run(md *modalflag.Modes) error {
	md.NewMode()

	opts := struct {
		display  *string
		hz       *float64
		trace    *bool
		fences   *bool
		config   *string
		duration *time.Duration
		log      *bool
		memviz   *string
		stats    *bool
	}{
		display:  md.AddString("display", "SIM-1", "identifier of the simulated display"),
		hz:       md.AddFloat64("hz", 60.0, "refresh rate of the simulated display"),
		trace:    md.AddBool("trace", false, "run the predicted-vsync tracer"),
		fences:   md.AddBool("fences", true, "feed present fences to the controller"),
		config:   md.AddString("config", "", "YAML file of schedule tunables"),
		duration: md.AddDuration("duration", 0, "how long to run for (zero means until interrupted)"),
		log:      md.AddBool("log", false, "echo log entries to stderr as they happen"),
		memviz:   md.AddString("memviz", "", "write schedule object graph (graphviz) to file on exit"),
		stats:    md.AddBool("stats", false, "launch statsview"),
	}

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return nil
	case modalflag.ParseError:
		return err
	}

	if *opts.log {
		logger.SetEcho(os.Stderr)
	}

	if *opts.stats {
		statsview.Launch(os.Stdout)
	}

	cfg := schedule.Config{}
	if *opts.config != "" {
		cfg, err = loadConfig(*opts.config)
		if err != nil {
			return err
		}
	}

	var features []schedule.Feature
	if *opts.trace {
		features = append(features, schedule.TracePredictedVsync)
	}
	if *opts.fences {
		features = append(features, schedule.PresentFences)
	}

	sch, err := schedule.New(timing.DisplayID(*opts.display), schedule.Features(features...), cfg)
	if err != nil {
		return err
	}
	defer sch.End()

	hook := &platformHook{}

	// whether fence completions are being synthesised alongside pulses
	var fenceFeed atomic.Bool
	fenceFeed.Store(*opts.fences)

	// the simulated display: a pulse source paced at the requested refresh
	// rate, emitting only while the platform hook says the hardware is on
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var clk clock.System
	go func() {
		lim := rate.NewLimiter(rate.Limit(*opts.hz), 1)
		for {
			if err := lim.Wait(ctx); err != nil {
				return
			}
			if !hook.enabled.Load() {
				continue
			}
			sch.Controller().AddHwVsyncTimestamp(clk.Now())
			if fenceFeed.Load() {
				sch.Controller().AddPresentFence()
			}
		}
	}()

	// a frame callback registered the way a compositor would. it counts
	// invocations and re-arms itself
	var frames atomic.Uint64
	var reg schedule.Registration
	reg, err = sch.Dispatch().RegisterCallback(func(_, _, _ timing.TimePoint) {
		frames.Add(1)
		_ = reg.Schedule(4*time.Millisecond, time.Millisecond, 0)
	}, "demo-frame")
	if err != nil {
		return err
	}
	if err := reg.Schedule(4*time.Millisecond, time.Millisecond, 0); err != nil {
		return err
	}
	defer reg.Release()

	fmt.Printf("simulating display %s at %.2fHz\n", *opts.display, *opts.hz)

	keys, restore, keysErr := cbreakKeys(os.Stdin)
	if keysErr != nil {
		fmt.Printf("no interactive input (%v)\n", keysErr)
	} else {
		defer restore()
		fmt.Println("keys: [e]nable  [d]isable  [x] disable+disallow  [a]llow  [p] toggle fences")
		fmt.Println("      [v] timing  [i] dump  [l] log tail  [q]uit")
	}

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	var timeout <-chan time.Time
	if *opts.duration > 0 {
		timeout = time.After(*opts.duration)
	}

	done := false
	for !done {
		select {
		case <-intChan:
			fmt.Println("\r")
			done = true

		case <-timeout:
			done = true

		case k, ok := <-keys:
			if !ok {
				// input has gone away. a nil channel never yields
				keys = nil
				continue
			}
			switch k {
			case 'e':
				sch.EnableHardwareVsync(hook)
			case 'd':
				sch.DisableHardwareVsync(hook, false)
			case 'x':
				sch.DisableHardwareVsync(hook, true)
			case 'a':
				sch.AllowHardwareVsync()
			case 'p':
				fenceFeed.Store(!fenceFeed.Load())
				fmt.Printf("fence feed: %v\n", fenceFeed.Load())
			case 'v':
				now := clk.Now()
				fmt.Printf("period: %v\n", sch.Period())
				fmt.Printf("next deadline: %v (in %v)\n",
					sch.VsyncDeadlineAfter(now), sch.VsyncDeadlineAfter(now).Sub(now))
				fmt.Printf("frames: %d\n", frames.Load())
			case 'i':
				sch.Dump(os.Stdout)
			case 'l':
				logger.Tail(os.Stdout, 10)
			case 'q':
				done = true
			}
		}
	}

	if *opts.memviz != "" {
		buf := &bytes.Buffer{}
		memviz.Map(buf, sch)
		if err := os.WriteFile(*opts.memviz, buf.Bytes(), 0644); err != nil {
			return err
		}
		fmt.Printf("object graph written to %s\n", *opts.memviz)
	}

	return nil
}

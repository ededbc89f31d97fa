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

// Package reactor is the hardware feedback loop correcting the vsync
// tracker. Real hardware pulses and, optionally, present fence completion
// timestamps are fed into the reactor by the platform layer; the reactor
// passes them on to the tracker it was built around.
//
// The reactor holds a non-owning reference to the tracker. The schedule that
// constructed both owns both.
package reactor

import (
	"fmt"
	"io"
	"sync"

	"beamsync/clock"
	"beamsync/logger"
	"beamsync/timing"
)

// Feed is the write side of the vsync tracker. Satisfied by
// tracker.Predictor.
type Feed interface {
	AddVsyncTimestamp(t timing.TimePoint) bool
	NeedsMoreSamples() bool
}

// Reactor is the default vsync controller. Safe for concurrent use.
type Reactor struct {
	label            string
	clk              clock.Clock
	tracker          Feed
	maxPendingFences int

	// whether the platform reports a kernel idle timer for this display.
	// recorded for diagnostic output; the platform layer owns the policy
	hasKernelIdleTimer bool

	crit sync.Mutex

	ignorePresentFences bool

	// present fence completion times not yet consumed by the tracker.
	// bounded by maxPendingFences
	pendingFences []timing.TimePoint

	// diagnostic counters
	hwPulses     uint64
	fencesSeen   uint64
	fenceDropped uint64

	lastHwPulse timing.TimePoint
}

// New creates a Reactor feeding the given tracker. The label identifies the
// display in log entries and diagnostic output. The clock stamps fence
// completions reported without a timestamp of their own.
func New(label string, clk clock.Clock, tracker Feed, maxPendingFences int, hasKernelIdleTimer bool) *Reactor {
	if maxPendingFences < 1 {
		maxPendingFences = 1
	}
	return &Reactor{
		label:              label,
		clk:                clk,
		tracker:            tracker,
		maxPendingFences:   maxPendingFences,
		hasKernelIdleTimer: hasKernelIdleTimer,
	}
}

// AddHwVsyncTimestamp records a real hardware vsync pulse. The returned
// value is true if the tracker wants more pulses; the platform layer can use
// it to decide whether hardware vsync can be turned off again.
func (r *Reactor) AddHwVsyncTimestamp(t timing.TimePoint) bool {
	r.crit.Lock()
	r.hwPulses++
	r.lastHwPulse = t

	// a hardware pulse confirms any pending fences up to that instant
	if len(r.pendingFences) > 0 {
		kept := r.pendingFences[:0]
		for _, f := range r.pendingFences {
			if f.After(t) {
				kept = append(kept, f)
			}
		}
		r.pendingFences = kept
	}
	r.crit.Unlock()

	return r.tracker.AddVsyncTimestamp(t)
}

// AddPresentFenceTime records the completion time of a present fence. A
// fence completion is indirect evidence of a vsync. The returned value is
// true if the tracker still wants direct hardware pulses.
//
// When fences are being ignored the timestamp is discarded.
func (r *Reactor) AddPresentFenceTime(t timing.TimePoint) bool {
	r.crit.Lock()

	if r.ignorePresentFences {
		r.crit.Unlock()
		return r.tracker.NeedsMoreSamples()
	}

	r.fencesSeen++
	r.pendingFences = append(r.pendingFences, t)
	if len(r.pendingFences) > r.maxPendingFences {
		r.pendingFences = r.pendingFences[1:]
		r.fenceDropped++
		logger.Logf("reactor", "%s: pending fence limit reached, oldest dropped", r.label)
	}
	r.crit.Unlock()

	return r.tracker.NeedsMoreSamples()
}

// AddPresentFence records a present fence that has just signalled, stamping
// it with the reactor's own clock. For callers observing the completion
// directly rather than receiving a timestamped event.
func (r *Reactor) AddPresentFence() bool {
	return r.AddPresentFenceTime(r.clk.Now())
}

// SetIgnorePresentFences configures whether fence completions are allowed to
// feed the tracker. Pending fences are discarded when ignoring begins.
func (r *Reactor) SetIgnorePresentFences(ignore bool) {
	r.crit.Lock()
	defer r.crit.Unlock()

	if ignore && !r.ignorePresentFences {
		r.pendingFences = r.pendingFences[:0]
	}
	r.ignorePresentFences = ignore
}

// Dump writes a diagnostic description of the reactor's state.
func (r *Reactor) Dump(w io.Writer) {
	r.crit.Lock()
	defer r.crit.Unlock()

	fmt.Fprintf(w, "  display: %s\n", r.label)
	fmt.Fprintf(w, "  hwPulses: %d (last %v)\n", r.hwPulses, r.lastHwPulse)
	fmt.Fprintf(w, "  ignorePresentFences: %v\n", r.ignorePresentFences)
	fmt.Fprintf(w, "  pendingFences: %d of %d (seen %d, dropped %d)\n",
		len(r.pendingFences), r.maxPendingFences, r.fencesSeen, r.fenceDropped)
	fmt.Fprintf(w, "  kernelIdleTimer: %v\n", r.hasKernelIdleTimer)
}

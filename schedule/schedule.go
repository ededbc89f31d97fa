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

// Package schedule coordinates the generation, prediction and
// hardware-enable lifecycle of the vsync signal for a single physical
// display. A Schedule is the authority a compositor consults for "when is
// the next vsync deadline" and for whether the display hardware is
// currently being asked to emit vsync pulses at all.
//
// A Schedule owns one Tracker, one Dispatch and one Controller. The three
// are constructed together and torn down together; all state is in-memory
// and scoped to the life of the Schedule. If the display is recreated, so
// is the Schedule.
package schedule

import (
	"fmt"
	"io"
	"strings"

	"beamsync/clock"
	"beamsync/dispatch"
	"beamsync/reactor"
	"beamsync/timing"
	"beamsync/tracker"
)

// Schedule is the vsync timing authority for one display.
type Schedule struct {
	id timing.DisplayID

	tracker    Tracker
	dispatch   Dispatch
	controller Controller

	// nil unless the TracePredictedVsync feature was requested
	tracer *predictedVsyncTracer

	// the hardware vsync enable state machine. the only mutable state in
	// the Schedule itself; everything else is owned by a collaborator with
	// its own synchronisation
	hwVsync hwVsync
}

// New constructs a Schedule along with its default collaborators: a
// tracker.Predictor, a dispatch.TimerQueue driven by the system clock, and
// a reactor.Reactor wired to the same predictor. The configuration supplies
// the policy constants; zero valued fields take defaults.
//
// The returned Schedule must be ended with End() when the display goes
// away.
func New(id timing.DisplayID, features FeatureFlags, cfg Config) (*Schedule, error) {
	cfg.setDefaults()

	clk := clock.System{}

	trk := tracker.NewPredictor(id.String(), cfg.InitialPeriod, cfg.HistorySize,
		cfg.MinSamplesForPrediction, cfg.DiscardOutlierPercent)

	tq := dispatch.NewTimerQueue(clk, clock.NewSystemTimer(clk), trk,
		cfg.GroupDispatchWithin, cfg.SnapToSameVsyncWithin)

	rct := reactor.New(id.String(), clk, trk, cfg.MaxPendingFences, features.Has(KernelIdleTimer))
	rct.SetIgnorePresentFences(!features.Has(PresentFences))

	sch := &Schedule{
		id:         id,
		tracker:    trk,
		dispatch:   timerQueueDispatch{tq},
		controller: rct,
	}

	if features.Has(TracePredictedVsync) {
		tracer, err := startPredictedVsyncTracer(sch.dispatch)
		if err != nil {
			sch.dispatch.Close()
			return nil, err
		}
		sch.tracer = tracer
	}

	return sch, nil
}

// Compose constructs a Schedule from pre-built collaborators. Intended for
// substituting test doubles; the predicted-vsync tracer is never started on
// this path. Ownership of the collaborators transfers to the Schedule.
func Compose(id timing.DisplayID, trk Tracker, d Dispatch, c Controller) *Schedule {
	return &Schedule{
		id:         id,
		tracker:    trk,
		dispatch:   d,
		controller: c,
	}
}

// ID returns the identifier of the display this schedule governs.
func (sch *Schedule) ID() timing.DisplayID {
	return sch.id
}

// Period returns the tracker's current period estimate. No side effects.
func (sch *Schedule) Period() timing.Period {
	return sch.tracker.CurrentPeriod()
}

// VsyncDeadlineAfter returns the next anticipated vsync instant strictly
// following t. No side effects.
func (sch *Schedule) VsyncDeadlineAfter(t timing.TimePoint) timing.TimePoint {
	return sch.tracker.NextAnticipatedVsyncTimeFrom(t)
}

// EnableHardwareVsync asks the display hardware to start emitting vsync
// pulses. The request takes effect only if hardware vsync is currently
// disabled; enabling while already enabled or while disallowed is a no-op.
//
// On the transition the tracker's model is reset, because the hardware is
// about to supply fresh pulses, and then the callback is invoked with true.
func (sch *Schedule) EnableHardwareVsync(cb SchedulerCallback) {
	sch.hwVsync.enable(
		sch.tracker.ResetModel,
		func() { cb.SetVsyncEnabled(sch.id, true) },
	)
}

// DisableHardwareVsync asks the display hardware to stop emitting vsync
// pulses. The callback is invoked with false only if hardware vsync is
// currently enabled. With disallow set, future EnableHardwareVsync calls
// are refused until AllowHardwareVsync() is called; disabling and
// disallowing happen in one atomic step.
func (sch *Schedule) DisableHardwareVsync(cb SchedulerCallback, disallow bool) {
	sch.hwVsync.disable(
		func() { cb.SetVsyncEnabled(sch.id, false) },
		disallow,
	)
}

// IsHardwareVsyncAllowed returns false only while hardware vsync is
// disallowed.
func (sch *Schedule) IsHardwareVsyncAllowed() bool {
	return sch.hwVsync.allowed()
}

// AllowHardwareVsync re-permits EnableHardwareVsync after a disallow. It
// touches neither the hardware nor the tracker and has no effect unless
// hardware vsync is currently disallowed.
func (sch *Schedule) AllowHardwareVsync() {
	sch.hwVsync.allow()
}

// Controller returns the hardware feedback loop. The platform layer feeds
// hardware pulses and present fence timestamps through it.
func (sch *Schedule) Controller() Controller {
	return sch.controller
}

// Dispatch returns the timer queue service. The compositor's scheduling
// layer registers its own vsync callbacks through it.
func (sch *Schedule) Dispatch() Dispatch {
	return sch.dispatch
}

// Dump writes a diagnostic description of the schedule. The hardware vsync
// state is read under its lock; the collaborator dumps run after the lock
// has been released since they take locks of their own.
func (sch *Schedule) Dump(w io.Writer) {
	current, last := sch.hwVsync.snapshot()

	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("display: %s\n", sch.id))
	s.WriteString(fmt.Sprintf("hwVsyncState: %s\n", current))
	s.WriteString(fmt.Sprintf("lastHwVsyncState: %s\n", last))
	if sch.tracer != nil {
		s.WriteString(fmt.Sprintf("predictedVsyncParity: %v\n", sch.tracer.parity.Load()))
	}
	io.WriteString(w, s.String())

	io.WriteString(w, "VsyncController:\n")
	sch.controller.Dump(w)

	io.WriteString(w, "VsyncDispatch:\n")
	sch.dispatch.Dump(w)
}

// End tears the schedule down. The tracer's registration is released first,
// guaranteeing that no in-flight callback observes a partially destroyed
// schedule, and then the dispatch is closed. The Schedule is unusable
// afterwards.
func (sch *Schedule) End() {
	if sch.tracer != nil {
		sch.tracer.end()
		sch.tracer = nil
	}
	sch.dispatch.Close()
}

// timerQueueDispatch adapts the concrete dispatch.TimerQueue to the
// Dispatch interface. Only RegisterCallback needs help; Dump and Close
// promote from the embedded queue.
type timerQueueDispatch struct {
	*dispatch.TimerQueue
}

func (d timerQueueDispatch) RegisterCallback(fn VsyncCallback, name string) (Registration, error) {
	reg, err := d.TimerQueue.RegisterCallback(dispatch.Callback(fn), name)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

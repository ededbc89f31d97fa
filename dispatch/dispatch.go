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

// Package dispatch converts predicted vsync deadlines into scheduled
// callback invocations.
//
// Callers register a callback once, receiving a Registration, and then arm
// the registration for one invocation at a time. The timer queue snaps
// nearby requests together so that many registrations waiting on the same
// vsync cost a single wakeup.
//
// A Registration is a scoped resource. Releasing it guarantees that the
// callback will not be invoked again: if the callback is running at the
// moment of release, Release() blocks until it has returned. For that
// reason a callback must never release its own registration.
package dispatch

import (
	"fmt"
	"io"
	"sync"
	"time"

	"beamsync/clock"
	"beamsync/curated"
	"beamsync/logger"
	"beamsync/timing"
)

// Error patterns returned by the dispatch package.
const (
	ReleasedRegistration = "dispatch: registration has been released"
	ClosedDispatch       = "dispatch: timer queue has been closed"
)

// Callback functions are invoked by the timer queue on its own goroutine.
// The arguments are the predicted vsync instant the invocation was armed
// for, the instant the wakeup actually happened and the instant by which
// the caller wanted to be ready.
type Callback func(vsyncTime, wakeupTime, readyTime timing.TimePoint)

// VsyncSource is the predictive model the timer queue asks for deadlines.
// Satisfied by tracker.Predictor.
type VsyncSource interface {
	NextAnticipatedVsyncTimeFrom(t timing.TimePoint) timing.TimePoint
}

// TimerQueue is the default vsync dispatch. Safe for concurrent use.
type TimerQueue struct {
	clk    clock.Clock
	timer  clock.Timer
	source VsyncSource

	// wakeups within the group window of one another are merged into one
	groupWithin time.Duration

	// rescheduling a registration within the snap window of its existing
	// target keeps the existing target
	snapWithin time.Duration

	crit   sync.Mutex
	idle   *sync.Cond
	regs   []*Registration
	closed bool
}

// NewTimerQueue creates a TimerQueue. The timer must measure alarm times
// against the supplied clock. Ownership of the timer transfers to the queue.
func NewTimerQueue(clk clock.Clock, timer clock.Timer, source VsyncSource, groupWithin, snapWithin time.Duration) *TimerQueue {
	q := &TimerQueue{
		clk:         clk,
		timer:       timer,
		source:      source,
		groupWithin: groupWithin,
		snapWithin:  snapWithin,
	}
	q.idle = sync.NewCond(&q.crit)
	return q
}

// RegisterCallback adds a callback to the timer queue. The name appears in
// diagnostic output. The callback is not armed until Schedule() is called on
// the returned Registration.
func (q *TimerQueue) RegisterCallback(fn Callback, name string) (*Registration, error) {
	q.crit.Lock()
	defer q.crit.Unlock()

	if q.closed {
		return nil, curated.Errorf(ClosedDispatch)
	}

	r := &Registration{q: q, fn: fn, name: name}
	q.regs = append(q.regs, r)
	return r, nil
}

// Dump writes a diagnostic description of every registration.
func (q *TimerQueue) Dump(w io.Writer) {
	q.crit.Lock()
	defer q.crit.Unlock()

	for _, r := range q.regs {
		if r.armed {
			fmt.Fprintf(w, "  %s: armed (vsync %v, wakeup %v)\n", r.name, r.vsync, r.target)
		} else {
			fmt.Fprintf(w, "  %s: idle\n", r.name)
		}
	}
}

// Close the timer queue. Armed registrations never fire, subsequent
// Schedule() and RegisterCallback() calls return errors. Close does not wait
// for a callback that is already in flight.
func (q *TimerQueue) Close() {
	q.crit.Lock()
	q.closed = true
	q.crit.Unlock()
	q.timer.Close()
	logger.Log("dispatch", "timer queue closed")
}

// fire is the timer's alarm function.
func (q *TimerQueue) fire() {
	q.crit.Lock()

	if q.closed {
		q.crit.Unlock()
		return
	}

	now := q.clk.Now()

	// gather every registration due within the group window of this wakeup
	due := make([]*Registration, 0, len(q.regs))
	for _, r := range q.regs {
		if r.armed && !r.target.After(now.Add(q.groupWithin)) {
			r.armed = false
			r.running = true
			due = append(due, r)
		}
	}
	q.crit.Unlock()

	// callbacks run without the queue's critical section held. they are
	// free to reschedule themselves
	for _, r := range due {
		r.fn(r.vsync, now, r.ready)
	}

	q.crit.Lock()
	for _, r := range due {
		r.running = false
	}
	q.idle.Broadcast()
	q.rearm()
	q.crit.Unlock()
}

// rearm the timer for the earliest armed registration, if there is one.
// called with the critical section locked.
func (q *TimerQueue) rearm() {
	if q.closed {
		return
	}

	var earliest *Registration
	for _, r := range q.regs {
		if r.armed && (earliest == nil || r.target.Before(earliest.target)) {
			earliest = r
		}
	}

	if earliest == nil {
		q.timer.Disarm()
		return
	}
	q.timer.ArmAt(earliest.target, q.fire)
}

// remove the registration from the queue. called with the critical section
// locked.
func (q *TimerQueue) remove(reg *Registration) {
	for i, r := range q.regs {
		if r == reg {
			q.regs = append(q.regs[:i], q.regs[i+1:]...)
			return
		}
	}
}

// Registration binds one callback to the timer queue that created it.
type Registration struct {
	q    *TimerQueue
	fn   Callback
	name string

	// all fields below are protected by the queue's critical section
	armed    bool
	running  bool
	released bool

	// the vsync this arm is aimed at and the derived wakeup/ready instants
	vsync  timing.TimePoint
	target timing.TimePoint
	ready  timing.TimePoint

	workDuration  time.Duration
	readyDuration time.Duration
}

// Schedule arms one future invocation of the callback. The invocation is
// aimed at the next predicted vsync no earlier than earliestVsync, woken
// workDuration+readyDuration ahead of it.
//
// Scheduling while already armed is allowed. If the newly predicted vsync
// falls within the snap window of the vsync already aimed at, the existing
// arm is kept; otherwise the arm moves to the new prediction.
func (r *Registration) Schedule(workDuration, readyDuration time.Duration, earliestVsync timing.TimePoint) error {
	r.q.crit.Lock()
	defer r.q.crit.Unlock()

	if r.released {
		return curated.Errorf(ReleasedRegistration)
	}
	if r.q.closed {
		return curated.Errorf(ClosedDispatch)
	}

	from := earliestVsync
	if now := r.q.clk.Now(); now.After(from) {
		from = now
	}
	vsync := r.q.source.NextAnticipatedVsyncTimeFrom(from)

	if r.armed {
		d := vsync.Sub(r.vsync)
		if d < 0 {
			d = -d
		}
		if d <= r.q.snapWithin {
			// same vsync to within the snap window. keep the existing arm
			return nil
		}
	}

	r.vsync = vsync
	r.workDuration = workDuration
	r.readyDuration = readyDuration
	r.ready = vsync.Add(-readyDuration)
	r.target = vsync.Add(-workDuration - readyDuration)
	r.armed = true

	r.q.rearm()
	return nil
}

// Cancel disarms the registration without releasing it. The registration
// can be scheduled again. Cancel does not wait for an in-flight invocation.
func (r *Registration) Cancel() {
	r.q.crit.Lock()
	defer r.q.crit.Unlock()

	if r.released {
		return
	}
	r.armed = false
	r.q.rearm()
}

// Release the registration. On return the callback is guaranteed not to be
// running and never to run again. Must not be called from the callback
// itself.
func (r *Registration) Release() {
	r.q.crit.Lock()
	defer r.q.crit.Unlock()

	if r.released {
		return
	}
	r.released = true
	r.armed = false
	r.q.remove(r)

	for r.running {
		r.q.idle.Wait()
	}
	r.q.rearm()
}

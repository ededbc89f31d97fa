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

package schedule

import (
	"io"
	"time"

	"beamsync/timing"
)

// Tracker is the predictive vsync model owned by a Schedule. The default
// implementation is tracker.Predictor.
//
// Implementations must be safe for concurrent use. The Schedule only ever
// reads through CurrentPeriod() and NextAnticipatedVsyncTimeFrom(); the
// write side belongs to the Controller.
type Tracker interface {
	// CurrentPeriod returns the latest period estimate. Non-blocking beyond
	// the tracker's own synchronisation.
	CurrentPeriod() timing.Period

	// NextAnticipatedVsyncTimeFrom returns the next predicted vsync instant
	// strictly after t.
	NextAnticipatedVsyncTimeFrom(t timing.TimePoint) timing.TimePoint

	// ResetModel discards the prediction history. Called by the Schedule
	// only on the Disabled to Enabled transition, when the hardware is
	// about to start supplying fresh pulses.
	ResetModel()
}

// VsyncCallback functions are invoked from the dispatch's own goroutine.
// See the dispatch package for the meaning of the arguments.
type VsyncCallback func(vsyncTime, wakeupTime, readyTime timing.TimePoint)

// Registration is the scoped resource binding a VsyncCallback to a
// Dispatch. Releasing it guarantees no further invocation.
type Registration interface {
	Schedule(workDuration, readyDuration time.Duration, earliestVsync timing.TimePoint) error
	Release()
}

// Dispatch is the timer queue service owned by a Schedule. The default
// implementation is dispatch.TimerQueue.
type Dispatch interface {
	RegisterCallback(fn VsyncCallback, name string) (Registration, error)
	Dump(w io.Writer)
	Close()
}

// Controller is the hardware feedback loop owned by a Schedule. The default
// implementation is reactor.Reactor.
//
// The Schedule itself only calls SetIgnorePresentFences() and Dump(); the
// feed operations are exposed to the platform layer through the
// Controller() accessor.
type Controller interface {
	AddHwVsyncTimestamp(t timing.TimePoint) bool
	AddPresentFenceTime(t timing.TimePoint) bool

	// AddPresentFence records a fence completion observed just now, stamped
	// with the controller's own clock.
	AddPresentFence() bool

	SetIgnorePresentFences(ignore bool)
	Dump(w io.Writer)
}

// SchedulerCallback is the platform hook that actually instructs the
// display hardware to start or stop emitting vsync pulses.
//
// Implementations are called with the Schedule's hardware vsync lock held
// and must be synchronous and bounded. In particular they must not call
// back into the Schedule.
type SchedulerCallback interface {
	SetVsyncEnabled(id timing.DisplayID, enabled bool)
}

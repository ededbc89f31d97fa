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

// Package clock provides the monotonic time source and the one-shot alarm
// used by the dispatch mechanism. The System clock reads the operating
// system's monotonic clock while the Simulated clock allows tests (and the
// fast-forward mode of the demonstration binary) to drive time by hand.
package clock

import (
	"beamsync/timing"
)

// Clock implementations supply monotonic time. Readings from two different
// Clock instances are not comparable.
type Clock interface {
	Now() timing.TimePoint
}

// Timer is a one-shot hardware-independent alarm. Arming a timer replaces
// any previously armed alarm.
//
// The goroutine on which the fire function runs is implementation defined.
// Fire functions should be brief and must not call back into the timer.
type Timer interface {
	// ArmAt schedules fire to be called at, or as soon as possible after,
	// the given time. A time in the past fires immediately.
	ArmAt(t timing.TimePoint, fire func())

	// Disarm cancels the pending alarm, if there is one. It does not wait
	// for an in-flight fire function to return.
	Disarm()

	// Close disarms the timer. The timer is unusable afterwards.
	Close()
}

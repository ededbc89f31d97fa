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

package clock

import (
	"sync"
	"time"

	"beamsync/timing"
)

// System is the real monotonic clock. The zero value is ready to use.
type System struct{}

// reference instant for the portable time reading. the monotonic component
// of a time.Time makes Since() immune to wall clock adjustment.
var processStart = time.Now()

func portableNow() timing.TimePoint {
	return timing.TimePoint(time.Since(processStart).Nanoseconds())
}

// SystemTimer is a one-shot alarm measured against a Clock. The fire
// function runs on its own goroutine.
type SystemTimer struct {
	clk Clock

	mu      sync.Mutex
	pending *time.Timer
	closed  bool
}

// NewSystemTimer creates a SystemTimer measuring alarm times against the
// supplied clock.
func NewSystemTimer(clk Clock) *SystemTimer {
	return &SystemTimer{clk: clk}
}

// ArmAt implements the Timer interface.
func (st *SystemTimer) ArmAt(t timing.TimePoint, fire func()) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return
	}

	if st.pending != nil {
		st.pending.Stop()
	}

	d := t.Sub(st.clk.Now())
	if d < 0 {
		d = 0
	}
	st.pending = time.AfterFunc(d, fire)
}

// Disarm implements the Timer interface.
func (st *SystemTimer) Disarm() {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.pending != nil {
		st.pending.Stop()
		st.pending = nil
	}
}

// Close implements the Timer interface.
func (st *SystemTimer) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.pending != nil {
		st.pending.Stop()
		st.pending = nil
	}
	st.closed = true
}

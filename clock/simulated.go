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

// Simulated is a Clock that only moves when Advance() is called. Alarms due
// within the advanced interval fire on the caller's goroutine, in due order,
// with the clock reading the alarm's own due time while the fire function
// runs. This makes tests of time-dependent behaviour fully deterministic.
type Simulated struct {
	mu     sync.Mutex
	now    timing.TimePoint
	alarms []*simAlarm
}

type simAlarm struct {
	when  timing.TimePoint
	fire  func()
	owner *SimulatedTimer
}

// NewSimulated creates a Simulated clock reading zero.
func NewSimulated() *Simulated {
	return &Simulated{}
}

// Now implements the Clock interface.
func (c *Simulated) Now() timing.TimePoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Timer creates a one-shot alarm measured against this clock. An alarm armed
// for a time that has already passed fires on the next call to Advance(),
// however small the advancement.
func (c *Simulated) Timer() *SimulatedTimer {
	return &SimulatedTimer{clk: c}
}

// Advance moves the clock forward by the duration d, firing every due alarm
// along the way. Alarms armed by a firing alarm are themselves candidates if
// they fall within the same advancement.
func (c *Simulated) Advance(d time.Duration) {
	c.mu.Lock()
	end := c.now.Add(d)

	for {
		idx := -1
		for i, a := range c.alarms {
			if a.when.After(end) {
				continue
			}
			if idx == -1 || a.when.Before(c.alarms[idx].when) {
				idx = i
			}
		}
		if idx == -1 {
			break
		}

		a := c.alarms[idx]
		c.alarms = append(c.alarms[:idx], c.alarms[idx+1:]...)
		if a.when.After(c.now) {
			c.now = a.when
		}

		// the alarm must run without the clock lock. the fire function is
		// free to read the clock and to arm more alarms
		c.mu.Unlock()
		a.fire()
		c.mu.Lock()
	}

	c.now = end
	c.mu.Unlock()
}

// remove any alarm belonging to the timer. called with the lock held.
func (c *Simulated) disarm(owner *SimulatedTimer) {
	for i, a := range c.alarms {
		if a.owner == owner {
			c.alarms = append(c.alarms[:i], c.alarms[i+1:]...)
			return
		}
	}
}

// SimulatedTimer is the Timer counterpart to the Simulated clock.
type SimulatedTimer struct {
	clk    *Simulated
	closed bool
}

// ArmAt implements the Timer interface.
func (st *SimulatedTimer) ArmAt(t timing.TimePoint, fire func()) {
	st.clk.mu.Lock()
	defer st.clk.mu.Unlock()

	if st.closed {
		return
	}

	st.clk.disarm(st)
	st.clk.alarms = append(st.clk.alarms, &simAlarm{when: t, fire: fire, owner: st})
}

// Disarm implements the Timer interface.
func (st *SimulatedTimer) Disarm() {
	st.clk.mu.Lock()
	defer st.clk.mu.Unlock()
	st.clk.disarm(st)
}

// Close implements the Timer interface.
func (st *SimulatedTimer) Close() {
	st.clk.mu.Lock()
	defer st.clk.mu.Unlock()
	st.clk.disarm(st)
	st.closed = true
}

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

// Package timing defines the value types shared by every part of beamsync.
//
// A good way of thinking about a TimePoint is as a reading of the display's
// own wristwatch. TimePoints are monotonic and have no relationship to the
// wall clock. They define *when* something happened (a hardware pulse was
// seen, a present fence signalled, a vsync is predicted to occur) relative to
// an arbitrary and unknowable starting instant.
//
// Periods measure the interval between two vsync events. A Period is derived
// information and should always be read through whatever component estimated
// it, never cached.
package timing

import (
	"fmt"
	"time"
)

// DisplayID uniquely identifies the physical display a schedule governs. It
// is fixed on creation of the schedule and never changes.
type DisplayID string

func (id DisplayID) String() string {
	return string(id)
}

// TimePoint is an absolute monotonic timestamp with nanosecond resolution.
type TimePoint int64

// Add returns t offset forwards by the duration d.
func (t TimePoint) Add(d time.Duration) TimePoint {
	return t + TimePoint(d)
}

// Sub returns the duration between t and u. The result is negative if u is
// later than t.
func (t TimePoint) Sub(u TimePoint) time.Duration {
	return time.Duration(t - u)
}

// Before returns true if t is earlier than u.
func (t TimePoint) Before(u TimePoint) bool {
	return t < u
}

// After returns true if t is later than u.
func (t TimePoint) After(u TimePoint) bool {
	return t > u
}

func (t TimePoint) String() string {
	return fmt.Sprintf("%dns", int64(t))
}

// Period is the interval between two successive vsync events. A Period is
// never negative.
type Period time.Duration

// Hz returns the refresh rate equivalent to the period. A zero period
// returns zero rather than dividing by zero.
func (p Period) Hz() float64 {
	if p <= 0 {
		return 0
	}
	return float64(time.Second) / float64(p)
}

// Duration returns the period as a time.Duration.
func (p Period) Duration() time.Duration {
	return time.Duration(p)
}

func (p Period) String() string {
	return fmt.Sprintf("%v (%.2fHz)", time.Duration(p), p.Hz())
}

// PeriodFromHz converts a refresh rate to the equivalent Period.
func PeriodFromHz(hz float64) Period {
	if hz <= 0 {
		return 0
	}
	return Period(float64(time.Second) / hz)
}

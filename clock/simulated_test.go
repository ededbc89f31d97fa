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

package clock_test

import (
	"testing"
	"time"

	"beamsync/clock"
	"beamsync/test"
	"beamsync/timing"
)

func TestSimulatedAdvance(t *testing.T) {
	clk := clock.NewSimulated()
	test.Equate(t, clk.Now(), 0)

	clk.Advance(10 * time.Millisecond)
	test.Equate(t, clk.Now(), 10000000)
}

func TestSimulatedAlarm(t *testing.T) {
	clk := clock.NewSimulated()
	tmr := clk.Timer()

	var fired []timing.TimePoint
	tmr.ArmAt(5000000, func() {
		fired = append(fired, clk.Now())
	})

	// an alarm only fires once its due time is reached
	clk.Advance(4 * time.Millisecond)
	test.Equate(t, len(fired), 0)

	// the clock reads the alarm's due time while the alarm runs
	clk.Advance(4 * time.Millisecond)
	test.Equate(t, len(fired), 1)
	test.Equate(t, fired[0], 5000000)
	test.Equate(t, clk.Now(), 8000000)

	// one-shot: the alarm does not fire again
	clk.Advance(100 * time.Millisecond)
	test.Equate(t, len(fired), 1)
}

func TestSimulatedRearmWhileFiring(t *testing.T) {
	clk := clock.NewSimulated()
	tmr := clk.Timer()

	// an alarm that re-arms itself fires repeatedly within one advancement
	var fired []timing.TimePoint
	var arm func(at timing.TimePoint)
	arm = func(at timing.TimePoint) {
		tmr.ArmAt(at, func() {
			fired = append(fired, clk.Now())
			arm(clk.Now().Add(10 * time.Millisecond))
		})
	}
	arm(10000000)

	clk.Advance(45 * time.Millisecond)
	test.Equate(t, len(fired), 4)
	test.Equate(t, fired[0], 10000000)
	test.Equate(t, fired[3], 40000000)
	test.Equate(t, clk.Now(), 45000000)
}

func TestSimulatedDisarm(t *testing.T) {
	clk := clock.NewSimulated()
	tmr := clk.Timer()

	fired := 0
	tmr.ArmAt(5000000, func() { fired++ })
	tmr.Disarm()

	clk.Advance(10 * time.Millisecond)
	test.Equate(t, fired, 0)
}

func TestSimulatedRearmReplaces(t *testing.T) {
	clk := clock.NewSimulated()
	tmr := clk.Timer()

	var fired []timing.TimePoint
	record := func() { fired = append(fired, clk.Now()) }

	// arming again moves the single alarm rather than adding a second one
	tmr.ArmAt(5000000, record)
	tmr.ArmAt(8000000, record)

	clk.Advance(10 * time.Millisecond)
	test.Equate(t, len(fired), 1)
	test.Equate(t, fired[0], 8000000)
}

func TestSimulatedPastAlarm(t *testing.T) {
	clk := clock.NewSimulated()
	tmr := clk.Timer()

	clk.Advance(10 * time.Millisecond)

	// an alarm armed in the past fires on the next advancement without
	// winding the clock backwards
	fired := 0
	tmr.ArmAt(5000000, func() {
		fired++
		test.Equate(t, clk.Now(), 10000000)
	})

	clk.Advance(time.Nanosecond)
	test.Equate(t, fired, 1)
}

func TestSimulatedClosedTimer(t *testing.T) {
	clk := clock.NewSimulated()
	tmr := clk.Timer()

	fired := 0
	tmr.ArmAt(5000000, func() { fired++ })
	tmr.Close()

	// closing disarms, and a closed timer cannot be armed again
	tmr.ArmAt(6000000, func() { fired++ })
	clk.Advance(10 * time.Millisecond)
	test.Equate(t, fired, 0)
}

func TestSimulatedTwoTimers(t *testing.T) {
	clk := clock.NewSimulated()
	a := clk.Timer()
	b := clk.Timer()

	var order []string
	a.ArmAt(8000000, func() { order = append(order, "a") })
	b.ArmAt(5000000, func() { order = append(order, "b") })

	// alarms fire in due order regardless of arming order
	clk.Advance(10 * time.Millisecond)
	test.Equate(t, len(order), 2)
	test.Equate(t, order[0], "b")
	test.Equate(t, order[1], "a")
}

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

package dispatch_test

import (
	"testing"
	"time"

	"beamsync/clock"
	"beamsync/curated"
	"beamsync/dispatch"
	"beamsync/test"
	"beamsync/timing"
)

// gridSource predicts vsyncs on a fixed grid. deterministic stand-in for the
// tracker.
type gridSource struct {
	base   timing.TimePoint
	period time.Duration
}

func (s gridSource) NextAnticipatedVsyncTimeFrom(t timing.TimePoint) timing.TimePoint {
	next := s.base
	for !next.After(t) {
		next = next.Add(s.period)
	}
	return next
}

// invocation records one callback invocation.
type invocation struct {
	vsync  timing.TimePoint
	wakeup timing.TimePoint
	ready  timing.TimePoint
}

func newQueue() (*clock.Simulated, *dispatch.TimerQueue) {
	clk := clock.NewSimulated()
	q := dispatch.NewTimerQueue(clk, clk.Timer(), gridSource{period: 16 * time.Millisecond},
		500*time.Microsecond, 3*time.Millisecond)
	return clk, q
}

func TestFire(t *testing.T) {
	clk, q := newQueue()

	var got []invocation
	reg, err := q.RegisterCallback(func(v, w, r timing.TimePoint) {
		got = append(got, invocation{v, w, r})
	}, "test")
	test.ExpectedSuccess(t, err)

	// aimed at the 16ms vsync, woken 3ms ahead of it and ready 1ms ahead
	test.ExpectedSuccess(t, reg.Schedule(2*time.Millisecond, time.Millisecond, 0))

	// nothing fires before the wakeup time
	clk.Advance(12 * time.Millisecond)
	test.Equate(t, len(got), 0)

	clk.Advance(8 * time.Millisecond)
	test.Equate(t, len(got), 1)
	test.Equate(t, got[0].vsync, 16000000)
	test.Equate(t, got[0].wakeup, 13000000)
	test.Equate(t, got[0].ready, 15000000)

	// a registration arms one invocation at a time
	clk.Advance(100 * time.Millisecond)
	test.Equate(t, len(got), 1)
}

func TestSelfReschedule(t *testing.T) {
	clk, q := newQueue()

	var reg *dispatch.Registration
	var got []invocation
	reg, err := q.RegisterCallback(func(v, w, r timing.TimePoint) {
		got = append(got, invocation{v, w, r})
		reg.Schedule(0, 0, 0)
	}, "test")
	test.ExpectedSuccess(t, err)
	test.ExpectedSuccess(t, reg.Schedule(0, 0, 0))

	// one invocation per 16ms vsync across the whole advancement
	clk.Advance(100 * time.Millisecond)
	test.Equate(t, len(got), 6)
	for i, inv := range got {
		test.Equate(t, inv.vsync, 16000000*(i+1))
		test.Equate(t, inv.wakeup, 16000000*(i+1))
	}
}

func TestGroupedWakeup(t *testing.T) {
	clk, q := newQueue()

	var gotA, gotB []invocation
	regA, _ := q.RegisterCallback(func(v, w, r timing.TimePoint) {
		gotA = append(gotA, invocation{v, w, r})
	}, "a")
	regB, _ := q.RegisterCallback(func(v, w, r timing.TimePoint) {
		gotB = append(gotB, invocation{v, w, r})
	}, "b")

	// both aim at the 16ms vsync but b wants waking 400us earlier. the two
	// wakeups are within the group window so a piggybacks on b's alarm
	test.ExpectedSuccess(t, regA.Schedule(0, 0, 0))
	test.ExpectedSuccess(t, regB.Schedule(400*time.Microsecond, 0, 0))

	clk.Advance(15600 * time.Microsecond)
	test.Equate(t, len(gotA), 1)
	test.Equate(t, len(gotB), 1)
	test.Equate(t, gotA[0].wakeup, 15600000)
	test.Equate(t, gotB[0].wakeup, 15600000)
	test.Equate(t, gotA[0].vsync, 16000000)
	test.Equate(t, gotB[0].vsync, 16000000)
}

func TestSnapToSameVsync(t *testing.T) {
	clk, q := newQueue()

	var got []invocation
	reg, _ := q.RegisterCallback(func(v, w, r timing.TimePoint) {
		got = append(got, invocation{v, w, r})
	}, "test")

	// the second schedule resolves to the same vsync so the existing arm,
	// including its original wakeup offset, is kept
	test.ExpectedSuccess(t, reg.Schedule(0, 0, 0))
	test.ExpectedSuccess(t, reg.Schedule(time.Millisecond, 0, 0))

	clk.Advance(20 * time.Millisecond)
	test.Equate(t, len(got), 1)
	test.Equate(t, got[0].wakeup, 16000000)
}

func TestRescheduleMovesArm(t *testing.T) {
	clk, q := newQueue()

	var got []invocation
	reg, _ := q.RegisterCallback(func(v, w, r timing.TimePoint) {
		got = append(got, invocation{v, w, r})
	}, "test")

	// the second schedule aims at a vsync outside the snap window so the arm
	// moves. only the later vsync fires
	test.ExpectedSuccess(t, reg.Schedule(0, 0, 0))
	test.ExpectedSuccess(t, reg.Schedule(0, 0, 17000000))

	clk.Advance(40 * time.Millisecond)
	test.Equate(t, len(got), 1)
	test.Equate(t, got[0].vsync, 32000000)
}

func TestCancel(t *testing.T) {
	clk, q := newQueue()

	var got []invocation
	reg, _ := q.RegisterCallback(func(v, w, r timing.TimePoint) {
		got = append(got, invocation{v, w, r})
	}, "test")

	test.ExpectedSuccess(t, reg.Schedule(0, 0, 0))
	reg.Cancel()

	clk.Advance(40 * time.Millisecond)
	test.Equate(t, len(got), 0)

	// a cancelled registration can be armed again
	test.ExpectedSuccess(t, reg.Schedule(0, 0, 0))
	clk.Advance(20 * time.Millisecond)
	test.Equate(t, len(got), 1)
}

func TestRelease(t *testing.T) {
	clk, q := newQueue()

	var got []invocation
	reg, _ := q.RegisterCallback(func(v, w, r timing.TimePoint) {
		got = append(got, invocation{v, w, r})
	}, "test")

	test.ExpectedSuccess(t, reg.Schedule(0, 0, 0))
	reg.Release()

	clk.Advance(40 * time.Millisecond)
	test.Equate(t, len(got), 0)

	err := reg.Schedule(0, 0, 0)
	test.ExpectedFailure(t, err)
	if !curated.Is(err, dispatch.ReleasedRegistration) {
		t.Errorf("unexpected error: %v", err)
	}

	// releasing again is a no-op
	reg.Release()
}

func TestClose(t *testing.T) {
	clk, q := newQueue()

	var got []invocation
	reg, _ := q.RegisterCallback(func(v, w, r timing.TimePoint) {
		got = append(got, invocation{v, w, r})
	}, "test")
	test.ExpectedSuccess(t, reg.Schedule(0, 0, 0))

	q.Close()

	clk.Advance(40 * time.Millisecond)
	test.Equate(t, len(got), 0)

	err := reg.Schedule(0, 0, 0)
	test.ExpectedFailure(t, err)
	if !curated.Is(err, dispatch.ClosedDispatch) {
		t.Errorf("unexpected error: %v", err)
	}

	_, err = q.RegisterCallback(func(_, _, _ timing.TimePoint) {}, "late")
	test.ExpectedFailure(t, err)
	if !curated.Is(err, dispatch.ClosedDispatch) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDump(t *testing.T) {
	_, q := newQueue()

	reg, _ := q.RegisterCallback(func(_, _, _ timing.TimePoint) {}, "frame")

	tw := &test.Writer{}
	q.Dump(tw)
	tw.Contains(t, "frame: idle")

	test.ExpectedSuccess(t, reg.Schedule(0, 0, 0))
	tw.Clear()
	q.Dump(tw)
	tw.Contains(t, "frame: armed")
}

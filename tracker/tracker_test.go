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

package tracker_test

import (
	"testing"
	"time"

	"beamsync/test"
	"beamsync/timing"
	"beamsync/tracker"
)

// the least squares fit goes through float64 so a nanosecond or so of noise
// is acceptable in a period estimate.
func periodNear(t *testing.T, got timing.Period, want time.Duration) {
	t.Helper()

	d := time.Duration(got) - want
	if d < 0 {
		d = -d
	}
	if d > time.Microsecond {
		t.Errorf("period estimate %v too far from %v", got, want)
	}
}

func TestBeforePrediction(t *testing.T) {
	p := tracker.NewPredictor("test", 10*time.Millisecond, 20, 6, 20)

	test.Equate(t, p.CurrentPeriod(), 10*time.Millisecond)
	test.Equate(t, p.NeedsMoreSamples(), true)

	// with no pulses at all the model ticks from zero at the initial period
	test.Equate(t, p.NextAnticipatedVsyncTimeFrom(0), 10000000)
	test.Equate(t, p.NextAnticipatedVsyncTimeFrom(25000000), 30000000)

	// with too few pulses for a fit the latest pulse fixes the phase
	test.Equate(t, p.AddVsyncTimestamp(5000000), true)
	test.Equate(t, p.AddVsyncTimestamp(17000000), true)
	test.Equate(t, p.AddVsyncTimestamp(29000000), true)
	test.Equate(t, p.CurrentPeriod(), 10*time.Millisecond)
	test.Equate(t, p.NextAnticipatedVsyncTimeFrom(30000000), 39000000)
}

func TestFit(t *testing.T) {
	p := tracker.NewPredictor("test", 10*time.Millisecond, 20, 6, 20)

	// 12ms cadence starting at 5ms
	ts := timing.TimePoint(5000000)
	for i := 0; i < 5; i++ {
		test.Equate(t, p.AddVsyncTimestamp(ts), true)
		ts = ts.Add(12 * time.Millisecond)
	}
	test.Equate(t, p.AddVsyncTimestamp(ts), false)
	test.Equate(t, p.NeedsMoreSamples(), false)

	periodNear(t, p.CurrentPeriod(), 12*time.Millisecond)

	// last pulse was at 65ms so the next vsync is near 77ms
	next := p.NextAnticipatedVsyncTimeFrom(65000000)
	if next.Sub(77000000) > time.Microsecond || next.Sub(77000000) < -time.Microsecond {
		t.Errorf("prediction %v too far from 77ms", next)
	}

	// predictions are strictly after the query time
	if !next.After(65000000) {
		t.Errorf("prediction %v not after query time", next)
	}
}

func TestOutlierDiscard(t *testing.T) {
	p := tracker.NewPredictor("test", 10*time.Millisecond, 20, 10, 20)

	// a 12ms grid with one pulse reported 3ms late. a plain fit would tilt;
	// the discard pass drops the late pulse and recovers the true period
	ts := timing.TimePoint(5000000)
	for i := 0; i < 10; i++ {
		pulse := ts
		if i == 4 {
			pulse = pulse.Add(3 * time.Millisecond)
		}
		p.AddVsyncTimestamp(pulse)
		ts = ts.Add(12 * time.Millisecond)
	}

	periodNear(t, p.CurrentPeriod(), 12*time.Millisecond)
}

func TestResetModel(t *testing.T) {
	p := tracker.NewPredictor("test", 10*time.Millisecond, 20, 2, 0)

	p.AddVsyncTimestamp(0)
	test.Equate(t, p.AddVsyncTimestamp(12000000), false)
	test.Equate(t, p.CurrentPeriod(), 12*time.Millisecond)

	// a reset discards the history but keeps the estimate
	p.ResetModel()
	test.Equate(t, p.NeedsMoreSamples(), true)
	test.Equate(t, p.CurrentPeriod(), 12*time.Millisecond)

	// predictions remain continuous with the pre-reset phase
	test.Equate(t, p.NextAnticipatedVsyncTimeFrom(12000000), 24000000)
}

func TestOutOfOrderPulse(t *testing.T) {
	p := tracker.NewPredictor("test", 10*time.Millisecond, 20, 2, 0)

	test.Equate(t, p.AddVsyncTimestamp(100000000), true)

	// an out of order pulse is dropped and does not count towards the fit
	test.Equate(t, p.AddVsyncTimestamp(90000000), true)
	test.Equate(t, p.NeedsMoreSamples(), true)

	test.Equate(t, p.AddVsyncTimestamp(112000000), false)
	test.Equate(t, p.CurrentPeriod(), 12*time.Millisecond)
}

func TestPredictionMonotonic(t *testing.T) {
	p := tracker.NewPredictor("test", 10*time.Millisecond, 20, 6, 20)

	ts := timing.TimePoint(3000000)
	for i := 0; i < 8; i++ {
		p.AddVsyncTimestamp(ts)
		ts = ts.Add(16 * time.Millisecond)
	}

	prev := p.NextAnticipatedVsyncTimeFrom(0)
	for q := timing.TimePoint(0); q < 500000000; q = q.Add(time.Millisecond) {
		next := p.NextAnticipatedVsyncTimeFrom(q)
		if !next.After(q) {
			t.Fatalf("prediction %v not after query time %v", next, q)
		}
		if next.Before(prev) {
			t.Fatalf("prediction went backwards (%v after %v)", next, prev)
		}
		prev = next
	}
}

func TestClamping(t *testing.T) {
	// nonsense tunables are clamped rather than rejected
	p := tracker.NewPredictor("test", -1, 0, 0, 100)
	test.Equate(t, p.CurrentPeriod(), time.Second/60)

	p.AddVsyncTimestamp(0)
	test.Equate(t, p.AddVsyncTimestamp(16000000), false)
}

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
	"sync/atomic"

	"beamsync/curated"
	"beamsync/dispatch"
	"beamsync/logger"
	"beamsync/timing"
)

// predictedVsyncTracer produces a free running software-predicted toggle
// signal for diagnostic visualisation, independent of whether hardware
// vsync is actually enabled.
//
// The tracer registers a callback with the dispatch and arms it at zero
// offsets, meaning "at the next predicted vsync, with no workload or
// readiness allowance". Each invocation flips the parity bit and re-arms
// for the following predicted vsync. The loop ends only when the tracer is
// released.
type predictedVsyncTracer struct {
	parity atomic.Bool
	reg    Registration
}

// startPredictedVsyncTracer registers with the dispatch and arms the first
// invocation.
func startPredictedVsyncTracer(d Dispatch) (*predictedVsyncTracer, error) {
	tr := &predictedVsyncTracer{}

	reg, err := d.RegisterCallback(tr.vsyncCallback, "PredictedVsyncTracer")
	if err != nil {
		return nil, err
	}
	tr.reg = reg

	tr.schedule()
	return tr, nil
}

// invoked from the goroutine of the dispatch owned by this schedule. the
// timestamps supplied by the dispatch are of no interest to the tracer.
func (tr *predictedVsyncTracer) vsyncCallback(_, _, _ timing.TimePoint) {
	tr.parity.Store(!tr.parity.Load())
	tr.schedule()
}

func (tr *predictedVsyncTracer) schedule() {
	if err := tr.reg.Schedule(0, 0, 0); err != nil {
		// a released registration during teardown is the expected way for
		// the loop to stop. anything else is worth a log entry, but the
		// tracer is diagnostic-only and never retries
		if !curated.Is(err, dispatch.ReleasedRegistration) {
			logger.Logf("schedule", "predicted-vsync tracer: %v", err)
		}
	}
}

// end releases the dispatch registration. on return the callback is
// guaranteed never to run again.
func (tr *predictedVsyncTracer) end() {
	tr.reg.Release()
}

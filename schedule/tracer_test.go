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
	"testing"
	"time"

	"beamsync/curated"
	"beamsync/dispatch"
	"beamsync/test"
	"beamsync/timing"
)

// fakeRegistration hands the registered callback back to the test so it can
// be invoked directly, standing in for a timer firing.
type fakeRegistration struct {
	fn        VsyncCallback
	scheduled int
	released  bool
}

func (r *fakeRegistration) Schedule(_, _ time.Duration, _ timing.TimePoint) error {
	if r.released {
		return curated.Errorf(dispatch.ReleasedRegistration)
	}
	r.scheduled++
	return nil
}

func (r *fakeRegistration) Release() {
	r.released = true
}

type fakeDispatch struct {
	reg *fakeRegistration
}

func (d *fakeDispatch) RegisterCallback(fn VsyncCallback, _ string) (Registration, error) {
	d.reg = &fakeRegistration{fn: fn}
	return d.reg, nil
}

func (d *fakeDispatch) Dump(_ io.Writer) {
}

func (d *fakeDispatch) Close() {
}

func TestTracerParity(t *testing.T) {
	d := &fakeDispatch{}

	tracer, err := startPredictedVsyncTracer(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the tracer arms itself immediately on creation
	test.Equate(t, d.reg.scheduled, 1)
	test.Equate(t, tracer.parity.Load(), false)

	// every invocation flips the parity and re-arms
	d.reg.fn(0, 0, 0)
	test.Equate(t, tracer.parity.Load(), true)
	test.Equate(t, d.reg.scheduled, 2)

	d.reg.fn(0, 0, 0)
	test.Equate(t, tracer.parity.Load(), false)
	test.Equate(t, d.reg.scheduled, 3)
}

func TestTracerEnd(t *testing.T) {
	d := &fakeDispatch{}

	tracer, err := startPredictedVsyncTracer(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tracer.end()
	test.Equate(t, d.reg.released, true)

	// a straggling invocation after the release must not re-arm. the
	// schedule error from the released registration is swallowed silently
	d.reg.fn(0, 0, 0)
	test.Equate(t, d.reg.scheduled, 1)
}

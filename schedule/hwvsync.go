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

import "sync"

// hwVsyncState is the condition of the hardware vsync signal as far as the
// schedule is concerned. The set is closed; there is no catch-all value.
type hwVsyncState int

const (
	// the hardware is not emitting vsync pulses but may be asked to
	hwVsyncDisabled hwVsyncState = iota

	// the hardware has been asked to emit vsync pulses
	hwVsyncEnabled

	// the hardware is not emitting pulses and requests to enable are
	// refused until allow() is called
	hwVsyncDisallowed
)

func (s hwVsyncState) String() string {
	switch s {
	case hwVsyncDisabled:
		return "Disabled"
	case hwVsyncEnabled:
		return "Enabled"
	case hwVsyncDisallowed:
		return "Disallowed"
	}
	return "undefined"
}

// hwVsync is the hardware vsync enable state machine. The transition
// functions below are the only code allowed to change the state.
//
// Enabling and disabling hardware vsync is expensive, possibly changing
// power state or starting an interrupt source, so transitions are
// deduplicated: the side effecting functions run only when an edge between
// Disabled and Enabled is actually crossed. The Disallowed state overrides
// ordinary enable requests and is entered and left explicitly, never as a
// side effect of enable.
type hwVsync struct {
	crit  sync.Mutex
	state hwVsyncState

	// the last observed non-disallowed state. diagnostic only: it remembers
	// whether the display was actively enabled before being disallowed
	last hwVsyncState
}

// enable performs the Disabled to Enabled transition. The reset and on
// functions run, in that order, inside the critical section and only when
// the edge is actually crossed. Their duration is assumed to be bounded;
// they must not call back into the state machine.
//
// Enabling while Enabled or Disallowed does nothing.
func (hw *hwVsync) enable(reset func(), on func()) {
	hw.crit.Lock()
	defer hw.crit.Unlock()

	if hw.state != hwVsyncDisabled {
		return
	}

	reset()
	on()
	hw.state = hwVsyncEnabled
	hw.last = hwVsyncEnabled
}

// disable turns the hardware off, if it is on, and then sets the state to
// Disallowed or Disabled according to the disallow argument. The off
// function runs inside the critical section and only on the Enabled edge;
// the disallow bit is recorded regardless of the prior state. This lets a
// caller disable and forbid future enabling in one atomic step.
func (hw *hwVsync) disable(off func(), disallow bool) {
	hw.crit.Lock()
	defer hw.crit.Unlock()

	if hw.state == hwVsyncEnabled {
		off()
		hw.last = hwVsyncDisabled
	}

	if disallow {
		hw.state = hwVsyncDisallowed
	} else {
		hw.state = hwVsyncDisabled
	}
}

// allowed returns true unless the state is Disallowed.
func (hw *hwVsync) allowed() bool {
	hw.crit.Lock()
	defer hw.crit.Unlock()
	return hw.state != hwVsyncDisallowed
}

// allow leaves the Disallowed state, re-permitting future enable calls. It
// touches neither the hardware nor the tracker. No effect unless the state
// is Disallowed.
func (hw *hwVsync) allow() {
	hw.crit.Lock()
	defer hw.crit.Unlock()

	if hw.state == hwVsyncDisallowed {
		hw.state = hwVsyncDisabled
	}
}

// snapshot returns the current state and the last observed non-disallowed
// state. For diagnostic output.
func (hw *hwVsync) snapshot() (current, last hwVsyncState) {
	hw.crit.Lock()
	defer hw.crit.Unlock()
	return hw.state, hw.last
}

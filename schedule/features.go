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

// Feature identifies an optional behaviour of a Schedule.
type Feature int

// List of recognised features.
const (
	// TracePredictedVsync enables the diagnostic predicted-vsync tracer.
	TracePredictedVsync Feature = iota

	// KernelIdleTimer informs the controller that the display has a
	// hardware idle timer.
	KernelIdleTimer

	// PresentFences allows present fence completion timestamps to feed the
	// tracker. Without it the controller is told to ignore fences.
	PresentFences
)

// FeatureFlags is an immutable set of features, fixed when the Schedule is
// constructed.
type FeatureFlags uint8

// Features collects any number of Feature values into a FeatureFlags set.
func Features(features ...Feature) FeatureFlags {
	var ff FeatureFlags
	for _, f := range features {
		ff |= 1 << uint(f)
	}
	return ff
}

// Has returns true if the feature is in the set.
func (ff FeatureFlags) Has(f Feature) bool {
	return ff&(1<<uint(f)) != 0
}

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

//go:build linux

package clock

import (
	"golang.org/x/sys/unix"

	"beamsync/timing"
)

// Now implements the Clock interface. The reading is taken directly from
// CLOCK_MONOTONIC, the same clock the display driver stamps vsync events
// with.
func (System) Now() timing.TimePoint {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// ClockGettime on a valid clock id does not fail in practice.
		// fall back to the portable reading rather than panic
		return portableNow()
	}
	return timing.TimePoint(ts.Nano())
}

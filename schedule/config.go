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

import "time"

// Config collects the tunable policy constants used when a Schedule
// constructs its own collaborators. The zero value of any field means "use
// the default".
type Config struct {
	// the period assumed before the tracker has seen any pulses
	InitialPeriod time.Duration

	// how many observed pulses the tracker keeps
	HistorySize int

	// how many pulses the tracker wants before trusting a fit
	MinSamplesForPrediction int

	// percentage of the history, worst residuals first, discarded before
	// the tracker's second fitting pass. a negative value disables the
	// second pass entirely
	DiscardOutlierPercent int

	// dispatch wakeups closer together than this are merged. trades
	// dispatch precision for fewer wakeups
	GroupDispatchWithin time.Duration

	// a reschedule landing within this window of the vsync already aimed
	// at keeps the existing arm
	SnapToSameVsyncWithin time.Duration

	// upper bound on present fences the controller holds on to
	MaxPendingFences int
}

// DefaultConfig returns the configuration used when no overrides are given.
func DefaultConfig() Config {
	return Config{
		InitialPeriod:           time.Second / 60,
		HistorySize:             20,
		MinSamplesForPrediction: 6,
		DiscardOutlierPercent:   20,
		GroupDispatchWithin:     500 * time.Microsecond,
		SnapToSameVsyncWithin:   3 * time.Millisecond,
		MaxPendingFences:        20,
	}
}

// setDefaults replaces zero valued fields with the default values.
func (c *Config) setDefaults() {
	def := DefaultConfig()
	if c.InitialPeriod <= 0 {
		c.InitialPeriod = def.InitialPeriod
	}
	if c.HistorySize <= 0 {
		c.HistorySize = def.HistorySize
	}
	if c.MinSamplesForPrediction <= 0 {
		c.MinSamplesForPrediction = def.MinSamplesForPrediction
	}
	if c.DiscardOutlierPercent == 0 {
		c.DiscardOutlierPercent = def.DiscardOutlierPercent
	}
	if c.GroupDispatchWithin <= 0 {
		c.GroupDispatchWithin = def.GroupDispatchWithin
	}
	if c.SnapToSameVsyncWithin <= 0 {
		c.SnapToSameVsyncWithin = def.SnapToSameVsyncWithin
	}
	if c.MaxPendingFences <= 0 {
		c.MaxPendingFences = def.MaxPendingFences
	}
}

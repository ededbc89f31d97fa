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

package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"beamsync/schedule"
)

// file format for the -config flag. durations are strings in the form
// accepted by time.ParseDuration ("500us", "3ms", ...). absent fields take
// the schedule defaults; discard_outlier_percent may be negative to disable
// the outlier pass.
type configFile struct {
	InitialPeriod           string `yaml:"initial_period"`
	HistorySize             int    `yaml:"history_size"`
	MinSamplesForPrediction int    `yaml:"min_samples_for_prediction"`
	DiscardOutlierPercent   int    `yaml:"discard_outlier_percent"`
	GroupDispatchWithin     string `yaml:"group_dispatch_within"`
	SnapToSameVsyncWithin   string `yaml:"snap_to_same_vsync_within"`
	MaxPendingFences        int    `yaml:"max_pending_fences"`
}

func loadConfig(path string) (schedule.Config, error) {
	cfg := schedule.Config{}

	d, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	cf := configFile{}
	if err := yaml.Unmarshal(d, &cf); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	cfg.InitialPeriod, err = parseDuration(path, "initial_period", cf.InitialPeriod)
	if err != nil {
		return cfg, err
	}
	cfg.GroupDispatchWithin, err = parseDuration(path, "group_dispatch_within", cf.GroupDispatchWithin)
	if err != nil {
		return cfg, err
	}
	cfg.SnapToSameVsyncWithin, err = parseDuration(path, "snap_to_same_vsync_within", cf.SnapToSameVsyncWithin)
	if err != nil {
		return cfg, err
	}

	cfg.HistorySize = cf.HistorySize
	cfg.MinSamplesForPrediction = cf.MinSamplesForPrediction
	cfg.DiscardOutlierPercent = cf.DiscardOutlierPercent
	cfg.MaxPendingFences = cf.MaxPendingFences

	return cfg, nil
}

func parseDuration(path, field, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", path, field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: %s: duration must not be negative", path, field)
	}
	return d, nil
}

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

// Package tracker models the vsync signal of a display from a bounded
// history of observed hardware pulses.
//
// The model is a least squares fit of pulse timestamps against their sample
// index. The slope of the fit is the vsync period, the intercept fixes the
// phase. Before the history holds enough samples to trust a fit the model
// ticks forward from the last known vsync at the most recent good period
// estimate, or at the configured initial period if there has never been one.
//
// A fraction of the samples, those with the largest residuals against the
// first fit, can be discarded and the fit re-run. Displays are prone to the
// occasional late-reported pulse and a plain fit would smear that error over
// every prediction.
package tracker

import (
	"math"
	"sort"
	"sync"
	"time"

	"beamsync/logger"
	"beamsync/timing"
)

// Predictor is the default vsync tracker. Safe for concurrent use.
type Predictor struct {
	label string

	initialPeriod         time.Duration
	historySize           int
	minSamplesForPredict  int
	discardOutlierPercent int

	crit sync.Mutex

	// observed pulse history, oldest first. never longer than historySize
	history []timing.TimePoint

	// current period estimate. starts at initialPeriod and survives a model
	// reset. never zero or negative once construction is complete
	period time.Duration

	// a vsync instant the model believes in. predictions are whole periods
	// away from the base
	base timing.TimePoint
}

// NewPredictor creates a Predictor for the display identified by label.
// The label is only used to tag log entries.
//
// The tunables have the same meaning as the corresponding fields of the
// schedule configuration. Nonsense values are clamped rather than rejected.
func NewPredictor(label string, initialPeriod time.Duration, historySize int, minSamplesForPrediction int, discardOutlierPercent int) *Predictor {
	if initialPeriod <= 0 {
		initialPeriod = time.Second / 60
	}
	if historySize < 2 {
		historySize = 2
	}
	if minSamplesForPrediction < 2 {
		minSamplesForPrediction = 2
	}
	if minSamplesForPrediction > historySize {
		minSamplesForPrediction = historySize
	}
	if discardOutlierPercent < 0 {
		discardOutlierPercent = 0
	}
	if discardOutlierPercent > 50 {
		discardOutlierPercent = 50
	}

	return &Predictor{
		label:                 label,
		initialPeriod:         initialPeriod,
		historySize:           historySize,
		minSamplesForPredict:  minSamplesForPrediction,
		discardOutlierPercent: discardOutlierPercent,
		history:               make([]timing.TimePoint, 0, historySize),
		period:                initialPeriod,
	}
}

// CurrentPeriod returns the current period estimate. Non-blocking beyond the
// predictor's own critical section.
func (p *Predictor) CurrentPeriod() timing.Period {
	p.crit.Lock()
	defer p.crit.Unlock()
	return timing.Period(p.period)
}

// NextAnticipatedVsyncTimeFrom returns the first predicted vsync instant
// strictly after t.
func (p *Predictor) NextAnticipatedVsyncTimeFrom(t timing.TimePoint) timing.TimePoint {
	p.crit.Lock()
	defer p.crit.Unlock()
	return nextAfter(p.base, p.period, t)
}

// ResetModel discards the pulse history. The period estimate and phase are
// retained so that predictions remain continuous while fresh pulses arrive.
func (p *Predictor) ResetModel() {
	p.crit.Lock()
	defer p.crit.Unlock()
	p.history = p.history[:0]
}

// AddVsyncTimestamp records an observed hardware pulse. The returned value
// is true if the model wants more samples before it will trust a fit.
//
// Pulses must arrive in time order. An out of order pulse is dropped.
func (p *Predictor) AddVsyncTimestamp(t timing.TimePoint) bool {
	p.crit.Lock()
	defer p.crit.Unlock()

	if len(p.history) > 0 && !t.After(p.history[len(p.history)-1]) {
		logger.Logf("tracker", "%s: dropped out of order pulse (%v)", p.label, t)
		return len(p.history) < p.minSamplesForPredict
	}

	p.history = append(p.history, t)
	if len(p.history) > p.historySize {
		p.history = p.history[1:]
	}

	// until a fit is possible the latest pulse is the best phase available
	p.base = t

	if len(p.history) >= p.minSamplesForPredict {
		p.fit()
	}

	return len(p.history) < p.minSamplesForPredict
}

// NeedsMoreSamples returns true if the model holds fewer samples than it
// needs to trust a fit.
func (p *Predictor) NeedsMoreSamples() bool {
	p.crit.Lock()
	defer p.crit.Unlock()
	return len(p.history) < p.minSamplesForPredict
}

// fit the pulse history, updating period and base. called with the critical
// section locked.
func (p *Predictor) fit() {
	n := len(p.history)

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, ts := range p.history {
		xs[i] = float64(i)
		ys[i] = float64(ts.Sub(p.history[0]))
	}

	slope, intercept := leastSquares(xs, ys)

	// second pass with the worst residuals discarded
	discard := n * p.discardOutlierPercent / 100
	if discard > 0 && n-discard >= 2 {
		type residual struct {
			idx int
			abs float64
		}
		resid := make([]residual, n)
		for i := range xs {
			resid[i] = residual{idx: i, abs: math.Abs(ys[i] - (intercept + slope*xs[i]))}
		}
		sort.Slice(resid, func(i, j int) bool { return resid[i].abs < resid[j].abs })

		kx := make([]float64, 0, n-discard)
		ky := make([]float64, 0, n-discard)
		for _, r := range resid[:n-discard] {
			kx = append(kx, xs[r.idx])
			ky = append(ky, ys[r.idx])
		}
		slope, intercept = leastSquares(kx, ky)
	}

	if slope <= 0 {
		// a non-positive slope means the history is degenerate. keep the
		// previous estimate
		logger.Logf("tracker", "%s: degenerate fit rejected (slope %.2f)", p.label, slope)
		return
	}

	p.period = time.Duration(slope)
	p.base = p.history[0].Add(time.Duration(intercept + slope*float64(n-1)))
}

// ordinary least squares of y against x. the slices must be of equal,
// non-zero length.
func leastSquares(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))

	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	den := sumXX - sumX*sumX/n
	if den == 0 {
		return 0, sumY / n
	}

	slope = (sumXY - sumX*sumY/n) / den
	intercept = sumY/n - slope*sumX/n
	return slope, intercept
}

// nextAfter returns the first instant strictly after t that is a whole
// number of periods away from base.
func nextAfter(base timing.TimePoint, period time.Duration, t timing.TimePoint) timing.TimePoint {
	if period <= 0 {
		return t
	}

	n := t.Sub(base) / period
	next := base.Add(n * period)
	for !next.After(t) {
		next = next.Add(period)
	}
	for next.Add(-period).After(t) {
		next = next.Add(-period)
	}
	return next
}

// Package scheduler implements the adaptive delivery scheduling core:
// a per-user availability model learned via prediction error, three
// interchangeable delivery-time algorithms, and the cadence controller
// with its consecutive-miss penalty.
//
// Everything here is pure: callers pass "now" explicitly and persist the
// results themselves, so scheduling decisions survive process restarts.
package scheduler

import "math"

// Learning constants. The full rate applies to directly observed outcomes
// (a response at this hour, or a fully timed-out window); the partial rate
// applies to hours that merely elapsed in silence before a later success.
const (
	LearningRate   = 0.20
	SilentHourRate = 0.10
	Floor          = 0.1 // non-zero floor prevents the death spiral
	Ceil           = 1.0
	HoursPerDay    = 24
)

// Availability is a 24-slot probability-of-response-by-hour profile.
// Slots stay within [Floor, Ceil] and are rounded to 3 decimals on every
// write so serialized distributions round-trip byte-identically.
type Availability struct {
	dist [HoursPerDay]float64
}

// NewAvailability builds a model from a previously learned distribution.
// Anything other than exactly 24 in-range values falls back to the uniform
// 0.5 prior — a malformed persisted distribution must never abort a scan.
func NewAvailability(initial []float64) *Availability {
	a := &Availability{}
	if len(initial) != HoursPerDay {
		for i := range a.dist {
			a.dist[i] = 0.5
		}
		return a
	}
	for i, v := range initial {
		a.dist[i] = round3(clamp(v, Floor, Ceil))
	}
	return a
}

// Update applies a full-rate prediction-error update for one hour slot.
// Surprising outcomes move the slot a lot, expected outcomes barely at all.
func (a *Availability) Update(hour int, success bool) {
	hour = wrapHour(hour)
	expected := a.dist[hour]
	actual := 0.0
	if success {
		actual = 1.0
	}
	delta := LearningRate * (actual - expected)
	a.dist[hour] = round3(clamp(expected+delta, Floor, Ceil))
}

// UpdateSilentHour applies the weak negative update for an hour that passed
// without a response before the user eventually answered elsewhere. The
// penalty is weighted by the slot's own expectation: a confident-but-wrong
// hour is corrected harder than one the model already doubted.
func (a *Availability) UpdateSilentHour(hour int) {
	hour = wrapHour(hour)
	expected := a.dist[hour]
	delta := SilentHourRate * (0.0 - expected) * expected
	a.dist[hour] = round3(clamp(expected+delta, Floor, Ceil))
}

// Prob returns the learned availability probability for an hour of day.
func (a *Availability) Prob(hour int) float64 {
	return a.dist[wrapHour(hour)]
}

// Distribution returns a copy of the 24-slot histogram.
func (a *Availability) Distribution() []float64 {
	out := make([]float64, HoursPerDay)
	copy(out, a.dist[:])
	return out
}

func (a *Availability) sum() float64 {
	s := 0.0
	for _, v := range a.dist {
		s += v
	}
	return s
}

func wrapHour(hour int) int {
	h := hour % HoursPerDay
	if h < 0 {
		h += HoursPerDay
	}
	return h
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

package scheduler

// Cadence bounds, in encounters per day.
const (
	DefaultFrequency = 1.0
	MinFrequency     = 0.33 // one encounter per three days
	MaxFrequency     = 6.0
)

// Response-speed buckets and their cadence multipliers. An eager responder
// gets the biggest boost; a response slower than half an hour carries no
// signal either way; a timeout shrinks the cadence.
const (
	EagerThresholdSeconds  = 30
	QuickThresholdSeconds  = 120
	NormalThresholdSeconds = 1800

	MultEager   = 1.20
	MultQuick   = 1.15
	MultNormal  = 1.10
	MultNeutral = 1.00
	MultTimeout = 0.85
)

// Failure thresholds for the consecutive-miss counter.
const (
	// ConsecutiveFailuresThreshold auto-unenrolls the user.
	ConsecutiveFailuresThreshold = 8
	// OfferPauseThreshold surfaces a soft "offer the user a pause" signal
	// to the caller; the core takes no action itself.
	OfferPauseThreshold = 3
	// SnowballHoursPerMiss is added to the delivery interval per
	// consecutive miss.
	SnowballHoursPerMiss = 4
)

// AdjustFrequency applies one resolved encounter to the base cadence.
// Pass responseSeconds < 0 for a success with no measured response time;
// it lands in the normal bucket. The result is always clamped, so an
// out-of-range frequency can never reach persisted state.
func AdjustFrequency(current float64, success bool, responseSeconds int) float64 {
	mult := MultTimeout
	if success {
		switch {
		case responseSeconds >= 0 && responseSeconds < EagerThresholdSeconds:
			mult = MultEager
		case responseSeconds >= 0 && responseSeconds < QuickThresholdSeconds:
			mult = MultQuick
		case responseSeconds >= NormalThresholdSeconds:
			mult = MultNeutral
		default:
			mult = MultNormal
		}
	}
	return clamp(current*mult, MinFrequency, MaxFrequency)
}

// EffectiveFrequency layers the consecutive-miss snowball onto the base
// cadence: each miss stretches the delivery interval by a fixed number of
// hours, so the penalty is additive in time regardless of the base rate.
// It is recomputed fresh on every scheduling decision and evaporates the
// moment the failure counter resets.
//
//	base 2.0/day (12h) + 3 misses → 24h → 1.0/day
func EffectiveFrequency(base float64, consecutiveFailures int) float64 {
	if consecutiveFailures <= 0 {
		return base
	}
	intervalHours := HoursPerDay/base + float64(SnowballHoursPerMiss*consecutiveFailures)
	return HoursPerDay / intervalHours
}

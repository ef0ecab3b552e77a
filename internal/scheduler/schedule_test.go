package scheduler

import (
	"errors"
	"testing"
	"time"
)

var base = time.Date(2025, 11, 11, 14, 30, 45, 0, time.UTC)

func TestNextAdaptiveUniform(t *testing.T) {
	a := NewAvailability(nil) // uniform 0.5, sum 12.0

	tests := []struct {
		frequency float64
		wantHours float64
	}{
		{1.0, 24},
		{2.0, 12},
	}
	for _, tt := range tests {
		got := NextAdaptive(a, tt.frequency, base)
		hours := got.Sub(base).Hours()
		// Top-of-hour rounding gives up to an hour of slack.
		if hours < tt.wantHours-1 || hours > tt.wantHours+1 {
			t.Errorf("frequency %.1f: scheduled %.1fh out, want ≈%.0fh", tt.frequency, hours, tt.wantHours)
		}
	}
}

func TestNextAdaptiveSkipsLowProbabilityHours(t *testing.T) {
	dist := make([]float64, 24)
	for i := range dist {
		dist[i] = Floor
	}
	// Only 18:00 is a good hour.
	dist[18] = 1.0
	a := NewAvailability(dist)

	got := NextAdaptive(a, 2.0, time.Date(2025, 11, 11, 8, 0, 0, 0, time.UTC))
	if got.Hour() != 18 {
		t.Errorf("scheduled at %v, want the 18:00 peak", got)
	}
}

func TestNextAdaptiveClampsFrequency(t *testing.T) {
	a := NewAvailability(nil)
	// A frequency of 0 must not divide by zero; it clamps to MinFrequency.
	got := NextAdaptive(a, 0, base)
	if !got.After(base) {
		t.Errorf("scheduled %v, want a future time", got)
	}
}

func TestNextLegacy(t *testing.T) {
	tests := []struct {
		interval int
		want     time.Time
	}{
		{4, time.Date(2025, 11, 11, 18, 0, 0, 0, time.UTC)},
		{0, time.Date(2025, 11, 11, 15, 0, 0, 0, time.UTC)},  // clamped to 1
		{30, time.Date(2025, 11, 12, 14, 0, 0, 0, time.UTC)}, // clamped to 24
	}
	for _, tt := range tests {
		if got := NextLegacy(tt.interval, base); !got.Equal(tt.want) {
			t.Errorf("NextLegacy(%d) = %v, want %v", tt.interval, got, tt.want)
		}
	}
}

func TestNextFixed(t *testing.T) {
	times := []string{"09:00", "14:00", "19:00"}

	tests := []struct {
		now  time.Time
		want time.Time
	}{
		// Exactly on a slot: boundary is exclusive, advance to the next.
		{
			time.Date(2025, 11, 11, 14, 0, 0, 0, time.UTC),
			time.Date(2025, 11, 11, 19, 0, 0, 0, time.UTC),
		},
		// After the last slot: tomorrow's first.
		{
			time.Date(2025, 11, 11, 20, 30, 0, 0, time.UTC),
			time.Date(2025, 11, 12, 9, 0, 0, 0, time.UTC),
		},
		// Early morning: today's first.
		{
			time.Date(2025, 11, 11, 6, 15, 0, 0, time.UTC),
			time.Date(2025, 11, 11, 9, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		got, err := NextFixed(times, tt.now)
		if err != nil {
			t.Fatalf("NextFixed at %v: %v", tt.now, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("NextFixed at %v = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestNextFixedErrors(t *testing.T) {
	if _, err := NextFixed(nil, base); !errors.Is(err, ErrEmptyFixedTimes) {
		t.Errorf("empty list: err = %v, want ErrEmptyFixedTimes", err)
	}
	if _, err := NextFixed([]string{"25:00"}, base); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("bad hour: err = %v, want ErrInvalidTime", err)
	}
}

func TestValidateMode(t *testing.T) {
	for _, mode := range []string{ModeAdaptive, ModeLegacy, ModeFixed} {
		if !ValidateMode(mode) {
			t.Errorf("ValidateMode(%q) = false", mode)
		}
	}
	for _, mode := range []string{"", "random", "ADAPTIVE", "interval"} {
		if ValidateMode(mode) {
			t.Errorf("ValidateMode(%q) = true", mode)
		}
	}
}

func TestValidateFixedTimes(t *testing.T) {
	tests := []struct {
		times []string
		ok    bool
	}{
		{[]string{"09:00"}, true},
		{[]string{"00:00", "23:59"}, true},
		{nil, false},
		{[]string{}, false},
		{[]string{"24:00"}, false},
		{[]string{"12:60"}, false},
		{[]string{"noon"}, false},
		{[]string{"12"}, false},
		{[]string{"09:00", "bad"}, false},
	}
	for _, tt := range tests {
		err := ValidateFixedTimes(tt.times)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateFixedTimes(%v) err = %v, want ok=%v", tt.times, err, tt.ok)
		}
	}
}

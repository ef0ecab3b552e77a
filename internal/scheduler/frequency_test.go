package scheduler

import (
	"math"
	"testing"
)

func TestAdjustFrequencyBuckets(t *testing.T) {
	tests := []struct {
		name            string
		success         bool
		responseSeconds int
		want            float64
	}{
		{"eager 5s", true, 5, 2.0 * MultEager},
		{"eager 29s", true, 29, 2.0 * MultEager},
		{"quick 30s", true, 30, 2.0 * MultQuick},
		{"quick 119s", true, 119, 2.0 * MultQuick},
		{"normal 120s", true, 120, 2.0 * MultNormal},
		{"normal 1799s", true, 1799, 2.0 * MultNormal},
		{"neutral 1800s", true, 1800, 2.0},
		{"neutral 1 day", true, 86400, 2.0},
		{"unknown time", true, -1, 2.0 * MultNormal},
		{"timeout", false, 0, 2.0 * MultTimeout},
	}
	for _, tt := range tests {
		got := AdjustFrequency(2.0, tt.success, tt.responseSeconds)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: AdjustFrequency = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestAdjustFrequencyClamps(t *testing.T) {
	if got := AdjustFrequency(MinFrequency, false, 0); got < MinFrequency {
		t.Errorf("timeout at floor: %f < %f", got, MinFrequency)
	}
	if got := AdjustFrequency(MaxFrequency, true, 10); got > MaxFrequency {
		t.Errorf("boost at ceiling: %f > %f", got, MaxFrequency)
	}
}

func TestEffectiveFrequencySnowball(t *testing.T) {
	tests := []struct {
		base     float64
		failures int
		want     float64
	}{
		{2.0, 0, 2.0},           // no misses: base untouched
		{2.0, 3, 1.0},           // 12h + 3×4h = 24h
		{6.0, 5, 1.0},           // 4h + 20h = 24h
		{6.0, 3, 1.5},           // 4h + 12h = 16h
		{1.0, 2, 24.0 / 32.0},   // 24h + 8h
	}
	for _, tt := range tests {
		got := EffectiveFrequency(tt.base, tt.failures)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("EffectiveFrequency(%f, %d) = %f, want %f", tt.base, tt.failures, got, tt.want)
		}
	}
}

func TestEffectiveFrequencyResetsWithCounter(t *testing.T) {
	if got := EffectiveFrequency(3.5, 0); got != 3.5 {
		t.Errorf("zero failures must return the base exactly, got %f", got)
	}
}

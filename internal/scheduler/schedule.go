package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Delivery modes.
const (
	ModeAdaptive = "adaptive"
	ModeLegacy   = "legacy"
	ModeFixed    = "fixed"

	DefaultMode                = ModeAdaptive
	DefaultLegacyIntervalHours = 4
)

// DefaultFixedTimes is the compiled-in fixed-mode schedule used when a
// persisted fixed_times list fails validation.
var DefaultFixedTimes = []string{"09:00", "14:00", "19:00"}

// MaxLookaheadHours bounds the adaptive walk to one week.
const MaxLookaheadHours = 168

// Validation errors for the strict low-level constructors.
var (
	ErrEmptyFixedTimes = errors.New("fixed times list is empty")
	ErrInvalidTime     = errors.New("invalid HH:MM time")
)

// NextAdaptive schedules the next delivery by integrating the availability
// distribution forward in time. The target mass scales inversely with the
// effective frequency, so a higher cadence schedules sooner and
// low-probability hours are skipped over because they contribute little
// mass per hour.
func NextAdaptive(a *Availability, frequency float64, now time.Time) time.Time {
	frequency = clamp(frequency, MinFrequency, MaxFrequency)
	targetMass := a.sum() / frequency

	accumulated := 0.0
	for ahead := 1; ahead <= MaxLookaheadHours; ahead++ {
		t := now.Add(time.Duration(ahead) * time.Hour)
		accumulated += a.Prob(t.Hour())
		if accumulated >= targetMass {
			return topOfHour(t)
		}
	}

	// Unreachable with the floor in place for any in-range frequency,
	// but never leave a user unscheduled.
	return topOfHour(now.Add(HoursPerDay * time.Hour))
}

// NextLegacy schedules a fixed interval ahead, clamped to 1-24 hours and
// rounded to the top of the hour.
func NextLegacy(intervalHours int, now time.Time) time.Time {
	if intervalHours < 1 {
		intervalHours = 1
	}
	if intervalHours > 24 {
		intervalHours = 24
	}
	return topOfHour(now.Add(time.Duration(intervalHours) * time.Hour))
}

// NextFixed returns the earliest of the listed wall-clock times that is
// strictly after now, looking at today's and tomorrow's occurrences. A
// query landing exactly on a listed time advances to the next occurrence.
// Invalid input is an error; orchestration substitutes DefaultFixedTimes.
func NextFixed(fixedTimes []string, now time.Time) (time.Time, error) {
	if len(fixedTimes) == 0 {
		return time.Time{}, ErrEmptyFixedTimes
	}

	var earliest time.Time
	for _, ts := range fixedTimes {
		hour, minute, err := parseClock(ts)
		if err != nil {
			return time.Time{}, err
		}

		today := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		candidates := []time.Time{today.AddDate(0, 0, 1)}
		if today.After(now) {
			candidates = append(candidates, today)
		}
		for _, c := range candidates {
			if earliest.IsZero() || c.Before(earliest) {
				earliest = c
			}
		}
	}
	return earliest, nil
}

// ValidateMode reports whether mode is one of the three delivery modes.
func ValidateMode(mode string) bool {
	return mode == ModeAdaptive || mode == ModeLegacy || mode == ModeFixed
}

// ValidateFixedTimes checks a fixed-mode schedule: non-empty, every entry
// a well-formed "HH:MM" with in-range hour and minute.
func ValidateFixedTimes(fixedTimes []string) error {
	if len(fixedTimes) == 0 {
		return ErrEmptyFixedTimes
	}
	for _, ts := range fixedTimes {
		if _, _, err := parseClock(ts); err != nil {
			return err
		}
	}
	return nil
}

func parseClock(s string) (hour, minute int, err error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return h, m, nil
}

func topOfHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

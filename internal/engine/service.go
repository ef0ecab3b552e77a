package engine

import (
	"errors"
	"log"
	"time"

	"github.com/EcstasyEngineer/mantrad/internal/catalog"
	"github.com/EcstasyEngineer/mantrad/internal/notify"
	"github.com/EcstasyEngineer/mantrad/internal/scheduler"
	"github.com/EcstasyEngineer/mantrad/internal/scoring"
	"github.com/EcstasyEngineer/mantrad/internal/store"
)

// EnrollmentGrace is the fixed delay before the first delivery, in every
// delivery mode.
const EnrollmentGrace = 30 * time.Second

// The fixed first mantra every enrollment receives.
const (
	enrollmentText   = "My thoughts are being reprogrammed."
	enrollmentTheme  = "enrollment"
	enrollmentPoints = 100
)

// defaultThemes are the starter themes when enrollment names none.
var defaultThemes = []string{"acceptance", "suggestibility"}

var (
	ErrNotEnrolled   = errors.New("user is not enrolled")
	ErrNoOutstanding = errors.New("no mantra awaiting a response")
)

// Enroll activates delivery for a user. Frequency and the failure counter
// reset; a previously learned distribution is kept so re-enrollment
// resumes learning instead of restarting it. The first delivery is the
// fixed enrollment mantra, a short grace period out.
func (e *Engine) Enroll(userID string, themes []string, subject, controller string, now time.Time) (*store.User, error) {
	u, err := e.store.GetUser(userID)
	if err != nil {
		return nil, err
	}

	u.Enrolled = true
	u.Frequency = scheduler.DefaultFrequency
	u.ConsecutiveFailures = 0
	u.SentAt = nil
	u.DeliveredMantra = nil
	if subject != "" {
		u.Subject = subject
	}
	if controller != "" {
		u.Controller = controller
	}
	u.Themes = e.resolveThemes(themes)

	u.CurrentMantra = &store.Mantra{
		Template:   enrollmentText,
		Theme:      enrollmentTheme,
		Difficulty: scoring.Tier(enrollmentPoints),
		BasePoints: enrollmentPoints,
	}
	first := now.Add(EnrollmentGrace).UnixMilli()
	u.NextDeliveryAt = &first

	if err := e.store.SaveUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Unenroll deactivates delivery, atomically clearing any in-flight
// encounter so no ghost mantra survives into the disabled state. The
// learned distribution and cadence are kept for re-enrollment.
func (e *Engine) Unenroll(userID string) (*store.User, error) {
	u, err := e.store.GetUser(userID)
	if err != nil {
		return nil, err
	}

	u.Enrolled = false
	u.SentAt = nil
	u.CurrentMantra = nil
	u.DeliveredMantra = nil
	u.NextDeliveryAt = nil

	if err := e.store.SaveUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

// ShouldDeliver reports whether a waiting user is due for delivery.
func (e *Engine) ShouldDeliver(u *store.User, now time.Time) bool {
	if !u.Enrolled {
		return false
	}
	c := cycleOf(u)
	return c.Kind == WaitingToSend && !c.NextSendAt.IsZero() && !now.Before(c.NextSendAt)
}

// Deliver sends the pre-selected mantra: marks it outstanding, computes
// its response deadline, pre-selects the following mantra, and notifies
// the presentation layer. Returns the delivered mantra.
func (e *Engine) Deliver(u *store.User, now time.Time) (*store.Mantra, error) {
	current := u.CurrentMantra
	if current == nil {
		current = e.selectMantra(u)
		if current == nil {
			log.Printf("user %s: no mantras available in themes %v", u.ID, u.Themes)
			return nil, nil
		}
	}

	sent := now.UnixMilli()
	u.SentAt = &sent
	u.DeliveredMantra = current
	deadline := e.scheduleNext(u, now)
	deadlineMs := deadline.UnixMilli()
	u.NextDeliveryAt = &deadlineMs
	u.CurrentMantra = e.selectMantra(u)

	if err := e.store.SaveUser(u); err != nil {
		return nil, err
	}

	err := e.notifier.NotifyDelivery(notify.Delivery{
		UserID:     u.ID,
		Text:       catalog.FormatText(current.Template, u.Subject, u.Controller),
		Theme:      current.Theme,
		Difficulty: current.Difficulty,
		BasePoints: current.BasePoints,
		SentAt:     now,
		Deadline:   deadline,
	})
	if err != nil {
		log.Printf("user %s: notify: %v", u.ID, err)
	}
	return current, nil
}

// TimeoutOutcome reports what an expired deadline did to the user.
type TimeoutOutcome struct {
	TimedOut     bool
	AutoDisabled bool
	// OfferPause signals the caller to offer the user a pause option.
	// The engine itself takes no action on it.
	OfferPause bool
	Record     *store.Encounter
}

// CheckTimeout expires an outstanding mantra whose deadline has passed:
// every hour of the silent window is strong negative evidence, cadence
// shrinks, and the failure counter advances toward auto-disable.
func (e *Engine) CheckTimeout(u *store.User, now time.Time) (*TimeoutOutcome, error) {
	c := cycleOf(u)
	if c.Kind != AwaitingResponse || now.Before(c.Deadline) {
		return &TimeoutOutcome{}, nil
	}

	// Walk wall-clock hour slots so a mid-hour send still covers the
	// deadline's own hour; the deadline is inclusive.
	avail := scheduler.NewAvailability(u.Distribution)
	for t := topOfHour(c.SentAt); !t.After(c.Deadline); t = t.Add(time.Hour) {
		avail.Update(t.Hour(), false)
	}
	u.Distribution = avail.Distribution()

	u.Frequency = scheduler.AdjustFrequency(u.Frequency, false, 0)
	u.ConsecutiveFailures++

	record := &store.Encounter{
		UserID:     u.ID,
		SentAt:     c.SentAt.UnixMilli(),
		Mantra:     catalog.FormatText(c.Delivered.Template, u.Subject, u.Controller),
		Template:   c.Delivered.Template,
		Theme:      c.Delivered.Theme,
		Difficulty: c.Delivered.Difficulty,
		BasePoints: c.Delivered.BasePoints,
		Completed:  false,
	}

	u.SentAt = nil
	u.DeliveredMantra = nil

	out := &TimeoutOutcome{TimedOut: true, Record: record}
	if u.ConsecutiveFailures >= scheduler.ConsecutiveFailuresThreshold {
		out.AutoDisabled = true
		u.Enrolled = false
		u.NextDeliveryAt = nil
		u.CurrentMantra = nil
		log.Printf("user %s: %d consecutive misses, auto-disabling", u.ID, u.ConsecutiveFailures)
	} else {
		// Immediate redelivery on the next tick; the snowball has already
		// stretched the deadline that follows it.
		nowMs := now.UnixMilli()
		u.NextDeliveryAt = &nowMs
		out.OfferPause = u.ConsecutiveFailures >= scheduler.OfferPauseThreshold
	}

	if err := e.store.AppendEncounter(record); err != nil {
		return nil, err
	}
	if err := e.store.SaveUser(u); err != nil {
		return nil, err
	}
	return out, nil
}

// ResponseOutcome is the result of processing a response attempt.
type ResponseOutcome struct {
	Matched     bool
	BasePoints  int
	SpeedBonus  int
	PublicBonus int
	TotalPoints int
	Record      *store.Encounter
}

// HandleResponse processes response text against the outstanding mantra.
// Pass elapsedSeconds < 0 to derive it from the send timestamp. A match
// is a full-rate positive signal at the response hour, with the hours
// that passed in silence beforehand treated as weak negative evidence
// (hours sharing the response's hour-of-day are skipped so the positive
// update is not immediately diluted).
func (e *Engine) HandleResponse(userID, text string, elapsedSeconds int, isPublic bool, now time.Time) (*ResponseOutcome, error) {
	u, err := e.store.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if !u.Enrolled {
		return nil, ErrNotEnrolled
	}
	c := cycleOf(u)
	if c.Kind != AwaitingResponse {
		return nil, ErrNoOutstanding
	}

	expected := catalog.FormatText(c.Delivered.Template, u.Subject, u.Controller)
	if !Matches(text, expected) {
		return &ResponseOutcome{Matched: false}, nil
	}

	if elapsedSeconds < 0 {
		elapsedSeconds = int(now.Sub(c.SentAt).Seconds())
	}

	avail := scheduler.NewAvailability(u.Distribution)
	responseHour := now.Hour()
	for t := topOfHour(c.SentAt); t.Before(now); t = t.Add(time.Hour) {
		if h := t.Hour(); h != responseHour {
			avail.UpdateSilentHour(h)
		}
	}
	avail.Update(responseHour, true)
	u.Distribution = avail.Distribution()

	u.ConsecutiveFailures = 0
	u.Frequency = scheduler.AdjustFrequency(u.Frequency, true, elapsedSeconds)

	u.SentAt = nil
	u.DeliveredMantra = nil
	next := e.scheduleNext(u, now).UnixMilli()
	u.NextDeliveryAt = &next

	speedBonus := scoring.SpeedBonus(elapsedSeconds)
	publicBonus := 0
	if isPublic {
		publicBonus = scoring.PublicBonus
	}
	responseSecs := int64(elapsedSeconds)
	record := &store.Encounter{
		UserID:          u.ID,
		SentAt:          c.SentAt.UnixMilli(),
		Mantra:          expected,
		Template:        c.Delivered.Template,
		Theme:           c.Delivered.Theme,
		Difficulty:      c.Delivered.Difficulty,
		BasePoints:      c.Delivered.BasePoints,
		SpeedBonus:      speedBonus,
		PublicBonus:     publicBonus,
		Completed:       true,
		ResponseSeconds: &responseSecs,
		WasPublic:       isPublic,
	}

	if err := e.store.AppendEncounter(record); err != nil {
		return nil, err
	}
	if err := e.store.SaveUser(u); err != nil {
		return nil, err
	}

	return &ResponseOutcome{
		Matched:     true,
		BasePoints:  c.Delivered.BasePoints,
		SpeedBonus:  speedBonus,
		PublicBonus: publicBonus,
		TotalPoints: c.Delivered.BasePoints + speedBonus + publicBonus,
		Record:      record,
	}, nil
}

// scheduleNext computes the next delivery time (or, right after a send,
// the response deadline) for the user's mode, self-healing invalid
// persisted config to the compiled-in defaults.
func (e *Engine) scheduleNext(u *store.User, now time.Time) time.Time {
	if !scheduler.ValidateMode(u.DeliveryMode) {
		log.Printf("user %s: invalid delivery mode %q, healing to adaptive", u.ID, u.DeliveryMode)
		u.DeliveryMode = scheduler.ModeAdaptive
	}

	effective := scheduler.EffectiveFrequency(u.Frequency, u.ConsecutiveFailures)

	switch u.DeliveryMode {
	case scheduler.ModeLegacy:
		if u.LegacyIntervalHours < 1 || u.LegacyIntervalHours > 24 {
			log.Printf("user %s: invalid legacy interval %d, healing to %d",
				u.ID, u.LegacyIntervalHours, scheduler.DefaultLegacyIntervalHours)
			u.LegacyIntervalHours = scheduler.DefaultLegacyIntervalHours
		}
		// The snowball stretches the interval directly in this mode.
		interval := u.LegacyIntervalHours + scheduler.SnowballHoursPerMiss*u.ConsecutiveFailures
		return scheduler.NextLegacy(interval, now)

	case scheduler.ModeFixed:
		// Fixed wall-clock times ignore the snowball.
		next, err := scheduler.NextFixed(u.FixedTimes, now)
		if err != nil {
			log.Printf("user %s: invalid fixed times %v, healing to defaults: %v", u.ID, u.FixedTimes, err)
			u.FixedTimes = append([]string(nil), scheduler.DefaultFixedTimes...)
			next, _ = scheduler.NextFixed(u.FixedTimes, now)
		}
		return next

	default:
		avail := scheduler.NewAvailability(u.Distribution)
		return scheduler.NextAdaptive(avail, effective, now)
	}
}

func topOfHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// selectMantra picks the next mantra from the user's themes, nil if the
// pool is empty.
func (e *Engine) selectMantra(u *store.User) *store.Mantra {
	sel, ok := e.catalog.Select(u.Themes, u.Favorites, e.rng)
	if !ok {
		return nil
	}
	return &store.Mantra{
		Template:   sel.Text,
		Theme:      sel.Theme,
		Difficulty: scoring.Tier(sel.BasePoints),
		BasePoints: sel.BasePoints,
	}
}

// resolveThemes filters requested themes to ones the catalog has, falling
// back to the starter pair and then to whatever the catalog offers.
func (e *Engine) resolveThemes(requested []string) []string {
	var out []string
	for _, name := range requested {
		if e.catalog.Has(name) {
			out = append(out, name)
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, name := range defaultThemes {
		if e.catalog.Has(name) {
			out = append(out, name)
		}
	}
	if len(out) > 0 {
		return out
	}

	names := e.catalog.Names()
	if len(names) > 2 {
		names = names[:2]
	}
	return names
}

package store

import (
	"testing"

	"github.com/EcstasyEngineer/mantrad/internal/scheduler"
)

func TestGetUserMissingReturnsDefaults(t *testing.T) {
	db := testDB(t)

	u, err := db.GetUser("u-missing")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Enrolled {
		t.Error("missing user should not be enrolled")
	}
	if u.Frequency != scheduler.DefaultFrequency {
		t.Errorf("Frequency = %f, want %f", u.Frequency, scheduler.DefaultFrequency)
	}
	if u.DeliveryMode != scheduler.ModeAdaptive {
		t.Errorf("DeliveryMode = %q, want adaptive", u.DeliveryMode)
	}
	if u.Subject != "puppet" || u.Controller != "Master" {
		t.Errorf("defaults = %q/%q, want puppet/Master", u.Subject, u.Controller)
	}
	if u.Distribution != nil {
		t.Error("missing user should have nil distribution")
	}
}

func TestSaveAndGetUserRoundTrip(t *testing.T) {
	db := testDB(t)

	next := int64(1700000000000)
	sent := int64(1700000100000)
	u := NewUser("u1")
	u.Enrolled = true
	u.Themes = []string{"acceptance", "suggestibility"}
	u.Frequency = 2.5
	u.ConsecutiveFailures = 2
	u.DeliveryMode = scheduler.ModeFixed
	u.FixedTimes = []string{"08:00", "20:00"}
	u.Distribution = []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.6, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	u.NextDeliveryAt = &next
	u.SentAt = &sent
	u.CurrentMantra = &Mantra{Template: "{subject} obeys.", Theme: "acceptance", Difficulty: "light", BasePoints: 60}
	u.DeliveredMantra = &Mantra{Template: "I accept my programming.", Theme: "acceptance", Difficulty: "basic", BasePoints: 40}
	u.Favorites = []string{"I accept my programming."}

	if err := db.SaveUser(u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	got, err := db.GetUser("u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !got.Enrolled || got.Frequency != 2.5 || got.ConsecutiveFailures != 2 {
		t.Errorf("core fields mismatch: %+v", got)
	}
	if len(got.Themes) != 2 || got.Themes[0] != "acceptance" {
		t.Errorf("Themes = %v", got.Themes)
	}
	if got.DeliveryMode != scheduler.ModeFixed || len(got.FixedTimes) != 2 {
		t.Errorf("schedule config mismatch: %q %v", got.DeliveryMode, got.FixedTimes)
	}
	if len(got.Distribution) != 24 || got.Distribution[14] != 0.6 {
		t.Errorf("Distribution = %v", got.Distribution)
	}
	if got.NextDeliveryAt == nil || *got.NextDeliveryAt != next {
		t.Errorf("NextDeliveryAt = %v", got.NextDeliveryAt)
	}
	if got.SentAt == nil || *got.SentAt != sent {
		t.Errorf("SentAt = %v", got.SentAt)
	}
	if got.CurrentMantra == nil || got.CurrentMantra.Template != "{subject} obeys." {
		t.Errorf("CurrentMantra = %+v", got.CurrentMantra)
	}
	if got.DeliveredMantra == nil || got.DeliveredMantra.BasePoints != 40 {
		t.Errorf("DeliveredMantra = %+v", got.DeliveredMantra)
	}
	if len(got.Favorites) != 1 {
		t.Errorf("Favorites = %v", got.Favorites)
	}
}

func TestSaveUserClampsFrequency(t *testing.T) {
	db := testDB(t)

	u := NewUser("u2")
	u.Frequency = 12.0
	if err := db.SaveUser(u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	got, _ := db.GetUser("u2")
	if got.Frequency != scheduler.MaxFrequency {
		t.Errorf("Frequency = %f, want clamped to %f", got.Frequency, scheduler.MaxFrequency)
	}

	u.Frequency = 0.0
	if err := db.SaveUser(u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	got, _ = db.GetUser("u2")
	if got.Frequency != scheduler.MinFrequency {
		t.Errorf("Frequency = %f, want clamped to %f", got.Frequency, scheduler.MinFrequency)
	}
}

func TestGetUserHealsMalformedJSON(t *testing.T) {
	db := testDB(t)

	u := NewUser("u3")
	u.Enrolled = true
	if err := db.SaveUser(u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	_, err := db.Exec(`UPDATE users SET themes = '{nope', distribution = 'xx', current_mantra = '[' WHERE user_id = 'u3'`)
	if err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	got, err := db.GetUser("u3")
	if err != nil {
		t.Fatalf("GetUser on corrupt row: %v", err)
	}
	if got.Themes == nil || len(got.Themes) != 0 {
		t.Errorf("Themes = %v, want healed empty", got.Themes)
	}
	if got.Distribution != nil {
		t.Errorf("Distribution = %v, want healed nil", got.Distribution)
	}
	if got.CurrentMantra != nil {
		t.Errorf("CurrentMantra = %+v, want healed nil", got.CurrentMantra)
	}
}

func TestListEnrolled(t *testing.T) {
	db := testDB(t)

	for _, tc := range []struct {
		id       string
		enrolled bool
	}{
		{"a", true}, {"b", false}, {"c", true},
	} {
		u := NewUser(tc.id)
		u.Enrolled = tc.enrolled
		if err := db.SaveUser(u); err != nil {
			t.Fatalf("SaveUser(%s): %v", tc.id, err)
		}
	}

	users, err := db.ListEnrolled()
	if err != nil {
		t.Fatalf("ListEnrolled: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d enrolled users, want 2", len(users))
	}
	for _, u := range users {
		if !u.Enrolled {
			t.Errorf("user %s not enrolled", u.ID)
		}
	}
}

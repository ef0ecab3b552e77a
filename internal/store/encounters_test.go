package store

import (
	"fmt"
	"testing"
)

func TestAppendAndRecentEncounters(t *testing.T) {
	db := testDB(t)

	if err := db.SaveUser(NewUser("u1")); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	for i := 0; i < 3; i++ {
		secs := int64(20 + i)
		e := &Encounter{
			UserID:          "u1",
			SentAt:          int64(1700000000000 + i*1000),
			Mantra:          fmt.Sprintf("Mantra %d", i),
			Template:        fmt.Sprintf("Mantra %d", i),
			Theme:           "acceptance",
			Difficulty:      "basic",
			BasePoints:      40,
			SpeedBonus:      20,
			Completed:       true,
			ResponseSeconds: &secs,
		}
		if err := db.AppendEncounter(e); err != nil {
			t.Fatalf("AppendEncounter: %v", err)
		}
		if e.ID == "" {
			t.Fatal("id not assigned")
		}
	}

	got, err := db.RecentEncounters("u1", 2)
	if err != nil {
		t.Fatalf("RecentEncounters: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d encounters, want 2", len(got))
	}
	if got[0].Mantra != "Mantra 2" {
		t.Errorf("newest first: got %q", got[0].Mantra)
	}
	if got[0].ResponseSeconds == nil || *got[0].ResponseSeconds != 22 {
		t.Errorf("ResponseSeconds = %v", got[0].ResponseSeconds)
	}
}

func TestRecentEncountersEmpty(t *testing.T) {
	db := testDB(t)

	got, err := db.RecentEncounters("nobody", 10)
	if err != nil {
		t.Fatalf("RecentEncounters: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d encounters, want 0", len(got))
	}
}

func TestEncounterStats(t *testing.T) {
	db := testDB(t)

	if err := db.SaveUser(NewUser("u1")); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	secs := int64(10)
	completed := &Encounter{
		UserID: "u1", SentAt: 1, Mantra: "m", Template: "m", Theme: "t",
		Difficulty: "basic", BasePoints: 40, SpeedBonus: 30, PublicBonus: 50,
		Completed: true, ResponseSeconds: &secs, WasPublic: true,
	}
	expired := &Encounter{
		UserID: "u1", SentAt: 2, Mantra: "m", Template: "m", Theme: "t",
		Difficulty: "basic", BasePoints: 40,
	}
	if err := db.AppendEncounter(completed); err != nil {
		t.Fatalf("AppendEncounter: %v", err)
	}
	if err := db.AppendEncounter(expired); err != nil {
		t.Fatalf("AppendEncounter: %v", err)
	}

	stats, err := db.EncounterStats("u1")
	if err != nil {
		t.Fatalf("EncounterStats: %v", err)
	}
	if stats.Total != 2 || stats.Completed != 1 {
		t.Errorf("Total/Completed = %d/%d, want 2/1", stats.Total, stats.Completed)
	}
	if stats.TotalPoints != 120 {
		t.Errorf("TotalPoints = %d, want 120", stats.TotalPoints)
	}

	if p := expired.TotalPoints(); p != 0 {
		t.Errorf("expired TotalPoints = %d, want 0", p)
	}
	if p := completed.TotalPoints(); p != 120 {
		t.Errorf("completed TotalPoints = %d, want 120", p)
	}
}

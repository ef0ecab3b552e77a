package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/EcstasyEngineer/mantrad/internal/engine"
	"github.com/EcstasyEngineer/mantrad/internal/scheduler"
	"github.com/EcstasyEngineer/mantrad/internal/store"
)

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	type themeInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Mantras     int    `json:"mantras"`
	}

	var out []themeInfo
	for _, name := range s.catalog.Names() {
		t, _ := s.catalog.Get(name)
		out = append(out, themeInfo{
			Name:        t.Name,
			Description: t.Description,
			Mantras:     len(t.Mantras),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"themes": out})
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		Themes     []string `json:"themes"`
		Subject    string   `json:"subject"`
		Controller string   `json:"controller"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	u, err := s.engine.Enroll(userID, req.Themes, req.Subject, req.Controller, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, userStatus(u, nil))
}

func (s *Server) handleUnenroll(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	u, err := s.engine.Unenroll(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, userStatus(u, nil))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	u, err := s.db.GetUser(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := s.db.EncounterStats(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, userStatus(u, stats))
}

func (s *Server) handleResponse(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		Text           string `json:"text"`
		IsPublic       bool   `json:"is_public"`
		ElapsedSeconds *int   `json:"elapsed_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text required")
		return
	}
	elapsed := -1
	if req.ElapsedSeconds != nil {
		elapsed = *req.ElapsedSeconds
	}

	out, err := s.engine.HandleResponse(userID, req.Text, elapsed, req.IsPublic, time.Now())
	if errors.Is(err, engine.ErrNotEnrolled) || errors.Is(err, engine.ErrNoOutstanding) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"matched":      out.Matched,
		"base_points":  out.BasePoints,
		"speed_bonus":  out.SpeedBonus,
		"public_bonus": out.PublicBonus,
		"total_points": out.TotalPoints,
	})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		DeliveryMode        *string  `json:"delivery_mode"`
		LegacyIntervalHours *int     `json:"legacy_interval_hours"`
		FixedTimes          []string `json:"fixed_times"`
		Favorites           []string `json:"favorites"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := s.db.GetUser(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.DeliveryMode != nil {
		if !scheduler.ValidateMode(*req.DeliveryMode) {
			writeError(w, http.StatusBadRequest, "delivery_mode must be adaptive, legacy, or fixed")
			return
		}
		u.DeliveryMode = *req.DeliveryMode
	}
	if req.LegacyIntervalHours != nil {
		if *req.LegacyIntervalHours < 1 || *req.LegacyIntervalHours > 24 {
			writeError(w, http.StatusBadRequest, "legacy_interval_hours must be 1-24")
			return
		}
		u.LegacyIntervalHours = *req.LegacyIntervalHours
	}
	if req.FixedTimes != nil {
		if err := scheduler.ValidateFixedTimes(req.FixedTimes); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		u.FixedTimes = req.FixedTimes
	}
	if req.Favorites != nil {
		for _, f := range req.Favorites {
			if !s.catalog.HasMantra(f) {
				writeError(w, http.StatusBadRequest, "unknown mantra in favorites: "+f)
				return
			}
		}
		u.Favorites = req.Favorites
	}

	if err := s.db.SaveUser(u); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, userStatus(u, nil))
}

func (s *Server) handleEncounters(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be 1-500")
			return
		}
		limit = n
	}

	encounters, err := s.db.RecentEncounters(userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type encounterInfo struct {
		ID              string `json:"id"`
		SentAt          int64  `json:"sent_at"`
		Mantra          string `json:"mantra"`
		Theme           string `json:"theme"`
		Difficulty      string `json:"difficulty"`
		Completed       bool   `json:"completed"`
		ResponseSeconds *int64 `json:"response_seconds,omitempty"`
		WasPublic       bool   `json:"was_public"`
		TotalPoints     int    `json:"total_points"`
	}
	out := make([]encounterInfo, 0, len(encounters))
	for _, e := range encounters {
		out = append(out, encounterInfo{
			ID:              e.ID,
			SentAt:          e.SentAt,
			Mantra:          e.Mantra,
			Theme:           e.Theme,
			Difficulty:      e.Difficulty,
			Completed:       e.Completed,
			ResponseSeconds: e.ResponseSeconds,
			WasPublic:       e.WasPublic,
			TotalPoints:     e.TotalPoints(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"encounters": out})
}

func userStatus(u *store.User, stats *store.EncounterStats) map[string]any {
	out := map[string]any{
		"user_id":               u.ID,
		"enrolled":              u.Enrolled,
		"themes":                u.Themes,
		"subject":               u.Subject,
		"controller":            u.Controller,
		"frequency":             u.Frequency,
		"consecutive_failures":  u.ConsecutiveFailures,
		"delivery_mode":         u.DeliveryMode,
		"legacy_interval_hours": u.LegacyIntervalHours,
		"fixed_times":           u.FixedTimes,
		"favorites":             u.Favorites,
		"awaiting_response":     u.SentAt != nil,
	}
	if u.NextDeliveryAt != nil {
		out["next_delivery_at"] = time.UnixMilli(*u.NextDeliveryAt).UTC().Format(time.RFC3339)
	}
	if stats != nil {
		out["encounters"] = stats.Total
		out["completed"] = stats.Completed
		out["total_points"] = stats.TotalPoints
	}
	return out
}

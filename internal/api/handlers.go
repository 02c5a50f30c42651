package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/utakatalp/league-predictor/internal/league"
	"github.com/utakatalp/league-predictor/internal/store"
	"github.com/utakatalp/league-predictor/internal/telemetry"
)

type predictionResponse struct {
	Fixture    league.FixtureRecord    `json:"fixture"`
	Prediction league.PredictionResult `json:"prediction"`
	Percent    percentView             `json:"percent"`
}

// percentView carries the rounded final figures shown on the report screens.
type percentView struct {
	GG      int `json:"gg"`
	NG      int `json:"ng"`
	TwoPlus int `json:"twoPlus"`
}

func newPredictionResponse(f league.FixtureRecord, p league.PredictionResult) predictionResponse {
	return predictionResponse{
		Fixture:    f,
		Prediction: p,
		Percent: percentView{
			GG:      league.Percent(p.Final.GG),
			NG:      league.Percent(p.Final.NG),
			TwoPlus: league.Percent(p.Final.TwoPlus),
		},
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Sorted())
}

func (s *Server) handleGetTeamStats(w http.ResponseWriter, r *http.Request) {
	team := mux.Vars(r)["team"]
	stats, err := s.service.TeamStats(r.Context(), team)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	home := strings.TrimSpace(r.URL.Query().Get("home"))
	away := strings.TrimSpace(r.URL.Query().Get("away"))
	if home == "" && away == "" {
		writeBadRequest(w, "home or away is required")
		return
	}

	pred, err := s.service.PredictFixture(r.Context(), home, away)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPredictionResponse(league.FixtureRecord{Home: home, Away: away}, pred))
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	fixtures, preds, err := s.service.PredictAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]predictionResponse, len(fixtures))
	for i, f := range fixtures {
		out[i] = newPredictionResponse(f, preds[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	metric, ok := league.ParseMetric(r.URL.Query().Get("metric"))
	if !ok {
		writeBadRequest(w, "metric must be one of gg, twoPlus, ng")
		return
	}

	ranked, err := s.service.Top(r.Context(), metric)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metric":  metric,
		"results": ranked,
	})
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.repo.Matches(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if matches == nil {
		matches = []league.MatchRecord{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var m league.MatchRecord
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeBadRequest(w, "invalid match body")
		return
	}
	m.ID = 0
	trimMatch(&m)
	if err := s.repo.InsertMatch(r.Context(), &m); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var m league.MatchRecord
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeBadRequest(w, "invalid match body")
		return
	}
	m.ID = id
	trimMatch(&m)
	if err := s.repo.UpdateMatch(r.Context(), m); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteMatch(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearMatches(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.ClearMatches(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFixtures(w http.ResponseWriter, r *http.Request) {
	fixtures, err := s.repo.Fixtures(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if fixtures == nil {
		fixtures = []league.FixtureRecord{}
	}
	writeJSON(w, http.StatusOK, fixtures)
}

func (s *Server) handleCreateFixture(w http.ResponseWriter, r *http.Request) {
	var f league.FixtureRecord
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeBadRequest(w, "invalid fixture body")
		return
	}
	f.ID = 0
	f.Home, f.Away = strings.TrimSpace(f.Home), strings.TrimSpace(f.Away)
	if err := s.repo.InsertFixture(r.Context(), &f); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleUpdateFixture(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var f league.FixtureRecord
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeBadRequest(w, "invalid fixture body")
		return
	}
	f.ID = id
	f.Home, f.Away = strings.TrimSpace(f.Home), strings.TrimSpace(f.Away)
	if err := s.repo.UpdateFixture(r.Context(), f); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFixture(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteFixture(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearFixtures(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.ClearFixtures(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveStoredStats(w http.ResponseWriter, r *http.Request) {
	var t league.TeamStats
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeBadRequest(w, "invalid team stats body")
		return
	}
	t.Team = strings.TrimSpace(mux.Vars(r)["team"])
	if t.Team == "" {
		writeBadRequest(w, "team is required")
		return
	}
	if err := t.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.repo.SaveStoredStats(r.Context(), t); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteStoredStats(w http.ResponseWriter, r *http.Request) {
	team := strings.TrimSpace(mux.Vars(r)["team"])
	if team == "" {
		writeBadRequest(w, "team is required")
		return
	}
	if err := s.repo.DeleteStoredStats(r.Context(), team); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func trimMatch(m *league.MatchRecord) {
	m.Home = strings.TrimSpace(m.Home)
	m.Away = strings.TrimSpace(m.Away)
	m.Score = strings.TrimSpace(m.Score)
	m.FirstHalf = strings.TrimSpace(m.FirstHalf)
	m.SecondHalf = strings.TrimSpace(m.SecondHalf)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		telemetry.Errorf("[api] encoding response: %v", err)
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	telemetry.Errorf("[api] request failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("internal error: %v", err)})
}

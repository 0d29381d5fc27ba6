package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/example/lithuaningo/internal/daykey"
	"github.com/example/lithuaningo/internal/storage"
	"github.com/example/lithuaningo/pkg/models"
)

// Version reported by the local API
const Version = "1.4.0"

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// GetUserStatsHandler returns lifetime counters, creating them on first read
func (s *Server) GetUserStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	stats, err := s.stats.GetUserStats(r.Context(), userID)
	if err != nil {
		s.logger.Error("get user stats", zap.String("user_id", userID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// IncrementUserStatsHandler bumps one lifetime counter
func (s *Server) IncrementUserStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	var body struct {
		Counter string `json:"counter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Counter == "" {
		s.writeError(w, http.StatusBadRequest, "counter is required")
		return
	}
	stats, err := s.stats.IncrementUserCounter(r.Context(), userID, body.Counter, daykey.Current())
	if errors.Is(err, storage.ErrUnknownCounter) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("increment counter", zap.String("user_id", userID),
			zap.String("counter", body.Counter), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to increment counter")
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// GetChallengeStatsHandler returns a day's challenge counters
func (s *Server) GetChallengeStatsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := daykey.Parse(vars["date"]); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid date key")
		return
	}
	stats, err := s.stats.GetChallengeStats(r.Context(), vars["id"], vars["date"])
	if err != nil {
		s.logger.Error("get challenge stats", zap.String("user_id", vars["id"]), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load challenge stats")
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// SubmitAnswerHandler records one answered question
func (s *Server) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := daykey.Parse(vars["date"]); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid date key")
		return
	}
	var body struct {
		Correct bool `json:"correct"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	stats, err := s.stats.IncrementChallenge(r.Context(), vars["id"], vars["date"], body.Correct)
	if err != nil {
		s.logger.Error("submit answer", zap.String("user_id", vars["id"]), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to record answer")
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// GetDailySentencesHandler returns the user's sentence set for a learning day
func (s *Server) GetDailySentencesHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := daykey.Parse(vars["date"]); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid date key")
		return
	}
	sentences, err := s.sentences.PickForDay(r.Context(), vars["id"], vars["date"], s.dailyLimit)
	if err != nil {
		s.logger.Error("pick sentences", zap.String("user_id", vars["id"]), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load sentences")
		return
	}
	if sentences == nil {
		sentences = []models.Sentence{}
	}
	s.writeJSON(w, http.StatusOK, sentences)
}

// GetLeaderboardHandler returns a week's top entries
func (s *Server) GetLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	week := mux.Vars(r)["week"]
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	entries, err := s.stats.TopScores(r.Context(), week, limit)
	if err != nil {
		s.logger.Error("get leaderboard", zap.String("week", week), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// SubmitScoreHandler records a weekly score, keeping the best one
func (s *Server) SubmitScoreHandler(w http.ResponseWriter, r *http.Request) {
	var entry models.LeaderboardEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if entry.UserID == "" || entry.Week == "" {
		s.writeError(w, http.StatusBadRequest, "user_id and week are required")
		return
	}
	if err := s.stats.SubmitScore(r.Context(), &entry); err != nil {
		s.logger.Error("submit score", zap.String("user_id", entry.UserID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to submit score")
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// SubmitReportHandler stores a user report. Reports are keyed like day-scoped
// state so the retention sweep bounds their growth too.
func (s *Server) SubmitReportHandler(w http.ResponseWriter, r *http.Request) {
	var report models.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if report.UserID == "" || report.Kind == "" || report.Body == "" {
		s.writeError(w, http.StatusBadRequest, "user_id, kind and body are required")
		return
	}
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	key := daykey.BuildKey("report", report.ID, daykey.Current())
	if err := s.kv.Set(r.Context(), key, report); err != nil {
		s.logger.Error("store report", zap.String("report_id", report.ID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to store report")
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"id": report.ID})
}

// GetAppInfoHandler returns version and maintenance flags
func (s *Server) GetAppInfoHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, models.AppInfo{
		MinimumVersion: "1.0.0",
		LatestVersion:  Version,
	})
}

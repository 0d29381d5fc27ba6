// Package api serves the sync API locally from the embedded store, exposing
// the same contract the remote backend implements. Used for offline mode and
// for integration-testing the sync client against a real implementation.
package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/example/lithuaningo/internal/storage"
)

// Server holds the handler dependencies
type Server struct {
	kv        *storage.KVRepository
	sentences *storage.SentenceRepository
	stats     *storage.StatsRepository
	logger    *zap.Logger
	// Sentences served per user per learning day
	dailyLimit int
}

// NewServer creates a local API server over the storage repositories
func NewServer(logger *zap.Logger) *Server {
	return &Server{
		kv:         storage.NewKVRepository(),
		sentences:  storage.NewSentenceRepository(),
		stats:      storage.NewStatsRepository(),
		logger:     logger,
		dailyLimit: 5,
	}
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")
	r.HandleFunc("/users/{id}/stats", s.GetUserStatsHandler).Methods("GET")
	r.HandleFunc("/users/{id}/stats/increment", s.IncrementUserStatsHandler).Methods("POST")
	r.HandleFunc("/users/{id}/challenge/{date}", s.GetChallengeStatsHandler).Methods("GET")
	r.HandleFunc("/users/{id}/challenge/{date}/answers", s.SubmitAnswerHandler).Methods("POST")
	r.HandleFunc("/users/{id}/sentences/{date}", s.GetDailySentencesHandler).Methods("GET")
	r.HandleFunc("/leaderboard/{week}", s.GetLeaderboardHandler).Methods("GET")
	r.HandleFunc("/leaderboard", s.SubmitScoreHandler).Methods("POST")
	r.HandleFunc("/reports", s.SubmitReportHandler).Methods("POST")
	r.HandleFunc("/app-info", s.GetAppInfoHandler).Methods("GET")
	return r
}

// Package stats holds the shared, advisory copy of server-owned counters.
// The authoritative values live behind the sync API; everything here is safe
// to refetch at any time.
package stats

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/lithuaningo/pkg/models"
)

// Backend is the slice of the sync client the stats service depends on
type Backend interface {
	FetchUserStats(ctx context.Context, userID string) (*models.UserStats, error)
	IncrementUserCounter(ctx context.Context, userID, counter string) (*models.UserStats, error)
	FetchChallengeStats(ctx context.Context, userID, dateKey string) (*models.ChallengeStats, error)
	SubmitAnswer(ctx context.Context, userID, dateKey string, correct bool) (*models.ChallengeStats, error)
}

// Snapshot is what subscribers observe: the last successfully fetched values
// plus a display string for the most recent failure
type Snapshot struct {
	UserStats      *models.UserStats
	ChallengeStats *models.ChallengeStats
	LastError      string
	FetchedAt      time.Time
}

// Service is the single shared stats container, owned by the composition
// root and passed to whoever displays counters. Every mutation goes through
// the backend and lands here only as a server-confirmed value.
//
// Overlapping requests are not de-duplicated; a generation counter makes the
// resulting last-write-wins safe by dropping responses older than the newest
// one already applied.
type Service struct {
	backend Backend
	logger  *zap.Logger

	mu           sync.RWMutex
	snapshot     Snapshot
	subscribers  []func(Snapshot)
	issuedGen    uint64
	userGen      uint64
	challengeGen uint64
}

// New creates the stats service
func New(backend Backend, logger *zap.Logger) *Service {
	return &Service{backend: backend, logger: logger}
}

// Subscribe registers a callback invoked after every snapshot change. The
// callback runs synchronously; keep it cheap.
func (s *Service) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Current returns the latest snapshot
func (s *Service) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Refresh fetches both stat sets. On failure the previous values stay in
// place and the error surfaces as a display string.
func (s *Service) Refresh(ctx context.Context, userID, dateKey string) Snapshot {
	gen := s.nextGen()

	user, userErr := s.backend.FetchUserStats(ctx, userID)
	challenge, chErr := s.backend.FetchChallengeStats(ctx, userID, dateKey)

	s.mu.Lock()
	if user != nil && gen > s.userGen {
		s.snapshot.UserStats = user
		s.userGen = gen
	}
	if challenge != nil && gen > s.challengeGen {
		s.snapshot.ChallengeStats = challenge
		s.challengeGen = gen
	}
	s.snapshot.FetchedAt = time.Now().UTC()
	s.snapshot.LastError = ""
	if userErr != nil {
		s.snapshot.LastError = userErr.Error()
		s.logger.Warn("failed to refresh user stats",
			zap.String("user_id", userID), zap.Error(userErr))
	} else if chErr != nil {
		s.snapshot.LastError = chErr.Error()
		s.logger.Warn("failed to refresh challenge stats",
			zap.String("user_id", userID), zap.Error(chErr))
	}
	snap := s.snapshot
	subs := append([]func(Snapshot){}, s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// RecordCardReviewed bumps the lifetime reviewed counter server-side and
// applies the confirmed result
func (s *Service) RecordCardReviewed(ctx context.Context, userID string) error {
	gen := s.nextGen()
	stats, err := s.backend.IncrementUserCounter(ctx, userID, "cards_reviewed")
	return s.applyUser(gen, stats, err)
}

// RecordCardMastered bumps the lifetime mastered counter server-side and
// applies the confirmed result
func (s *Service) RecordCardMastered(ctx context.Context, userID string) error {
	gen := s.nextGen()
	stats, err := s.backend.IncrementUserCounter(ctx, userID, "cards_mastered")
	return s.applyUser(gen, stats, err)
}

// RecordAnswer reports one answered challenge question and applies the
// confirmed per-day counters
func (s *Service) RecordAnswer(ctx context.Context, userID, dateKey string, correct bool) error {
	gen := s.nextGen()
	stats, err := s.backend.SubmitAnswer(ctx, userID, dateKey, correct)

	s.mu.Lock()
	if err != nil {
		s.snapshot.LastError = err.Error()
	} else if gen > s.challengeGen {
		s.snapshot.ChallengeStats = stats
		s.snapshot.LastError = ""
		s.challengeGen = gen
	}
	snap := s.snapshot
	subs := append([]func(Snapshot){}, s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return err
}

func (s *Service) applyUser(gen uint64, stats *models.UserStats, err error) error {
	s.mu.Lock()
	if err != nil {
		s.snapshot.LastError = err.Error()
	} else if gen > s.userGen {
		s.snapshot.UserStats = stats
		s.snapshot.LastError = ""
		s.userGen = gen
	}
	snap := s.snapshot
	subs := append([]func(Snapshot){}, s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return err
}

func (s *Service) nextGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuedGen++
	return s.issuedGen
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/lithuaningo/internal/daykey"
	"github.com/example/lithuaningo/pkg/models"
)

// ErrUnknownCounter is returned when a caller asks to bump a counter that
// does not exist. A request error, unlike everything else this package
// returns.
var ErrUnknownCounter = errors.New("storage: unknown counter")

// StatsRepository handles database operations for user and challenge statistics
type StatsRepository struct{}

// NewStatsRepository creates a new repository instance
func NewStatsRepository() *StatsRepository {
	return &StatsRepository{}
}

// GetUserStats returns lifetime stats for a user, creating an empty row on
// first access
func (r *StatsRepository) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	var stats models.UserStats
	err := DB.GetContext(ctx, &stats, "SELECT * FROM user_stats WHERE user_id = $1", userID)
	if err == sql.ErrNoRows {
		stats = models.UserStats{UserID: userID}
		if _, err := DB.ExecContext(ctx,
			"INSERT INTO user_stats (user_id) VALUES ($1)", userID); err != nil {
			return nil, fmt.Errorf("failed to create user stats: %w", err)
		}
		return &stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &stats, nil
}

// UpdateUserStats writes the counter fields back
func (r *StatsRepository) UpdateUserStats(ctx context.Context, stats *models.UserStats) error {
	res, err := DB.ExecContext(ctx, `
		UPDATE user_stats SET
			cards_reviewed = $1,
			cards_mastered = $2,
			streak_days = $3,
			last_active_day = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $5
	`, stats.CardsReviewed, stats.CardsMastered, stats.StreakDays, stats.LastActiveDay, stats.UserID)
	if err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user stats not found for %q", stats.UserID)
	}
	return nil
}

// IncrementUserCounter bumps one lifetime counter and tracks the streak.
// Counter is "cards_reviewed" or "cards_mastered".
func (r *StatsRepository) IncrementUserCounter(ctx context.Context, userID, counter, dateKey string) (*models.UserStats, error) {
	stats, err := r.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch counter {
	case "cards_reviewed":
		stats.CardsReviewed++
	case "cards_mastered":
		stats.CardsMastered++
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCounter, counter)
	}

	// First activity of a new learning day extends or restarts the streak
	if stats.LastActiveDay != dateKey {
		if previousDay(dateKey) == stats.LastActiveDay {
			stats.StreakDays++
		} else {
			stats.StreakDays = 1
		}
		stats.LastActiveDay = dateKey
	}

	if err := r.UpdateUserStats(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetChallengeStats returns a user's counters for one learning day, creating
// an empty row on first access
func (r *StatsRepository) GetChallengeStats(ctx context.Context, userID, dateKey string) (*models.ChallengeStats, error) {
	var stats models.ChallengeStats
	err := DB.GetContext(ctx, &stats,
		"SELECT * FROM challenge_stats WHERE user_id = $1 AND date_key = $2", userID, dateKey)
	if err == sql.ErrNoRows {
		stats = models.ChallengeStats{UserID: userID, DateKey: dateKey}
		if _, err := DB.ExecContext(ctx,
			"INSERT INTO challenge_stats (user_id, date_key) VALUES ($1, $2)", userID, dateKey); err != nil {
			return nil, fmt.Errorf("failed to create challenge stats: %w", err)
		}
		return &stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge stats: %w", err)
	}
	return &stats, nil
}

// IncrementChallenge records one answered question
func (r *StatsRepository) IncrementChallenge(ctx context.Context, userID, dateKey string, correct bool) (*models.ChallengeStats, error) {
	stats, err := r.GetChallengeStats(ctx, userID, dateKey)
	if err != nil {
		return nil, err
	}

	stats.QuestionsAsked++
	if correct {
		stats.CorrectAnswers++
	} else {
		stats.IncorrectAnswers++
	}

	_, err = DB.ExecContext(ctx, `
		UPDATE challenge_stats SET
			questions_asked = $1,
			correct_answers = $2,
			incorrect_answers = $3,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $4 AND date_key = $5
	`, stats.QuestionsAsked, stats.CorrectAnswers, stats.IncorrectAnswers, userID, dateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to update challenge stats: %w", err)
	}
	return stats, nil
}

// SubmitScore records a weekly leaderboard score, keeping the best one
func (r *StatsRepository) SubmitScore(ctx context.Context, entry *models.LeaderboardEntry) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO leaderboard (user_id, week, name, score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, week) DO UPDATE SET
			name = $3,
			score = CASE WHEN leaderboard.score > $4 THEN leaderboard.score ELSE $4 END,
			updated_at = CURRENT_TIMESTAMP
	`, entry.UserID, entry.Week, entry.Name, entry.Score)
	if err != nil {
		return fmt.Errorf("failed to submit score: %w", err)
	}
	return nil
}

// TopScores returns the top n leaderboard entries for a week
func (r *StatsRepository) TopScores(ctx context.Context, week string, n int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := DB.SelectContext(ctx, &entries, `
		SELECT * FROM leaderboard WHERE week = $1
		ORDER BY score DESC, updated_at ASC
		LIMIT $2
	`, week, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

// previousDay returns the date key of the day before key, or "" if key does
// not parse
func previousDay(key string) string {
	t, err := daykey.Parse(key)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(daykey.Layout)
}

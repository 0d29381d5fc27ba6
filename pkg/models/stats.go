package models

import "time"

// UserStats tracks a user's lifetime learning counters.
// The authoritative copy lives server-side; the client holds an advisory cache.
type UserStats struct {
	UserID        string    `json:"user_id" db:"user_id"`
	CardsReviewed int       `json:"cards_reviewed" db:"cards_reviewed"`
	CardsMastered int       `json:"cards_mastered" db:"cards_mastered"`
	StreakDays    int       `json:"streak_days" db:"streak_days"`
	LastActiveDay string    `json:"last_active_day" db:"last_active_day"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ChallengeStats tracks per-day challenge counters for a user
type ChallengeStats struct {
	UserID           string    `json:"user_id" db:"user_id"`
	DateKey          string    `json:"date_key" db:"date_key"`
	QuestionsAsked   int       `json:"questions_asked" db:"questions_asked"`
	CorrectAnswers   int       `json:"correct_answers" db:"correct_answers"`
	IncorrectAnswers int       `json:"incorrect_answers" db:"incorrect_answers"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// LeaderboardEntry represents one row of the weekly leaderboard
type LeaderboardEntry struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Score     int       `json:"score" db:"score"`
	Week      string    `json:"week" db:"week"` // date key of the week's Monday
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

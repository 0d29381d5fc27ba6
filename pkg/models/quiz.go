package models

import "time"

// QuizQuestion represents a single question of the daily quiz
type QuizQuestion struct {
	ID            int64    `json:"id"`
	SentenceID    int64    `json:"sentence_id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectIndex  int      `json:"correct_index"`
	ExplanationLT string   `json:"explanation_lt,omitempty"`
}

// QuizSnapshot is the persisted resume state of an in-progress quiz.
// It is keyed per user per learning day and discarded implicitly on rollover.
type QuizSnapshot struct {
	CurrentIndex int          `json:"current_index"`
	Answers      map[int]bool `json:"answers"` // question index -> answered correctly
	ShowContinue bool         `json:"show_continue"`
	Completed    bool         `json:"completed"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

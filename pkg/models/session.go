package models

import "time"

// SessionState is the persisted snapshot of a user's daily learning session
type SessionState struct {
	UserID             string    `json:"user_id"`
	DateKey            string    `json:"date_key"`
	ClickedWords       []string  `json:"clicked_words"`       // normalized words the user has tapped
	SentencesCompleted bool      `json:"sentences_completed"` // set when the user proceeds to the quiz
	UpdatedAt          time.Time `json:"updated_at"`
}

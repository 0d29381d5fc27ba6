package models

import "time"

// Sentence represents a Lithuanian sentence shown during a daily session
type Sentence struct {
	ID          int64     `json:"id" db:"id"`
	Deck        string    `json:"deck" db:"deck"`
	Text        string    `json:"text" db:"text"`
	Translation string    `json:"translation" db:"translation"`
	Difficulty  int       `json:"difficulty" db:"difficulty"` // 1-5 scale of difficulty
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

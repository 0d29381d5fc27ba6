package storage

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/example/lithuaningo/pkg/models"
)

// SentenceRepository handles database operations for sentence content
type SentenceRepository struct{}

// NewSentenceRepository creates a new repository instance
func NewSentenceRepository() *SentenceRepository {
	return &SentenceRepository{}
}

// GetAll returns all sentences
func (r *SentenceRepository) GetAll(ctx context.Context) ([]models.Sentence, error) {
	var sentences []models.Sentence
	err := DB.SelectContext(ctx, &sentences, "SELECT * FROM sentences ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get sentences: %w", err)
	}
	return sentences, nil
}

// GetByDeck returns all sentences belonging to a deck
func (r *SentenceRepository) GetByDeck(ctx context.Context, deck string) ([]models.Sentence, error) {
	var sentences []models.Sentence
	err := DB.SelectContext(ctx, &sentences, "SELECT * FROM sentences WHERE deck = $1 ORDER BY id", deck)
	if err != nil {
		return nil, fmt.Errorf("failed to get sentences for deck %q: %w", deck, err)
	}
	return sentences, nil
}

// CreateOrUpdate upserts a sentence, unique per (deck, text)
func (r *SentenceRepository) CreateOrUpdate(ctx context.Context, s *models.Sentence) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO sentences (deck, text, translation, difficulty)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (deck, text) DO UPDATE SET
			translation = $3,
			difficulty = $4,
			updated_at = CURRENT_TIMESTAMP
	`, s.Deck, s.Text, s.Translation, s.Difficulty)
	if err != nil {
		return fmt.Errorf("failed to upsert sentence: %w", err)
	}
	return nil
}

// Count returns the number of stored sentences
func (r *SentenceRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM sentences"); err != nil {
		return 0, fmt.Errorf("failed to count sentences: %w", err)
	}
	return n, nil
}

// PickForDay returns up to limit sentences for a user's learning day. The
// selection is deterministic for a (userID, dateKey) pair so repeated fetches
// within a day return the same content.
func (r *SentenceRepository) PickForDay(ctx context.Context, userID, dateKey string, limit int) ([]models.Sentence, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 || limit <= 0 {
		return nil, nil
	}

	// Seed from the (user, day) pair so the shuffle is stable all day
	h := fnv.New64a()
	h.Write([]byte(userID + "|" + dateKey))
	rnd := rand.New(rand.NewSource(int64(h.Sum64())))
	rnd.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	if limit > len(all) {
		limit = len(all)
	}
	return all[:limit], nil
}

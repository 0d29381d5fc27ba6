package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lithuaningo/pkg/models"
)

func seedSentences(t *testing.T, n int) {
	t.Helper()
	repo := NewSentenceRepository()
	for i := 0; i < n; i++ {
		require.NoError(t, repo.CreateOrUpdate(context.Background(), &models.Sentence{
			Deck:        "basics",
			Text:        fmt.Sprintf("Sakinys numeris %d", i),
			Translation: fmt.Sprintf("Sentence number %d", i),
			Difficulty:  1 + i%5,
		}))
	}
}

func TestSentenceUpsert(t *testing.T) {
	setupDB(t)
	repo := NewSentenceRepository()
	ctx := context.Background()

	s := &models.Sentence{Deck: "basics", Text: "Labas rytas", Translation: "Good morning"}
	require.NoError(t, repo.CreateOrUpdate(ctx, s))

	// Same (deck, text) updates instead of duplicating
	s.Translation = "Good morning!"
	require.NoError(t, repo.CreateOrUpdate(ctx, s))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := repo.GetByDeck(ctx, "basics")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Good morning!", all[0].Translation)
}

func TestPickForDayDeterministic(t *testing.T) {
	setupDB(t)
	seedSentences(t, 20)
	repo := NewSentenceRepository()
	ctx := context.Background()

	first, err := repo.PickForDay(ctx, "u1", "2024-05-01", 5)
	require.NoError(t, err)
	require.Len(t, first, 5)

	// Same user and day: identical selection
	second, err := repo.PickForDay(ctx, "u1", "2024-05-01", 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Different day: almost certainly a different selection, and always a
	// valid one
	other, err := repo.PickForDay(ctx, "u1", "2024-05-02", 5)
	require.NoError(t, err)
	require.Len(t, other, 5)

	seen := make(map[int64]bool)
	for _, s := range first {
		assert.False(t, seen[s.ID], "duplicate sentence in selection")
		seen[s.ID] = true
	}
}

func TestPickForDayLimits(t *testing.T) {
	setupDB(t)
	seedSentences(t, 3)
	repo := NewSentenceRepository()
	ctx := context.Background()

	// Limit above content size returns everything
	all, err := repo.PickForDay(ctx, "u1", "2024-05-01", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := repo.PickForDay(ctx, "u1", "2024-05-01", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPickForDayEmptyStore(t *testing.T) {
	setupDB(t)
	repo := NewSentenceRepository()

	got, err := repo.PickForDay(context.Background(), "u1", "2024-05-01", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

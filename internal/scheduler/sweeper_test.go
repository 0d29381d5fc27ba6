package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/lithuaningo/internal/daykey"
	"github.com/example/lithuaningo/internal/storage"
)

func TestRunManualSweep(t *testing.T) {
	require.NoError(t, storage.ConnectInMemory())
	t.Cleanup(func() { storage.Close() })

	kv := storage.NewKVRepository()
	ctx := context.Background()

	now := time.Now()
	fresh := daykey.BuildKey("session", "u1", daykey.At(now))
	recent := daykey.BuildKey("quiz", "u1", daykey.At(now.AddDate(0, 0, -7)))
	stale := daykey.BuildKey("session", "u1", daykey.At(now.AddDate(0, 0, -30)))
	unscoped := "migrationmarker"

	for _, k := range []string{fresh, recent, stale, unscoped} {
		require.NoError(t, kv.Set(ctx, k, "x"))
	}

	sweeper := New(14, zap.NewNop())
	purged, err := sweeper.RunManualSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{fresh, recent, unscoped}, keys)

	// Second sweep finds nothing
	purged, err = sweeper.RunManualSweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
}

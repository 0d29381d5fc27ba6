package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/lithuaningo/internal/daykey"
)

// ErrNotFound is returned when a key has never been written
var ErrNotFound = errors.New("storage: key not found")

// ErrCorrupt is returned when a stored value cannot be decoded into the
// caller's type. Kept distinct from ErrNotFound so callers can tell a missing
// bundle from a damaged one.
var ErrCorrupt = errors.New("storage: stored value is corrupt")

// KVRepository handles day-scoped key-value persistence
type KVRepository struct{}

// NewKVRepository creates a new repository instance
func NewKVRepository() *KVRepository {
	return &KVRepository{}
}

// Get reads and decodes the value stored under key into out.
// Returns ErrNotFound for an absent key and ErrCorrupt for a value that does
// not decode.
func (r *KVRepository) Get(ctx context.Context, key string, out any) error {
	var raw string
	err := DB.GetContext(ctx, &raw, "SELECT value FROM kv_store WHERE key = $1", key)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read key %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: key %q: %v", ErrCorrupt, key, err)
	}
	return nil
}

// GetJSON reads key into out, treating both an absent key and a corrupt value
// as "not present". Callers that need to tell the two apart use Get.
func (r *KVRepository) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	err := r.Get(ctx, key, out)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Set serializes value as JSON and upserts it under key
func (r *KVRepository) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %q: %w", key, err)
	}
	_, err = DB.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = CURRENT_TIMESTAMP
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (r *KVRepository) Delete(ctx context.Context, key string) error {
	_, err := DB.ExecContext(ctx, "DELETE FROM kv_store WHERE key = $1", key)
	if err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Keys returns all stored keys
func (r *KVRepository) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := DB.SelectContext(ctx, &keys, "SELECT key FROM kv_store ORDER BY key"); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// DeleteUserDay removes every key scoped to the given user and learning day.
// Backs the explicit session reset.
func (r *KVRepository) DeleteUserDay(ctx context.Context, userID, dateKey string) error {
	keys, err := r.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		_, kUser, kDay, ok := daykey.SplitKey(key)
		if !ok || kUser != userID || kDay != dateKey {
			continue
		}
		if err := r.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// PurgeOlderThan deletes keys whose embedded date key is strictly before
// cutoff, returning how many were removed. Keys without a parseable date key
// are left alone.
func (r *KVRepository) PurgeOlderThan(ctx context.Context, cutoff string) (int, error) {
	keys, err := r.Keys(ctx)
	if err != nil {
		return 0, err
	}
	purged := 0
	for _, key := range keys {
		if !daykey.OlderThan(key, cutoff) {
			continue
		}
		if err := r.Delete(ctx, key); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}

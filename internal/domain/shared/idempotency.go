package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed update IDs so a re-delivered
// message is handled at most once
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL
	// Returns true if the key was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for duplicate update suppression
type IdempotencyConfig struct {
	// TTL is how long a processed update ID is remembered.
	// Telegram stops re-delivering an update well within a day.
	TTL time.Duration

	// Enabled determines whether duplicate checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}

package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a single atomic unit so lock
	// contention cannot block wallet rows indefinitely.
	DefaultTransactionTimeout = 10 * time.Second

	// BalanceCacheTTL is how long a cached balance read stays valid.
	// Mutations invalidate eagerly; the TTL is a backstop.
	BalanceCacheTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)

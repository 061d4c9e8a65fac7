package ports

import (
	"context"
	"time"
)

// TokenRevocationStore remembers signed token ids that were logged out.
// Entries only need to live until the token would have expired anyway.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// BlockingRunner executes CPU-bound work away from the request goroutine.
type BlockingRunner interface {
	Run(ctx context.Context, fn func()) error
}

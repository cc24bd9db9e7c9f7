package token

import (
	"context"
	"time"
)

// Repo defines the storage operations for tokens.
type Repo interface {
	// Insert stores a new token.
	Insert(ctx context.Context, t *Token) error

	// Get returns the token with its joined UserPID, or ErrTokenNotFound.
	Get(ctx context.Context, pid string) (*Token, error)

	// Delete removes a token and reports whether this call removed it.
	// A missing row is not an error.
	Delete(ctx context.Context, pid string) (bool, error)

	// DeleteExpired removes tokens whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

package sessions

import (
	"context"
	"time"
)

// Repo defines the storage operations for sessions.
type Repo interface {
	// Insert stores a new session.
	Insert(ctx context.Context, s *Session) error

	// Get returns the session with the joined UserPID and ClientKey, or ErrSessionNotFound.
	Get(ctx context.Context, pid string) (*Session, error)

	// Touch sets accessed and moves inactive forward to the given instant as a
	// single atomic update. Inactive never moves backward and is capped at the
	// session's expiry. Returns ErrSessionNotFound when no row matches.
	Touch(ctx context.Context, pid string, accessed, inactive time.Time) error

	// Delete removes a session. A missing row is not an error.
	Delete(ctx context.Context, pid string) error

	// DeleteByUser removes every session of a user and returns the number removed.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)

	// DeleteExpired removes sessions whose inactive or expires instant is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

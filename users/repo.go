package users

import "context"

// Repo is the user store. Unknown PIDs return errors.ErrUserNotFound from internal/errors.
type Repo interface {
	GetByPID(ctx context.Context, pid string) (*User, error)

	// UpdateCredentials replaces the salt and hash of an existing user.
	UpdateCredentials(ctx context.Context, pid, salt, hash string) error
}

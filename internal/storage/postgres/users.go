package postgres

import (
	"context"
	"database/sql"

	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/users"
	"github.com/pkg/errors"
)

var _ users.Repo = (*UserStore)(nil)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// GetByPID looks a user up by PID, ignoring case.
func (s *UserStore) GetByPID(ctx context.Context, pid string) (*users.User, error) {
	var u users.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, pid, salt, hash FROM users WHERE lower(pid) = lower($1)`,
		pid,
	).Scan(&u.ID, &u.PID, &u.Salt, &u.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, autherr.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[UserStore.GetByPID]")
	}
	return &u, nil
}

// UpdateCredentials replaces a user's salt and hash, ignoring PID case.
func (s *UserStore) UpdateCredentials(ctx context.Context, pid, salt, hash string) error {
	n, err := execCount(ctx, s.db, "[UserStore.UpdateCredentials]",
		`UPDATE users SET salt = $2, hash = $3 WHERE lower(pid) = lower($1)`,
		pid, salt, hash,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return autherr.ErrUserNotFound
	}
	return nil
}

// Upsert inserts or updates a user's credentials by PID and sets its ID.
func (s *UserStore) Upsert(ctx context.Context, u *users.User) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (pid, salt, hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (pid) DO UPDATE SET salt = EXCLUDED.salt, hash = EXCLUDED.hash
		RETURNING id`,
		u.PID, u.Salt, u.Hash,
	).Scan(&u.ID)
	return errors.Wrap(err, "[UserStore.Upsert]")
}

package postgres

import (
	"context"
	"database/sql"
	"time"

	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/token"
	"github.com/pkg/errors"
)

var _ token.Repo = (*TokenStore)(nil)

type TokenStore struct {
	db *sql.DB
}

func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) Insert(ctx context.Context, t *token.Token) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (pid, user_id, client_id, type, created, expires)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.PID, t.UserID, t.ClientID, string(t.Type), t.Created, t.Expires,
	)
	return errors.Wrap(err, "[TokenStore.Insert]")
}

func (s *TokenStore) Get(ctx context.Context, pid string) (*token.Token, error) {
	var (
		t   token.Token
		typ string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT t.pid, t.user_id, t.client_id, u.pid, t.type, t.created, t.expires
		FROM tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.pid = $1`,
		pid,
	).Scan(&t.PID, &t.UserID, &t.ClientID, &t.UserPID, &typ, &t.Created, &t.Expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, autherr.ErrTokenNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[TokenStore.Get]")
	}
	t.Type = token.Type(typ)
	t.Created = t.Created.UTC()
	t.Expires = t.Expires.UTC()
	return &t, nil
}

func (s *TokenStore) Delete(ctx context.Context, pid string) (bool, error) {
	n, err := execCount(ctx, s.db, "[TokenStore.Delete]", `DELETE FROM tokens WHERE pid = $1`, pid)
	return n == 1, err
}

func (s *TokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return execCount(ctx, s.db, "[TokenStore.DeleteExpired]", `DELETE FROM tokens WHERE expires <= $1`, now)
}

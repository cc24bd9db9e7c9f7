package postgres

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/go-transit-auth/clients"
	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/pkg/errors"
)

var _ clients.Repo = (*ClientStore)(nil)

type ClientStore struct {
	db *sql.DB
}

func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{db: db}
}

func (s *ClientStore) GetScopes(ctx context.Context, key string) ([]string, error) {
	var scopes string
	err := s.db.QueryRowContext(ctx, `SELECT scopes FROM clients WHERE key = $1`, key).Scan(&scopes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, autherr.ErrClientNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[ClientStore.GetScopes]")
	}
	return clients.ParseScopes(scopes), nil
}

func (s *ClientStore) GetByKey(ctx context.Context, key string) (*clients.Client, error) {
	var (
		c      clients.Client
		scopes string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, key, scopes, session_inactive_days, session_max_days FROM clients WHERE key = $1`,
		key,
	).Scan(&c.ID, &c.Key, &scopes, &c.SessionInactiveDays, &c.SessionMaxDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, autherr.ErrClientNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[ClientStore.GetByKey]")
	}
	c.Scopes = clients.ParseScopes(scopes)
	return &c, nil
}

// Upsert inserts or updates a client by key and sets its ID.
func (s *ClientStore) Upsert(ctx context.Context, c *clients.Client) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO clients (key, scopes, session_inactive_days, session_max_days)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			scopes = EXCLUDED.scopes,
			session_inactive_days = EXCLUDED.session_inactive_days,
			session_max_days = EXCLUDED.session_max_days
		RETURNING id`,
		c.Key, clients.FormatScopes(c.Scopes), c.SessionInactiveDays, c.SessionMaxDays,
	).Scan(&c.ID)
	return errors.Wrap(err, "[ClientStore.Upsert]")
}

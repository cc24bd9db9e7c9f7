// Package postgres implements the client, user, session and token stores on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pkg/errors"
)

// Options configure the connection pool.
type Options struct {
	MaxConns    int
	PingTimeout time.Duration
}

// Open connects to url and verifies the connection.
func Open(ctx context.Context, url string, opts Options) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "[postgres.Open] open")
	}

	if opts.MaxConns > 0 {
		db.SetMaxOpenConns(opts.MaxConns)
		db.SetMaxIdleConns(opts.MaxConns / 2)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if opts.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.PingTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[postgres.Open] ping")
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id BIGSERIAL PRIMARY KEY,
	key TEXT NOT NULL UNIQUE,
	scopes TEXT NOT NULL DEFAULT '',
	session_inactive_days INTEGER NOT NULL,
	session_max_days INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	pid TEXT NOT NULL UNIQUE,
	salt TEXT NOT NULL,
	hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id BIGSERIAL PRIMARY KEY,
	pid TEXT NOT NULL UNIQUE,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	created TIMESTAMP WITH TIME ZONE NOT NULL,
	accessed TIMESTAMP WITH TIME ZONE NOT NULL,
	inactive TIMESTAMP WITH TIME ZONE NOT NULL,
	expires TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE TABLE IF NOT EXISTS tokens (
	id BIGSERIAL PRIMARY KEY,
	pid TEXT NOT NULL UNIQUE,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	type TEXT NOT NULL,
	created TIMESTAMP WITH TIME ZONE NOT NULL,
	expires TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_pid_lower ON users(lower(pid));
CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_inactive ON sessions(inactive);
CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires);
CREATE INDEX IF NOT EXISTS idx_tokens_expires ON tokens(expires);
`

// Migrate creates the tables and indexes when they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "[postgres.Migrate]")
	}
	return nil
}

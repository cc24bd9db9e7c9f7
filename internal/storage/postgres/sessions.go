package postgres

import (
	"context"
	"database/sql"
	"time"

	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/sessions"
	"github.com/pkg/errors"
)

var _ sessions.Repo = (*SessionStore)(nil)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Insert(ctx context.Context, sess *sessions.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (pid, user_id, client_id, created, accessed, inactive, expires)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sess.PID, sess.UserID, sess.ClientID, sess.Created, sess.Accessed, sess.Inactive, sess.Expires,
	)
	return errors.Wrap(err, "[SessionStore.Insert]")
}

func (s *SessionStore) Get(ctx context.Context, pid string) (*sessions.Session, error) {
	var sess sessions.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT s.pid, s.user_id, s.client_id, u.pid, c.key, s.created, s.accessed, s.inactive, s.expires
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		JOIN clients c ON c.id = s.client_id
		WHERE s.pid = $1`,
		pid,
	).Scan(&sess.PID, &sess.UserID, &sess.ClientID, &sess.UserPID, &sess.ClientKey,
		&sess.Created, &sess.Accessed, &sess.Inactive, &sess.Expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, autherr.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[SessionStore.Get]")
	}
	sess.Created = sess.Created.UTC()
	sess.Accessed = sess.Accessed.UTC()
	sess.Inactive = sess.Inactive.UTC()
	sess.Expires = sess.Expires.UTC()
	return &sess, nil
}

// Touch updates accessed and slides inactive forward in one statement, capped at expires.
func (s *SessionStore) Touch(ctx context.Context, pid string, accessed, inactive time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET accessed = $2, inactive = LEAST(GREATEST(inactive, $3), expires)
		WHERE pid = $1`,
		pid, accessed, inactive,
	)
	if err != nil {
		return errors.Wrap(err, "[SessionStore.Touch]")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[SessionStore.Touch] rows affected")
	}
	if n == 0 {
		return autherr.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, pid string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE pid = $1`, pid)
	return errors.Wrap(err, "[SessionStore.Delete]")
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	return execCount(ctx, s.db, "[SessionStore.DeleteByUser]", `DELETE FROM sessions WHERE user_id = $1`, userID)
}

func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return execCount(ctx, s.db, "[SessionStore.DeleteExpired]", `DELETE FROM sessions WHERE inactive <= $1 OR expires <= $1`, now)
}

func execCount(ctx context.Context, db *sql.DB, op, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, op+" rows affected")
	}
	return n, nil
}

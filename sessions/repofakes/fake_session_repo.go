package fakesessionrepo

import (
	"context"
	"sync"
	"time"

	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory sessions.Repo. Setting Err makes every call fail with it.
type FakeSessionRepo struct {
	sessions map[string]sessions.Session
	lock     sync.RWMutex
	Err      error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]sessions.Session),
	}
}

func (sr *FakeSessionRepo) Insert(ctx context.Context, s *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if err := sr.fail(ctx); err != nil {
		return err
	}
	sr.sessions[s.PID] = *s
	return nil
}

func (sr *FakeSessionRepo) Get(ctx context.Context, pid string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	if err := sr.fail(ctx); err != nil {
		return nil, err
	}
	s, ok := sr.sessions[pid]
	if !ok {
		return nil, autherr.ErrSessionNotFound
	}
	return &s, nil
}

func (sr *FakeSessionRepo) Touch(ctx context.Context, pid string, accessed, inactive time.Time) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if err := sr.fail(ctx); err != nil {
		return err
	}
	s, ok := sr.sessions[pid]
	if !ok {
		return autherr.ErrSessionNotFound
	}
	s.Accessed = accessed
	if inactive.After(s.Inactive) {
		s.Inactive = inactive
	}
	if s.Inactive.After(s.Expires) {
		s.Inactive = s.Expires
	}
	sr.sessions[pid] = s
	return nil
}

func (sr *FakeSessionRepo) Delete(ctx context.Context, pid string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if err := sr.fail(ctx); err != nil {
		return err
	}
	delete(sr.sessions, pid)
	return nil
}

func (sr *FakeSessionRepo) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if err := sr.fail(ctx); err != nil {
		return 0, err
	}
	var n int64
	for pid, s := range sr.sessions {
		if s.UserID == userID {
			delete(sr.sessions, pid)
			n++
		}
	}
	return n, nil
}

func (sr *FakeSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if err := sr.fail(ctx); err != nil {
		return 0, err
	}
	var n int64
	for pid, s := range sr.sessions {
		if !s.Inactive.After(now) || !s.Expires.After(now) {
			delete(sr.sessions, pid)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (sr *FakeSessionRepo) Len() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return len(sr.sessions)
}

func (sr *FakeSessionRepo) fail(ctx context.Context) error {
	if sr.Err != nil {
		return sr.Err
	}
	return ctx.Err()
}

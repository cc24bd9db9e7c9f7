package tokenfakerepo

import (
	"context"
	"sync"
	"time"

	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/token"
)

var _ token.Repo = (*FakeTokenRepo)(nil)

// FakeTokenRepo is an in-memory token.Repo. Setting Err makes every call fail with it.
type FakeTokenRepo struct {
	tokens map[string]token.Token
	lock   sync.RWMutex
	Err    error
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		tokens: make(map[string]token.Token),
	}
}

func (tr *FakeTokenRepo) Insert(ctx context.Context, t *token.Token) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if err := tr.fail(ctx); err != nil {
		return err
	}
	tr.tokens[t.PID] = *t
	return nil
}

func (tr *FakeTokenRepo) Get(ctx context.Context, pid string) (*token.Token, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	if err := tr.fail(ctx); err != nil {
		return nil, err
	}
	t, ok := tr.tokens[pid]
	if !ok {
		return nil, autherr.ErrTokenNotFound
	}
	return &t, nil
}

func (tr *FakeTokenRepo) Delete(ctx context.Context, pid string) (bool, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if err := tr.fail(ctx); err != nil {
		return false, err
	}
	_, ok := tr.tokens[pid]
	delete(tr.tokens, pid)
	return ok, nil
}

func (tr *FakeTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if err := tr.fail(ctx); err != nil {
		return 0, err
	}
	var n int64
	for pid, t := range tr.tokens {
		if !t.Expires.After(now) {
			delete(tr.tokens, pid)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored tokens.
func (tr *FakeTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.tokens)
}

func (tr *FakeTokenRepo) fail(ctx context.Context) error {
	if tr.Err != nil {
		return tr.Err
	}
	return ctx.Err()
}

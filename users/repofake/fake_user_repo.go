package fakeuserrepo

import (
	"context"
	"strings"
	"sync"

	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users  map[string]*users.User // lower-cased pid to user
	nextID int64
	lock   sync.RWMutex

	// Err, when set, is returned from every lookup to simulate a store failure.
	Err error
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users: make(map[string]*users.User),
	}
}

// Upsert stores user, assigning an internal ID when it has none.
func (ur *FakeUserRepo) Upsert(user *users.User) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == 0 {
		ur.nextID++
		user.ID = ur.nextID
	}
	ur.users[strings.ToLower(user.PID)] = user
}

func (ur *FakeUserRepo) GetByPID(ctx context.Context, pid string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ur.Err != nil {
		return nil, ur.Err
	}
	user, ok := ur.users[strings.ToLower(pid)]
	if !ok {
		return nil, autherr.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (ur *FakeUserRepo) UpdateCredentials(ctx context.Context, pid, salt, hash string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if ur.Err != nil {
		return ur.Err
	}
	user, ok := ur.users[strings.ToLower(pid)]
	if !ok {
		return autherr.ErrUserNotFound
	}
	u := *user
	u.Salt, u.Hash = salt, hash
	ur.users[strings.ToLower(pid)] = &u
	return nil
}

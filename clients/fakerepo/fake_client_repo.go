package fakeclientrepo

import (
	"context"
	"slices"
	"sync"

	"github.com/jrsteele09/go-transit-auth/clients"
	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
)

var _ clients.Repo = (*FakeClientRepo)(nil)

type FakeClientRepo struct {
	clients map[string]*clients.Client // keyed by client key
	nextID  int64
	lock    sync.RWMutex

	// Err, when set, is returned from every lookup to simulate a store failure.
	Err error
	// Lookups counts calls that reached the fake.
	Lookups int
}

func NewFakeClientRepo() *FakeClientRepo {
	return &FakeClientRepo{
		clients: make(map[string]*clients.Client),
	}
}

func (r *FakeClientRepo) Upsert(client *clients.Client) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if client.ID == 0 {
		r.nextID++
		client.ID = r.nextID
	}
	r.clients[client.Key] = client
}

func (r *FakeClientRepo) GetScopes(ctx context.Context, key string) ([]string, error) {
	client, err := r.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return slices.Clone(client.Scopes), nil
}

func (r *FakeClientRepo) GetByKey(ctx context.Context, key string) (*clients.Client, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Lookups++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Err != nil {
		return nil, r.Err
	}
	client, ok := r.clients[key]
	if !ok {
		return nil, autherr.ErrClientNotFound
	}
	c := *client
	return &c, nil
}

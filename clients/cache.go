package clients

import (
	"context"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

var _ Repo = (*CachedRepo)(nil)

// CachedRepo memoises client lookups for a bounded time. Failed lookups,
// including unknown keys, are never cached.
type CachedRepo struct {
	repo    Repo
	scopes  *lru.LRU[string, []string]
	clients *lru.LRU[string, *Client]
}

func NewCachedRepo(repo Repo, size int, ttl time.Duration) *CachedRepo {
	if size < 1 {
		size = 1
	}
	return &CachedRepo{
		repo:    repo,
		scopes:  lru.NewLRU[string, []string](size, nil, ttl),
		clients: lru.NewLRU[string, *Client](size, nil, ttl),
	}
}

func (r *CachedRepo) GetScopes(ctx context.Context, key string) ([]string, error) {
	if scopes, ok := r.scopes.Get(key); ok {
		return slices.Clone(scopes), nil
	}
	scopes, err := r.repo.GetScopes(ctx, key)
	if err != nil {
		return nil, err
	}
	r.scopes.Add(key, slices.Clone(scopes))
	return scopes, nil
}

func (r *CachedRepo) GetByKey(ctx context.Context, key string) (*Client, error) {
	if client, ok := r.clients.Get(key); ok {
		c := *client
		return &c, nil
	}
	client, err := r.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	c := *client
	r.clients.Add(key, &c)
	return client, nil
}

// Invalidate drops any cached entries for key.
func (r *CachedRepo) Invalidate(key string) {
	r.scopes.Remove(key)
	r.clients.Remove(key)
}

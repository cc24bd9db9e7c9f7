package clients

import "context"

// Repo is the client registry. Lookups for an unknown key return
// errors.ErrClientNotFound from internal/errors.
type Repo interface {
	// GetScopes returns the scopes granted to key
	GetScopes(ctx context.Context, key string) ([]string, error)

	// GetByKey returns the client registered under key
	GetByKey(ctx context.Context, key string) (*Client, error)
}

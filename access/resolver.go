package access

import (
	"context"
	"errors"
	"regexp"

	"github.com/jrsteele09/go-transit-auth/clients"
	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/internal/metrics"
	"github.com/rs/zerolog"
)

var tokenHeaderPattern = regexp.MustCompile(`(?i)^token (\S+)$`)

// Resolver turns an Authorization header into the scopes granted to its client key.
type Resolver struct {
	clients clients.Repo
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type ResolverOption func(*Resolver)

func WithLogger(logger zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func NewResolver(clientRepo clients.Repo, options ...ResolverOption) *Resolver {
	r := &Resolver{
		clients: clientRepo,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Resolve returns the scopes for header and the client key it carries.
//
//   - no header: {public}, no key
//   - header not of the form "Token <key>" (any case): ErrHeaderFormat, no scopes
//   - unknown key: {public}
//   - known key: {public} plus the client's granted scopes
func (r *Resolver) Resolve(ctx context.Context, header string) (Scopes, string, error) {
	if header == "" {
		r.metrics.AccessResolved("anonymous")
		return NewScopes(ScopePublic), "", nil
	}

	match := tokenHeaderPattern.FindStringSubmatch(header)
	if match == nil {
		r.metrics.AccessResolved("bad_header")
		return Scopes{}, "", autherr.ErrHeaderFormat
	}
	key := match[1]

	scopes := NewScopes(ScopePublic)
	granted, err := r.clients.GetScopes(ctx, key)
	switch {
	case errors.Is(err, autherr.ErrClientNotFound):
		r.logger.Debug().Str("client", key).Msg("unknown client key, public scope only")
		r.metrics.AccessResolved("unknown_client")
		return scopes, key, nil
	case err != nil:
		r.metrics.AccessResolved("error")
		return Scopes{}, key, autherr.Server("[access.Resolve] GetScopes", err)
	}

	for _, s := range granted {
		scopes[s] = struct{}{}
	}
	r.metrics.AccessResolved("granted")
	return scopes, key, nil
}

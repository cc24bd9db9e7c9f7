package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-transit-auth/access"
	"github.com/jrsteele09/go-transit-auth/auth"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyScopes stores the scopes resolved from the Authorization header
	ContextKeyScopes ContextKey = "scopes"
	// ContextKeyClientKey stores the client key carried by the Authorization header
	ContextKeyClientKey ContextKey = "client_key"
)

// ScopesFromContext returns the scopes granted to the request, or none.
func ScopesFromContext(ctx context.Context) access.Scopes {
	scopes, _ := ctx.Value(ContextKeyScopes).(access.Scopes)
	if scopes == nil {
		return access.Scopes{}
	}
	return scopes
}

// ClientKeyFromContext returns the client key of the request, or "".
func ClientKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(ContextKeyClientKey).(string)
	return key
}

// AccessMiddleware resolves the Authorization header into scopes before dispatch.
// A malformed header is rejected outright.
func (s *Server) AccessMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scopes, clientKey, err := s.auth.ResolveAccess(r.Context(), r.Header.Get(HeaderAuthorization))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), ContextKeyScopes, scopes)
		ctx = context.WithValue(ctx, ContextKeyClientKey, clientKey)
		next(w, r.WithContext(ctx))
	}
}

// RequireScope admits the request only when its scopes satisfy scope.
func (s *Server) RequireScope(scope string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if ok, err := s.auth.CheckAccess(scope, ScopesFromContext(r.Context())); !ok {
				s.writeError(w, r, err)
				return
			}
			next(w, r)
		}
	}
}

// RequireSession runs the authentication pipeline for the user named in the
// path. The handler only runs when the pipeline passes.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.auth.Authenticate(r.Context(), auth.Request{
			UserPID:      r.PathValue(pathUserPID),
			SessionToken: r.Header.Get(HeaderSessionToken),
			ClientKey:    ClientKeyFromContext(r.Context()),
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next(w, r)
	}
}

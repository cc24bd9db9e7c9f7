package access

import "sort"

const (
	// ScopePublic is granted to every request, with or without a client key.
	ScopePublic = "public"
	// ScopeDebug overrides every other scope check unless debug is disabled server wide.
	ScopeDebug = "debug"
	// ScopeUsers gates the user, session and token routes.
	ScopeUsers = "users"
)

// Scopes is a set of granted scope names.
type Scopes map[string]struct{}

func NewScopes(names ...string) Scopes {
	s := make(Scopes, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s Scopes) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// List returns the scope names in sorted order.
func (s Scopes) List() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

package access

import autherr "github.com/jrsteele09/go-transit-auth/internal/errors"

// Allow decides whether a request holding granted may use a route requiring required.
// The checks run in a fixed order:
//  1. debug disabled and debug is required or presented: ErrDebugAccessDenied
//  2. required or debug granted: allowed
//  3. otherwise an AccessDeniedError naming required
func Allow(required string, granted Scopes, debugAllowed bool) (bool, error) {
	if !debugAllowed && (required == ScopeDebug || granted.Has(ScopeDebug)) {
		return false, autherr.ErrDebugAccessDenied
	}
	if granted.Has(required) || granted.Has(ScopeDebug) {
		return true, nil
	}
	return false, autherr.AccessDenied(required)
}

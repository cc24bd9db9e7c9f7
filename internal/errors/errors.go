package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that map failures onto a transport.
type Kind int

const (
	KindUnknown    Kind = iota
	KindValidation      // malformed input, e.g. a bad Authorization header
	KindNotFound        // missing client, user, session or token
	KindAuthz           // scope checks: access denied, debug access denied
	KindAuthn           // session does not belong to the caller
	KindExpiry          // session expired, token expired
	KindServer          // store or transport failure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthz:
		return "authz"
	case KindAuthn:
		return "authn"
	case KindExpiry:
		return "expiry"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Error is a sentinel carrying its Kind. Compare with errors.Is.
type Error struct {
	kind Kind
	code string
	msg  string
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{kind: kind, code: code, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// Kind returns the error classification.
func (e *Error) Kind() Kind { return e.kind }

// Code is a stable snake_case identifier suitable for response bodies.
func (e *Error) Code() string { return e.code }

var (
	// Validation
	ErrHeaderFormat     = newError(KindValidation, "invalid_authorization_header", "authorization header must be of the form 'Token <key>'")
	ErrInvalidTokenType = newError(KindValidation, "invalid_token_type", "invalid token type")
	ErrInvalidRequest   = newError(KindValidation, "invalid_request", "invalid request")
	ErrInvalidToken     = newError(KindValidation, "invalid_token", "token does not match the user or type")

	// Not found
	ErrClientNotFound  = newError(KindNotFound, "client_not_found", "client not found")
	ErrUserNotFound    = newError(KindNotFound, "user_not_found", "user not found")
	ErrSessionNotFound = newError(KindNotFound, "session_not_found", "session not found")
	ErrTokenNotFound   = newError(KindNotFound, "token_not_found", "token not found")

	// Authorization
	ErrAccessDenied      = newError(KindAuthz, "access_denied", "access denied")
	ErrDebugAccessDenied = newError(KindAuthz, "debug_access_denied", "debug access is disabled on this server")

	// Authentication
	ErrNotAuthorized             = newError(KindAuthn, "not_authorized", "not authorized")
	ErrSessionTokenHeaderMissing = newError(KindAuthn, "session_token_header_missing", "X-Session-Token header is required")
	ErrInvalidCredentials        = newError(KindAuthn, "invalid_credentials", "invalid credentials")

	// Expiry
	ErrSessionExpired = newError(KindExpiry, "session_expired", "session expired")
	ErrTokenExpired   = newError(KindExpiry, "token_expired", "token expired")

	// Server
	ErrServer = newError(KindServer, "server_error", "server error")
)

// AccessDeniedError reports the scope a request lacked.
type AccessDeniedError struct {
	Scope string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: scope %q required", e.Scope)
}

func (e *AccessDeniedError) Is(target error) bool { return target == ErrAccessDenied }

func (e *AccessDeniedError) Kind() Kind { return KindAuthz }

func (e *AccessDeniedError) Code() string { return ErrAccessDenied.code }

// AccessDenied builds the error returned when required is missing from the granted scopes.
func AccessDenied(required string) error {
	return &AccessDeniedError{Scope: required}
}

// Server marks err as a store or transport failure. The original error stays in the chain.
func Server(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrServer, err)
}

type kinded interface {
	Kind() Kind
}

type coded interface {
	Code() string
}

// KindOf returns the Kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrServer) {
		return KindServer
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// CodeOf returns the response code of the first classified error in err's chain.
func CodeOf(err error) string {
	if errors.Is(err, ErrServer) {
		return ErrServer.code
	}
	var c coded
	if errors.As(err, &c) {
		return c.Code()
	}
	return ErrServer.code
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

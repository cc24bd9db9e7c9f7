package token

import (
	"strings"
	"time"

	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
)

// Type is the purpose a one-shot token was issued for. The lifetime is fixed by the type.
type Type string

const (
	EmailVerification Type = "EMAIL_VERIFICATION"
	PasswordReset     Type = "PASSWORD_RESET"
)

var ttls = map[Type]time.Duration{
	EmailVerification: 168 * time.Hour,
	PasswordReset:     2 * time.Hour,
}

// TTL returns the lifetime of tokens of type t.
func (t Type) TTL() (time.Duration, bool) {
	ttl, ok := ttls[t]
	return ttl, ok
}

func (t Type) Valid() bool {
	_, ok := ttls[t]
	return ok
}

// ParseType accepts a token type name in any case.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", autherr.ErrInvalidTokenType
	}
	return t, nil
}

// Code is the outcome of checking a token.
type Code string

const (
	Valid   Code = "VALID"
	Invalid Code = "INVALID"
	Expired Code = "EXPIRED"
)

// Token is a single-purpose credential bound to a user and the client that requested it.
type Token struct {
	PID      string
	UserID   int64
	ClientID int64
	UserPID  string // joined from the owning user on read
	Type     Type
	Created  time.Time
	Expires  time.Time
}

// Evaluate reports the code for presenting t as a token of type typ for userPID at now.
// Ownership and type are checked before expiry.
func Evaluate(t *Token, userPID string, typ Type, now time.Time) Code {
	if !strings.EqualFold(t.UserPID, userPID) || t.Type != typ {
		return Invalid
	}
	if now.After(t.Expires) {
		return Expired
	}
	return Valid
}

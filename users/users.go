package users

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"

	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/pkg/errors"
)

// SaltLength is the number of random bytes in a generated salt.
const SaltLength = 32

// User is an end user of the API. Only the public id (PID) is ever exposed.
type User struct {
	ID   int64  `json:"-"`             // Internal identifier, referenced by sessions and tokens
	PID  string `json:"pid,omitempty"` // Public identifier
	Salt string `json:"-"`             // Per-user password salt, base64
	Hash string `json:"-"`             // HashPassword(Salt, password)
}

// GenerateSalt returns SaltLength cryptographically random bytes, base64 encoded.
func GenerateSalt() (string, error) {
	b := make([]byte, SaltLength)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "[users.GenerateSalt] rand.Read")
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// HashPassword returns the base64 encoded HMAC-SHA512 of password keyed by salt.
func HashPassword(salt, password string) string {
	mac := hmac.New(sha512.New, []byte(salt))
	mac.Write([]byte(password))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// CheckPasswordHash compares in constant time.
func CheckPasswordHash(salt, password, hash string) bool {
	return hmac.Equal([]byte(HashPassword(salt, password)), []byte(hash))
}

// CheckPassword checks a password against the user's stored salt and hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(u.Salt, password, u.Hash)
}

// Verifier checks supplied passwords against stored credentials and replaces them.
type Verifier struct {
	repo Repo
}

func NewVerifier(repo Repo) *Verifier {
	return &Verifier{repo: repo}
}

// VerifyPassword reports whether password matches the stored hash for pid. An unknown
// pid returns errors.ErrUserNotFound from internal/errors.
func (v *Verifier) VerifyPassword(ctx context.Context, pid, password string) (bool, error) {
	user, err := v.repo.GetByPID(ctx, pid)
	if errors.Is(err, autherr.ErrUserNotFound) {
		return false, err
	}
	if err != nil {
		return false, autherr.Server("[users.VerifyPassword] GetByPID", err)
	}
	return user.CheckPassword(password), nil
}

// SetPassword stores a fresh salt and the hash of password for pid.
func (v *Verifier) SetPassword(ctx context.Context, pid, password string) error {
	salt, err := GenerateSalt()
	if err != nil {
		return autherr.Server("[users.SetPassword] GenerateSalt", err)
	}
	err = v.repo.UpdateCredentials(ctx, pid, salt, HashPassword(salt, password))
	if errors.Is(err, autherr.ErrUserNotFound) {
		return err
	}
	if err != nil {
		return autherr.Server("[users.SetPassword] UpdateCredentials", err)
	}
	return nil
}

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/jrsteele09/go-transit-auth/clients"
	"github.com/jrsteele09/go-transit-auth/internal/config"
	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type clientSeeder interface {
	Upsert(ctx context.Context, c *clients.Client) error
}

type userSeeder interface {
	GetByPID(ctx context.Context, pid string) (*users.User, error)
	Upsert(ctx context.Context, u *users.User) error
}

type cacheInvalidator interface {
	Invalidate(key string)
}

// bootstrapper seeds the configured client and admin user so a fresh database is usable.
type bootstrapper struct {
	clients clientSeeder
	cache   cacheInvalidator
	users   userSeeder
	logger  zerolog.Logger
}

// initialiseSystem upserts the bootstrap client and creates the admin user when it
// does not exist yet. An existing admin keeps its password.
func (b *bootstrapper) initialiseSystem(ctx context.Context, cfg config.BootstrapConfig) error {
	if err := b.createClient(ctx, cfg); err != nil {
		return errors.Wrap(err, "[bootstrap initialiseSystem] client")
	}
	generatedPassword, err := b.createAdmin(ctx, cfg.GetBootstrapAdminUser(), cfg.GetBootstrapAdminPassword())
	if err != nil {
		return errors.Wrap(err, "[bootstrap initialiseSystem] admin user")
	}
	if generatedPassword != "" {
		b.logger.Warn().
			Str("user", cfg.GetBootstrapAdminUser()).
			Str("password", generatedPassword).
			Msg("admin user created with a generated password; it will not be displayed again")
	}
	return nil
}

func (b *bootstrapper) createClient(ctx context.Context, cfg config.BootstrapConfig) error {
	key := cfg.GetBootstrapClientKey()
	if key == "" {
		return nil
	}
	c := &clients.Client{
		Key:                 key,
		Scopes:              cfg.GetBootstrapClientScopes(),
		SessionInactiveDays: cfg.GetBootstrapSessionInactiveDays(),
		SessionMaxDays:      cfg.GetBootstrapSessionMaxDays(),
	}
	if err := b.clients.Upsert(ctx, c); err != nil {
		return err
	}
	if b.cache != nil {
		b.cache.Invalidate(key)
	}
	b.logger.Info().Str("client", key).Strs("scopes", c.Scopes).Msg("bootstrap client registered")
	return nil
}

// createAdmin returns the generated password when it had to make one up.
func (b *bootstrapper) createAdmin(ctx context.Context, pid, password string) (generatedPassword string, err error) {
	if pid == "" {
		return "", nil
	}
	_, err = b.users.GetByPID(ctx, pid)
	if err == nil {
		b.logger.Debug().Str("user", pid).Msg("admin user already exists")
		return "", nil
	}
	if !errors.Is(err, autherr.ErrUserNotFound) {
		return "", err
	}

	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", errors.Wrap(err, "generate password")
		}
		password = base64.RawURLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	}

	salt, err := users.GenerateSalt()
	if err != nil {
		return "", err
	}
	admin := &users.User{PID: pid, Salt: salt, Hash: users.HashPassword(salt, password)}
	if err := b.users.Upsert(ctx, admin); err != nil {
		return "", err
	}
	b.logger.Info().Str("user", pid).Msg("bootstrap admin user created")
	return generatedPassword, nil
}

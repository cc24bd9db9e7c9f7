package main

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/go-transit-auth/clients"
	fakeclientrepo "github.com/jrsteele09/go-transit-auth/clients/fakerepo"
	"github.com/jrsteele09/go-transit-auth/internal/config"
	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/users"
	fakeuserrepo "github.com/jrsteele09/go-transit-auth/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubClientStore struct {
	*fakeclientrepo.FakeClientRepo
	err error
}

func (s *stubClientStore) Upsert(_ context.Context, c *clients.Client) error {
	if s.err != nil {
		return s.err
	}
	s.FakeClientRepo.Upsert(c)
	return nil
}

type stubUserStore struct {
	*fakeuserrepo.FakeUserRepo
	upserts int
}

func (s *stubUserStore) Upsert(_ context.Context, u *users.User) error {
	s.upserts++
	s.FakeUserRepo.Upsert(u)
	return nil
}

func newBootstrapper(t *testing.T) (*bootstrapper, *stubClientStore, *clients.CachedRepo, *stubUserStore) {
	t.Helper()
	cs := &stubClientStore{FakeClientRepo: fakeclientrepo.NewFakeClientRepo()}
	us := &stubUserStore{FakeUserRepo: fakeuserrepo.NewFakeUserRepo()}
	cache := clients.NewCachedRepo(cs, 8, 0)
	return &bootstrapper{clients: cs, cache: cache, users: us, logger: zerolog.Nop()}, cs, cache, us
}

func TestInitialiseSystem(t *testing.T) {
	ctx := context.Background()
	t.Setenv("BOOTSTRAP_CLIENT_KEY", "ops-console")
	t.Setenv("BOOTSTRAP_CLIENT_SCOPES", "users,debug")
	t.Setenv("BOOTSTRAP_SESSION_INACTIVE_DAYS", "1")
	t.Setenv("BOOTSTRAP_SESSION_MAX_DAYS", "2")
	t.Setenv("BOOTSTRAP_ADMIN_USER", "admin")
	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "s3cret")

	b, _, cache, us := newBootstrapper(t)
	require.NoError(t, b.initialiseSystem(ctx, config.New()))

	c, err := cache.GetByKey(ctx, "ops-console")
	require.NoError(t, err)
	require.Equal(t, []string{"users", "debug"}, c.Scopes)
	require.Equal(t, 1, c.SessionInactiveDays)
	require.Equal(t, 2, c.SessionMaxDays)

	ok, err := users.NewVerifier(us).VerifyPassword(ctx, "admin", "s3cret")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestInitialiseSystem_RefreshesCachedClient(t *testing.T) {
	ctx := context.Background()
	t.Setenv("BOOTSTRAP_CLIENT_KEY", "ops-console")
	t.Setenv("BOOTSTRAP_CLIENT_SCOPES", "users")
	t.Setenv("BOOTSTRAP_ADMIN_USER", "")

	b, _, cache, _ := newBootstrapper(t)
	require.NoError(t, b.initialiseSystem(ctx, config.New()))
	scopes, err := cache.GetScopes(ctx, "ops-console")
	require.NoError(t, err)
	require.Equal(t, []string{"users"}, scopes)

	t.Setenv("BOOTSTRAP_CLIENT_SCOPES", "users,search")
	require.NoError(t, b.initialiseSystem(ctx, config.New()))
	scopes, err = cache.GetScopes(ctx, "ops-console")
	require.NoError(t, err)
	require.Equal(t, []string{"users", "search"}, scopes)
}

func TestInitialiseSystem_KeepsExistingAdmin(t *testing.T) {
	ctx := context.Background()
	t.Setenv("BOOTSTRAP_CLIENT_KEY", "")
	t.Setenv("BOOTSTRAP_ADMIN_USER", "admin")
	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "first")

	b, _, _, us := newBootstrapper(t)
	require.NoError(t, b.initialiseSystem(ctx, config.New()))

	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "second")
	require.NoError(t, b.initialiseSystem(ctx, config.New()))
	require.Equal(t, 1, us.upserts)

	ok, err := users.NewVerifier(us).VerifyPassword(ctx, "admin", "first")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCreateAdmin_GeneratesPassword(t *testing.T) {
	ctx := context.Background()
	b, _, _, us := newBootstrapper(t)

	password, err := b.createAdmin(ctx, "admin", "")
	require.NoError(t, err)
	require.Len(t, password, 22)

	ok, err := users.NewVerifier(us).VerifyPassword(ctx, "admin", password)
	require.NoError(t, err)
	require.True(t, ok)

	password, err = b.createAdmin(ctx, "", "")
	require.NoError(t, err)
	require.Empty(t, password)
}

func TestInitialiseSystem_Failures(t *testing.T) {
	ctx := context.Background()
	t.Setenv("BOOTSTRAP_CLIENT_KEY", "ops-console")
	t.Setenv("BOOTSTRAP_ADMIN_USER", "admin")

	b, cs, _, _ := newBootstrapper(t)
	cs.err = errors.New("connection refused")
	err := b.initialiseSystem(ctx, config.New())
	require.ErrorContains(t, err, "client")

	b, _, _, us := newBootstrapper(t)
	us.Err = errors.New("connection refused")
	err = b.initialiseSystem(ctx, config.New())
	require.Error(t, err)
	require.False(t, errors.Is(err, autherr.ErrUserNotFound))
}

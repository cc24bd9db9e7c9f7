package auth_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-transit-auth/auth"
	"github.com/jrsteele09/go-transit-auth/clients"
	fakeclientrepo "github.com/jrsteele09/go-transit-auth/clients/fakerepo"
	fakesessionrepo "github.com/jrsteele09/go-transit-auth/sessions/repofakes"
	tokenfakerepo "github.com/jrsteele09/go-transit-auth/token/repofake"
	"github.com/jrsteele09/go-transit-auth/users"
	fakeuserrepo "github.com/jrsteele09/go-transit-auth/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testClientKey    = "abc123"
	testOtherClient  = "kiosk"
	testUserPID      = "rider-1"
	testOtherUserPID = "rider-2"
	testUserPassword = "correct horse battery staple"
)

var t0 = time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

// testFixture holds all test dependencies
type testFixture struct {
	now      time.Time
	users    *fakeuserrepo.FakeUserRepo
	clients  *fakeclientrepo.FakeClientRepo
	sessions *fakesessionrepo.FakeSessionRepo
	tokens   *tokenfakerepo.FakeTokenRepo
	service  *auth.Service
}

func (f *testFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T, options ...auth.ServiceOption) *testFixture {
	t.Helper()

	f := &testFixture{
		now:      t0,
		users:    fakeuserrepo.NewFakeUserRepo(),
		clients:  fakeclientrepo.NewFakeClientRepo(),
		sessions: fakesessionrepo.NewFakeSessionRepo(),
		tokens:   tokenfakerepo.NewFakeTokenRepo(),
	}

	for _, pid := range []string{testUserPID, testOtherUserPID} {
		salt, err := users.GenerateSalt()
		require.NoError(t, err)
		f.users.Upsert(&users.User{PID: pid, Salt: salt, Hash: users.HashPassword(salt, testUserPassword)})
	}
	f.clients.Upsert(&clients.Client{
		Key:                 testClientKey,
		Scopes:              clients.ParseScopes("gtfs,search,users"),
		SessionInactiveDays: 7,
		SessionMaxDays:      30,
	})
	f.clients.Upsert(&clients.Client{
		Key:                 testOtherClient,
		Scopes:              []string{"users"},
		SessionInactiveDays: 1,
		SessionMaxDays:      1,
	})

	opts := append([]auth.ServiceOption{auth.WithNowTime(func() time.Time { return f.now })}, options...)
	service, err := auth.NewService(auth.Repos{
		Users:    f.users,
		Clients:  f.clients,
		Sessions: f.sessions,
		Tokens:   f.tokens,
	}, opts...)
	require.NoError(t, err)
	f.service = service
	return f
}

package token_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-transit-auth/clients"
	fakeclientrepo "github.com/jrsteele09/go-transit-auth/clients/fakerepo"
	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/token"
	tokenfakerepo "github.com/jrsteele09/go-transit-auth/token/repofake"
	"github.com/jrsteele09/go-transit-auth/users"
	fakeuserrepo "github.com/jrsteele09/go-transit-auth/users/repofake"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 20, 14, 30, 0, 0, time.UTC)

type fixture struct {
	now     time.Time
	tokens  *tokenfakerepo.FakeTokenRepo
	users   *fakeuserrepo.FakeUserRepo
	clients *fakeclientrepo.FakeClientRepo
	manager *token.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		now:     t0,
		tokens:  tokenfakerepo.NewFakeTokenRepo(),
		users:   fakeuserrepo.NewFakeUserRepo(),
		clients: fakeclientrepo.NewFakeClientRepo(),
	}
	f.users.Upsert(&users.User{PID: "rider-1"})
	f.users.Upsert(&users.User{PID: "rider-2"})
	f.clients.Upsert(&clients.Client{Key: "app", SessionInactiveDays: 7, SessionMaxDays: 30})

	n := 0
	m, err := token.NewManager(f.tokens, f.users, f.clients,
		token.WithNowTime(func() time.Time { return f.now }),
		token.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("tok%d", n)
		}),
	)
	require.NoError(t, err)
	f.manager = m
	return f
}

func TestTypeTTL(t *testing.T) {
	ttl, ok := token.EmailVerification.TTL()
	require.True(t, ok)
	require.Equal(t, 168*time.Hour, ttl)

	ttl, ok = token.PasswordReset.TTL()
	require.True(t, ok)
	require.Equal(t, 2*time.Hour, ttl)

	_, ok = token.Type("MAGIC_LINK").TTL()
	require.False(t, ok)
}

func TestParseType(t *testing.T) {
	typ, err := token.ParseType("password_reset")
	require.NoError(t, err)
	require.Equal(t, token.PasswordReset, typ)

	_, err = token.ParseType("")
	require.ErrorIs(t, err, autherr.ErrInvalidTokenType)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pid, err := f.manager.Create(ctx, "rider-1", "app", token.EmailVerification)
	require.NoError(t, err)
	require.Equal(t, "tok1", pid)
	require.Equal(t, 1, f.tokens.Len())

	_, err = f.manager.Create(ctx, "rider-1", "app", token.Type("MAGIC_LINK"))
	require.ErrorIs(t, err, autherr.ErrInvalidTokenType)
	require.Equal(t, autherr.KindValidation, autherr.KindOf(err))

	_, err = f.manager.Create(ctx, "nobody", "app", token.PasswordReset)
	require.ErrorIs(t, err, autherr.ErrUserNotFound)

	_, err = f.manager.Create(ctx, "rider-1", "nope", token.PasswordReset)
	require.ErrorIs(t, err, autherr.ErrClientNotFound)

	f.tokens.Err = errors.New("read only")
	_, err = f.manager.Create(ctx, "rider-1", "app", token.PasswordReset)
	require.ErrorIs(t, err, autherr.ErrServer)
	require.Equal(t, 1, f.tokens.Len())
}

func TestPasswordResetLifetime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pid, err := f.manager.Create(ctx, "rider-1", "app", token.PasswordReset)
	require.NoError(t, err)

	f.now = t0.Add(time.Hour + 59*time.Minute)
	code, err := f.manager.Check(ctx, pid, "rider-1", token.PasswordReset)
	require.NoError(t, err)
	require.Equal(t, token.Valid, code)

	f.now = t0.Add(2 * time.Hour)
	code, err = f.manager.Check(ctx, pid, "rider-1", token.PasswordReset)
	require.NoError(t, err)
	require.Equal(t, token.Valid, code)

	f.now = t0.Add(2*time.Hour + time.Minute)
	code, err = f.manager.Check(ctx, pid, "rider-1", token.PasswordReset)
	require.NoError(t, err)
	require.Equal(t, token.Expired, code)
}

func TestCheckMismatchBeforeExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pid, err := f.manager.Create(ctx, "rider-1", "app", token.PasswordReset)
	require.NoError(t, err)
	f.now = t0.Add(24 * time.Hour)

	code, err := f.manager.Check(ctx, pid, "rider-2", token.PasswordReset)
	require.NoError(t, err)
	require.Equal(t, token.Invalid, code)

	code, err = f.manager.Check(ctx, pid, "rider-1", token.EmailVerification)
	require.NoError(t, err)
	require.Equal(t, token.Invalid, code)

	code, err = f.manager.Check(ctx, pid, "RIDER-1", token.PasswordReset)
	require.NoError(t, err)
	require.Equal(t, token.Expired, code)
}

func TestCheckUnknownToken(t *testing.T) {
	f := newFixture(t)
	code, err := f.manager.Check(context.Background(), "missing", "rider-1", token.PasswordReset)
	require.ErrorIs(t, err, autherr.ErrTokenNotFound)
	require.Equal(t, token.Invalid, code)

	f.tokens.Err = errors.New("boom")
	code, err = f.manager.Check(context.Background(), "missing", "rider-1", token.PasswordReset)
	require.ErrorIs(t, err, autherr.ErrServer)
	require.Equal(t, token.Invalid, code)
}

func TestConsume(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pid, err := f.manager.Create(ctx, "rider-1", "app", token.EmailVerification)
	require.NoError(t, err)

	code, err := f.manager.Consume(ctx, pid, "rider-2", token.EmailVerification)
	require.NoError(t, err)
	require.Equal(t, token.Invalid, code)
	require.Equal(t, 1, f.tokens.Len())

	code, err = f.manager.Consume(ctx, pid, "rider-1", token.EmailVerification)
	require.NoError(t, err)
	require.Equal(t, token.Valid, code)
	require.Zero(t, f.tokens.Len())

	code, err = f.manager.Consume(ctx, pid, "rider-1", token.EmailVerification)
	require.ErrorIs(t, err, autherr.ErrTokenNotFound)
	require.Equal(t, token.Invalid, code)
}

// gatedRepo holds every Get until want callers have read the row, so each
// of them evaluates the token before any of them deletes it.
type gatedRepo struct {
	*tokenfakerepo.FakeTokenRepo
	want int
	mu   sync.Mutex
	read int
	all  chan struct{}
}

func (r *gatedRepo) Get(ctx context.Context, pid string) (*token.Token, error) {
	t, err := r.FakeTokenRepo.Get(ctx, pid)
	r.mu.Lock()
	r.read++
	if r.read == r.want {
		close(r.all)
	}
	r.mu.Unlock()
	<-r.all
	return t, err
}

func TestConsumeConcurrentSingleUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pid, err := f.manager.Create(ctx, "rider-1", "app", token.PasswordReset)
	require.NoError(t, err)

	const callers = 2
	repo := &gatedRepo{FakeTokenRepo: f.tokens, want: callers, all: make(chan struct{})}
	m, err := token.NewManager(repo, f.users, f.clients, token.WithNowTime(func() time.Time { return f.now }))
	require.NoError(t, err)

	var wg sync.WaitGroup
	codes := make([]token.Code, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i], errs[i] = m.Consume(ctx, pid, "rider-1", token.PasswordReset)
		}()
	}
	wg.Wait()

	valid := 0
	for i := range callers {
		if codes[i] == token.Valid {
			valid++
			require.NoError(t, errs[i])
			continue
		}
		require.Equal(t, token.Invalid, codes[i])
		require.ErrorIs(t, errs[i], autherr.ErrTokenNotFound)
	}
	require.Equal(t, 1, valid)
	require.Zero(t, f.tokens.Len())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pid, err := f.manager.Create(ctx, "rider-1", "app", token.PasswordReset)
	require.NoError(t, err)

	require.NoError(t, f.manager.Delete(ctx, pid))
	require.NoError(t, f.manager.Delete(ctx, pid))

	_, err = f.manager.Check(ctx, pid, "rider-1", token.PasswordReset)
	require.ErrorIs(t, err, autherr.ErrTokenNotFound)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	reset, err := f.manager.Create(ctx, "rider-1", "app", token.PasswordReset)
	require.NoError(t, err)
	verify, err := f.manager.Create(ctx, "rider-1", "app", token.EmailVerification)
	require.NoError(t, err)

	n, err := f.manager.Sweep(ctx, t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = f.manager.Check(ctx, reset, "rider-1", token.PasswordReset)
	require.ErrorIs(t, err, autherr.ErrTokenNotFound)
	code, err := f.manager.Check(ctx, verify, "rider-1", token.EmailVerification)
	require.NoError(t, err)
	require.Equal(t, token.Valid, code)
}

package token

import (
	"context"
	"time"

	"github.com/jrsteele09/go-transit-auth/clients"
	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/internal/ids"
	"github.com/jrsteele09/go-transit-auth/internal/lookup"
	"github.com/jrsteele09/go-transit-auth/internal/metrics"
	"github.com/jrsteele09/go-transit-auth/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Manager issues and checks email verification and password reset tokens.
type Manager struct {
	repo    Repo
	users   users.Repo
	clients clients.Repo
	nowFunc func() time.Time
	newID   func() string
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type Option func(*Manager)

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowFunc = nowFunc
	}
}

// WithIDGenerator sets the token identifier generator.
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) {
		m.newID = newID
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

func NewManager(repo Repo, userRepo users.Repo, clientRepo clients.Repo, options ...Option) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("[token.NewManager] token repo is required")
	}
	if userRepo == nil {
		return nil, errors.New("[token.NewManager] user repo is required")
	}
	if clientRepo == nil {
		return nil, errors.New("[token.NewManager] client repo is required")
	}

	m := &Manager{
		repo:    repo,
		users:   userRepo,
		clients: clientRepo,
		nowFunc: time.Now,
		newID:   ids.New,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Create issues a token of type typ for userPID through clientKey and returns its PID.
func (m *Manager) Create(ctx context.Context, userPID, clientKey string, typ Type) (string, error) {
	ttl, ok := typ.TTL()
	if !ok {
		return "", autherr.ErrInvalidTokenType
	}
	user, client, err := lookup.UserAndClient(ctx, m.users, m.clients, userPID, clientKey)
	if err != nil {
		return "", err
	}

	now := m.nowFunc()
	t := &Token{
		PID:      m.newID(),
		UserID:   user.ID,
		ClientID: client.ID,
		UserPID:  user.PID,
		Type:     typ,
		Created:  now,
		Expires:  now.Add(ttl),
	}
	if err := m.repo.Insert(ctx, t); err != nil {
		return "", autherr.Server("[token.Create] Insert", err)
	}

	m.metrics.TokenEvent(string(typ), "created")
	m.logger.Debug().Str("user", user.PID).Str("type", string(typ)).Time("expires", t.Expires).Msg("token created")
	return t.PID, nil
}

// Check reports whether tokenPID is a live token of type typ owned by userPID.
// An unknown token yields Invalid together with ErrTokenNotFound.
func (m *Manager) Check(ctx context.Context, tokenPID, userPID string, typ Type) (Code, error) {
	t, err := m.repo.Get(ctx, tokenPID)
	if errors.Is(err, autherr.ErrTokenNotFound) {
		m.metrics.TokenEvent(string(typ), "not_found")
		return Invalid, autherr.ErrTokenNotFound
	}
	if err != nil {
		return Invalid, autherr.Server("[token.Check] Get", err)
	}

	code := Evaluate(t, userPID, typ, m.nowFunc())
	m.metrics.TokenEvent(string(typ), string(code))
	return code, nil
}

// Consume checks the token and deletes it when it is Valid. Only the caller
// whose delete removes the row gets Valid; a concurrent loser sees the token
// as already gone.
func (m *Manager) Consume(ctx context.Context, tokenPID, userPID string, typ Type) (Code, error) {
	code, err := m.Check(ctx, tokenPID, userPID, typ)
	if err != nil || code != Valid {
		return code, err
	}
	removed, err := m.repo.Delete(ctx, tokenPID)
	if err != nil {
		return Invalid, autherr.Server("[token.Consume] Delete", err)
	}
	if !removed {
		m.metrics.TokenEvent(string(typ), "not_found")
		return Invalid, autherr.ErrTokenNotFound
	}
	m.metrics.TokenEvent(string(typ), "consumed")
	m.logger.Debug().Str("user", userPID).Str("type", string(typ)).Msg("token consumed")
	return Valid, nil
}

// Delete removes a token. Deleting an unknown token succeeds.
func (m *Manager) Delete(ctx context.Context, tokenPID string) error {
	if _, err := m.repo.Delete(ctx, tokenPID); err != nil {
		return autherr.Server("[token.Delete] Delete", err)
	}
	return nil
}

// Sweep deletes tokens expired at now.
func (m *Manager) Sweep(ctx context.Context, now time.Time) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, autherr.Server("[token.Sweep] DeleteExpired", err)
	}
	return n, nil
}

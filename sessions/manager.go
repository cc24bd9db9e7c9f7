package sessions

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

// Manager creates, validates, refreshes and removes sessions.
type Manager struct {
	repo    Repo
	users   users.Repo
	clients clients.Repo
	nowTime func() time.Time
	newID   func() string
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithIDGenerator sets the session identifier generator.
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

// NewManager returns a Manager over the given stores.
func NewManager(repo Repo, userRepo users.Repo, clientRepo clients.Repo, options ...Option) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("[sessions.NewManager] session repo is required")
	}
	if userRepo == nil {
		return nil, errors.New("[sessions.NewManager] user repo is required")
	}
	if clientRepo == nil {
		return nil, errors.New("[sessions.NewManager] client repo is required")
	}

	m := &Manager{
		repo:    repo,
		users:   userRepo,
		clients: clientRepo,
		nowTime: time.Now,
		newID:   ids.New,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.nowTime()
}

// Create opens a session for userPID through clientKey and returns its PID.
// The inactivity and expiry windows come from the client.
func (m *Manager) Create(ctx context.Context, userPID, clientKey string) (string, error) {
	user, client, err := lookup.UserAndClient(ctx, m.users, m.clients, userPID, clientKey)
	if err != nil {
		return "", err
	}

	now := m.nowTime()
	inactive, expires := Lifetime(now, client.InactiveWindow(), client.MaxLifetime())
	s := &Session{
		PID:       m.newID(),
		UserID:    user.ID,
		ClientID:  client.ID,
		UserPID:   user.PID,
		ClientKey: client.Key,
		Created:   now,
		Accessed:  now,
		Inactive:  inactive,
		Expires:   expires,
	}
	if err := m.repo.Insert(ctx, s); err != nil {
		return "", autherr.Server("[sessions.Create] Insert", err)
	}

	m.metrics.SessionEvent("created")
	m.logger.Debug().
		Str("user", user.PID).
		Str("client", client.Key).
		Time("inactive", inactive).
		Time("expires", expires).
		Msg("session created")
	return s.PID, nil
}

// Get loads a session. A missing row yields ErrSessionNotFound.
func (m *Manager) Get(ctx context.Context, sessionPID string) (*Session, error) {
	s, err := m.repo.Get(ctx, sessionPID)
	if errors.Is(err, autherr.ErrSessionNotFound) {
		return nil, autherr.ErrSessionNotFound
	}
	if err != nil {
		return nil, autherr.Server("[sessions.Get] Get", err)
	}
	return s, nil
}

// Validate checks that the session belongs to userPID, was issued to clientKey
// and is still active. The checks run in that order.
func (m *Manager) Validate(ctx context.Context, userPID, sessionPID, clientKey string) error {
	s, err := m.Get(ctx, sessionPID)
	if err != nil {
		return err
	}
	if err := Check(s, userPID, clientKey, m.nowTime()); err != nil {
		m.metrics.SessionEvent("rejected")
		return err
	}
	return nil
}

// Check applies the ownership, client and activity checks to a loaded session.
func Check(s *Session, userPID, clientKey string, now time.Time) error {
	if !s.BelongsTo(userPID) {
		return autherr.ErrNotAuthorized
	}
	if !s.IssuedTo(clientKey) {
		return autherr.ErrNotAuthorized
	}
	if !s.ActiveAt(now) {
		return autherr.ErrSessionExpired
	}
	return nil
}

// Refresh extends the inactivity window of a session from now. The hard expiry is untouched.
func (m *Manager) Refresh(ctx context.Context, sessionPID, clientKey string) error {
	client, err := lookup.Client(ctx, m.clients, clientKey)
	if err != nil {
		return err
	}

	now := m.nowTime()
	err = m.repo.Touch(ctx, sessionPID, now, now.Add(client.InactiveWindow()))
	if errors.Is(err, autherr.ErrSessionNotFound) {
		return autherr.ErrSessionNotFound
	}
	if err != nil {
		return autherr.Server("[sessions.Refresh] Touch", err)
	}
	m.metrics.SessionEvent("refreshed")
	return nil
}

// ValidateAndRefresh validates the session and refreshes it on success.
func (m *Manager) ValidateAndRefresh(ctx context.Context, userPID, sessionPID, clientKey string) error {
	if err := m.Validate(ctx, userPID, sessionPID, clientKey); err != nil {
		return err
	}
	return m.Refresh(ctx, sessionPID, clientKey)
}

// Revoke deletes a session. Revoking an unknown session succeeds.
func (m *Manager) Revoke(ctx context.Context, sessionPID string) error {
	if err := m.repo.Delete(ctx, sessionPID); err != nil {
		return autherr.Server("[sessions.Revoke] Delete", err)
	}
	m.metrics.SessionEvent("revoked")
	return nil
}

// RevokeAll deletes every session belonging to userPID.
func (m *Manager) RevokeAll(ctx context.Context, userPID string) (int64, error) {
	user, err := lookup.User(ctx, m.users, userPID)
	if err != nil {
		return 0, err
	}
	n, err := m.repo.DeleteByUser(ctx, user.ID)
	if err != nil {
		return 0, autherr.Server("[sessions.RevokeAll] DeleteByUser", err)
	}
	m.logger.Info().Str("user", user.PID).Int64("count", n).Msg("sessions revoked")
	return n, nil
}

// Sweep deletes sessions that are inactive or expired at now.
func (m *Manager) Sweep(ctx context.Context, now time.Time) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, autherr.Server("[sessions.Sweep] DeleteExpired", err)
	}
	return n, nil
}

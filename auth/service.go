// Package auth exposes the access, session, token and credential operations
// behind a single Service.
package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/go-transit-auth/access"
	"github.com/jrsteele09/go-transit-auth/clients"
	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/internal/ids"
	"github.com/jrsteele09/go-transit-auth/internal/metrics"
	"github.com/jrsteele09/go-transit-auth/sessions"
	"github.com/jrsteele09/go-transit-auth/token"
	"github.com/jrsteele09/go-transit-auth/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Repos holds all repository dependencies for the Service.
type Repos struct {
	Users    users.Repo    // user credentials
	Clients  clients.Repo  // client keys, scopes and session windows
	Sessions sessions.Repo // server-side sessions
	Tokens   token.Repo    // one-shot tokens
}

// Service is the entry point for request authorization and credential lifecycle operations.
type Service struct {
	resolver     *access.Resolver
	sessions     *sessions.Manager
	tokens       *token.Manager
	verifier     *users.Verifier
	pipeline     *Pipeline
	debugAllowed bool
	nowTime      func() time.Time
	newID        func() string
	logger       zerolog.Logger
	metrics      *metrics.Metrics
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithIDGenerator sets the generator for session and token PIDs.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *Service) {
		s.newID = newID
	}
}

// WithDebugAllowed enables the debug scope. It is off by default.
func WithDebugAllowed(allowed bool) ServiceOption {
	return func(s *Service) {
		s.debugAllowed = allowed
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService builds a Service over repos. Every repo is required.
func NewService(repos Repos, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Clients == nil {
		return nil, errors.New("[NewService] Clients repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions repo is required")
	}
	if repos.Tokens == nil {
		return nil, errors.New("[NewService] Tokens repo is required")
	}

	s := &Service{
		nowTime: time.Now,
		newID:   ids.New,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	var err error
	s.sessions, err = sessions.NewManager(repos.Sessions, repos.Users, repos.Clients,
		sessions.WithNowTime(s.nowTime),
		sessions.WithIDGenerator(s.newID),
		sessions.WithLogger(s.logger.With().Str("component", "sessions").Logger()),
		sessions.WithMetrics(s.metrics),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[NewService] sessions")
	}
	s.tokens, err = token.NewManager(repos.Tokens, repos.Users, repos.Clients,
		token.WithNowTime(s.nowTime),
		token.WithIDGenerator(s.newID),
		token.WithLogger(s.logger.With().Str("component", "tokens").Logger()),
		token.WithMetrics(s.metrics),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[NewService] tokens")
	}
	s.resolver = access.NewResolver(repos.Clients,
		access.WithLogger(s.logger.With().Str("component", "access").Logger()),
		access.WithMetrics(s.metrics),
	)
	s.verifier = users.NewVerifier(repos.Users)
	s.pipeline = NewPipeline(s.sessions, s.logger.With().Str("component", "pipeline").Logger(), s.metrics)
	return s, nil
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.nowTime() }

// Sessions returns the underlying session manager.
func (s *Service) Sessions() *sessions.Manager { return s.sessions }

// Tokens returns the underlying token manager.
func (s *Service) Tokens() *token.Manager { return s.tokens }

// DebugAllowed reports whether the debug scope is enabled.
func (s *Service) DebugAllowed() bool { return s.debugAllowed }

// ResolveAccess maps an Authorization header to the granted scopes and the client key.
func (s *Service) ResolveAccess(ctx context.Context, header string) (access.Scopes, string, error) {
	return s.resolver.Resolve(ctx, header)
}

// CheckAccess decides whether granted satisfies required.
func (s *Service) CheckAccess(required string, granted access.Scopes) (bool, error) {
	allowed, err := access.Allow(required, granted, s.debugAllowed)
	s.metrics.AccessDecided(required, allowed)
	return allowed, err
}

func (s *Service) CreateSession(ctx context.Context, userPID, clientKey string) (string, error) {
	return s.sessions.Create(ctx, userPID, clientKey)
}

func (s *Service) ValidateAndRefreshSession(ctx context.Context, userPID, sessionPID, clientKey string) error {
	return s.sessions.ValidateAndRefresh(ctx, userPID, sessionPID, clientKey)
}

func (s *Service) RevokeSession(ctx context.Context, sessionPID string) error {
	return s.sessions.Revoke(ctx, sessionPID)
}

// RevokeAllSessions logs a user out everywhere.
func (s *Service) RevokeAllSessions(ctx context.Context, userPID string) (int64, error) {
	return s.sessions.RevokeAll(ctx, userPID)
}

func (s *Service) CreateToken(ctx context.Context, userPID, clientKey string, typ token.Type) (string, error) {
	return s.tokens.Create(ctx, userPID, clientKey, typ)
}

func (s *Service) CheckToken(ctx context.Context, tokenPID, userPID string, typ token.Type) (token.Code, error) {
	return s.tokens.Check(ctx, tokenPID, userPID, typ)
}

// ConsumeToken checks a token and deletes it when valid.
func (s *Service) ConsumeToken(ctx context.Context, tokenPID, userPID string, typ token.Type) (token.Code, error) {
	return s.tokens.Consume(ctx, tokenPID, userPID, typ)
}

// ResetPassword redeems a PASSWORD_RESET token, stores password as the user's
// new credentials and revokes every session of the user. It returns the
// token's code and the number of sessions revoked. Credentials only change
// when this call is the one that consumed the token.
func (s *Service) ResetPassword(ctx context.Context, tokenPID, userPID, password string) (token.Code, int64, error) {
	if password == "" {
		return token.Invalid, 0, autherr.Wrapf(autherr.ErrInvalidRequest, "[auth.ResetPassword] password is required")
	}
	code, err := s.tokens.Consume(ctx, tokenPID, userPID, token.PasswordReset)
	if err != nil || code != token.Valid {
		return code, 0, err
	}
	if err := s.verifier.SetPassword(ctx, userPID, password); err != nil {
		return token.Invalid, 0, err
	}
	n, err := s.sessions.RevokeAll(ctx, userPID)
	if err != nil {
		return token.Invalid, 0, err
	}
	s.logger.Info().Str("user", userPID).Int64("sessions_revoked", n).Msg("password reset")
	return token.Valid, n, nil
}

func (s *Service) DeleteToken(ctx context.Context, tokenPID string) error {
	return s.tokens.Delete(ctx, tokenPID)
}

func (s *Service) GenerateSalt() (string, error) {
	return users.GenerateSalt()
}

func (s *Service) HashPassword(salt, password string) string {
	return users.HashPassword(salt, password)
}

func (s *Service) VerifyPassword(ctx context.Context, userPID, password string) (bool, error) {
	return s.verifier.VerifyPassword(ctx, userPID, password)
}

// Authenticate runs the session pipeline for a user-addressed request.
func (s *Service) Authenticate(ctx context.Context, req Request) error {
	return s.pipeline.Authenticate(ctx, req)
}

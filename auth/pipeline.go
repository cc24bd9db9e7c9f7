package auth

import (
	"context"
	"time"

	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
	"github.com/jrsteele09/go-transit-auth/internal/metrics"
	"github.com/jrsteele09/go-transit-auth/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// State is a step of the authentication pipeline.
type State string

const (
	StateStart            State = "START"
	StateCheckHeader      State = "CHECK_HEADER"
	StateCheckUserMatch   State = "CHECK_USER_MATCH"
	StateCheckClientMatch State = "CHECK_CLIENT_MATCH"
	StateCheckValidity    State = "CHECK_VALIDITY"
	StateRefresh          State = "REFRESH"
	StatePass             State = "PASS"
	StateFail             State = "FAIL"
)

// Request carries what the pipeline needs from an incoming call. UserPID is
// empty for routes that do not address a specific user.
type Request struct {
	UserPID      string
	SessionToken string
	ClientKey    string
}

// Outcome is the terminal result of a pipeline run. FailedAt names the step
// that rejected the request and is empty on PASS.
type Outcome struct {
	State    State
	FailedAt State
	Err      error
}

// SessionSource is the part of the session manager the pipeline drives.
type SessionSource interface {
	Get(ctx context.Context, sessionPID string) (*sessions.Session, error)
	Refresh(ctx context.Context, sessionPID, clientKey string) error
	Now() time.Time
}

// Pipeline authenticates a user-addressed request against its session token
// and refreshes the session on success.
type Pipeline struct {
	sessions SessionSource
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func NewPipeline(source SessionSource, logger zerolog.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		sessions: source,
		logger:   logger,
		metrics:  m,
	}
}

// Authenticate runs the pipeline and returns the error that failed it, or nil on PASS.
func (p *Pipeline) Authenticate(ctx context.Context, req Request) error {
	return p.Run(ctx, req).Err
}

// Run walks the pipeline states until PASS or FAIL.
func (p *Pipeline) Run(ctx context.Context, req Request) Outcome {
	var (
		state   = StateStart
		session *sessions.Session
		err     error
	)

	for {
		switch state {
		case StateStart:
			if req.UserPID == "" {
				state = StatePass
				continue
			}
			state = StateCheckHeader

		case StateCheckHeader:
			if req.SessionToken == "" {
				return p.fail(state, autherr.ErrSessionTokenHeaderMissing)
			}
			session, err = p.sessions.Get(ctx, req.SessionToken)
			if errors.Is(err, autherr.ErrSessionNotFound) {
				return p.fail(state, autherr.ErrNotAuthorized)
			}
			if err != nil {
				return p.fail(state, err)
			}
			state = StateCheckUserMatch

		case StateCheckUserMatch:
			if !session.BelongsTo(req.UserPID) {
				return p.fail(state, autherr.ErrNotAuthorized)
			}
			state = StateCheckClientMatch

		case StateCheckClientMatch:
			if !session.IssuedTo(req.ClientKey) {
				return p.fail(state, autherr.ErrNotAuthorized)
			}
			state = StateCheckValidity

		case StateCheckValidity:
			if !session.ActiveAt(p.sessions.Now()) {
				return p.fail(state, autherr.ErrSessionExpired)
			}
			state = StateRefresh

		case StateRefresh:
			err = p.sessions.Refresh(ctx, session.PID, req.ClientKey)
			if errors.Is(err, autherr.ErrSessionNotFound) || errors.Is(err, autherr.ErrClientNotFound) {
				// session revoked or client removed between the load and the refresh
				return p.fail(state, autherr.ErrNotAuthorized)
			}
			if err != nil {
				return p.fail(state, err)
			}
			state = StatePass

		case StatePass:
			p.metrics.PipelineOutcome(string(StatePass), "")
			p.logger.Debug().Str("user", req.UserPID).Msg("authentication passed")
			return Outcome{State: StatePass}

		default:
			return p.fail(state, autherr.Server("[auth.Pipeline] unknown state", errors.Errorf("state %q", state)))
		}
	}
}

func (p *Pipeline) fail(at State, err error) Outcome {
	code := autherr.CodeOf(err)
	p.metrics.PipelineOutcome(string(StateFail), code)
	p.logger.Debug().Str("state", string(at)).Str("reason", code).Err(err).Msg("authentication failed")
	return Outcome{State: StateFail, FailedAt: at, Err: err}
}

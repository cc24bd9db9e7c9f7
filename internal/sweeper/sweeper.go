// Package sweeper periodically deletes expired sessions and tokens.
package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/jrsteele09/go-transit-auth/internal/metrics"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Target deletes the rows it owns that are expired at now.
type Target interface {
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

// Result holds the number of rows removed by a sweep.
type Result struct {
	Sessions int64 `json:"sessions"`
	Tokens   int64 `json:"tokens"`
}

type Sweeper struct {
	sessions Target
	tokens   Target
	nowTime  func() time.Time
	timeout  time.Duration
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	group singleflight.Group
	cron  *cron.Cron
}

type Option func(*Sweeper)

func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Sweeper) {
		s.nowTime = nowFunc
	}
}

// WithTimeout bounds each scheduled sweep. Manual runs use the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *Sweeper) {
		s.timeout = d
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

func New(sessions, tokens Target, options ...Option) *Sweeper {
	s := &Sweeper{
		sessions: sessions,
		tokens:   tokens,
		nowTime:  time.Now,
		timeout:  5 * time.Minute,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Run sweeps sessions then tokens. A call made while a sweep is in flight
// waits for that sweep and shares its result.
func (s *Sweeper) Run(ctx context.Context) (Result, error) {
	v, err, shared := s.group.Do("sweep", func() (any, error) {
		return s.sweep(ctx)
	})
	if shared {
		s.logger.Debug().Msg("joined in-flight sweep")
	}
	res, _ := v.(Result)
	return res, err
}

func (s *Sweeper) sweep(ctx context.Context) (Result, error) {
	var (
		res  Result
		errs []error
	)
	now := s.nowTime()

	n, err := s.sessions.Sweep(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("session sweep failed")
		errs = append(errs, err)
	}
	res.Sessions = n
	s.metrics.SweepRemoved("sessions", n)

	n, err = s.tokens.Sweep(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("token sweep failed")
		errs = append(errs, err)
	}
	res.Tokens = n
	s.metrics.SweepRemoved("tokens", n)

	if len(errs) > 0 {
		s.metrics.SweepRun("error")
		return res, errors.Join(errs...)
	}
	s.metrics.SweepRun("ok")
	s.logger.Info().Int64("sessions", res.Sessions).Int64("tokens", res.Tokens).Msg("sweep complete")
	return res, nil
}

// Start schedules Run on a cron spec such as "@every 1h" or "0 * * * *".
func (s *Sweeper) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_, _ = s.Run(ctx)
	})
	if err != nil {
		return err
	}
	s.cron = c
	c.Start()
	s.logger.Info().Str("schedule", schedule).Msg("sweeper started")
	return nil
}

// Stop halts the schedule and returns a context done once a running sweep finishes.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.cron.Stop()
}

// Package server exposes the auth service over HTTP.
package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-transit-auth/auth"
	"github.com/jrsteele09/go-transit-auth/internal/config"
	"github.com/jrsteele09/go-transit-auth/internal/sweeper"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Sweeper runs an on-demand cleanup of expired sessions and tokens.
type Sweeper interface {
	Run(ctx context.Context) (sweeper.Result, error)
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	auth     *auth.Service
	sweeper  Sweeper
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
}

type Option func(*Server)

func WithSweeper(sw Sweeper) Option {
	return func(s *Server) {
		s.sweeper = sw
	}
}

// WithGatherer sets the registry served on the metrics route.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(cfg config.Config, service *auth.Service, options ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if service == nil {
		return nil, errors.New("[Server New] auth service is required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		auth:     service,
		gatherer: prometheus.DefaultGatherer,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes returns the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		s.logger.Info().Msgf("[%s] %s", colourMethod(method), path)
	}
}

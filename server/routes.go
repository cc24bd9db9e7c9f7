package server

import (
	"net/http"

	"github.com/jrsteele09/go-transit-auth/access"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware(s.RequireScope(access.ScopePublic))...))

	// Sessions
	s.RegisterRouteHandler("POST "+RouteUserSessions, ChainMiddleware(s.CreateSessionHandler(), s.APIMiddleware(s.RequireScope(access.ScopeUsers))...))
	s.RegisterRouteHandler("GET "+RouteCurrentSession, ChainMiddleware(s.CurrentSessionHandler(), s.APIMiddleware(s.RequireScope(access.ScopeUsers), s.RequireSession)...))
	s.RegisterRouteHandler("DELETE "+RouteCurrentSession, ChainMiddleware(s.RevokeSessionHandler(), s.APIMiddleware(s.RequireScope(access.ScopeUsers), s.RequireSession)...))

	// Tokens
	s.RegisterRouteHandler("POST "+RouteUserTokens, ChainMiddleware(s.CreateTokenHandler(), s.APIMiddleware(s.RequireScope(access.ScopeUsers))...))
	s.RegisterRouteHandler("POST "+RouteTokenConsume, ChainMiddleware(s.ConsumeTokenHandler(), s.APIMiddleware(s.RequireScope(access.ScopeUsers))...))

	// Debug
	s.RegisterRouteHandler("GET "+RouteMetrics, ChainMiddleware(s.metricsHandler(), s.APIMiddleware(s.RequireScope(access.ScopeDebug))...))
	s.RegisterRouteHandler("POST "+RouteDebugSweep, ChainMiddleware(s.SweepHandler(), s.APIMiddleware(s.RequireScope(access.ScopeDebug))...))

	s.RegisterRouteFunc("OPTIONS /", s.PreflightHandler())
}

func (s *Server) metricsHandler() http.HandlerFunc {
	h := promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
	return h.ServeHTTP
}

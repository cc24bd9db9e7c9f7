package server

// Route path constants
const (
	RouteHealth = "/health"

	// Sessions
	RouteUserSessions   = "/users/{userPID}/sessions"
	RouteCurrentSession = "/users/{userPID}/sessions/current"

	// Tokens
	RouteUserTokens   = "/users/{userPID}/tokens"
	RouteTokenConsume = "/users/{userPID}/tokens/{tokenPID}/consume"

	// Debug
	RouteMetrics    = "/metrics"
	RouteDebugSweep = "/debug/sweep"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderSessionToken  = "X-Session-Token"

	pathUserPID  = "userPID"
	pathTokenPID = "tokenPID"
)

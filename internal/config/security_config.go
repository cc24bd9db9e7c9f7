package config

import "time"

type SecurityConfig interface {
	GetDebugAllowed() bool
	GetRequestTimeout() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetDebugAllowed is the server-wide switch for the "debug" scope. When false, any
// request requiring or presenting "debug" is denied.
func (Security) GetDebugAllowed() bool {
	return GetEnvBool("DEBUG_ALLOWED", false)
}

// GetRequestTimeout bounds every request, including all store calls made on its behalf.
func (Security) GetRequestTimeout() time.Duration {
	return GetEnvDuration("REQUEST_TIMEOUT", 10*time.Second)
}

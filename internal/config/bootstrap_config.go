package config

import "github.com/jrsteele09/go-transit-auth/clients"

// BootstrapConfig describes the client and admin user seeded at startup.
// Leaving a key or user empty skips that part of the seed.
type BootstrapConfig interface {
	GetBootstrapClientKey() string
	GetBootstrapClientScopes() []string
	GetBootstrapSessionInactiveDays() int
	GetBootstrapSessionMaxDays() int
	GetBootstrapAdminUser() string
	GetBootstrapAdminPassword() string
}

type Bootstrap struct{}

var _ BootstrapConfig = Bootstrap{}

func (Bootstrap) GetBootstrapClientKey() string {
	return GetEnv("BOOTSTRAP_CLIENT_KEY", "")
}

// GetBootstrapClientScopes reads a comma separated list ("gtfs,search,users").
func (Bootstrap) GetBootstrapClientScopes() []string {
	return clients.ParseScopes(GetEnv("BOOTSTRAP_CLIENT_SCOPES", "users"))
}

func (Bootstrap) GetBootstrapSessionInactiveDays() int {
	return GetEnvInt("BOOTSTRAP_SESSION_INACTIVE_DAYS", 7)
}

func (Bootstrap) GetBootstrapSessionMaxDays() int {
	return GetEnvInt("BOOTSTRAP_SESSION_MAX_DAYS", 30)
}

func (Bootstrap) GetBootstrapAdminUser() string {
	return GetEnv("BOOTSTRAP_ADMIN_USER", "")
}

// GetBootstrapAdminPassword is used only when the admin user is first created.
// When empty a random password is generated and logged once.
func (Bootstrap) GetBootstrapAdminPassword() string {
	return GetEnv("BOOTSTRAP_ADMIN_PASSWORD", "")
}

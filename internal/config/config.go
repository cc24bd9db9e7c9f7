package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	StorageConfig
	SweepConfig
	BootstrapConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type StorageConfig interface {
	GetDatabaseURL() string
	GetMaxDBConns() int
	GetClientCacheTTL() time.Duration
	GetClientCacheSize() int
}

type SweepConfig interface {
	GetSweepSchedule() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Storage
	Sweep
	Bootstrap
}

func New() Config {
	return mainConfig{}
}

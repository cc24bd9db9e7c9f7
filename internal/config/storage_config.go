package config

import "time"

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "postgres://localhost/transit?sslmode=disable")
}

func (Storage) GetMaxDBConns() int {
	return GetEnvInt("DB_MAX_CONNS", 20)
}

func (Storage) GetClientCacheTTL() time.Duration {
	return GetEnvDuration("CLIENT_CACHE_TTL", 5*time.Minute)
}

func (Storage) GetClientCacheSize() int {
	return GetEnvInt("CLIENT_CACHE_SIZE", 1024)
}

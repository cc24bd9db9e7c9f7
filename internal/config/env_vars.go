package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar    = "PORT"
	appNameEnvVar = "APP_NAME"
	envEnvVar     = "ENV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameEnvVar, "Transit Auth")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envEnvVar, "DEV")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvBool parses envVar with strconv.ParseBool, falling back to defaultValue when unset or invalid.
func GetEnvBool(envVar string, defaultValue bool) bool {
	value, err := strconv.ParseBool(GetEnv(envVar, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(GetEnv(envVar, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvDuration accepts Go duration strings ("30s", "5m").
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(GetEnv(envVar, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

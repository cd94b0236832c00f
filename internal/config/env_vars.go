package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar     = "APP_NAME"
	apiURLVar      = "API_URL"
	logLevelVar    = "LOG_LEVEL"
	httpTimeoutVar = "HTTP_TIMEOUT_SECONDS"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Book Inventory")
}

// GetAPIBaseURL returns the REST backend root, e.g. "http://localhost:3000/api/v1".
// Trailing slashes are removed so endpoint paths can be appended directly.
func (EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiURLVar, "http://localhost:3000/api/v1"), "/")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	return time.Duration(GetEnvInt(httpTimeoutVar, 30)) * time.Second
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt falls back to defaultValue when the variable is unset or not an integer.
func GetEnvInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

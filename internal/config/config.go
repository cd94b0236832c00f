package config

import "time"

type Config interface {
	EnvConfig
	SessionConfig
	StorageConfig
	TransportConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetEnv() string
	GetLogLevel() string
	GetHTTPTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Session
	Storage
	Transport
}

func New() Config {
	return mainConfig{}
}

package config

import "strconv"

type TransportConfig interface {
	GetRateLimit() float64
	GetRateBurst() int
	GetTracingEnabled() bool
}

type Transport struct{}

var _ TransportConfig = Transport{}

// GetRateLimit is the client-side request budget per second; 0 disables it.
func (Transport) GetRateLimit() float64 {
	rps, err := strconv.ParseFloat(GetEnv("API_RATE_LIMIT", "0"), 64)
	if err != nil || rps < 0 {
		return 0
	}
	return rps
}

func (Transport) GetRateBurst() int {
	return GetEnvInt("API_RATE_BURST", 5)
}

func (Transport) GetTracingEnabled() bool {
	enabled, err := strconv.ParseBool(GetEnv("OTEL_TRACING", "false"))
	return err == nil && enabled
}

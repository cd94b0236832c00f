package config

// StatusSessionInvalid is the non-standard status the backend returns when a
// session has been invalidated server side.
const StatusSessionInvalid = 498

type SessionConfig interface {
	GetSessionKey() string
	GetSentinelStatus() int
	GetLoginPath() string
}

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionKey is the name of the durable slot holding the persisted session.
func (Session) GetSessionKey() string {
	return GetEnv("SESSION_KEY", "cmpc-session")
}

func (Session) GetSentinelStatus() int {
	return GetEnvInt("SENTINEL_STATUS", StatusSessionInvalid)
}

func (Session) GetLoginPath() string {
	return GetEnv("LOGIN_PATH", "/login")
}

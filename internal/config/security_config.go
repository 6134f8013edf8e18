package config

import "time"

type SecurityConfig interface {
	GetDefaultPassword() string
	GetMinPasswordLength() int
	GetMaxSessionAge() time.Duration
	GetDownstreamTimeout() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetDefaultPassword is the system-wide password handed out to new accounts.
// Logging in with it forces a password change.
func (Security) GetDefaultPassword() string {
	return GetEnv("DEFAULT_PASSWORD", "p@ssword1234")
}

// MinPasswordLength is the shortest password ever accepted. The environment
// can raise it but not lower it.
const MinPasswordLength = 6

func (Security) GetMinPasswordLength() int {
	return max(MinPasswordLength, GetEnvInt("MIN_PASSWORD_LENGTH", MinPasswordLength))
}

func (Security) GetMaxSessionAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 30*time.Minute)
}

// GetDownstreamTimeout bounds every call to the central or tenant stores.
func (Security) GetDownstreamTimeout() time.Duration {
	return GetEnvDuration("DOWNSTREAM_TIMEOUT", 10*time.Second)
}

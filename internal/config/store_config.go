package config

import "time"

type StoreConfig interface {
	GetCentralDatabaseURL() string
	GetCentralAdminDatabaseURL() string
	GetJWTSecret() string
	GetAccessTokenExpiry() time.Duration
}

type Store struct{}

var _ StoreConfig = Store{}

// GetCentralDatabaseURL is the DSN of the limited role used for logins and
// credential lookups.
func (Store) GetCentralDatabaseURL() string {
	return GetEnv("CENTRAL_DATABASE_URL", "")
}

// GetCentralAdminDatabaseURL is the DSN of the administrative role. It is only
// dialled while a password rotation is in progress.
func (Store) GetCentralAdminDatabaseURL() string {
	return GetEnv("CENTRAL_ADMIN_DATABASE_URL", "")
}

func (Store) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "")
}

func (Store) GetAccessTokenExpiry() time.Duration {
	return GetEnvDuration("ACCESS_TOKEN_EXPIRY", time.Hour)
}

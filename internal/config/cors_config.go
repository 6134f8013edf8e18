package config

import "strings"

type Cors struct{}

var _ CorsConfig = Cors{}

type AllowedOrigins []string

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	for _, o := range a {
		if o == origin || o == "*" {
			return true
		}
	}
	return false
}

func (a AllowedOrigins) String() string {
	return strings.Join(a, ", ")
}

func (Cors) GetAllowedOrigins() AllowedOrigins {
	return GetEnvList("CORS_ALLOWED_ORIGINS", []string{"*"})
}

func (Cors) GetAllowedMethods() []string {
	return []string{"GET", "POST", "OPTIONS"}
}

func (Cors) GetAllowedHeaders() []string {
	return []string{"Content-Type", "Authorization"}
}

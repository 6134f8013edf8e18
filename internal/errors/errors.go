package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error kinds for the dashboard backend
var (
	// Authentication errors
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNoTenantProvisioned = errors.New("no tenant provisioned for this account")

	// Token errors
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")

	// Request errors
	ErrMissingRequestFields = errors.New("missing required fields")
	ErrTenantMismatch       = errors.New("tenant descriptor does not match account")

	// Credential rotation errors
	ErrRotationNotRequired = errors.New("credential rotation not pending")
	ErrRotationPending     = errors.New("credential rotation required")
	ErrSecretMismatch      = errors.New("passwords do not match")
	ErrSecretTooShort      = errors.New("password too short")
	ErrSecretIsDefault     = errors.New("password must differ from the default password")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// Store errors
	ErrDownstreamUnavailable = errors.New("downstream store unavailable")
	ErrNotFound              = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// HTTPStatus maps an error kind onto the status code returned to clients.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case Is(err, ErrMissingRequestFields),
		Is(err, ErrSecretMismatch),
		Is(err, ErrSecretTooShort),
		Is(err, ErrSecretIsDefault):
		return http.StatusBadRequest
	case Is(err, ErrInvalidCredentials),
		Is(err, ErrNoTenantProvisioned),
		Is(err, ErrTokenExpired),
		Is(err, ErrTokenInvalid),
		Is(err, ErrSessionNotFound),
		Is(err, ErrSessionExpired):
		return http.StatusUnauthorized
	case Is(err, ErrTenantMismatch), Is(err, ErrRotationNotRequired), Is(err, ErrRotationPending):
		return http.StatusForbidden
	case Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to a client for err.
// Authentication failures collapse to one generic message; token failures
// keep the expired/invalid split so callers can choose between re-login and re-auth.
func PublicMessage(err error) string {
	switch {
	case Is(err, ErrTokenExpired):
		return "Token has expired"
	case Is(err, ErrTokenInvalid):
		return "Invalid token"
	case Is(err, ErrNoTenantProvisioned):
		return "No tenant provisioned for this account"
	case Is(err, ErrInvalidCredentials), Is(err, ErrSessionNotFound), Is(err, ErrSessionExpired):
		return "Invalid email or password"
	case Is(err, ErrMissingRequestFields):
		return "Missing required data"
	case Is(err, ErrSecretMismatch):
		return "Passwords do not match"
	case Is(err, ErrSecretTooShort):
		return "Password is too short"
	case Is(err, ErrSecretIsDefault):
		return "Choose a password different from the default one"
	case Is(err, ErrRotationPending):
		return "Password change required"
	case Is(err, ErrTenantMismatch), Is(err, ErrRotationNotRequired):
		return "Forbidden"
	case Is(err, ErrNotFound):
		return "Not found"
	default:
		return "An internal server error occurred"
	}
}

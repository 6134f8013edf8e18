package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	// sessionCookieName is the cookie holding the server-side session id
	sessionCookieName = "session_id"

	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetMaxSessionAge().Seconds()),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// Error codes carried in redirect URLs. Pages only show the fixed message of
// a known code, never text taken from the URL.
const (
	errCodeSignInRequired = "signin_required"
	errCodeSessionExpired = "session_expired"
	errCodeInvalidForm    = "invalid_form"
)

var errorCodeMessages = map[string]string{
	errCodeSignInRequired: "Please sign in to continue",
	errCodeSessionExpired: "Your session has expired, please sign in again",
	errCodeInvalidForm:    "Invalid form data",
}

// errorMessageForCode returns the message for code, or "" for unknown codes.
func errorMessageForCode(code string) string {
	return errorCodeMessages[code]
}

func sessionErrorCode(err error) string {
	if apperrors.Is(err, apperrors.ErrSessionExpired) {
		return errCodeSessionExpired
	}
	return errCodeSignInRequired
}

// redirectWithError redirects to path with an error code in the query
func redirectWithError(w http.ResponseWriter, r *http.Request, path, code string) {
	fullPath := path + "?error=" + url.QueryEscape(code)
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode JSON response")
	}
}

// writeJSONError writes {"error": ...} with the status mapped from err. Internal
// details never reach the client.
func writeJSONError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": apperrors.PublicMessage(err)})
}

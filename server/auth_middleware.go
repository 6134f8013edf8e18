package server

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the validated sessions.Session
	ContextKeySession ContextKey = "session"
)

func sessionFromContext(ctx context.Context) (sessions.Session, bool) {
	s, ok := ctx.Value(ContextKeySession).(sessions.Session)
	return s, ok
}

func (s *Server) currentSession(r *http.Request) (sessions.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return sessions.Session{}, apperrors.ErrSessionNotFound
	}
	return s.gateway.Session(cookie.Value)
}

// RequireSessionAuth is middleware for HTML routes that validates the session
// cookie and redirects to the login page when it is missing or expired.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := s.currentSession(r)
			if err != nil {
				s.clearSessionCookie(w, r)
				redirectWithError(w, r, RouteLogin, sessionErrorCode(err))
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireRotatedCredential sends sessions still on the default password to
// the change password page. Must be chained after RequireSessionAuth.
func (s *Server) RequireRotatedCredential() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, ok := sessionFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
				return
			}
			if !session.CanViewDashboard() {
				http.Redirect(w, r, RouteChangePassword, http.StatusSeeOther)
				return
			}
			next(w, r)
		}
	}
}

// RequireSessionAPIAuth is the JSON counterpart of RequireSessionAuth. It
// answers 401 instead of redirecting and 403 while a rotation is pending.
func (s *Server) RequireSessionAPIAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := s.currentSession(r)
			if err != nil {
				writeJSONError(w, err)
				return
			}
			if !session.CanViewDashboard() {
				writeJSONError(w, apperrors.ErrRotationPending)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next(w, r.WithContext(ctx))
		}
	}
}

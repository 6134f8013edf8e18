package server

import (
	"html/template"
	"net/http"

	"github.com/jrsteele09/bot-dashboard/dashboard"
	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

// pageData is shared by every HTML page
type pageData struct {
	AppName    string
	Title      string
	Email      string // signed in user, shown in the header
	Error      string
	Notice     string
	LoginEmail string // preserved on a failed login
	MinLength  int
	View       dashboard.View
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, status int, data pageData) {
	data.AppName = s.config.GetAppName()
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
	}
}

// RootHandler sends visitors to the dashboard, which redirects to login when needed
func (s *Server) RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	}
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session, err := s.currentSession(r); err == nil {
			http.Redirect(w, r, landingPage(session), http.StatusSeeOther)
			return
		}
		s.render(w, s.pages.login, http.StatusOK, pageData{
			Title:      "Sign in",
			Error:      errorMessageForCode(r.URL.Query().Get("error")),
			LoginEmail: r.URL.Query().Get("email"),
		})
	}
}

// LoginSubmissionHandler processes the login form (POST /login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.render(w, s.pages.login, http.StatusBadRequest, pageData{Title: "Sign in", Error: "Invalid form data"})
			return
		}
		email := r.FormValue("email")
		password := r.FormValue("password")

		session, err := s.gateway.Login(r.Context(), email, password)
		if err != nil {
			status := apperrors.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				log.Error().Err(err).Msg("login failed")
			}
			s.render(w, s.pages.login, status, pageData{
				Title:      "Sign in",
				Error:      apperrors.PublicMessage(err),
				LoginEmail: email,
			})
			return
		}

		s.setSessionCookie(w, r, session.ID())
		http.Redirect(w, r, landingPage(session), http.StatusSeeOther)
	}
}

// LogoutHandler destroys the session (GET /logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			if err := s.gateway.Logout(cookie.Value); err != nil {
				log.Err(err).Msg("logout failed")
			}
		}
		s.clearSessionCookie(w, r)
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

func landingPage(session sessions.Session) string {
	if session.State() == sessions.StateForcedRotation {
		return RouteChangePassword
	}
	return RouteDashboard
}

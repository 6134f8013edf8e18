package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

// ChangePasswordPageHandler shows the rotation form while a rotation is pending
func (s *Server) ChangePasswordPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessionFromContext(r.Context())
		if session.State() != sessions.StateForcedRotation {
			http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
			return
		}
		s.render(w, s.pages.changePassword, http.StatusOK, pageData{
			Title:     "Change password",
			Email:     session.Email(),
			Error:     errorMessageForCode(r.URL.Query().Get("error")),
			MinLength: s.config.GetMinPasswordLength(),
		})
	}
}

// ChangePasswordSubmissionHandler rotates the default password (POST /change-password)
func (s *Server) ChangePasswordSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessionFromContext(r.Context())
		if session.State() != sessions.StateForcedRotation {
			http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, RouteChangePassword, errCodeInvalidForm)
			return
		}

		_, err := s.gateway.RotateCredential(r.Context(), session, r.FormValue("new_password"), r.FormValue("confirm_password"))
		if err != nil {
			status := apperrors.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				log.Error().Err(err).Str("identity_id", session.IdentityID()).Msg("password rotation failed")
			}
			s.render(w, s.pages.changePassword, status, pageData{
				Title:     "Change password",
				Email:     session.Email(),
				Error:     apperrors.PublicMessage(err),
				MinLength: s.config.GetMinPasswordLength(),
			})
			return
		}

		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	}
}

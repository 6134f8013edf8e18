package server

import (
	"net/http"

	"github.com/jrsteele09/bot-dashboard/dashboard"
	"github.com/rs/zerolog/log"
)

// DashboardHandler renders stats, the conversation series and the roster for
// the session's tenant. Partial failures still render with a notice.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessionFromContext(r.Context())
		d := session.Descriptor()

		var view dashboard.View
		client, err := s.tenants.NewClient(d)
		if err != nil {
			log.Error().Err(err).Int64("tenant_id", d.TenantID).Msg("tenant client")
			view = dashboard.View{Err: err, Error: dashboard.ErrorMessage}
		} else {
			view = s.aggregator.Build(r.Context(), client, d.TenantID)
		}

		s.render(w, s.pages.dashboard, http.StatusOK, pageData{
			Title:  "Dashboard",
			Email:  session.Email(),
			Notice: view.Error,
			View:   view,
		})
	}
}

// ConversationHandler returns the message history of one participant as JSON
func (s *Server) ConversationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessionFromContext(r.Context())
		d := session.Descriptor()

		client, err := s.tenants.NewClient(d)
		if err != nil {
			writeJSONError(w, err)
			return
		}
		msgs, err := s.aggregator.ConversationHistory(r.Context(), client, d.TenantID, r.PathValue("externalParticipantId"))
		if err != nil {
			writeJSONError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

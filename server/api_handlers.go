package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/bot-dashboard/dashboard"
	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/tenants"
	"github.com/jrsteele09/bot-dashboard/token/jwt"
)

type apiLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type apiLoginResponse struct {
	Success                bool      `json:"success"`
	Message                string    `json:"message"`
	AccessToken            string    `json:"access_token"`
	ExpiresAt              time.Time `json:"expires_at"`
	PasswordChangeRequired bool      `json:"password_change_required"`
	tenants.Descriptor
}

type dashboardDataResponse struct {
	Success bool `json:"success"`
	dashboard.View
}

// APILoginHandler is the stateless JSON login (POST /api/login)
func (s *Server) APILoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apiLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, apperrors.ErrMissingRequestFields)
			return
		}

		res, err := s.gateway.APILogin(r.Context(), req.Email, req.Password)
		if err != nil {
			writeJSONError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, apiLoginResponse{
			Success:                true,
			Message:                "Login successful",
			AccessToken:            res.AccessToken,
			ExpiresAt:              res.ExpiresAt,
			PasswordChangeRequired: res.PasswordChangeRequired,
			Descriptor:             res.Descriptor,
		})
	}
}

// APIDashboardDataHandler serves the dashboard view to a bearer token holder
// (POST /api/dashboard_data). The descriptor in the body must be the one
// stored for the token's identity.
func (s *Server) APIDashboardDataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := jwt.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			writeJSONError(w, err)
			return
		}

		var requested tenants.Descriptor
		if err := json.NewDecoder(r.Body).Decode(&requested); err != nil {
			writeJSONError(w, apperrors.ErrMissingRequestFields)
			return
		}
		if requested.TenantID == 0 || requested.Endpoint == "" || requested.AccessKey == "" {
			writeJSONError(w, apperrors.ErrMissingRequestFields)
			return
		}

		d, err := s.gateway.AuthorizeTenant(r.Context(), raw, requested)
		if err != nil {
			writeJSONError(w, err)
			return
		}

		client, err := s.tenants.NewClient(d)
		if err != nil {
			writeJSONError(w, err)
			return
		}
		view := s.aggregator.Build(r.Context(), client, d.TenantID)
		writeJSON(w, http.StatusOK, dashboardDataResponse{
			Success: view.Err == nil,
			View:    view,
		})
	}
}

// HealthHandler reports whether the central store answers (GET /health)
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), s.config.GetDownstreamTimeout())
			defer cancel()
			if err := s.health.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

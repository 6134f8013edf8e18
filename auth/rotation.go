package auth

import (
	"context"
	"strings"
	"unicode/utf8"

	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ValidateNewSecret applies the rotation rules to a proposed password.
func (g *Gateway) ValidateNewSecret(newSecret, confirmSecret string) error {
	if strings.TrimSpace(newSecret) == "" || strings.TrimSpace(confirmSecret) == "" {
		return apperrors.ErrMissingRequestFields
	}
	if newSecret != confirmSecret {
		return apperrors.ErrSecretMismatch
	}
	if utf8.RuneCountInString(newSecret) < g.settings.MinSecretLength {
		return apperrors.ErrSecretTooShort
	}
	if newSecret == g.settings.DefaultSecret {
		return apperrors.ErrSecretIsDefault
	}
	return nil
}

// RotateCredential replaces the default password of a session in
// StateForcedRotation. Input is validated before the elevated capability is
// opened; on any failure nothing is written and the session is unchanged.
func (g *Gateway) RotateCredential(ctx context.Context, s sessions.Session, newSecret, confirmSecret string) (sessions.Session, error) {
	if err := s.Validate(g.nowTime()); err != nil {
		return s, err
	}
	if s.State() != sessions.StateForcedRotation {
		return s, apperrors.ErrRotationNotRequired
	}
	if err := g.ValidateNewSecret(newSecret, confirmSecret); err != nil {
		return s, err
	}

	rotateCtx, cancel := context.WithTimeout(ctx, g.settings.DownstreamTimeout)
	defer cancel()

	elevated, err := g.openElevated(rotateCtx)
	if err != nil {
		return s, errors.Wrap(apperrors.ErrDownstreamUnavailable, err.Error())
	}
	defer elevated.Close()

	if err := elevated.Rotate(rotateCtx, s.IdentityID(), newSecret); err != nil {
		log.Error().Err(err).Str("identity_id", s.IdentityID()).Msg("password rotation rolled back")
		return s, errors.Wrap(apperrors.ErrDownstreamUnavailable, err.Error())
	}

	rotated := s.WithState(sessions.StateRotated)
	if err := g.repos.Sessions.Upsert(rotated); err != nil {
		return s, errors.Wrap(err, "[Gateway.RotateCredential] Sessions.Upsert")
	}

	log.Info().Str("identity_id", s.IdentityID()).Msg("password rotated")
	return rotated, nil
}

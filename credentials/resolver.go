package credentials

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Resolver looks up the credential record of an authenticated identity.
type Resolver struct {
	reader  Reader
	timeout time.Duration
}

func NewResolver(reader Reader, timeout time.Duration) *Resolver {
	return &Resolver{reader: reader, timeout: timeout}
}

// Resolve returns the credential for identityID. A missing or incomplete record
// is reported as ErrNoTenantProvisioned.
func (r *Resolver) Resolve(ctx context.Context, identityID string) (TenantCredential, error) {
	if identityID == "" {
		return TenantCredential{}, apperrors.ErrMissingRequestFields
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cred, err := r.reader.GetByIdentity(ctx, identityID)
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		log.Warn().Str("identity_id", identityID).Msg("no credential record")
		return TenantCredential{}, apperrors.ErrNoTenantProvisioned
	case err != nil:
		log.Error().Err(err).Str("identity_id", identityID).Msg("credential lookup failed")
		return TenantCredential{}, errors.Wrap(apperrors.ErrDownstreamUnavailable, err.Error())
	}

	if !cred.Provisioned() {
		log.Warn().Str("identity_id", identityID).Int64("tenant_id", cred.TenantID).Msg("credential record incomplete")
		return TenantCredential{}, apperrors.ErrNoTenantProvisioned
	}

	log.Debug().Str("identity_id", identityID).Int64("tenant_id", cred.TenantID).Msg("credential resolved")
	return *cred, nil
}

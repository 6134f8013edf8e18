package credentials_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/bot-dashboard/credentials"
	fakecredentialrepo "github.com/jrsteele09/bot-dashboard/credentials/repofake"
	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/tenants"
	"github.com/stretchr/testify/require"
)

var tenantOne = credentials.TenantCredential{
	IdentityID:        "identity-1",
	TenantID:          1,
	Endpoint:          "https://tenant-one.example.co",
	AccessKey:         "tenant-one-anon-key",
	UsesDefaultSecret: true,
}

func TestResolve(t *testing.T) {
	repo := fakecredentialrepo.NewFakeCredentialRepo()
	repo.Put(tenantOne)
	r := credentials.NewResolver(repo, time.Second)

	got, err := r.Resolve(context.Background(), "identity-1")
	require.NoError(t, err)
	require.Equal(t, tenantOne, got)
	require.Equal(t, tenants.Descriptor{
		TenantID:  1,
		Endpoint:  "https://tenant-one.example.co",
		AccessKey: "tenant-one-anon-key",
	}, got.Descriptor())
}

func TestResolve_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("empty identity", func(t *testing.T) {
		r := credentials.NewResolver(fakecredentialrepo.NewFakeCredentialRepo(), time.Second)
		_, err := r.Resolve(ctx, "")
		require.ErrorIs(t, err, apperrors.ErrMissingRequestFields)
	})

	t.Run("no record", func(t *testing.T) {
		r := credentials.NewResolver(fakecredentialrepo.NewFakeCredentialRepo(), time.Second)
		_, err := r.Resolve(ctx, "identity-2")
		require.ErrorIs(t, err, apperrors.ErrNoTenantProvisioned)
	})

	t.Run("incomplete record", func(t *testing.T) {
		repo := fakecredentialrepo.NewFakeCredentialRepo()
		incomplete := tenantOne
		incomplete.AccessKey = ""
		repo.Put(incomplete)
		_, err := credentials.NewResolver(repo, time.Second).Resolve(ctx, "identity-1")
		require.ErrorIs(t, err, apperrors.ErrNoTenantProvisioned)
	})

	t.Run("store unavailable", func(t *testing.T) {
		repo := fakecredentialrepo.NewFakeCredentialRepo()
		repo.Err = errors.New("connection refused")
		_, err := credentials.NewResolver(repo, time.Second).Resolve(ctx, "identity-1")
		require.ErrorIs(t, err, apperrors.ErrDownstreamUnavailable)
	})

	t.Run("cancelled request", func(t *testing.T) {
		repo := fakecredentialrepo.NewFakeCredentialRepo()
		repo.Put(tenantOne)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := credentials.NewResolver(repo, time.Second).Resolve(cancelled, "identity-1")
		require.ErrorIs(t, err, apperrors.ErrDownstreamUnavailable)
	})
}

func TestFakeUpdate(t *testing.T) {
	repo := fakecredentialrepo.NewFakeCredentialRepo()
	repo.Put(tenantOne)

	cleared := false
	require.NoError(t, repo.Update(context.Background(), "identity-1", credentials.Update{UsesDefaultSecret: &cleared}))
	got, err := repo.GetByIdentity(context.Background(), "identity-1")
	require.NoError(t, err)
	require.False(t, got.UsesDefaultSecret)
	require.Equal(t, 1, repo.Updates)
}

// Package credentials resolves an identity to the tenant store it may reach.
package credentials

import (
	"context"

	"github.com/jrsteele09/bot-dashboard/tenants"
)

// TenantCredential is the client_credentials row for one identity.
type TenantCredential struct {
	IdentityID        string `json:"user_id"`
	TenantID          int64  `json:"company_id"`
	Endpoint          string `json:"supabase_url"`
	AccessKey         string `json:"-"`
	UsesDefaultSecret bool   `json:"uses_default_password"`
}

// Descriptor returns the immutable descriptor for the tenant store.
func (c TenantCredential) Descriptor() tenants.Descriptor {
	return tenants.Descriptor{
		TenantID:  c.TenantID,
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
	}
}

// Provisioned reports whether the record names a reachable store.
func (c TenantCredential) Provisioned() bool {
	return c.TenantID != 0 && c.Endpoint != "" && c.AccessKey != ""
}

// Update holds the mutable fields of a credential record. Nil fields are left unchanged.
type Update struct {
	UsesDefaultSecret *bool
}

// Reader is the ordinary, read-only view of the credential table.
type Reader interface {
	GetByIdentity(ctx context.Context, identityID string) (*TenantCredential, error)
}

// Writer is only available through the elevated capability.
type Writer interface {
	Update(ctx context.Context, identityID string, u Update) error
}

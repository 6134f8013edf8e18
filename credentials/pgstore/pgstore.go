package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/bot-dashboard/credentials"
	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/internal/pgdb"
)

// Repo reads and writes the client_credentials table. Which operations succeed
// depends on the role behind db.
type Repo struct {
	db pgdb.DBTX
}

var (
	_ credentials.Reader = (*Repo)(nil)
	_ credentials.Writer = (*Repo)(nil)
)

func NewRepo(db pgdb.DBTX) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetByIdentity(ctx context.Context, identityID string) (*credentials.TenantCredential, error) {
	var c credentials.TenantCredential
	err := r.db.QueryRow(ctx,
		`SELECT user_id::text, company_id, supabase_url, supabase_anon_key, uses_default_password
		   FROM client_credentials WHERE user_id = $1`,
		identityID,
	).Scan(&c.IdentityID, &c.TenantID, &c.Endpoint, &c.AccessKey, &c.UsesDefaultSecret)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &c, nil
}

func (r *Repo) Update(ctx context.Context, identityID string, u credentials.Update) error {
	if u.UsesDefaultSecret == nil {
		return nil
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE client_credentials SET uses_default_password = $2 WHERE user_id = $1`,
		identityID, *u.UsesDefaultSecret,
	)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Insert creates the credential record for an identity. Used by the seeding command.
func (r *Repo) Insert(ctx context.Context, c credentials.TenantCredential) error {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO client_credentials (user_id, company_id, supabase_url, supabase_anon_key, uses_default_password)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.IdentityID, c.TenantID, c.Endpoint, c.AccessKey, c.UsesDefaultSecret,
	); err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

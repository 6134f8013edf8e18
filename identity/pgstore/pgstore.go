package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/bot-dashboard/identity"
	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/internal/pgdb"
)

// Repo reads identities with the limited central role.
type Repo struct {
	db pgdb.DBTX
}

var _ identity.Repo = (*Repo)(nil)

func NewRepo(db pgdb.DBTX) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	var u identity.Identity
	err := r.db.QueryRow(ctx,
		`SELECT id::text, email, password_hash, created_at FROM identities WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get identity by email: %w", err)
	}
	return &u, nil
}

// Admin writes identities with the administrative role.
type Admin struct {
	db pgdb.DBTX
}

var _ identity.AdminStore = (*Admin)(nil)

func NewAdmin(db pgdb.DBTX) *Admin {
	return &Admin{db: db}
}

func (a *Admin) SetPassword(ctx context.Context, identityID, newSecret string) error {
	hash, err := identity.HashPassword(newSecret)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	tag, err := a.db.Exec(ctx, `UPDATE identities SET password_hash = $2 WHERE id = $1`, identityID, hash)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Create inserts a new identity and returns it. Used by the seeding command.
func (a *Admin) Create(ctx context.Context, email, password string) (*identity.Identity, error) {
	hash, err := identity.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &identity.Identity{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := a.db.Exec(ctx,
		`INSERT INTO identities (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}
	return u, nil
}

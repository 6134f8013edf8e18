package identity

import (
	"context"
	"time"
)

// AuthResult is returned by a successful password authentication.
type AuthResult struct {
	IdentityID  string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// Store is the ordinary identity capability available to every request.
type Store interface {
	Authenticate(ctx context.Context, email, password string) (AuthResult, error)
}

// Repo is the read side of the identities table.
type Repo interface {
	GetByEmail(ctx context.Context, email string) (*Identity, error)
}

// AdminStore is the elevated identity capability. It is only handed out while
// a password rotation is in progress.
type AdminStore interface {
	SetPassword(ctx context.Context, identityID, newSecret string) error
}

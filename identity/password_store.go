package identity

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/pkg/errors"
)

// TokenIssuer signs access tokens for authenticated identities.
type TokenIssuer interface {
	CreateAccessToken(identityID, email string) (string, time.Time, error)
}

// PasswordStore implements Store by checking bcrypt hashes from a Repo and
// issuing a signed access token on success.
type PasswordStore struct {
	repo    Repo
	issuer  TokenIssuer
	timeout time.Duration
}

var _ Store = (*PasswordStore)(nil)

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash string

func init() {
	hash, err := HashPassword("not-a-real-password")
	if err != nil {
		panic("identity: dummy hash: " + err.Error())
	}
	dummyHash = hash
}

// NewPasswordStore builds a PasswordStore. Every repo lookup is bounded by timeout.
func NewPasswordStore(repo Repo, issuer TokenIssuer, timeout time.Duration) (*PasswordStore, error) {
	if repo == nil {
		return nil, errors.New("[NewPasswordStore] repo is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewPasswordStore] token issuer is required")
	}
	if timeout <= 0 {
		return nil, errors.New("[NewPasswordStore] timeout must be positive")
	}
	return &PasswordStore{repo: repo, issuer: issuer, timeout: timeout}, nil
}

func (ps *PasswordStore) Authenticate(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, apperrors.ErrMissingRequestFields
	}

	lookupCtx, cancel := context.WithTimeout(ctx, ps.timeout)
	user, err := ps.repo.GetByEmail(lookupCtx, email)
	cancel()
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		CheckPasswordHash(password, dummyHash)
		return AuthResult{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return AuthResult{}, errors.Wrap(apperrors.ErrDownstreamUnavailable, err.Error())
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		return AuthResult{}, apperrors.ErrInvalidCredentials
	}

	accessToken, expiresAt, err := ps.issuer.CreateAccessToken(user.ID, user.Email)
	if err != nil {
		return AuthResult{}, errors.Wrap(err, "[PasswordStore.Authenticate] CreateAccessToken")
	}

	return AuthResult{
		IdentityID:  user.ID,
		Email:       user.Email,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

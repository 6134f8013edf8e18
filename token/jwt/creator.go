package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Audience is the audience claim carried by every access token issued to a
// dashboard user.
const Audience = "authenticated"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims are the registered claims plus the email of the identity.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwtlib.RegisteredClaims
}

// IdentityID returns the subject of the token.
func (c Claims) IdentityID() string {
	return c.Subject
}

// Creator signs HS256 access tokens with the shared secret.
type Creator struct {
	secret []byte
	expiry time.Duration
}

// NewCreator creates a new JWT creator
func NewCreator(secret string, expiry time.Duration) (*Creator, error) {
	if secret == "" {
		return nil, fmt.Errorf("[NewCreator] secret is required")
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("[NewCreator] expiry must be positive")
	}
	return &Creator{secret: []byte(secret), expiry: expiry}, nil
}

// CreateAccessToken issues a token for identityID and returns it with its expiry.
func (c *Creator) CreateAccessToken(identityID, email string) (string, time.Time, error) {
	now := NowTimeFunc()
	expiresAt := now.Add(c.expiry)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   identityID,
			Audience:  jwtlib.ClaimStrings{Audience},
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, expiresAt, nil
}

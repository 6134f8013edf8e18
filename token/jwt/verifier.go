package jwt

import (
	"errors"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
)

// Verifier validates bearer tokens signed with the shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks signature, algorithm, audience and expiry. Expired tokens
// return ErrTokenExpired; every other failure returns ErrTokenInvalid.
func (v *Verifier) Verify(rawToken string) (Claims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" || len(v.secret) == 0 {
		return Claims{}, apperrors.ErrTokenInvalid
	}

	claims := Claims{}
	token, err := jwtlib.ParseWithClaims(rawToken, &claims, func(t *jwtlib.Token) (any, error) {
		return v.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithAudience(Audience),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return Claims{}, apperrors.ErrTokenExpired
	case err != nil || !token.Valid:
		return Claims{}, apperrors.ErrTokenInvalid
	case claims.Subject == "":
		return Claims{}, apperrors.ErrTokenInvalid
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.ErrTokenInvalid
	}
	return strings.TrimSpace(parts[1]), nil
}

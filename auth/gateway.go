// Package auth signs dashboard users in, verifies their bearer tokens and
// drives the forced password rotation that follows a first login.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/bot-dashboard/credentials"
	"github.com/jrsteele09/bot-dashboard/identity"
	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/sessions"
	"github.com/jrsteele09/bot-dashboard/tenants"
	"github.com/jrsteele09/bot-dashboard/token/jwt"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Elevated is the administrative capability over the central store. It is
// opened for a single rotation and closed straight after.
type Elevated interface {
	// Rotate sets the identity's password and clears its default-password
	// flag. Either both writes are applied or neither is.
	Rotate(ctx context.Context, identityID, newSecret string) error
	Close()
}

// SecretLengthFloor is the lowest MinSecretLength a Gateway accepts.
const SecretLengthFloor = 6

// ElevatedOpener opens a new elevated capability.
type ElevatedOpener func(ctx context.Context) (Elevated, error)

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (jwt.Claims, error)
}

// CredentialResolver maps an identity to its tenant credential record.
type CredentialResolver interface {
	Resolve(ctx context.Context, identityID string) (credentials.TenantCredential, error)
}

// Repos holds the ordinary capabilities used on every request.
type Repos struct {
	Identities  identity.Store
	Credentials CredentialResolver
	Sessions    sessions.Repo
}

// Settings are the password and session rules applied by the gateway.
type Settings struct {
	DefaultSecret     string
	MinSecretLength   int
	SessionMaxAge     time.Duration
	DownstreamTimeout time.Duration // bounds the elevated phase of a rotation
}

// APILoginResult is returned by the stateless JSON login.
type APILoginResult struct {
	AccessToken            string
	ExpiresAt              time.Time
	Descriptor             tenants.Descriptor
	PasswordChangeRequired bool
}

// Gateway implements login, token verification and credential rotation.
type Gateway struct {
	repos        Repos
	verifier     TokenVerifier
	openElevated ElevatedOpener
	settings     Settings
	nowTime      func() time.Time
}

// GatewayOption defines a function type to modify the Gateway instance.
type GatewayOption func(*Gateway)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.nowTime = nowFunc
	}
}

// NewGateway initializes a Gateway with its required dependencies.
func NewGateway(repos Repos, verifier TokenVerifier, openElevated ElevatedOpener, settings Settings, options ...GatewayOption) (*Gateway, error) {
	if repos.Identities == nil {
		return nil, errors.New("[NewGateway] Identities store is required")
	}
	if repos.Credentials == nil {
		return nil, errors.New("[NewGateway] Credentials resolver is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewGateway] Sessions repo is required")
	}
	if verifier == nil {
		return nil, errors.New("[NewGateway] token verifier is required")
	}
	if openElevated == nil {
		return nil, errors.New("[NewGateway] elevated opener is required")
	}
	if settings.DefaultSecret == "" {
		return nil, errors.New("[NewGateway] default secret is required")
	}
	if settings.SessionMaxAge <= 0 {
		return nil, errors.New("[NewGateway] session max age must be positive")
	}
	if settings.MinSecretLength < SecretLengthFloor {
		return nil, errors.Errorf("[NewGateway] min secret length must be at least %d", SecretLengthFloor)
	}
	if settings.DownstreamTimeout <= 0 {
		return nil, errors.New("[NewGateway] downstream timeout must be positive")
	}

	g := &Gateway{
		repos:        repos,
		verifier:     verifier,
		openElevated: openElevated,
		settings:     settings,
		nowTime:      time.Now,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

type signIn struct {
	auth           identity.AuthResult
	credential     credentials.TenantCredential
	rotationNeeded bool
}

func (g *Gateway) signIn(ctx context.Context, email, password string) (signIn, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return signIn{}, apperrors.ErrMissingRequestFields
	}

	res, err := g.repos.Identities.Authenticate(ctx, email, password)
	if err != nil {
		return signIn{}, errors.Wrap(err, "[Gateway.signIn] Authenticate")
	}

	cred, err := g.repos.Credentials.Resolve(ctx, res.IdentityID)
	if err != nil {
		return signIn{}, errors.Wrap(err, "[Gateway.signIn] Resolve")
	}

	return signIn{
		auth:           res,
		credential:     cred,
		rotationNeeded: password == g.settings.DefaultSecret || cred.UsesDefaultSecret,
	}, nil
}

// Login authenticates a browser user and stores a new session. The session is
// in StateForcedRotation when the default password is still in use.
func (g *Gateway) Login(ctx context.Context, email, password string) (sessions.Session, error) {
	in, err := g.signIn(ctx, email, password)
	if err != nil {
		return sessions.Session{}, err
	}

	state := sessions.StateAuthenticated
	if in.rotationNeeded {
		state = sessions.StateForcedRotation
	}
	s := sessions.New(in.auth.IdentityID, in.auth.Email, in.credential.Descriptor(), state, g.nowTime(), g.settings.SessionMaxAge)
	if err := g.repos.Sessions.Upsert(s); err != nil {
		return sessions.Session{}, errors.Wrap(err, "[Gateway.Login] Sessions.Upsert")
	}

	log.Info().
		Str("identity_id", s.IdentityID()).
		Int64("tenant_id", s.Descriptor().TenantID).
		Str("state", state.String()).
		Msg("login")
	return s, nil
}

// APILogin authenticates without creating a server-side session.
func (g *Gateway) APILogin(ctx context.Context, email, password string) (APILoginResult, error) {
	in, err := g.signIn(ctx, email, password)
	if err != nil {
		return APILoginResult{}, err
	}
	return APILoginResult{
		AccessToken:            in.auth.AccessToken,
		ExpiresAt:              in.auth.ExpiresAt,
		Descriptor:             in.credential.Descriptor(),
		PasswordChangeRequired: in.rotationNeeded,
	}, nil
}

// VerifyToken checks the signature and expiry of a raw bearer token.
func (g *Gateway) VerifyToken(raw string) (jwt.Claims, error) {
	return g.verifier.Verify(raw)
}

// AuthorizeTenant verifies raw and checks that requested is exactly the
// descriptor stored for the token's identity.
func (g *Gateway) AuthorizeTenant(ctx context.Context, raw string, requested tenants.Descriptor) (tenants.Descriptor, error) {
	claims, err := g.VerifyToken(raw)
	if err != nil {
		return tenants.Descriptor{}, err
	}
	cred, err := g.repos.Credentials.Resolve(ctx, claims.IdentityID())
	if err != nil {
		return tenants.Descriptor{}, err
	}
	stored := cred.Descriptor()
	if !stored.Equal(requested) {
		log.Warn().
			Str("identity_id", claims.IdentityID()).
			Int64("tenant_id", stored.TenantID).
			Int64("requested_tenant_id", requested.TenantID).
			Msg("tenant descriptor mismatch")
		return tenants.Descriptor{}, apperrors.ErrTenantMismatch
	}
	return stored, nil
}

// Session returns the live session for sessionID. Expired sessions are removed.
func (g *Gateway) Session(sessionID string) (sessions.Session, error) {
	s, err := g.repos.Sessions.Get(sessionID)
	if err != nil {
		return sessions.Session{}, err
	}
	if err := s.Validate(g.nowTime()); err != nil {
		_ = g.repos.Sessions.Delete(sessionID)
		return sessions.Session{}, err
	}
	return s, nil
}

// Logout destroys the session.
func (g *Gateway) Logout(sessionID string) error {
	return g.repos.Sessions.Delete(sessionID)
}

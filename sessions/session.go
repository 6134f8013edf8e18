// Package sessions holds the server-side browser sessions of the dashboard.
package sessions

import (
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/tenants"
)

// State is the position of a session in the login flow.
type State int

const (
	StateAnonymous State = iota
	StateForcedRotation
	StateAuthenticated
	StateRotated
	StateLoggedOut
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateForcedRotation:
		return "forced_rotation"
	case StateAuthenticated:
		return "authenticated"
	case StateRotated:
		return "rotated"
	case StateLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// Session is an immutable value. Transitions return a new Session.
type Session struct {
	id         string
	identityID string
	email      string
	descriptor tenants.Descriptor
	state      State
	createdAt  time.Time
	expiresAt  time.Time
}

// New creates a session for a freshly authenticated identity.
func New(identityID, email string, d tenants.Descriptor, state State, now time.Time, maxAge time.Duration) Session {
	return Session{
		id:         uuid.New().String(),
		identityID: identityID,
		email:      email,
		descriptor: d,
		state:      state,
		createdAt:  now,
		expiresAt:  now.Add(maxAge),
	}
}

func (s Session) ID() string                     { return s.id }
func (s Session) IdentityID() string             { return s.identityID }
func (s Session) Email() string                  { return s.email }
func (s Session) Descriptor() tenants.Descriptor { return s.descriptor }
func (s Session) State() State                   { return s.state }
func (s Session) CreatedAt() time.Time           { return s.createdAt }
func (s Session) ExpiresAt() time.Time           { return s.expiresAt }

// WithState returns a copy of s moved to state.
func (s Session) WithState(state State) Session {
	s.state = state
	return s
}

// CanViewDashboard reports whether tenant data may be served for s.
func (s Session) CanViewDashboard() bool {
	return s.state == StateAuthenticated || s.state == StateRotated
}

// Validate checks that s is a live, fully populated session.
func (s Session) Validate(now time.Time) error {
	if s.id == "" || s.identityID == "" {
		return apperrors.ErrSessionNotFound
	}
	switch s.state {
	case StateForcedRotation, StateAuthenticated, StateRotated:
	default:
		return apperrors.ErrSessionNotFound
	}
	if err := s.descriptor.Validate(); err != nil {
		return apperrors.Wrapf(apperrors.ErrSessionNotFound, "session descriptor: %v", err)
	}
	if !now.Before(s.expiresAt) {
		return apperrors.ErrSessionExpired
	}
	return nil
}

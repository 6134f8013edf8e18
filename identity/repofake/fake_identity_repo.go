package fakeidentityrepo

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/bot-dashboard/identity"
	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
)

var (
	_ identity.Repo       = (*FakeIdentityRepo)(nil)
	_ identity.AdminStore = (*FakeIdentityRepo)(nil)
)

type FakeIdentityRepo struct {
	identities map[string]*identity.Identity
	emailIds   map[string]string // email to identity id
	lock       sync.RWMutex

	// Err, when set, is returned by every call.
	Err error
	// PasswordWrites counts successful SetPassword calls.
	PasswordWrites int
}

func NewFakeIdentityRepo() *FakeIdentityRepo {
	return &FakeIdentityRepo{
		identities: make(map[string]*identity.Identity),
		emailIds:   make(map[string]string),
	}
}

// Add stores an identity with a bcrypt hash of password and returns its id.
func (ir *FakeIdentityRepo) Add(email, password string) (string, error) {
	hash, err := identity.HashPassword(password)
	if err != nil {
		return "", err
	}
	ir.lock.Lock()
	defer ir.lock.Unlock()

	id := uuid.New().String()
	email = strings.ToLower(email)
	ir.identities[id] = &identity.Identity{ID: id, Email: email, PasswordHash: hash}
	ir.emailIds[email] = id
	return id, nil
}

func (ir *FakeIdentityRepo) GetByEmail(_ context.Context, email string) (*identity.Identity, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()

	if ir.Err != nil {
		return nil, ir.Err
	}
	id, ok := ir.emailIds[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *ir.identities[id]
	return &copied, nil
}

func (ir *FakeIdentityRepo) SetPassword(_ context.Context, identityID, newSecret string) error {
	hash, err := identity.HashPassword(newSecret)
	if err != nil {
		return err
	}

	ir.lock.Lock()
	defer ir.lock.Unlock()

	if ir.Err != nil {
		return ir.Err
	}
	user, ok := ir.identities[identityID]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.PasswordHash = hash
	ir.PasswordWrites++
	return nil
}

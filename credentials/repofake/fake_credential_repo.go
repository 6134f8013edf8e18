package fakecredentialrepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/bot-dashboard/credentials"
	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
)

var (
	_ credentials.Reader = (*FakeCredentialRepo)(nil)
	_ credentials.Writer = (*FakeCredentialRepo)(nil)
)

type FakeCredentialRepo struct {
	records map[string]credentials.TenantCredential
	lock    sync.RWMutex

	// Err, when set, is returned by every call.
	Err error
	// Updates counts successful Update calls.
	Updates int
}

func NewFakeCredentialRepo() *FakeCredentialRepo {
	return &FakeCredentialRepo{
		records: make(map[string]credentials.TenantCredential),
	}
}

func (cr *FakeCredentialRepo) Put(c credentials.TenantCredential) {
	cr.lock.Lock()
	defer cr.lock.Unlock()
	cr.records[c.IdentityID] = c
}

func (cr *FakeCredentialRepo) GetByIdentity(ctx context.Context, identityID string) (*credentials.TenantCredential, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	if cr.Err != nil {
		return nil, cr.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := cr.records[identityID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (cr *FakeCredentialRepo) Update(_ context.Context, identityID string, u credentials.Update) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	if cr.Err != nil {
		return cr.Err
	}
	c, ok := cr.records[identityID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if u.UsesDefaultSecret != nil {
		c.UsesDefaultSecret = *u.UsesDefaultSecret
	}
	cr.records[identityID] = c
	cr.Updates++
	return nil
}

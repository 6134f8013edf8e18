package tenantrepofakes

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/tenants"
	"github.com/pkg/errors"
)

// FakeTenantStore holds the rows of one tenant's downstream store.
type FakeTenantStore struct {
	Stats         *tenants.StatsSnapshot
	Participants  []tenants.Participant
	Conversations []tenants.Conversation
	Messages      []tenants.Message

	// Err, when set, is returned by every query against this store.
	Err error
}

// FakeTenantBackend simulates many isolated tenant stores. A store is only
// reachable with the exact endpoint and access key it was registered with.
type FakeTenantBackend struct {
	stores map[tenants.Descriptor]*FakeTenantStore
	built  []tenants.Client
	lock   sync.RWMutex
}

var _ tenants.ClientFactory = (*FakeTenantBackend)(nil)

func NewFakeTenantBackend() *FakeTenantBackend {
	return &FakeTenantBackend{
		stores: make(map[tenants.Descriptor]*FakeTenantStore),
	}
}

// Register makes store reachable through d.
func (b *FakeTenantBackend) Register(d tenants.Descriptor, store *FakeTenantStore) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.stores[d] = store
}

// NewClient returns a new client every call and records it.
func (b *FakeTenantBackend) NewClient(d tenants.Descriptor) (tenants.Client, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	c := &FakeTenantClient{backend: b, descriptor: d}

	b.lock.Lock()
	b.built = append(b.built, c)
	b.lock.Unlock()
	return c, nil
}

// Built returns every client created so far, in creation order.
func (b *FakeTenantBackend) Built() []tenants.Client {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return append([]tenants.Client(nil), b.built...)
}

func (b *FakeTenantBackend) store(d tenants.Descriptor) (*FakeTenantStore, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	s, ok := b.stores[d]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrDownstreamUnavailable, "fake store: invalid api key")
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s, nil
}

// FakeTenantClient is bound to the descriptor it was created with.
type FakeTenantClient struct {
	backend    *FakeTenantBackend
	descriptor tenants.Descriptor
}

var _ tenants.Client = (*FakeTenantClient)(nil)

// Descriptor returns the descriptor the client was built from.
func (c *FakeTenantClient) Descriptor() tenants.Descriptor {
	return c.descriptor
}

func (c *FakeTenantClient) open(tenantID int64) (*FakeTenantStore, error) {
	if tenantID != c.descriptor.TenantID {
		return nil, apperrors.ErrTenantMismatch
	}
	return c.backend.store(c.descriptor)
}

func (c *FakeTenantClient) GetStats(ctx context.Context, tenantID int64) (*tenants.StatsSnapshot, error) {
	s, err := c.open(tenantID)
	if err != nil {
		return nil, err
	}
	if s.Stats == nil {
		return nil, apperrors.ErrNotFound
	}
	stats := *s.Stats
	return &stats, nil
}

func (c *FakeTenantClient) GetConversations(ctx context.Context, tenantID int64, since time.Time) ([]tenants.Conversation, error) {
	s, err := c.open(tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]tenants.Conversation, 0)
	for _, conv := range s.Conversations {
		if !conv.UpdatedAt.Before(since) {
			out = append(out, conv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}

func (c *FakeTenantClient) GetParticipants(ctx context.Context, tenantID int64) ([]tenants.Participant, error) {
	s, err := c.open(tenantID)
	if err != nil {
		return nil, err
	}
	return append([]tenants.Participant{}, s.Participants...), nil
}

func (c *FakeTenantClient) GetParticipantByExternalID(ctx context.Context, tenantID int64, externalID string) (*tenants.Participant, error) {
	s, err := c.open(tenantID)
	if err != nil {
		return nil, err
	}
	for _, p := range s.Participants {
		if p.ExternalID == externalID {
			p := p
			return &p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (c *FakeTenantClient) GetConversationByParticipant(ctx context.Context, participantID string) (*tenants.Conversation, error) {
	s, err := c.open(c.descriptor.TenantID)
	if err != nil {
		return nil, err
	}
	var found *tenants.Conversation
	for i := range s.Conversations {
		conv := s.Conversations[i]
		if conv.ParticipantID != participantID {
			continue
		}
		if found == nil || conv.UpdatedAt.After(found.UpdatedAt) {
			found = &conv
		}
	}
	if found == nil {
		return nil, apperrors.ErrNotFound
	}
	return found, nil
}

func (c *FakeTenantClient) GetMessages(ctx context.Context, conversationID string) ([]tenants.Message, error) {
	s, err := c.open(c.descriptor.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]tenants.Message, 0)
	for _, m := range s.Messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

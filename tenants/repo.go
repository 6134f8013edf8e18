package tenants

import (
	"context"
	"time"
)

// Client reads one tenant's downstream store. Point lookups that find no row
// return errors.ErrNotFound.
type Client interface {
	GetStats(ctx context.Context, tenantID int64) (*StatsSnapshot, error)
	GetConversations(ctx context.Context, tenantID int64, since time.Time) ([]Conversation, error)
	GetParticipants(ctx context.Context, tenantID int64) ([]Participant, error)
	GetParticipantByExternalID(ctx context.Context, tenantID int64, externalID string) (*Participant, error)
	GetConversationByParticipant(ctx context.Context, participantID string) (*Conversation, error)
	GetMessages(ctx context.Context, conversationID string) ([]Message, error)
}

// ClientFactory builds a client bound to a single tenant. Implementations must
// return a new client on every call; the access key is the only isolation
// boundary between tenants, so clients are never cached or shared.
type ClientFactory interface {
	NewClient(d Descriptor) (Client, error)
}

// ClientFactoryFunc adapts a function to ClientFactory.
type ClientFactoryFunc func(d Descriptor) (Client, error)

func (f ClientFactoryFunc) NewClient(d Descriptor) (Client, error) {
	return f(d)
}

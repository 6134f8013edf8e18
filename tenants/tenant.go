package tenants

import (
	"fmt"
	"net/url"
	"time"
)

// Descriptor identifies one tenant's downstream store. It is copied by value
// and never mutated after construction.
type Descriptor struct {
	TenantID  int64  `json:"company_id"`
	Endpoint  string `json:"supabase_url"`
	AccessKey string `json:"supabase_anon_key"`
}

// Validate checks that the descriptor names a usable store.
func (d Descriptor) Validate() error {
	if d.TenantID == 0 {
		return fmt.Errorf("descriptor: tenant id is required")
	}
	if d.AccessKey == "" {
		return fmt.Errorf("descriptor: access key is required")
	}
	u, err := url.Parse(d.Endpoint)
	if err != nil {
		return fmt.Errorf("descriptor: endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("descriptor: endpoint must be an absolute http(s) URL")
	}
	return nil
}

// Equal reports whether two descriptors route to the same store with the same key.
func (d Descriptor) Equal(o Descriptor) bool {
	return d.TenantID == o.TenantID && d.Endpoint == o.Endpoint && d.AccessKey == o.AccessKey
}

// StatsSnapshot is the bot_statistics row for a tenant.
type StatsSnapshot struct {
	TenantID         int64     `json:"company_id"`
	TotalMessages    int64     `json:"total_messages"`
	TotalRecipients  int64     `json:"total_recipients"`
	TotalConversions int64     `json:"total_conversions"`
	AvgResponseTime  float64   `json:"avg_response_time"` // seconds
	LastUpdated      time.Time `json:"last_updated"`
}

// Participant is an end user talking to the tenant's bot.
type Participant struct {
	ID         string    `json:"id"`
	TenantID   int64     `json:"company_id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Conversation is the thread between one participant and the bot.
type Conversation struct {
	ID            string    `json:"id"`
	TenantID      int64     `json:"company_id"`
	ParticipantID string    `json:"participant_id"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Message is a single entry of a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Sender         string    `json:"sender"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

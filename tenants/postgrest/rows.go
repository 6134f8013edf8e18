package postgrest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/bot-dashboard/tenants"
)

// Rows mirror the JSON returned by the gateway. Timestamps are kept as strings
// because timestamp columns without a zone come back without an offset.

type statsRow struct {
	CompanyID        int64   `json:"company_id"`
	TotalMessages    int64   `json:"total_messages"`
	TotalRecipients  int64   `json:"total_recipients"`
	TotalConversions int64   `json:"total_conversions"`
	AvgResponseTime  float64 `json:"avg_response_time"`
	LastUpdated      *string `json:"last_updated"`
}

func (r statsRow) toModel() (*tenants.StatsSnapshot, error) {
	lastUpdated, err := parseOptionalTime(r.LastUpdated)
	if err != nil {
		return nil, err
	}
	return &tenants.StatsSnapshot{
		TenantID:         r.CompanyID,
		TotalMessages:    r.TotalMessages,
		TotalRecipients:  r.TotalRecipients,
		TotalConversions: r.TotalConversions,
		AvgResponseTime:  r.AvgResponseTime,
		LastUpdated:      lastUpdated,
	}, nil
}

type participantRow struct {
	ID         flexID  `json:"id"`
	CompanyID  int64   `json:"company_id"`
	ExternalID string  `json:"external_id"`
	Name       string  `json:"name"`
	CreatedAt  *string `json:"created_at"`
}

func (r participantRow) toModel() (*tenants.Participant, error) {
	createdAt, err := parseOptionalTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &tenants.Participant{
		ID:         string(r.ID),
		TenantID:   r.CompanyID,
		ExternalID: r.ExternalID,
		Name:       r.Name,
		CreatedAt:  createdAt,
	}, nil
}

type conversationRow struct {
	ID            flexID  `json:"id"`
	CompanyID     int64   `json:"company_id"`
	ParticipantID flexID  `json:"participant_id"`
	UpdatedAt     *string `json:"updated_at"`
}

func (r conversationRow) toModel() (*tenants.Conversation, error) {
	updatedAt, err := parseOptionalTime(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &tenants.Conversation{
		ID:            string(r.ID),
		TenantID:      r.CompanyID,
		ParticipantID: string(r.ParticipantID),
		UpdatedAt:     updatedAt,
	}, nil
}

type messageRow struct {
	ID             flexID  `json:"id"`
	ConversationID flexID  `json:"conversation_id"`
	Sender         string  `json:"sender"`
	Content        string  `json:"content"`
	Timestamp      *string `json:"timestamp"`
}

func (r messageRow) toModel() (*tenants.Message, error) {
	ts, err := parseOptionalTime(r.Timestamp)
	if err != nil {
		return nil, err
	}
	return &tenants.Message{
		ID:             string(r.ID),
		ConversationID: string(r.ConversationID),
		Sender:         r.Sender,
		Content:        r.Content,
		Timestamp:      ts,
	}, nil
}

// flexID accepts both numeric and string primary keys.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*f = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = flexID(str)
	default:
		*f = flexID(s)
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func parseOptionalTime(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("postgrest: unrecognised timestamp %q", *s)
}

// Package dashboard builds the per-tenant dashboard view from a tenant client.
package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/tenants"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// SeriesWindow is how far back the conversation series reaches.
	SeriesWindow = 7 * 24 * time.Hour
	dateLayout   = "2006-01-02"

	// ErrorMessage is shown when any part of the dashboard could not be loaded.
	ErrorMessage = "could not retrieve dashboard data"
)

// DateCount is one point of the conversation series.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// View is everything the dashboard renders. Err is set when at least one
// fetch failed; the remaining fields still hold whatever was retrieved.
type View struct {
	Stats              tenants.StatsSnapshot `json:"stats"`
	ConversationSeries []DateCount           `json:"chartData"`
	Participants       []tenants.Participant `json:"participants"`
	Error              string                `json:"error,omitempty"`
	Err                error                 `json:"-"`
}

// Aggregator runs the dashboard queries against a tenant client.
type Aggregator struct {
	timeout time.Duration
	nowTime func() time.Time
}

// AggregatorOption defines a function type to modify the Aggregator.
type AggregatorOption func(*Aggregator)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		a.nowTime = nowFunc
	}
}

func NewAggregator(timeout time.Duration, options ...AggregatorOption) *Aggregator {
	a := &Aggregator{timeout: timeout, nowTime: time.Now}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Build fetches stats, the last seven days of conversations and the
// participant roster, one after the other. It never fails outright.
func (a *Aggregator) Build(ctx context.Context, client tenants.Client, tenantID int64) View {
	var errs *multierror.Error
	view := View{
		Stats:              tenants.StatsSnapshot{TenantID: tenantID},
		ConversationSeries: []DateCount{},
		Participants:       []tenants.Participant{},
	}

	stats, err := a.stats(ctx, client, tenantID)
	if err != nil {
		errs = multierror.Append(errs, errors.Wrap(err, "stats"))
	} else {
		view.Stats = stats
	}

	since := a.nowTime().UTC().Add(-SeriesWindow)
	convs, err := withTimeout(ctx, a.timeout, func(ctx context.Context) ([]tenants.Conversation, error) {
		return client.GetConversations(ctx, tenantID, since)
	})
	if err != nil {
		errs = multierror.Append(errs, errors.Wrap(err, "conversations"))
	} else {
		view.ConversationSeries = GroupByDate(convs)
	}

	participants, err := withTimeout(ctx, a.timeout, func(ctx context.Context) ([]tenants.Participant, error) {
		return client.GetParticipants(ctx, tenantID)
	})
	if err != nil {
		errs = multierror.Append(errs, errors.Wrap(err, "participants"))
	} else if participants != nil {
		view.Participants = participants
	}

	if err := errs.ErrorOrNil(); err != nil {
		log.Error().Err(err).Int64("tenant_id", tenantID).Msg("dashboard partially unavailable")
		view.Err = err
		view.Error = ErrorMessage
	}
	return view
}

func (a *Aggregator) stats(ctx context.Context, client tenants.Client, tenantID int64) (tenants.StatsSnapshot, error) {
	s, err := withTimeout(ctx, a.timeout, func(ctx context.Context) (*tenants.StatsSnapshot, error) {
		return client.GetStats(ctx, tenantID)
	})
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		return tenants.StatsSnapshot{TenantID: tenantID}, nil
	case err != nil:
		return tenants.StatsSnapshot{}, err
	}
	return *s, nil
}

// ConversationHistory returns the messages of the participant's conversation
// in timestamp order. An unknown participant or a participant without a
// conversation yields an empty list.
func (a *Aggregator) ConversationHistory(ctx context.Context, client tenants.Client, tenantID int64, externalID string) ([]tenants.Message, error) {
	if externalID == "" {
		return nil, apperrors.ErrMissingRequestFields
	}

	participant, err := withTimeout(ctx, a.timeout, func(ctx context.Context) (*tenants.Participant, error) {
		return client.GetParticipantByExternalID(ctx, tenantID, externalID)
	})
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return []tenants.Message{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "participant")
	}

	conv, err := withTimeout(ctx, a.timeout, func(ctx context.Context) (*tenants.Conversation, error) {
		return client.GetConversationByParticipant(ctx, participant.ID)
	})
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return []tenants.Message{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "conversation")
	}

	msgs, err := withTimeout(ctx, a.timeout, func(ctx context.Context) ([]tenants.Message, error) {
		return client.GetMessages(ctx, conv.ID)
	})
	if err != nil {
		return nil, errors.Wrap(err, "messages")
	}
	if msgs == nil {
		msgs = []tenants.Message{}
	}
	return msgs, nil
}

// GroupByDate counts conversations per UTC calendar day, oldest day first.
// Days without conversations are omitted.
func GroupByDate(convs []tenants.Conversation) []DateCount {
	counts := make(map[string]int)
	for _, c := range convs {
		counts[c.UpdatedAt.UTC().Format(dateLayout)]++
	}

	out := make([]DateCount, 0, len(counts))
	for date, n := range counts {
		out = append(out, DateCount{Date: date, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// Package postgrest reads a tenant's downstream store through a PostgREST
// compatible HTTP API (the interface exposed by Supabase projects).
package postgrest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/tenants"
	"github.com/pkg/errors"
	postgrestgo "github.com/supabase-community/postgrest-go"
	"golang.org/x/oauth2"
)

const (
	restPath = "/rest/v1"

	tableStats         = "bot_statistics"
	tableConversations = "conversations"
	tableParticipants  = "participants"
	tableMessages      = "messages"
)

var (
	ascending  = &postgrestgo.OrderOpts{Ascending: true}
	descending = &postgrestgo.OrderOpts{Ascending: false}
)

// Client is bound to exactly one tenant descriptor.
type Client struct {
	tenantID int64
	rest     *postgrestgo.Client
}

var _ tenants.Client = (*Client)(nil)

// NewClient builds a client for d. No request is made until the first query.
// Every request is cut off after timeout even when the caller's context has
// no deadline.
func NewClient(d tenants.Descriptor, timeout time.Duration, base http.RoundTripper) (*Client, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if base == nil {
		base = http.DefaultTransport
	}

	rest := postgrestgo.NewClient(strings.TrimRight(d.Endpoint, "/")+restPath, "", nil)
	if rest.ClientError != nil {
		return nil, errors.Wrap(rest.ClientError, "postgrest: endpoint")
	}
	rest.SetApiKey(d.AccessKey)
	rest.Transport.Parent = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: d.AccessKey, TokenType: "Bearer"}),
		Base:   &deadlineTransport{timeout: timeout, next: base},
	}

	return &Client{tenantID: d.TenantID, rest: rest}, nil
}

func (c *Client) checkTenant(tenantID int64) error {
	if tenantID != c.tenantID {
		return errors.Wrapf(apperrors.ErrTenantMismatch, "client bound to tenant %d, asked for %d", c.tenantID, tenantID)
	}
	return nil
}

func (c *Client) tenantFilter() string {
	return strconv.FormatInt(c.tenantID, 10)
}

func (c *Client) GetStats(ctx context.Context, tenantID int64) (*tenants.StatsSnapshot, error) {
	if err := c.checkTenant(tenantID); err != nil {
		return nil, err
	}
	var rows []statsRow
	q := c.rest.From(tableStats).
		Select("*", "", false).
		Eq("company_id", c.tenantFilter()).
		Limit(1, "")
	if err := execute(ctx, tableStats, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return rows[0].toModel()
}

func (c *Client) GetConversations(ctx context.Context, tenantID int64, since time.Time) ([]tenants.Conversation, error) {
	if err := c.checkTenant(tenantID); err != nil {
		return nil, err
	}
	var rows []conversationRow
	q := c.rest.From(tableConversations).
		Select("*", "", false).
		Eq("company_id", c.tenantFilter()).
		Gte("updated_at", since.UTC().Format(time.RFC3339)).
		Order("updated_at", ascending)
	if err := execute(ctx, tableConversations, q, &rows); err != nil {
		return nil, err
	}
	out := make([]tenants.Conversation, 0, len(rows))
	for _, r := range rows {
		conv, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *conv)
	}
	return out, nil
}

func (c *Client) GetParticipants(ctx context.Context, tenantID int64) ([]tenants.Participant, error) {
	if err := c.checkTenant(tenantID); err != nil {
		return nil, err
	}
	var rows []participantRow
	q := c.rest.From(tableParticipants).
		Select("*", "", false).
		Eq("company_id", c.tenantFilter()).
		Order("created_at", ascending)
	if err := execute(ctx, tableParticipants, q, &rows); err != nil {
		return nil, err
	}
	out := make([]tenants.Participant, 0, len(rows))
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (c *Client) GetParticipantByExternalID(ctx context.Context, tenantID int64, externalID string) (*tenants.Participant, error) {
	if err := c.checkTenant(tenantID); err != nil {
		return nil, err
	}
	var rows []participantRow
	q := c.rest.From(tableParticipants).
		Select("*", "", false).
		Eq("company_id", c.tenantFilter()).
		Eq("external_id", externalID).
		Limit(1, "")
	if err := execute(ctx, tableParticipants, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return rows[0].toModel()
}

func (c *Client) GetConversationByParticipant(ctx context.Context, participantID string) (*tenants.Conversation, error) {
	var rows []conversationRow
	q := c.rest.From(tableConversations).
		Select("*", "", false).
		Eq("company_id", c.tenantFilter()).
		Eq("participant_id", participantID).
		Order("updated_at", descending).
		Limit(1, "")
	if err := execute(ctx, tableConversations, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return rows[0].toModel()
}

func (c *Client) GetMessages(ctx context.Context, conversationID string) ([]tenants.Message, error) {
	var rows []messageRow
	q := c.rest.From(tableMessages).
		Select("*", "", false).
		Eq("conversation_id", conversationID).
		Order("timestamp", ascending)
	if err := execute(ctx, tableMessages, q, &rows); err != nil {
		return nil, err
	}
	out := make([]tenants.Message, 0, len(rows))
	for _, r := range rows {
		m, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

// execute runs q and decodes the rows into out. The query builder takes no
// context, so the caller's context is honoured by abandoning the request; the
// transport deadline then bounds the abandoned goroutine.
func execute(ctx context.Context, table string, q *postgrestgo.FilterBuilder, out any) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(apperrors.ErrDownstreamUnavailable, "query %s: %v", table, err)
	}

	type result struct {
		body []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, _, err := q.Execute()
		done <- result{body: body, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return errors.Wrapf(apperrors.ErrDownstreamUnavailable, "query %s: %v", table, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return errors.Wrapf(apperrors.ErrDownstreamUnavailable, "query %s: %v", table, res.err)
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return errors.Wrapf(apperrors.ErrDownstreamUnavailable, "decode %s: %v", table, err)
	}
	return nil
}

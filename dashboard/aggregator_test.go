package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/bot-dashboard/dashboard"
	apperrors "github.com/jrsteele09/bot-dashboard/internal/errors"
	"github.com/jrsteele09/bot-dashboard/tenants"
	tenantrepofakes "github.com/jrsteele09/bot-dashboard/tenants/repofakes"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	now       = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	tenantOne = tenants.Descriptor{TenantID: 1, Endpoint: "https://tenant-one.example.co", AccessKey: "k1"}
	tenantTwo = tenants.Descriptor{TenantID: 2, Endpoint: "https://tenant-two.example.co", AccessKey: "k2"}
)

// mockClient is a testify mock of tenants.Client.
type mockClient struct {
	mock.Mock
}

func (m *mockClient) GetStats(ctx context.Context, tenantID int64) (*tenants.StatsSnapshot, error) {
	args := m.Called(ctx, tenantID)
	s, _ := args.Get(0).(*tenants.StatsSnapshot)
	return s, args.Error(1)
}

func (m *mockClient) GetConversations(ctx context.Context, tenantID int64, since time.Time) ([]tenants.Conversation, error) {
	args := m.Called(ctx, tenantID, since)
	c, _ := args.Get(0).([]tenants.Conversation)
	return c, args.Error(1)
}

func (m *mockClient) GetParticipants(ctx context.Context, tenantID int64) ([]tenants.Participant, error) {
	args := m.Called(ctx, tenantID)
	p, _ := args.Get(0).([]tenants.Participant)
	return p, args.Error(1)
}

func (m *mockClient) GetParticipantByExternalID(ctx context.Context, tenantID int64, externalID string) (*tenants.Participant, error) {
	args := m.Called(ctx, tenantID, externalID)
	p, _ := args.Get(0).(*tenants.Participant)
	return p, args.Error(1)
}

func (m *mockClient) GetConversationByParticipant(ctx context.Context, participantID string) (*tenants.Conversation, error) {
	args := m.Called(ctx, participantID)
	c, _ := args.Get(0).(*tenants.Conversation)
	return c, args.Error(1)
}

func (m *mockClient) GetMessages(ctx context.Context, conversationID string) ([]tenants.Message, error) {
	args := m.Called(ctx, conversationID)
	msgs, _ := args.Get(0).([]tenants.Message)
	return msgs, args.Error(1)
}

func newAggregator() *dashboard.Aggregator {
	return dashboard.NewAggregator(time.Second, dashboard.WithNowTime(func() time.Time { return now }))
}

func conv(id string, at time.Time) tenants.Conversation {
	return tenants.Conversation{ID: id, TenantID: 1, ParticipantID: "p-" + id, UpdatedAt: at}
}

func TestGroupByDate(t *testing.T) {
	series := dashboard.GroupByDate([]tenants.Conversation{
		conv("3", time.Date(2024, 1, 3, 5, 0, 0, 0, time.UTC)),
		conv("1", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)),
		conv("2", time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)),
	})
	require.Equal(t, []dashboard.DateCount{
		{Date: "2024-01-01", Count: 2},
		{Date: "2024-01-03", Count: 1},
	}, series)

	require.Empty(t, dashboard.GroupByDate(nil))
}

func TestGroupByDate_UsesUTCDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	series := dashboard.GroupByDate([]tenants.Conversation{
		conv("1", time.Date(2024, 1, 2, 8, 0, 0, 0, tokyo)), // 2024-01-01T23:00Z
	})
	require.Equal(t, []dashboard.DateCount{{Date: "2024-01-01", Count: 1}}, series)
}

func TestBuild(t *testing.T) {
	backend := tenantrepofakes.NewFakeTenantBackend()
	backend.Register(tenantOne, &tenantrepofakes.FakeTenantStore{
		Stats: &tenants.StatsSnapshot{TenantID: 1, TotalMessages: 120, TotalRecipients: 30},
		Participants: []tenants.Participant{
			{ID: "p-1", TenantID: 1, ExternalID: "line-1", Name: "Aiko"},
		},
		Conversations: []tenants.Conversation{
			conv("old", now.Add(-8*24*time.Hour)),
			conv("1", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)),
			conv("2", time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)),
			conv("3", time.Date(2024, 1, 3, 5, 0, 0, 0, time.UTC)),
		},
	})
	client, err := backend.NewClient(tenantOne)
	require.NoError(t, err)

	view := newAggregator().Build(context.Background(), client, 1)
	require.NoError(t, view.Err)
	require.Empty(t, view.Error)
	require.Equal(t, int64(120), view.Stats.TotalMessages)
	require.Equal(t, []dashboard.DateCount{
		{Date: "2024-01-01", Count: 2},
		{Date: "2024-01-03", Count: 1},
	}, view.ConversationSeries)
	require.Len(t, view.Participants, 1)
}

func TestBuild_MissingStatsIsZero(t *testing.T) {
	backend := tenantrepofakes.NewFakeTenantBackend()
	backend.Register(tenantOne, &tenantrepofakes.FakeTenantStore{})
	client, err := backend.NewClient(tenantOne)
	require.NoError(t, err)

	view := newAggregator().Build(context.Background(), client, 1)
	require.NoError(t, view.Err)
	require.Equal(t, tenants.StatsSnapshot{TenantID: 1}, view.Stats)
	require.NotNil(t, view.ConversationSeries)
	require.NotNil(t, view.Participants)
}

func TestBuild_PartialFailure(t *testing.T) {
	client := new(mockClient)
	client.On("GetStats", mock.Anything, int64(1)).
		Return(&tenants.StatsSnapshot{TenantID: 1, TotalMessages: 5}, nil)
	client.On("GetConversations", mock.Anything, int64(1), now.Add(-dashboard.SeriesWindow)).
		Return(nil, apperrors.ErrDownstreamUnavailable)
	client.On("GetParticipants", mock.Anything, int64(1)).
		Return([]tenants.Participant{{ID: "p-1"}}, nil)

	view := newAggregator().Build(context.Background(), client, 1)
	require.ErrorIs(t, view.Err, apperrors.ErrDownstreamUnavailable)
	require.Equal(t, dashboard.ErrorMessage, view.Error)
	require.Equal(t, int64(5), view.Stats.TotalMessages)
	require.Empty(t, view.ConversationSeries)
	require.Len(t, view.Participants, 1)
	client.AssertExpectations(t)
}

func TestBuild_AllFailuresCollected(t *testing.T) {
	client := new(mockClient)
	client.On("GetStats", mock.Anything, int64(1)).Return(nil, errors.New("stats down"))
	client.On("GetConversations", mock.Anything, int64(1), mock.Anything).Return(nil, errors.New("conversations down"))
	client.On("GetParticipants", mock.Anything, int64(1)).Return(nil, errors.New("participants down"))

	view := newAggregator().Build(context.Background(), client, 1)
	require.Error(t, view.Err)
	require.Contains(t, view.Err.Error(), "stats down")
	require.Contains(t, view.Err.Error(), "conversations down")
	require.Contains(t, view.Err.Error(), "participants down")
	require.Equal(t, tenants.StatsSnapshot{TenantID: 1}, view.Stats)
}

func TestBuild_EachFetchHasDeadline(t *testing.T) {
	client := new(mockClient)
	hasDeadline := mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})
	client.On("GetStats", hasDeadline, int64(1)).Return(nil, apperrors.ErrNotFound)
	client.On("GetConversations", hasDeadline, int64(1), mock.Anything).Return([]tenants.Conversation{}, nil)
	client.On("GetParticipants", hasDeadline, int64(1)).Return([]tenants.Participant{}, nil)

	view := newAggregator().Build(context.Background(), client, 1)
	require.NoError(t, view.Err)
	client.AssertExpectations(t)
}

func TestBuild_TenantIsolation(t *testing.T) {
	backend := tenantrepofakes.NewFakeTenantBackend()
	backend.Register(tenantOne, &tenantrepofakes.FakeTenantStore{
		Stats:        &tenants.StatsSnapshot{TenantID: 1, TotalMessages: 111},
		Participants: []tenants.Participant{{ID: "p-1", TenantID: 1, Name: "one"}},
	})
	backend.Register(tenantTwo, &tenantrepofakes.FakeTenantStore{
		Stats:        &tenants.StatsSnapshot{TenantID: 2, TotalMessages: 222},
		Participants: []tenants.Participant{{ID: "p-2", TenantID: 2, Name: "two"}},
	})
	agg := newAggregator()

	c1, err := backend.NewClient(tenantOne)
	require.NoError(t, err)
	c2, err := backend.NewClient(tenantTwo)
	require.NoError(t, err)
	require.NotSame(t, c1, c2)

	v1 := agg.Build(context.Background(), c1, 1)
	v2 := agg.Build(context.Background(), c2, 2)
	require.Equal(t, int64(111), v1.Stats.TotalMessages)
	require.Equal(t, "one", v1.Participants[0].Name)
	require.Equal(t, int64(222), v2.Stats.TotalMessages)
	require.Equal(t, "two", v2.Participants[0].Name)

	// a client never reaches another tenant's rows
	cross := agg.Build(context.Background(), c1, 2)
	require.ErrorIs(t, cross.Err, apperrors.ErrTenantMismatch)
	require.Empty(t, cross.Participants)

	// a descriptor with another tenant's key does not open its store
	forged := tenantOne
	forged.AccessKey = tenantTwo.AccessKey
	c3, err := backend.NewClient(forged)
	require.NoError(t, err)
	v3 := agg.Build(context.Background(), c3, 1)
	require.ErrorIs(t, v3.Err, apperrors.ErrDownstreamUnavailable)

	require.Len(t, backend.Built(), 3)
}

func TestConversationHistory(t *testing.T) {
	backend := tenantrepofakes.NewFakeTenantBackend()
	backend.Register(tenantOne, &tenantrepofakes.FakeTenantStore{
		Participants: []tenants.Participant{
			{ID: "p-1", TenantID: 1, ExternalID: "line-1"},
			{ID: "p-2", TenantID: 1, ExternalID: "line-2"},
		},
		Conversations: []tenants.Conversation{
			{ID: "c-1", TenantID: 1, ParticipantID: "p-1", UpdatedAt: now},
		},
		Messages: []tenants.Message{
			{ID: "m-2", ConversationID: "c-1", Sender: "bot", Content: "hello", Timestamp: now.Add(time.Second)},
			{ID: "m-1", ConversationID: "c-1", Sender: "user", Content: "hi", Timestamp: now},
			{ID: "m-x", ConversationID: "c-9", Sender: "user", Content: "elsewhere", Timestamp: now},
		},
	})
	client, err := backend.NewClient(tenantOne)
	require.NoError(t, err)
	agg := newAggregator()
	ctx := context.Background()

	msgs, err := agg.ConversationHistory(ctx, client, 1, "line-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "hi", msgs[0].Content)
	require.Equal(t, "hello", msgs[1].Content)

	t.Run("unknown participant", func(t *testing.T) {
		msgs, err := agg.ConversationHistory(ctx, client, 1, "line-unknown")
		require.NoError(t, err)
		require.NotNil(t, msgs)
		require.Empty(t, msgs)
	})

	t.Run("participant without conversation", func(t *testing.T) {
		msgs, err := agg.ConversationHistory(ctx, client, 1, "line-2")
		require.NoError(t, err)
		require.NotNil(t, msgs)
		require.Empty(t, msgs)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := agg.ConversationHistory(ctx, client, 1, "")
		require.ErrorIs(t, err, apperrors.ErrMissingRequestFields)
	})
}

func TestConversationHistory_DownstreamFailure(t *testing.T) {
	client := new(mockClient)
	client.On("GetParticipantByExternalID", mock.Anything, int64(1), "line-1").
		Return(&tenants.Participant{ID: "p-1"}, nil)
	client.On("GetConversationByParticipant", mock.Anything, "p-1").
		Return(nil, apperrors.ErrDownstreamUnavailable)

	_, err := newAggregator().ConversationHistory(context.Background(), client, 1, "line-1")
	require.ErrorIs(t, err, apperrors.ErrDownstreamUnavailable)
	client.AssertExpectations(t)
}

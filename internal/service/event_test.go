package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
	"github.com/wiederlebendig/lead-attribution-service/internal/dto"
	"github.com/wiederlebendig/lead-attribution-service/internal/repository"
)

var testHosts = []string{"localhost", "127.0.0.1"}

// MockEventPublisher is a mock implementation of queue.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) InsertBatch(ctx context.Context, events []*domain.Event) (int, error) {
	args := m.Called(ctx, events)
	return args.Int(0), args.Error(1)
}

func (m *MockEventRepository) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEventRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEventRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockEventRepository) GetMetrics(ctx context.Context, query repository.MetricsQuery) (*repository.MetricsResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.MetricsResult), args.Error(1)
}

func capturePublished(publisher *MockEventPublisher) *[]*domain.Event {
	var published []*domain.Event
	publisher.On("PublishEvent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			published = append(published, args.Get(1).(*domain.Event))
		}).
		Return(nil)
	return &published
}

func TestEventService_Track_ServerParsedAttribution(t *testing.T) {
	publisher := new(MockEventPublisher)
	repo := new(MockEventRepository)
	published := capturePublished(publisher)

	service := NewEventService(publisher, repo, testHosts, zap.NewNop())

	service.Track(context.Background(), &dto.TrackEventRequest{Type: "page_view"}, RequestMeta{
		Referrer:  "https://www.example.de/wieder-lebendig?utm_source=google",
		ClientIP:  "203.0.113.7",
		UserAgent: "Mozilla/5.0",
		Host:      "www.wieder-lebendig.de",
	})

	assert.Len(t, *published, 1)
	event := (*published)[0]
	assert.Equal(t, "page_view", event.EventType)
	assert.Equal(t, "/wieder-lebendig", event.CampaignSource)
	assert.Equal(t, "/wieder-lebendig", event.LandingPage)
	assert.Equal(t, "google", event.UTMSource)
	assert.Equal(t, "Mozilla/5.0", event.UserAgent)
	assert.False(t, event.IsTest)
	assert.NotEmpty(t, event.EventID)
	assert.NotEmpty(t, event.IPHash)
	assert.NotEqual(t, "203.0.113.7", event.IPHash)
}

func TestEventService_Track_ClientReferrerWins(t *testing.T) {
	publisher := new(MockEventPublisher)
	repo := new(MockEventRepository)
	published := capturePublished(publisher)

	service := NewEventService(publisher, repo, testHosts, zap.NewNop())

	service.Track(context.Background(), &dto.TrackEventRequest{
		Type:      "cta_click",
		Referrer:  "https://www.example.de/start?variant=concierge",
		UTMSource: "newsletter",
	}, RequestMeta{
		Referrer: "https://www.example.de/wieder-lebendig?utm_source=google",
	})

	event := (*published)[0]
	assert.Equal(t, "/start", event.CampaignSource)
	assert.Equal(t, "concierge", event.CampaignVariant)
	assert.Equal(t, "newsletter", event.UTMSource)
}

func TestEventService_Track_NoReferrerFallsBackToDefaultSource(t *testing.T) {
	publisher := new(MockEventPublisher)
	repo := new(MockEventRepository)
	published := capturePublished(publisher)

	service := NewEventService(publisher, repo, testHosts, zap.NewNop())

	service.Track(context.Background(), &dto.TrackEventRequest{Type: "page_view"}, RequestMeta{})

	event := (*published)[0]
	assert.Equal(t, domain.DefaultLandingPage, event.CampaignSource)
	assert.Equal(t, domain.DefaultLandingPage, event.LandingPage)
}

func TestEventService_Track_SelfQueryVariantFallback(t *testing.T) {
	publisher := new(MockEventPublisher)
	repo := new(MockEventRepository)
	published := capturePublished(publisher)

	service := NewEventService(publisher, repo, testHosts, zap.NewNop())

	service.Track(context.Background(), &dto.TrackEventRequest{Type: "page_view"}, RequestMeta{
		Referrer:  "https://www.example.de/start",
		SelfQuery: url.Values{"v": []string{"ready-now"}},
	})

	event := (*published)[0]
	assert.Equal(t, "ready-now", event.CampaignVariant)
}

func TestEventService_Track_TestHostTagged(t *testing.T) {
	publisher := new(MockEventPublisher)
	repo := new(MockEventRepository)
	published := capturePublished(publisher)

	service := NewEventService(publisher, repo, testHosts, zap.NewNop())

	service.Track(context.Background(), &dto.TrackEventRequest{Type: "page_view"}, RequestMeta{
		Host: "localhost:3000",
	})

	assert.True(t, (*published)[0].IsTest)
}

func TestEventService_Track_TestEmailTagged(t *testing.T) {
	publisher := new(MockEventPublisher)
	repo := new(MockEventRepository)
	published := capturePublished(publisher)

	service := NewEventService(publisher, repo, testHosts, zap.NewNop())

	service.Track(context.Background(), &dto.TrackEventRequest{
		Type:       "form_submit",
		Properties: map[string]interface{}{"email": "anna+test@web.de"},
	}, RequestMeta{Host: "www.wieder-lebendig.de"})

	assert.True(t, (*published)[0].IsTest)
}

func TestEventService_Track_PublishFailureIsSwallowed(t *testing.T) {
	publisher := new(MockEventPublisher)
	repo := new(MockEventRepository)

	publisher.On("PublishEvent", mock.Anything, mock.Anything).
		Return(errors.New("queue unavailable"))

	service := NewEventService(publisher, repo, testHosts, zap.NewNop())

	// Must not panic and has no error to return: tracking is fire-and-forget.
	service.Track(context.Background(), &dto.TrackEventRequest{Type: "page_view"}, RequestMeta{})

	publisher.AssertExpectations(t)
}

func TestEventService_Emit_CarriesSnapshot(t *testing.T) {
	publisher := new(MockEventPublisher)
	repo := new(MockEventRepository)
	published := capturePublished(publisher)

	service := NewEventService(publisher, repo, testHosts, zap.NewNop())

	snap := domain.AttributionSnapshot{
		CampaignSource:  "/start",
		CampaignVariant: "concierge",
		LandingPage:     "/start",
	}
	service.Emit(context.Background(), "lead_submitted", snap, "sess-1", map[string]interface{}{"lead_id": "abc"})

	event := (*published)[0]
	assert.Equal(t, "lead_submitted", event.EventType)
	assert.Equal(t, "/start", event.CampaignSource)
	assert.Equal(t, "concierge", event.CampaignVariant)
	assert.Equal(t, "sess-1", event.SessionID)
	assert.Contains(t, event.Properties, "lead_id")
}

func TestEventService_GetMetrics_InvalidRange(t *testing.T) {
	publisher := new(MockEventPublisher)
	repo := new(MockEventRepository)

	service := NewEventService(publisher, repo, testHosts, zap.NewNop())

	_, err := service.GetMetrics(context.Background(), &dto.GetMetricsRequest{
		EventType: "page_view",
		From:      200,
		To:        100,
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "GetMetrics")
}

func TestEventService_GetMetrics_InvalidGroupBy(t *testing.T) {
	publisher := new(MockEventPublisher)
	repo := new(MockEventRepository)

	service := NewEventService(publisher, repo, testHosts, zap.NewNop())

	_, err := service.GetMetrics(context.Background(), &dto.GetMetricsRequest{
		EventType: "page_view",
		From:      100,
		To:        200,
		GroupBy:   "channel",
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "GetMetrics")
}

func TestEventService_GetMetrics_Success(t *testing.T) {
	publisher := new(MockEventPublisher)
	repo := new(MockEventRepository)

	repo.On("GetMetrics", mock.Anything, repository.MetricsQuery{
		EventType: "page_view",
		From:      100,
		To:        200,
		GroupBy:   "campaign_source",
	}).Return(&repository.MetricsResult{
		TotalCount:  10,
		UniqueCount: 7,
		Groups: []repository.MetricsGroupResult{
			{GroupValue: "/start", TotalCount: 6},
			{GroupValue: "/wieder-lebendig", TotalCount: 4},
		},
	}, nil)

	service := NewEventService(publisher, repo, testHosts, zap.NewNop())

	resp, err := service.GetMetrics(context.Background(), &dto.GetMetricsRequest{
		EventType: "page_view",
		From:      100,
		To:        200,
		GroupBy:   "campaign_source",
	})

	assert.NoError(t, err)
	assert.Equal(t, uint64(10), resp.TotalCount)
	assert.Equal(t, uint64(7), resp.UniqueCount)
	assert.Len(t, resp.Groups, 2)
	repo.AssertExpectations(t)
}

package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
	"github.com/wiederlebendig/lead-attribution-service/internal/dto"
)

// MockLeadRepository is a mock implementation of repository.LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindNurturable(ctx context.Context, cutoff time.Time, limit int) ([]domain.Lead, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) MarkNurtured(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockEventServicer is a mock implementation of EventServicer
type MockEventServicer struct {
	mock.Mock
}

func (m *MockEventServicer) Track(ctx context.Context, req *dto.TrackEventRequest, meta RequestMeta) {
	m.Called(ctx, req, meta)
}

func (m *MockEventServicer) Emit(ctx context.Context, eventType string, snap domain.AttributionSnapshot, sessionID string, properties map[string]interface{}) {
	m.Called(ctx, eventType, snap, sessionID, properties)
}

func (m *MockEventServicer) GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GetMetricsResponse), args.Error(1)
}

func validLeadRequest() *dto.CreateLeadRequest {
	return &dto.CreateLeadRequest{
		Type:         domain.LeadTypePatient,
		Name:         "Anna",
		Email:        "anna@web.de",
		ConsentGiven: true,
	}
}

func TestLeadService_Create_ReferrerAttribution(t *testing.T) {
	leads := new(MockLeadRepository)
	events := new(MockEventServicer)

	var created *domain.Lead
	leads.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Lead) }).
		Return(nil)
	events.On("Emit", mock.Anything, "lead_submitted", mock.Anything, mock.Anything, mock.Anything).Return()

	service := NewLeadService(leads, events, testHosts, zap.NewNop())

	resp, err := service.Create(context.Background(), validLeadRequest(), RequestMeta{
		Referrer: "https://www.example.de/wieder-lebendig",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.True(t, resp.RequiresConfirmation)
	assert.Equal(t, "/wieder-lebendig", created.CampaignSource)
	assert.Equal(t, "/wieder-lebendig", created.LandingPage)
	assert.Empty(t, created.CampaignVariant)
	assert.Equal(t, domain.LeadStatusNew, created.Status)
	leads.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestLeadService_Create_VariantFallsBackToServingURL(t *testing.T) {
	leads := new(MockLeadRepository)
	events := new(MockEventServicer)

	var created *domain.Lead
	leads.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Lead) }).
		Return(nil)
	events.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	service := NewLeadService(leads, events, testHosts, zap.NewNop())

	// Referrer without a variant, serving URL carries ?v=A. The fallback
	// value is persisted verbatim.
	_, err := service.Create(context.Background(), validLeadRequest(), RequestMeta{
		Referrer:  "https://www.example.de/wieder-lebendig",
		SelfQuery: url.Values{"v": []string{"A"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, "A", created.CampaignVariant)
}

func TestLeadService_Create_ReferrerVariantBeatsServingURL(t *testing.T) {
	leads := new(MockLeadRepository)
	events := new(MockEventServicer)

	var created *domain.Lead
	leads.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Lead) }).
		Return(nil)
	events.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	service := NewLeadService(leads, events, testHosts, zap.NewNop())

	_, err := service.Create(context.Background(), validLeadRequest(), RequestMeta{
		Referrer:  "https://www.example.de/start?variant=concierge",
		SelfQuery: url.Values{"v": []string{"A"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, "concierge", created.CampaignVariant)
}

func TestLeadService_Create_NoAttributionDefaults(t *testing.T) {
	leads := new(MockLeadRepository)
	events := new(MockEventServicer)

	var created *domain.Lead
	leads.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Lead) }).
		Return(nil)
	events.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	service := NewLeadService(leads, events, testHosts, zap.NewNop())

	_, err := service.Create(context.Background(), validLeadRequest(), RequestMeta{})

	assert.NoError(t, err)
	assert.Equal(t, domain.DefaultLandingPage, created.CampaignSource)
	assert.Equal(t, domain.DefaultLandingPage, created.LandingPage)
	assert.Empty(t, created.CampaignVariant)
}

func TestLeadService_Create_SourceFallsBackToServingURL(t *testing.T) {
	leads := new(MockLeadRepository)
	events := new(MockEventServicer)

	var created *domain.Lead
	leads.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Lead) }).
		Return(nil)
	events.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	service := NewLeadService(leads, events, testHosts, zap.NewNop())

	_, err := service.Create(context.Background(), validLeadRequest(), RequestMeta{
		SelfQuery: url.Values{"source": []string{"/selbsttest"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, "/selbsttest", created.CampaignSource)
	assert.Equal(t, "/selbsttest", created.LandingPage)
}

func TestLeadService_Create_TherapistNeedsNoConfirmation(t *testing.T) {
	leads := new(MockLeadRepository)
	events := new(MockEventServicer)

	leads.On("Create", mock.Anything, mock.Anything).Return(nil)
	events.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	service := NewLeadService(leads, events, testHosts, zap.NewNop())

	req := validLeadRequest()
	req.Type = domain.LeadTypeTherapist
	resp, err := service.Create(context.Background(), req, RequestMeta{})

	assert.NoError(t, err)
	assert.False(t, resp.RequiresConfirmation)
}

func TestLeadService_Create_RepositoryError(t *testing.T) {
	leads := new(MockLeadRepository)
	events := new(MockEventServicer)

	leads.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	service := NewLeadService(leads, events, testHosts, zap.NewNop())

	resp, err := service.Create(context.Background(), validLeadRequest(), RequestMeta{})

	assert.Error(t, err)
	assert.Nil(t, resp)
	// No event for a lead that was never persisted.
	events.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadService_Create_TestEmailTagged(t *testing.T) {
	leads := new(MockLeadRepository)
	events := new(MockEventServicer)

	var created *domain.Lead
	leads.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Lead) }).
		Return(nil)
	events.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	service := NewLeadService(leads, events, testHosts, zap.NewNop())

	req := validLeadRequest()
	req.Email = "anna+test@web.de"
	_, err := service.Create(context.Background(), req, RequestMeta{
		Host: "www.wieder-lebendig.de",
	})

	assert.NoError(t, err)
	assert.True(t, created.IsTest)
}

func TestLeadService_Create_TestHostTagged(t *testing.T) {
	leads := new(MockLeadRepository)
	events := new(MockEventServicer)

	var created *domain.Lead
	leads.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Lead) }).
		Return(nil)
	events.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	service := NewLeadService(leads, events, testHosts, zap.NewNop())

	_, err := service.Create(context.Background(), validLeadRequest(), RequestMeta{
		Host: "localhost:8080",
	})

	assert.NoError(t, err)
	assert.True(t, created.IsTest)
}

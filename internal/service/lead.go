package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/wiederlebendig/lead-attribution-service/internal/attribution"
	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
	"github.com/wiederlebendig/lead-attribution-service/internal/dto"
	"github.com/wiederlebendig/lead-attribution-service/internal/repository"
)

// LeadService persists intake form submissions with resolved attribution.
type LeadService struct {
	leads     repository.LeadRepository
	events    EventServicer
	testHosts []string
	log       *zap.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(leads repository.LeadRepository, events EventServicer, testHosts []string, log *zap.Logger) *LeadService {
	return &LeadService{
		leads:     leads,
		events:    events,
		testHosts: testHosts,
		log:       log,
	}
}

// Create persists a lead with resolved attribution and emits a best-effort
// lead_submitted event carrying the same campaign fields.
//
// Unlike event tracking, the referrer wins here: campaign_source falls back
// to the serving URL's source parameter, then to the default landing page;
// campaign_variant falls back to the serving URL's v parameter, taken
// verbatim, else stays unset. landing_page always equals campaign_source.
func (s *LeadService) Create(ctx context.Context, req *dto.CreateLeadRequest, meta RequestMeta) (*dto.CreateLeadResponse, error) {
	snap := attribution.ParseReferrer(meta.Referrer)

	if snap.CampaignSource == "" {
		if source := meta.SelfQuery.Get("source"); domain.KnownLandingPages[source] {
			snap.CampaignSource = source
		} else {
			snap.CampaignSource = domain.DefaultLandingPage
		}
	}
	if snap.CampaignVariant == "" {
		snap.CampaignVariant = meta.SelfQuery.Get("v")
	}
	snap.LandingPage = snap.CampaignSource

	lead := &domain.Lead{
		ID:              uuid.NewString(),
		Type:            req.Type,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Message:         req.Message,
		ConsentGiven:    req.ConsentGiven,
		CampaignSource:  snap.CampaignSource,
		CampaignVariant: snap.CampaignVariant,
		LandingPage:     snap.LandingPage,
		Status:          domain.LeadStatusNew,
		IsTest:          isTestTraffic(meta.Host, req.Email, s.testHosts),
		Metadata:        datatypes.JSONMap(req.Metadata),
	}

	// Duplicate submissions create duplicate leads; dedup by email/phone
	// uniqueness belongs to the matching workflow, not here.
	if err := s.leads.Create(ctx, lead); err != nil {
		s.log.Error("Failed to persist lead",
			zap.String("type", req.Type),
			zap.String("campaign_source", snap.CampaignSource),
			zap.Error(err))
		return nil, fmt.Errorf("failed to persist lead: %w", err)
	}

	s.log.Info("Lead created",
		zap.String("lead_id", lead.ID),
		zap.String("type", lead.Type),
		zap.String("campaign_source", lead.CampaignSource),
		zap.String("campaign_variant", lead.CampaignVariant))

	s.events.Emit(ctx, "lead_submitted", snap, req.SessionID, map[string]interface{}{
		"lead_id":   lead.ID,
		"lead_type": lead.Type,
		"email":     lead.Email,
	})

	return &dto.CreateLeadResponse{
		ID:                   lead.ID,
		RequiresConfirmation: req.Type == domain.LeadTypePatient,
	}, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wiederlebendig/lead-attribution-service/internal/dto"
	"github.com/wiederlebendig/lead-attribution-service/internal/mailer"
	"github.com/wiederlebendig/lead-attribution-service/internal/repository"
)

const (
	nurtureAfter     = 24 * time.Hour
	nurtureBatchSize = 100
	nurtureSubject   = "Dein nächster Schritt zur Therapie"
)

// NurtureService sends a follow-up email to patient leads that stalled after
// submitting the intake form.
type NurtureService struct {
	leads  repository.LeadRepository
	sender mailer.Sender
	now    func() time.Time
	log    *zap.Logger
}

// NewNurtureService creates a new nurture service
func NewNurtureService(leads repository.LeadRepository, sender mailer.Sender, log *zap.Logger) *NurtureService {
	return &NurtureService{
		leads:  leads,
		sender: sender,
		now:    time.Now,
		log:    log,
	}
}

// Run sends follow-ups sequentially to spread load on the email provider.
// A failed send marks that lead failed and continues; the run reports
// partial success rather than aborting.
func (s *NurtureService) Run(ctx context.Context) (*dto.NurtureResponse, error) {
	cutoff := s.now().Add(-nurtureAfter)

	leads, err := s.leads.FindNurturable(ctx, cutoff, nurtureBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load nurturable leads: %w", err)
	}

	resp := &dto.NurtureResponse{}
	for _, lead := range leads {
		body := fmt.Sprintf(
			"Hallo %s,\n\nvor Kurzem hast du dich bei uns gemeldet. "+
				"Wenn du weiterhin Unterstützung suchst, antworte einfach auf diese E-Mail "+
				"oder vereinbare direkt einen Termin.\n\nDein Wieder-Lebendig-Team",
			lead.Name)

		if err := s.sender.Send(lead.Email, nurtureSubject, body); err != nil {
			s.log.Warn("Nurture send failed",
				zap.String("lead_id", lead.ID),
				zap.Error(err))
			resp.Failed++
			continue
		}

		if err := s.leads.MarkNurtured(ctx, lead.ID, s.now()); err != nil {
			s.log.Error("Failed to mark lead nurtured",
				zap.String("lead_id", lead.ID),
				zap.Error(err))
			resp.Failed++
			continue
		}

		resp.Sent++
	}

	s.log.Info("Nurture run completed",
		zap.Int("sent", resp.Sent),
		zap.Int("failed", resp.Failed))

	return resp, nil
}

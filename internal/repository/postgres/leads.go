package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
)

// LeadRepository implements repository.LeadRepository on Postgres
type LeadRepository struct {
	client *Client
	log    *zap.Logger
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(client *Client, log *zap.Logger) *LeadRepository {
	return &LeadRepository{client: client, log: log}
}

// Create persists a new lead
func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	if err := r.client.DB().WithContext(ctx).Create(lead).Error; err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// FindNurturable returns non-test patient leads still in status new, created
// before the cutoff and never nurtured, oldest first
func (r *LeadRepository) FindNurturable(ctx context.Context, cutoff time.Time, limit int) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.client.DB().WithContext(ctx).
		Where("type = ?", domain.LeadTypePatient).
		Where("status = ?", domain.LeadStatusNew).
		Where("is_test = false").
		Where("nurture_sent_at IS NULL").
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&leads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query nurturable leads: %w", err)
	}
	return leads, nil
}

// MarkNurtured stamps the nurture send time on a lead
func (r *LeadRepository) MarkNurtured(ctx context.Context, id string, at time.Time) error {
	err := r.client.DB().WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ?", id).
		Update("nurture_sent_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark lead nurtured: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
)

// SpendRepository implements repository.SpendRepository on Postgres
type SpendRepository struct {
	client *Client
	log    *zap.Logger
}

// NewSpendRepository creates a new spend repository
func NewSpendRepository(client *Client, log *zap.Logger) *SpendRepository {
	return &SpendRepository{client: client, log: log}
}

// Upsert writes spend rows keyed by (date, source, campaign_name). Re-running
// a sync window overwrites the earlier pull instead of duplicating rows.
func (r *SpendRepository) Upsert(ctx context.Context, rows []domain.SpendRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	err := r.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}, {Name: "source"}, {Name: "campaign_name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"spend", "clicks", "impressions", "conversions", "updated_at",
			}),
		}).
		Create(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("failed to upsert spend rows: %w", err)
	}

	return len(rows), nil
}

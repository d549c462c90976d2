package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/wiederlebendig/lead-attribution-service/internal/ads"
	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
	"github.com/wiederlebendig/lead-attribution-service/internal/dto"
	"github.com/wiederlebendig/lead-attribution-service/internal/repository"
)

// SpendSyncService pulls campaign performance from the ad platform and
// upserts it into the spend ledger.
type SpendSyncService struct {
	reporter ads.Reporter
	spend    repository.SpendRepository
	now      func() time.Time
	log      *zap.Logger
}

// NewSpendSyncService creates a new spend sync service
func NewSpendSyncService(reporter ads.Reporter, spend repository.SpendRepository, log *zap.Logger) *SpendSyncService {
	return &SpendSyncService{
		reporter: reporter,
		spend:    spend,
		now:      time.Now,
		log:      log,
	}
}

// Sync reconciles the spend ledger for a lookback window ending yesterday.
// days <= 0 defaults to 1. Re-running the same window overwrites earlier
// pulls; it never double counts.
func (s *SpendSyncService) Sync(ctx context.Context, days int) (*dto.SyncSpendResponse, error) {
	if days <= 0 {
		days = 1
	}

	yesterday := s.now().AddDate(0, 0, -1)
	from := yesterday.AddDate(0, 0, -(days - 1)).Format("2006-01-02")
	to := yesterday.Format("2006-01-02")
	dateRange := fmt.Sprintf("%s to %s", from, to)

	stats, err := s.reporter.FetchCampaignStats(ctx, from, to)
	if err != nil {
		s.log.Error("Ad platform query failed",
			zap.String("date_range", dateRange),
			zap.Error(err))
		return nil, fmt.Errorf("ad platform query failed: %w", err)
	}

	rows := make([]domain.SpendRow, 0, len(stats))
	totalSpend := 0.0
	for _, stat := range stats {
		spend := ads.MicrosToCurrency(stat.CostMicros)
		if spend == 0 {
			continue
		}
		rows = append(rows, domain.SpendRow{
			Date:         stat.Date,
			Source:       domain.SpendSourceGoogleAds,
			CampaignName: stat.CampaignName,
			Spend:        spend,
			Clicks:       stat.Clicks,
			Impressions:  stat.Impressions,
			Conversions:  stat.Conversions,
		})
		totalSpend += spend
	}

	if len(rows) == 0 {
		s.log.Info("No spend data for window", zap.String("date_range", dateRange))
		return &dto.SyncSpendResponse{
			Synced:    0,
			DateRange: dateRange,
			Message:   "no spend data for this window",
		}, nil
	}

	synced, err := s.spend.Upsert(ctx, rows)
	if err != nil {
		s.log.Error("Failed to upsert spend rows",
			zap.Int("rows", len(rows)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to upsert spend rows: %w", err)
	}

	s.log.Info("Spend sync completed",
		zap.Int("synced", synced),
		zap.Float64("total_spend", totalSpend),
		zap.String("date_range", dateRange))

	return &dto.SyncSpendResponse{
		Synced:     synced,
		TotalSpend: math.Round(totalSpend*100) / 100,
		DateRange:  dateRange,
	}, nil
}

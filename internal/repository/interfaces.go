package repository

import (
	"context"
	"time"

	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
)

// MetricsQuery represents a campaign metrics query
type MetricsQuery struct {
	EventType string
	From      int64
	To        int64
	GroupBy   string
}

// MetricsGroupResult represents aggregated metrics for a specific group
type MetricsGroupResult struct {
	GroupValue string
	TotalCount uint64
}

// MetricsResult represents the result of a metrics query
type MetricsResult struct {
	TotalCount  uint64
	UniqueCount uint64
	Groups      []MetricsGroupResult
}

// EventRepository defines the interface for event storage operations
type EventRepository interface {
	// InsertBatch inserts a batch of events into the storage
	InsertBatch(ctx context.Context, events []*domain.Event) (int, error)

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error

	// GetMetrics retrieves aggregated metrics based on the query
	GetMetrics(ctx context.Context, query MetricsQuery) (*MetricsResult, error)
}

// LeadRepository defines the interface for lead storage operations
type LeadRepository interface {
	// Create persists a new lead
	Create(ctx context.Context, lead *domain.Lead) error

	// FindNurturable returns non-test patient leads still in status new,
	// created before the cutoff and never nurtured, oldest first
	FindNurturable(ctx context.Context, cutoff time.Time, limit int) ([]domain.Lead, error)

	// MarkNurtured stamps the nurture send time on a lead
	MarkNurtured(ctx context.Context, id string, at time.Time) error
}

// SpendRepository defines the interface for the ad spend ledger
type SpendRepository interface {
	// Upsert writes spend rows keyed by (date, source, campaign_name),
	// overwriting rows from earlier pulls of the same window
	Upsert(ctx context.Context, rows []domain.SpendRow) (int, error)
}

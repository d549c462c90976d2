package service

import (
	"context"
	"net/url"

	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
	"github.com/wiederlebendig/lead-attribution-service/internal/dto"
)

// RequestMeta carries the server-derived context of an inbound request:
// everything attribution needs that the client did not send in the body.
type RequestMeta struct {
	Referrer  string
	SelfQuery url.Values
	ClientIP  string
	UserAgent string
	Host      string
}

// EventServicer defines the interface for event tracking operations
type EventServicer interface {
	// Track ingests a client-submitted event. Persistence is fire-and-forget:
	// Track never fails once the request has been validated.
	Track(ctx context.Context, req *dto.TrackEventRequest, meta RequestMeta)

	// Emit records a server-originated event with the given attribution,
	// best effort.
	Emit(ctx context.Context, eventType string, snap domain.AttributionSnapshot, sessionID string, properties map[string]interface{})

	// GetMetrics retrieves aggregated campaign metrics
	GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error)
}

// LeadServicer defines the interface for lead submission operations
type LeadServicer interface {
	Create(ctx context.Context, req *dto.CreateLeadRequest, meta RequestMeta) (*dto.CreateLeadResponse, error)
}

// SpendSyncer defines the interface for the ad spend reconciliation job
type SpendSyncer interface {
	Sync(ctx context.Context, days int) (*dto.SyncSpendResponse, error)
}

// Nurturer defines the interface for the lead nurture job
type Nurturer interface {
	Run(ctx context.Context) (*dto.NurtureResponse, error)
}

// CronServicer defines the interface for composite cron runs
type CronServicer interface {
	RunDaily(ctx context.Context) *dto.CronResponse
}

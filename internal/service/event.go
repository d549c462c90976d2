package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wiederlebendig/lead-attribution-service/internal/attribution"
	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
	"github.com/wiederlebendig/lead-attribution-service/internal/dto"
	"github.com/wiederlebendig/lead-attribution-service/internal/queue"
	"github.com/wiederlebendig/lead-attribution-service/internal/repository"
)

// Event sources.
const (
	sourceWeb    = "web"
	sourceServer = "server"
)

// EventService normalizes tracked interactions and hands them to the queue.
// Publishing is best effort: a queue failure is logged and swallowed so
// tracking never degrades the user-facing flow.
type EventService struct {
	publisher  queue.EventPublisher
	repository repository.EventRepository
	testHosts  []string
	log        *zap.Logger
}

// NewEventService creates a new event service. testHosts lists the local and
// staging hostnames whose traffic is tagged is_test.
func NewEventService(publisher queue.EventPublisher, repo repository.EventRepository, testHosts []string, log *zap.Logger) *EventService {
	return &EventService{
		publisher:  publisher,
		repository: repo,
		testHosts:  testHosts,
		log:        log,
	}
}

// computeEventID generates a deterministic event ID based on event content
// Uses SHA-256 hash of: session_id|event_type|created_at|campaign_source|campaign_variant
func computeEventID(event *domain.Event) string {
	data := fmt.Sprintf("%s|%s|%d|%s|%s",
		event.SessionID,
		event.EventType,
		event.CreatedAt,
		event.CampaignSource,
		event.CampaignVariant,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// hashIP hashes a client address before it is attached to an event.
func hashIP(ip string) string {
	if ip == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:])
}

// Track ingests a client-submitted event. The server-side attribution parse
// fills the gaps; client-supplied referrer and UTM values take precedence
// over it since the browser has same-page context the Referer header lacks.
func (s *EventService) Track(ctx context.Context, req *dto.TrackEventRequest, meta RequestMeta) {
	referrer := meta.Referrer
	if req.Referrer != "" {
		referrer = req.Referrer
	}

	snap := attribution.Snapshot(referrer, meta.SelfQuery)
	if req.UTMSource != "" {
		snap.UTMSource = req.UTMSource
	}
	if req.UTMMedium != "" {
		snap.UTMMedium = req.UTMMedium
	}
	if req.UTMCampaign != "" {
		snap.UTMCampaign = req.UTMCampaign
	}
	if snap.CampaignSource == "" {
		snap.CampaignSource = domain.DefaultLandingPage
	}
	snap.LandingPage = snap.CampaignSource

	properties := make(map[string]interface{}, len(req.Properties)+2)
	for k, v := range req.Properties {
		properties[k] = v
	}
	if req.ID != "" {
		properties["id"] = req.ID
	}
	if req.Title != "" {
		properties["title"] = req.Title
	}

	event := s.buildEvent(req.Type, snap, req.SessionID, properties)
	event.Source = sourceWeb
	event.IPHash = hashIP(meta.ClientIP)
	event.UserAgent = meta.UserAgent
	event.IsTest = s.isTest(meta.Host, properties)

	s.publish(ctx, event)
}

// Emit records a server-originated event, best effort.
func (s *EventService) Emit(ctx context.Context, eventType string, snap domain.AttributionSnapshot, sessionID string, properties map[string]interface{}) {
	event := s.buildEvent(eventType, snap, sessionID, properties)
	event.Source = sourceServer

	s.publish(ctx, event)
}

func (s *EventService) buildEvent(eventType string, snap domain.AttributionSnapshot, sessionID string, properties map[string]interface{}) *domain.Event {
	propertiesJSON := "{}"
	if len(properties) > 0 {
		if data, err := json.Marshal(properties); err == nil {
			propertiesJSON = string(data)
		} else {
			s.log.Warn("Failed to marshal event properties",
				zap.String("event_type", eventType),
				zap.Error(err))
		}
	}

	event := &domain.Event{
		EventType:       eventType,
		Level:           domain.LevelInfo,
		SessionID:       sessionID,
		Referrer:        snap.Referrer,
		UTMSource:       snap.UTMSource,
		UTMMedium:       snap.UTMMedium,
		UTMCampaign:     snap.UTMCampaign,
		CampaignSource:  snap.CampaignSource,
		CampaignVariant: snap.CampaignVariant,
		LandingPage:     snap.LandingPage,
		Properties:      propertiesJSON,
		CreatedAt:       time.Now().Unix(),
	}

	if event.CampaignSource == "" {
		event.CampaignSource = domain.DefaultLandingPage
		event.LandingPage = domain.DefaultLandingPage
	}

	event.EventID = computeEventID(event)
	return event
}

// publish is fire-and-forget: failures are logged, never returned.
func (s *EventService) publish(ctx context.Context, event *domain.Event) {
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.log.Error("Failed to publish event, dropping",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
			zap.Error(err))
	}
}

// isTest tags traffic from recognized local/staging hosts or test-pattern
// email addresses so reporting can exclude it.
func (s *EventService) isTest(host string, properties map[string]interface{}) bool {
	email, _ := properties["email"].(string)
	return isTestTraffic(host, email, s.testHosts)
}

// isTestTraffic is the shared test-mode check for events and leads.
func isTestTraffic(host, email string, testHosts []string) bool {
	hostname := host
	if idx := strings.IndexByte(hostname, ':'); idx >= 0 {
		hostname = hostname[:idx]
	}
	for _, testHost := range testHosts {
		if hostname == testHost {
			return true
		}
	}

	if email != "" {
		email = strings.ToLower(email)
		if strings.Contains(email, "+test@") || strings.HasSuffix(email, "@example.com") {
			return true
		}
	}

	return false
}

// GetMetrics retrieves aggregated campaign metrics from the repository
func (s *EventService) GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error) {
	if req.From > req.To {
		s.log.Warn("Invalid time range for metrics",
			zap.Int64("from", req.From),
			zap.Int64("to", req.To),
			zap.String("event_type", req.EventType))
		return nil, fmt.Errorf("from timestamp must be less than or equal to to timestamp")
	}

	if req.GroupBy != "" {
		validGroupBy := map[string]bool{"campaign_source": true, "variant": true, "day": true}
		if !validGroupBy[req.GroupBy] {
			s.log.Warn("Invalid group_by value",
				zap.String("group_by", req.GroupBy))
			return nil, fmt.Errorf("invalid group_by value: %s (supported: campaign_source, variant, day)", req.GroupBy)
		}
	}

	query := repository.MetricsQuery{
		EventType: req.EventType,
		From:      req.From,
		To:        req.To,
		GroupBy:   req.GroupBy,
	}

	s.log.Info("Querying metrics",
		zap.String("event_type", req.EventType),
		zap.Int64("from", req.From),
		zap.Int64("to", req.To),
		zap.String("group_by", req.GroupBy))

	result, err := s.repository.GetMetrics(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics from repository: %w", err)
	}

	response := &dto.GetMetricsResponse{
		EventType:   req.EventType,
		From:        req.From,
		To:          req.To,
		TotalCount:  result.TotalCount,
		UniqueCount: result.UniqueCount,
		GroupBy:     req.GroupBy,
		Groups:      make([]dto.MetricsGroupData, 0, len(result.Groups)),
	}

	for _, group := range result.Groups {
		response.Groups = append(response.Groups, dto.MetricsGroupData{
			GroupValue: group.GroupValue,
			TotalCount: group.TotalCount,
		})
	}

	return response, nil
}

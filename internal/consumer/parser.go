package consumer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
)

// JSONEventParser implements MessageParser for JSON-formatted event messages
type JSONEventParser struct{}

// NewJSONEventParser creates a new JSON event parser
func NewJSONEventParser() *JSONEventParser {
	return &JSONEventParser{}
}

// Parse parses a JSON message body into an Event
func (p *JSONEventParser) Parse(body []byte) (*domain.Event, error) {
	var msgBody map[string]interface{}
	if err := json.Unmarshal(body, &msgBody); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	properties := getStringField(msgBody, "properties")
	if properties == "" {
		properties = "{}"
	}

	level := getStringField(msgBody, "level")
	if level == "" {
		level = domain.LevelInfo
	}

	event := &domain.Event{
		EventID:         getStringField(msgBody, "event_id"),
		EventType:       getStringField(msgBody, "event_type"),
		Level:           level,
		Source:          getStringField(msgBody, "source"),
		SessionID:       getStringField(msgBody, "session_id"),
		Referrer:        getStringField(msgBody, "referrer"),
		UTMSource:       getStringField(msgBody, "utm_source"),
		UTMMedium:       getStringField(msgBody, "utm_medium"),
		UTMCampaign:     getStringField(msgBody, "utm_campaign"),
		CampaignSource:  getStringField(msgBody, "campaign_source"),
		CampaignVariant: getStringField(msgBody, "campaign_variant"),
		LandingPage:     getStringField(msgBody, "landing_page"),
		IPHash:          getStringField(msgBody, "ip_hash"),
		UserAgent:       getStringField(msgBody, "user_agent"),
		IsTest:          getBoolField(msgBody, "is_test"),
		Properties:      properties,
		CreatedAt:       getInt64Field(msgBody, "created_at"),
		ProcessedAt:     time.Now(),
		Version:         uint64(time.Now().UnixNano()),
	}

	return event, nil
}

// Helper functions for extracting fields from parsed JSON
func getStringField(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

func getInt64Field(m map[string]interface{}, key string) int64 {
	if val, ok := m[key].(float64); ok {
		return int64(val)
	}
	return 0
}

func getBoolField(m map[string]interface{}, key string) bool {
	if val, ok := m[key].(bool); ok {
		return val
	}
	return false
}

package domain

import "time"

// Event levels accepted by the ingestion endpoint.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Event represents a tracked interaction stored in ClickHouse
type Event struct {
	EventID         string    `ch:"event_id"`
	EventType       string    `ch:"event_type"`
	Level           string    `ch:"level"`
	Source          string    `ch:"source"`
	SessionID       string    `ch:"session_id"`
	Referrer        string    `ch:"referrer"`
	UTMSource       string    `ch:"utm_source"`
	UTMMedium       string    `ch:"utm_medium"`
	UTMCampaign     string    `ch:"utm_campaign"`
	CampaignSource  string    `ch:"campaign_source"`
	CampaignVariant string    `ch:"campaign_variant"`
	LandingPage     string    `ch:"landing_page"`
	IPHash          string    `ch:"ip_hash"`
	UserAgent       string    `ch:"user_agent"`
	IsTest          bool      `ch:"is_test"`
	Properties      string    `ch:"properties"`
	CreatedAt       int64     `ch:"created_at"`
	ProcessedAt     time.Time `ch:"processed_at"`
	Version         uint64    `ch:"version"`
}

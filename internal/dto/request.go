package dto

// TrackEventRequest represents a public event ingestion request. Client
// supplied attribution fields take precedence over the server-side parse:
// the browser knows the same-page context better than the Referer header.
type TrackEventRequest struct {
	Type        string                 `json:"type" binding:"required"`
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	SessionID   string                 `json:"session_id"`
	Referrer    string                 `json:"referrer"`
	UTMSource   string                 `json:"utm_source"`
	UTMMedium   string                 `json:"utm_medium"`
	UTMCampaign string                 `json:"utm_campaign"`
	Properties  map[string]interface{} `json:"properties"`
}

// CreateLeadRequest represents an intake form submission
type CreateLeadRequest struct {
	Type         string                 `json:"type" binding:"required,oneof=patient therapist"`
	Name         string                 `json:"name" binding:"required"`
	Email        string                 `json:"email" binding:"required,email"`
	Phone        string                 `json:"phone"`
	Message      string                 `json:"message"`
	ConsentGiven bool                   `json:"consent_given"`
	SessionID    string                 `json:"session_id"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// GetMetricsRequest represents a campaign metrics query
type GetMetricsRequest struct {
	EventType string `form:"event_type" binding:"required"`
	From      int64  `form:"from" binding:"required"`
	To        int64  `form:"to" binding:"required"`
	GroupBy   string `form:"group_by"`
}

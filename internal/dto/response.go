package dto

// Envelope is the uniform response shape: exactly one of Data and Error is
// set. Telemetry failures never reach this envelope; primary flows surface
// them as Error with Data null.
type Envelope struct {
	Data  interface{} `json:"data"`
	Error *string     `json:"error"`
}

// OK wraps a payload in a success envelope.
func OK(data interface{}) Envelope {
	return Envelope{Data: data}
}

// Err wraps a message in a failure envelope.
func Err(message string) Envelope {
	return Envelope{Error: &message}
}

// TrackEventResponse acknowledges an ingested event. Receipt of the request,
// not durability: persistence is fire-and-forget.
type TrackEventResponse struct {
	Received bool `json:"received"`
}

// CreateLeadResponse represents a persisted lead
type CreateLeadResponse struct {
	ID                   string `json:"id"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
}

// VariantResponse reports the resolved flow variant for this browser
type VariantResponse struct {
	Variant  string `json:"variant"`
	Assigned bool   `json:"assigned"`
}

// SyncSpendResponse summarizes one ad spend sync run
type SyncSpendResponse struct {
	Synced     int     `json:"synced"`
	TotalSpend float64 `json:"totalSpend"`
	DateRange  string  `json:"dateRange"`
	Message    string  `json:"message,omitempty"`
}

// NurtureResponse summarizes one nurture run
type NurtureResponse struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// CronJobResult is the outcome of a single cron sub-job
type CronJobResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CronResponse aggregates a composite cron run
type CronResponse struct {
	Success bool                     `json:"success"`
	Results map[string]CronJobResult `json:"results"`
}

// MetricsGroupData represents aggregated metrics for a specific group
type MetricsGroupData struct {
	GroupValue string `json:"group_value"`
	TotalCount uint64 `json:"total_count"`
}

// GetMetricsResponse represents the campaign metrics query response
type GetMetricsResponse struct {
	EventType   string             `json:"event_type"`
	From        int64              `json:"from"`
	To          int64              `json:"to"`
	TotalCount  uint64             `json:"total_count"`
	UniqueCount uint64             `json:"unique_count"`
	GroupBy     string             `json:"group_by,omitempty"`
	Groups      []MetricsGroupData `json:"groups,omitempty"`
}

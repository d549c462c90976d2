package domain

import "time"

// SpendSourceGoogleAds tags spend rows pulled from the Google Ads API.
const SpendSourceGoogleAds = "google_ads"

// SpendRow is one day of spend for one campaign. Rows are upserted keyed by
// (date, source, campaign_name) so re-running a sync window overwrites
// instead of double counting.
type SpendRow struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Date         string    `gorm:"uniqueIndex:idx_spend_day_campaign;size:10" json:"date"`
	Source       string    `gorm:"uniqueIndex:idx_spend_day_campaign" json:"source"`
	CampaignName string    `gorm:"uniqueIndex:idx_spend_day_campaign" json:"campaign_name"`
	Spend        float64   `json:"spend"`
	Clicks       int64     `json:"clicks"`
	Impressions  int64     `json:"impressions"`
	Conversions  float64   `json:"conversions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (SpendRow) TableName() string {
	return "ad_spend"
}

package domain

// AttributionSnapshot captures where a request came from. It is derived once
// per inbound request and embedded into Event and Lead records, never
// persisted on its own.
type AttributionSnapshot struct {
	Referrer        string
	UTMSource       string
	UTMMedium       string
	UTMCampaign     string
	CampaignSource  string
	CampaignVariant string
	LandingPage     string
}

// DefaultLandingPage is used when no referrer path resolves to a known
// landing page.
const DefaultLandingPage = "/start"

// KnownLandingPages are the marketing paths campaign_source may resolve to.
var KnownLandingPages = map[string]bool{
	"/start":           true,
	"/wieder-lebendig": true,
	"/therapeuten":     true,
	"/selbsttest":      true,
}

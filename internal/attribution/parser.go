package attribution

import (
	"net/url"
	"strings"

	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
)

// Snapshot derives an AttributionSnapshot from the inbound request's Referer
// header and the serving URL's own query values. It never fails: a missing
// referrer yields an empty snapshot, an unparseable one yields a snapshot
// carrying only the raw string.
//
// Variant precedence: the referrer wins; the serving URL's own variant/v
// parameter is used only when the referrer carries no variant.
func Snapshot(referrer string, selfQuery url.Values) domain.AttributionSnapshot {
	snap := ParseReferrer(referrer)

	if snap.CampaignVariant == "" {
		snap.CampaignVariant = variantFromQuery(selfQuery)
	}

	return snap
}

// ParseReferrer extracts UTM parameters, campaign source and variant from the
// raw Referer header value alone, without the serving-URL fallback.
func ParseReferrer(referrer string) domain.AttributionSnapshot {
	if referrer == "" {
		return domain.AttributionSnapshot{}
	}

	snap := domain.AttributionSnapshot{Referrer: referrer}

	u, err := url.Parse(referrer)
	if err != nil || u.Host == "" {
		// Best effort: keep the raw string, derive nothing from it.
		return snap
	}

	q := u.Query()
	snap.UTMSource = q.Get("utm_source")
	snap.UTMMedium = q.Get("utm_medium")
	snap.UTMCampaign = q.Get("utm_campaign")
	snap.CampaignSource = resolveLandingPath(u.Path)
	snap.CampaignVariant = variantFromQuery(q)
	snap.LandingPage = snap.CampaignSource

	return snap
}

// resolveLandingPath maps a referrer path onto the known landing page set,
// falling back to the default landing page identifier.
func resolveLandingPath(path string) string {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return domain.DefaultLandingPage
	}
	if domain.KnownLandingPages[path] {
		return path
	}
	return domain.DefaultLandingPage
}

// variantFromQuery reads the variant parameter (or its short alias v) and
// case-normalizes it. Values outside the known vocabulary pass through
// lowercased; landing pages without a fixed vocabulary define their own.
func variantFromQuery(q url.Values) string {
	raw := q.Get("variant")
	if raw == "" {
		raw = q.Get("v")
	}
	if raw == "" {
		return ""
	}

	v := strings.ToLower(strings.TrimSpace(raw))
	if flow, ok := domain.ParseFlowVariant(v); ok {
		return string(flow)
	}
	return v
}

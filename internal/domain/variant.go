package domain

import "strings"

// FlowVariant identifies which A/B flow a browser is assigned to.
type FlowVariant string

const (
	VariantConcierge   FlowVariant = "concierge"
	VariantSelfService FlowVariant = "self-service"
)

// PageVariants is the vocabulary of per-page content variants recognized in
// referrer query strings, in addition to the flow variants.
var PageVariants = map[string]bool{
	"body-oriented": true,
	"ready-now":     true,
}

// ParseFlowVariant matches s against the flow variant vocabulary,
// case-insensitively. The second return reports whether s named a known
// flow variant.
func ParseFlowVariant(s string) (FlowVariant, bool) {
	switch FlowVariant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantConcierge:
		return VariantConcierge, true
	case VariantSelfService:
		return VariantSelfService, true
	}
	return "", false
}

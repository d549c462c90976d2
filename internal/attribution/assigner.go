package attribution

import (
	"math/rand/v2"

	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
)

// Assigner resolves a stable experiment flow variant for a browser.
type Assigner struct {
	randIntN func(n int) int
}

// NewAssigner creates an assigner backed by the default random source.
func NewAssigner() *Assigner {
	return &Assigner{randIntN: rand.IntN}
}

// Resolve picks the flow variant for a browser given an explicit URL override
// and the value previously stored for that browser. The second return reports
// whether a fresh random assignment happened; callers emit the randomized
// event only on that transition.
//
// Precedence: a valid explicit value always wins and is never re-randomized;
// otherwise a valid stored value is reused; only a browser with neither gets
// a uniform random assignment.
func (a *Assigner) Resolve(explicit, stored string) (domain.FlowVariant, bool) {
	if v, ok := domain.ParseFlowVariant(explicit); ok {
		return v, false
	}
	if v, ok := domain.ParseFlowVariant(stored); ok {
		return v, false
	}

	if a.randIntN(2) == 0 {
		return domain.VariantConcierge, true
	}
	return domain.VariantSelfService, true
}

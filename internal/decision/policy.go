package decision

import (
	"fmt"
	"strings"
)

// DefaultHighRiskCountries is the corridor watch list used when none is configured.
var DefaultHighRiskCountries = []string{"XX", "YY"}

// Policy is the rule configuration. It is built once at startup and treated
// as read-only afterwards, so rules share it across goroutines without locking.
type Policy struct {
	WhitelistRequired        bool
	WhitelistNonListedAction Status
	ThresholdAction          Status
	// ThresholdByCurrency is keyed by upper-case currency code.
	ThresholdByCurrency map[string]float64
	HighRiskCountries   []string
}

// DefaultPolicy returns the policy used when nothing is configured: no
// whitelist enforcement, REVIEW actions, no thresholds.
func DefaultPolicy() Policy {
	return Policy{
		WhitelistNonListedAction: StatusReview,
		ThresholdAction:          StatusReview,
		ThresholdByCurrency:      map[string]float64{},
		HighRiskCountries:        DefaultHighRiskCountries,
	}
}

// Validate checks the invariants rules rely on.
func (p Policy) Validate() error {
	if p.WhitelistNonListedAction != StatusReview && p.WhitelistNonListedAction != StatusBlock {
		return fmt.Errorf("whitelist non-listed action must be REVIEW or BLOCK, got %q", p.WhitelistNonListedAction)
	}
	if p.ThresholdAction != StatusReview && p.ThresholdAction != StatusBlock {
		return fmt.Errorf("threshold action must be REVIEW or BLOCK, got %q", p.ThresholdAction)
	}
	for currency, limit := range p.ThresholdByCurrency {
		if currency != strings.ToUpper(currency) {
			return fmt.Errorf("threshold currency %q must be upper-case", currency)
		}
		if limit < 0 {
			return fmt.Errorf("threshold for %s must be non-negative", currency)
		}
	}
	return nil
}

// Threshold returns the configured limit for a currency, matched case-insensitively.
func (p Policy) Threshold(currency string) (float64, bool) {
	limit, ok := p.ThresholdByCurrency[strings.ToUpper(currency)]
	return limit, ok
}

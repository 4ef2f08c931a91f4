package decision

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"remitguard/internal/decision/ports"
	"remitguard/pkg/domain"
)

// Rule names, also used as audit row rule names.
const (
	RuleBlacklistWhitelist = "blacklistWhitelist"
	RuleThresholds         = "thresholds"
	RuleCorridor           = "corridor"
)

// Rule is a single compliance check. Implementations may read list or config
// state but never write it, and must return within the context deadline.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, input PrecheckInput) (RuleResult, error)
}

// RuleFunc adapts a plain function to the Rule interface.
type RuleFunc struct {
	RuleName string
	Fn       func(ctx context.Context, input PrecheckInput) (RuleResult, error)
}

func (f RuleFunc) Name() string { return f.RuleName }

func (f RuleFunc) Evaluate(ctx context.Context, input PrecheckInput) (RuleResult, error) {
	return f.Fn(ctx, input)
}

// DefaultRules returns the standard rule chain in evaluation order:
// blacklist/whitelist, thresholds, corridor.
func DefaultRules(policy Policy, lists ports.ListLookup) []Rule {
	return []Rule{
		NewListRule(policy, lists),
		NewThresholdRule(policy),
		NewCorridorRule(policy.HighRiskCountries),
	}
}

// -----------------------------------------------------------------------------
// Blacklist / whitelist
// -----------------------------------------------------------------------------

// ListRule blocks blacklisted counterparties and, when whitelist enforcement is
// on, applies the configured action to transfers where either side is unlisted.
type ListRule struct {
	policy Policy
	lists  ports.ListLookup
}

func NewListRule(policy Policy, lists ports.ListLookup) *ListRule {
	return &ListRule{policy: policy, lists: lists}
}

func (r *ListRule) Name() string { return RuleBlacklistWhitelist }

func (r *ListRule) Evaluate(ctx context.Context, input PrecheckInput) (RuleResult, error) {
	senderIDs := counterpartyIdentifiers(input.Sender)
	receiverIDs := counterpartyIdentifiers(input.Receiver)

	// Blacklist hit short-circuits: the whitelist is irrelevant once blocked.
	all := append(append([]string{}, senderIDs...), receiverIDs...)
	for _, id := range all {
		listed, err := r.lists.IsListed(ctx, domain.ListBlacklist, id)
		if err != nil {
			return RuleResult{}, fmt.Errorf("blacklist lookup: %w", err)
		}
		if listed {
			return RuleResult{
				RuleName: RuleBlacklistWhitelist,
				Outcome:  StatusBlock,
				Reason:   "Counterparty on blacklist: " + id,
			}, nil
		}
	}

	if !r.policy.WhitelistRequired {
		return RuleResult{RuleName: RuleBlacklistWhitelist, Outcome: StatusAllow}, nil
	}

	var senderListed, receiverListed bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		senderListed, err = r.anyWhitelisted(gctx, senderIDs)
		return err
	})
	g.Go(func() error {
		var err error
		receiverListed, err = r.anyWhitelisted(gctx, receiverIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return RuleResult{}, fmt.Errorf("whitelist lookup: %w", err)
	}

	if senderListed && receiverListed {
		return RuleResult{RuleName: RuleBlacklistWhitelist, Outcome: StatusAllow}, nil
	}
	return RuleResult{
		RuleName: RuleBlacklistWhitelist,
		Outcome:  r.policy.WhitelistNonListedAction,
		Reason:   "One or both counterparties not on whitelist",
	}, nil
}

func (r *ListRule) anyWhitelisted(ctx context.Context, ids []string) (bool, error) {
	for _, id := range ids {
		listed, err := r.lists.IsListed(ctx, domain.ListWhitelist, id)
		if err != nil {
			return false, err
		}
		if listed {
			return true, nil
		}
	}
	return false, nil
}

// counterpartyIdentifiers returns the primary id followed by the wallet, if any.
func counterpartyIdentifiers(c Counterparty) []string {
	ids := []string{c.ID}
	if w := c.WalletAddress(); w != "" {
		ids = append(ids, w)
	}
	return ids
}

// -----------------------------------------------------------------------------
// Amount thresholds
// -----------------------------------------------------------------------------

// ThresholdRule flags amounts above the per-currency limit.
type ThresholdRule struct {
	policy Policy
}

func NewThresholdRule(policy Policy) *ThresholdRule {
	return &ThresholdRule{policy: policy}
}

func (r *ThresholdRule) Name() string { return RuleThresholds }

func (r *ThresholdRule) Evaluate(_ context.Context, input PrecheckInput) (RuleResult, error) {
	value := input.Amount.Value
	currency := input.Amount.Currency

	// Negative amounts are blocked whether or not a limit is configured.
	if value < 0 {
		return RuleResult{RuleName: RuleThresholds, Outcome: StatusBlock, Reason: "Negative amount"}, nil
	}

	threshold, ok := r.policy.Threshold(currency)
	if !ok {
		return RuleResult{RuleName: RuleThresholds, Outcome: StatusAllow}, nil
	}

	if value > threshold {
		return RuleResult{
			RuleName: RuleThresholds,
			Outcome:  r.policy.ThresholdAction,
			Reason: fmt.Sprintf("Amount %s %s exceeds threshold %s",
				FormatNumber(value), currency, FormatNumber(threshold)),
		}, nil
	}
	return RuleResult{RuleName: RuleThresholds, Outcome: StatusAllow}, nil
}

// -----------------------------------------------------------------------------
// Corridor risk
// -----------------------------------------------------------------------------

// CorridorRule sends transfers touching a high-risk country to review.
type CorridorRule struct {
	highRisk map[string]struct{}
}

func NewCorridorRule(highRiskCountries []string) *CorridorRule {
	set := make(map[string]struct{}, len(highRiskCountries))
	for _, c := range highRiskCountries {
		set[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	return &CorridorRule{highRisk: set}
}

func (r *CorridorRule) Name() string { return RuleCorridor }

func (r *CorridorRule) Evaluate(_ context.Context, input PrecheckInput) (RuleResult, error) {
	from := strings.ToUpper(input.Corridor.FromCountry)
	to := strings.ToUpper(input.Corridor.ToCountry)

	_, fromRisky := r.highRisk[from]
	_, toRisky := r.highRisk[to]
	if fromRisky || toRisky {
		return RuleResult{
			RuleName: RuleCorridor,
			Outcome:  StatusReview,
			Reason:   fmt.Sprintf("High-risk corridor: %s -> %s", from, to),
		}, nil
	}
	return RuleResult{RuleName: RuleCorridor, Outcome: StatusAllow}, nil
}

package decision_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"remitguard/internal/decision"
	"remitguard/internal/decision/mocks"
	"remitguard/pkg/domain"
)

const (
	senderID   = "11111111-1111-4111-8111-111111111111"
	receiverID = "22222222-2222-4222-8222-222222222222"
)

func strPtr(s string) *string { return &s }

func baseInput() decision.PrecheckInput {
	return decision.PrecheckInput{
		Sender:   decision.Counterparty{ID: senderID, Name: strPtr("Alice"), Country: strPtr("US")},
		Receiver: decision.Counterparty{ID: receiverID, Name: strPtr("Bob"), Country: strPtr("US")},
		Amount:   decision.Amount{Value: 500, Currency: "USD"},
		Corridor: decision.Corridor{FromCountry: "US", ToCountry: "US"},
	}
}

// listLookup returns a mock answering membership from the given lists.
func listLookup(ctrl *gomock.Controller, lists map[domain.ListType][]string) *mocks.MockListLookup {
	m := mocks.NewMockListLookup(ctrl)
	m.EXPECT().IsListed(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, lt domain.ListType, address string) (bool, error) {
			for _, a := range lists[lt] {
				if a == address {
					return true, nil
				}
			}
			return false, nil
		}).AnyTimes()
	return m
}

func TestListRule(t *testing.T) {
	ctx := context.Background()

	t.Run("no lists and whitelist not required allows", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		rule := decision.NewListRule(decision.DefaultPolicy(), listLookup(ctrl, nil))

		result, err := rule.Evaluate(ctx, baseInput())
		require.NoError(t, err)
		assert.Equal(t, decision.StatusAllow, result.Outcome)
		assert.Empty(t, result.Reason)
		assert.Equal(t, decision.RuleBlacklistWhitelist, result.RuleName)
	})

	t.Run("blacklisted receiver blocks with its id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		rule := decision.NewListRule(decision.DefaultPolicy(), listLookup(ctrl, map[domain.ListType][]string{
			domain.ListBlacklist: {receiverID},
		}))

		result, err := rule.Evaluate(ctx, baseInput())
		require.NoError(t, err)
		assert.Equal(t, decision.StatusBlock, result.Outcome)
		assert.Equal(t, "Counterparty on blacklist: "+receiverID, result.Reason)
	})

	t.Run("blacklisted wallet blocks", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		input := baseInput()
		input.Sender.Wallet = strPtr("0xabc")
		rule := decision.NewListRule(decision.DefaultPolicy(), listLookup(ctrl, map[domain.ListType][]string{
			domain.ListBlacklist: {"0xabc"},
		}))

		result, err := rule.Evaluate(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, decision.StatusBlock, result.Outcome)
		assert.Equal(t, "Counterparty on blacklist: 0xabc", result.Reason)
	})

	t.Run("sender reported first when both blacklisted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		rule := decision.NewListRule(decision.DefaultPolicy(), listLookup(ctrl, map[domain.ListType][]string{
			domain.ListBlacklist: {receiverID, senderID},
		}))

		result, err := rule.Evaluate(ctx, baseInput())
		require.NoError(t, err)
		assert.Equal(t, "Counterparty on blacklist: "+senderID, result.Reason)
	})

	t.Run("blacklist overrides whitelist", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		policy := decision.DefaultPolicy()
		policy.WhitelistRequired = true
		rule := decision.NewListRule(policy, listLookup(ctrl, map[domain.ListType][]string{
			domain.ListBlacklist: {senderID},
			domain.ListWhitelist: {senderID, receiverID},
		}))

		result, err := rule.Evaluate(ctx, baseInput())
		require.NoError(t, err)
		assert.Equal(t, decision.StatusBlock, result.Outcome)
	})

	whitelistCases := []struct {
		name    string
		listed  []string
		action  decision.Status
		outcome decision.Status
	}{
		{name: "both listed allows", listed: []string{senderID, receiverID}, action: decision.StatusReview, outcome: decision.StatusAllow},
		{name: "neither listed reviews", listed: nil, action: decision.StatusReview, outcome: decision.StatusReview},
		{name: "only sender listed blocks when configured", listed: []string{senderID}, action: decision.StatusBlock, outcome: decision.StatusBlock},
		{name: "only receiver listed reviews", listed: []string{receiverID}, action: decision.StatusReview, outcome: decision.StatusReview},
	}
	for _, tc := range whitelistCases {
		t.Run("whitelist required: "+tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			policy := decision.DefaultPolicy()
			policy.WhitelistRequired = true
			policy.WhitelistNonListedAction = tc.action
			rule := decision.NewListRule(policy, listLookup(ctrl, map[domain.ListType][]string{
				domain.ListWhitelist: tc.listed,
			}))

			result, err := rule.Evaluate(ctx, baseInput())
			require.NoError(t, err)
			assert.Equal(t, tc.outcome, result.Outcome)
			if tc.outcome == decision.StatusAllow {
				assert.Empty(t, result.Reason)
			} else {
				assert.Equal(t, "One or both counterparties not on whitelist", result.Reason)
			}
		})
	}

	t.Run("whitelisted wallet counts for its side", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		policy := decision.DefaultPolicy()
		policy.WhitelistRequired = true
		input := baseInput()
		input.Receiver.Wallet = strPtr("wallet-r")
		rule := decision.NewListRule(policy, listLookup(ctrl, map[domain.ListType][]string{
			domain.ListWhitelist: {senderID, "wallet-r"},
		}))

		result, err := rule.Evaluate(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, decision.StatusAllow, result.Outcome)
	})

	t.Run("lookup failure is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		lookup := mocks.NewMockListLookup(ctrl)
		lookup.EXPECT().IsListed(gomock.Any(), domain.ListBlacklist, senderID).Return(false, errors.New("connection refused"))
		rule := decision.NewListRule(decision.DefaultPolicy(), lookup)

		_, err := rule.Evaluate(ctx, baseInput())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestThresholdRule(t *testing.T) {
	ctx := context.Background()
	policy := decision.DefaultPolicy()
	policy.ThresholdByCurrency = map[string]float64{"USD": 10000, "EUR": 10000}

	tests := []struct {
		name    string
		amount  decision.Amount
		action  decision.Status
		outcome decision.Status
		reason  string
	}{
		{name: "below threshold", amount: decision.Amount{Value: 500, Currency: "USD"}, outcome: decision.StatusAllow},
		{name: "equal to threshold", amount: decision.Amount{Value: 10000, Currency: "USD"}, outcome: decision.StatusAllow},
		{name: "above threshold reviews", amount: decision.Amount{Value: 10000.01, Currency: "USD"}, action: decision.StatusReview,
			outcome: decision.StatusReview, reason: "Amount 10000.01 USD exceeds threshold 10000"},
		{name: "above threshold blocks when configured", amount: decision.Amount{Value: 15000, Currency: "EUR"}, action: decision.StatusBlock,
			outcome: decision.StatusBlock, reason: "Amount 15000 EUR exceeds threshold 10000"},
		{name: "currency matched case-insensitively", amount: decision.Amount{Value: 20000, Currency: "usd"}, action: decision.StatusReview,
			outcome: decision.StatusReview, reason: "Amount 20000 usd exceeds threshold 10000"},
		{name: "no threshold configured", amount: decision.Amount{Value: 1e9, Currency: "GBP"}, outcome: decision.StatusAllow},
		{name: "negative amount", amount: decision.Amount{Value: -1, Currency: "USD"}, outcome: decision.StatusBlock, reason: "Negative amount"},
		{name: "negative amount without threshold", amount: decision.Amount{Value: -5, Currency: "JPY"}, outcome: decision.StatusBlock, reason: "Negative amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := policy
			if tt.action != "" {
				p.ThresholdAction = tt.action
			}
			input := baseInput()
			input.Amount = tt.amount

			result, err := decision.NewThresholdRule(p).Evaluate(ctx, input)
			require.NoError(t, err)
			assert.Equal(t, decision.RuleThresholds, result.RuleName)
			assert.Equal(t, tt.outcome, result.Outcome)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}
}

func TestCorridorRule(t *testing.T) {
	ctx := context.Background()
	rule := decision.NewCorridorRule(decision.DefaultHighRiskCountries)

	tests := []struct {
		from, to string
		outcome  decision.Status
		reason   string
	}{
		{from: "US", to: "US", outcome: decision.StatusAllow},
		{from: "US", to: "XX", outcome: decision.StatusReview, reason: "High-risk corridor: US -> XX"},
		{from: "yy", to: "de", outcome: decision.StatusReview, reason: "High-risk corridor: YY -> DE"},
		{from: "XX", to: "YY", outcome: decision.StatusReview, reason: "High-risk corridor: XX -> YY"},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			input := baseInput()
			input.Corridor = decision.Corridor{FromCountry: tt.from, ToCountry: tt.to}

			result, err := rule.Evaluate(ctx, input)
			require.NoError(t, err)
			assert.Equal(t, decision.RuleCorridor, result.RuleName)
			assert.Equal(t, tt.outcome, result.Outcome)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}

	t.Run("custom high-risk set", func(t *testing.T) {
		input := baseInput()
		input.Corridor = decision.Corridor{FromCountry: "US", ToCountry: "ZZ"}
		result, err := decision.NewCorridorRule([]string{" zz "}).Evaluate(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, decision.StatusReview, result.Outcome)
	})
}

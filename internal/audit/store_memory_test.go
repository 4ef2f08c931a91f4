package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remitguard/internal/audit"
	"remitguard/pkg/domain"
)

func entryAt(decisionID domain.DecisionID, seq int, at time.Time) *audit.Entry {
	return &audit.Entry{
		ID:         domain.NewAuditEntryID(),
		DecisionID: decisionID,
		Seq:        seq,
		RuleName:   "thresholds",
		Outcome:    "ALLOW",
		Type:       "rule:thresholds",
		CreatedAt:  at,
	}
}

func TestInMemoryStore_ListByDecisionOrdersBySeq(t *testing.T) {
	ctx := context.Background()
	store := audit.NewInMemoryStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d1, d2 := domain.NewDecisionID(), domain.NewDecisionID()

	require.NoError(t, store.Append(ctx, entryAt(d1, 2, now)))
	require.NoError(t, store.Append(ctx, entryAt(d2, 0, now)))
	require.NoError(t, store.Append(ctx, entryAt(d1, 0, now)))
	require.NoError(t, store.Append(ctx, entryAt(d1, 1, now)))

	got, err := store.ListByDecision(ctx, d1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, i, e.Seq)
	}

	none, err := store.ListByDecision(ctx, domain.NewDecisionID())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryStore_QueryFiltersNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := audit.NewInMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d1, d2 := domain.NewDecisionID(), domain.NewDecisionID()

	require.NoError(t, store.Append(ctx, entryAt(d1, 0, base)))
	require.NoError(t, store.Append(ctx, entryAt(d2, 0, base.Add(time.Minute))))
	require.NoError(t, store.Append(ctx, entryAt(d1, 1, base.Add(2*time.Minute))))

	all, err := store.Query(ctx, audit.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, base.Add(2*time.Minute), all[0].CreatedAt)
	assert.Equal(t, base, all[2].CreatedAt)

	byDecision, err := store.Query(ctx, audit.Filter{DecisionID: &d1})
	require.NoError(t, err)
	assert.Len(t, byDecision, 2)

	from, to := base.Add(time.Minute), base.Add(2*time.Minute)
	window, err := store.Query(ctx, audit.Filter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, window, 2, "bounds are inclusive")
}

func TestInMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := audit.NewInMemoryStore()
	d := domain.NewDecisionID()
	entry := entryAt(d, 0, time.Now())
	entry.Reasons = []string{"original"}
	require.NoError(t, store.Append(ctx, entry))

	entry.Reasons[0] = "mutated"
	got, err := store.ListByDecision(ctx, d)
	require.NoError(t, err)
	got[0].Outcome = "BLOCK"

	again, err := store.ListByDecision(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, []string{"original"}, again[0].Reasons)
	assert.Equal(t, "ALLOW", again[0].Outcome)
}

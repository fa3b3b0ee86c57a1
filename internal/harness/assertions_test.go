package harness

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/realty/internal/region"
	"github.com/roach88/realty/internal/store"
	"github.com/roach88/realty/internal/testutil"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Action: ActionRegister, Outcome: "OK"},
		{Seq: 2, Action: ActionRegister, Outcome: "Overlap"},
		{Seq: 3, Action: ActionCanModify, Outcome: OutcomeAllowed},
		{Seq: 4, Action: ActionDelete, Outcome: "OK"},
		{Seq: 5, Action: ActionAt, Outcome: OutcomeUnclaimed},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Action: ActionRegister}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Action: ActionRegister, Outcome: "Overlap"}))

	err := assertTraceContains(trace, Assertion{Action: ActionRegister, Outcome: "TooBig"})
	require.Error(t, err)

	assertErr, ok := err.(*AssertionError)
	require.True(t, ok)
	assert.Equal(t, "trace_contains", assertErr.Type)
	assert.Contains(t, assertErr.Expected, "register with outcome TooBig")
	assert.Equal(t, "not found in trace", assertErr.Actual)
	assert.Contains(t, err.Error(), "[2] register")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{ActionRegister, ActionDelete, ActionAt}}))

	err := assertTraceOrder(trace, Assertion{Actions: []string{ActionDelete, ActionCanModify}})
	require.Error(t, err)
	assert.Contains(t, err.(*AssertionError).Actual, "delete (pos 4) should be before can_modify (pos 3)")

	err = assertTraceOrder(trace, Assertion{Actions: []string{ActionRegister, "teleport"}})
	require.Error(t, err)
	assert.Contains(t, err.(*AssertionError).Actual, "missing action: teleport")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Action: ActionRegister, Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: ActionRegister, Outcome: "OK", Count: 1}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: ActionDelete, Outcome: "NotOwner", Count: 0}))

	err := assertTraceCount(trace, Assertion{Action: ActionAt, Count: 3})
	require.Error(t, err)
	assertErr := err.(*AssertionError)
	assert.Equal(t, "3 occurrences of at", assertErr.Expected)
	assert.Equal(t, "1 occurrences", assertErr.Actual)
}

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = st.InsertRegion(context.Background(), region.Region{
		Box:     region.NewBox(region.Pt(0, 0, 0), region.Pt(3, 3, 3)),
		Name:    "Home",
		Owner:   testutil.Alice,
		Members: []uuid.UUID{testutil.Carol, testutil.Bob},
	})
	require.NoError(t, err)
	return st
}

func TestAssertFinalState(t *testing.T) {
	st := seededStore(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{
			name:      "full match",
			assertion: Assertion{At: pt(1, 1, 1), Expect: map[string]interface{}{"found": true, "id": 1, "name": "Home", "owner": "alice", "members": []interface{}{"bob", "carol"}}},
		},
		{
			name:      "region count",
			assertion: Assertion{Regions: intPtr(1)},
		},
		{
			name:      "unclaimed",
			assertion: Assertion{At: pt(9, 9, 9), Expect: map[string]interface{}{"found": false}},
		},
		{
			name:      "wrong name",
			assertion: Assertion{At: pt(1, 1, 1), Expect: map[string]interface{}{"name": "Shed"}},
			wantErr:   `field "name" = Shed`,
		},
		{
			name:      "missing field on unclaimed point",
			assertion: Assertion{At: pt(9, 9, 9), Expect: map[string]interface{}{"name": "Home"}},
			wantErr:   `field "name" not present`,
		},
		{
			name:      "wrong count",
			assertion: Assertion{Regions: intPtr(3)},
			wantErr:   "3 regions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.assertion.Type = AssertFinalState
			err := assertFinalState(ctx, st, tt.assertion)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvaluateAssertions(t *testing.T) {
	st := seededStore(t)
	result := &Result{Trace: sampleTrace()}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceContains, Action: ActionDelete},
		{Type: AssertTraceCount, Action: ActionDelete, Count: 2},
		{Type: AssertFinalState, Regions: intPtr(1)},
		{Type: "vibes"},
	}, &AssertionContext{Store: st, Ctx: context.Background()})

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "trace_count")
	assert.Contains(t, errs[1], `unknown assertion type "vibes"`)
}

func TestEvaluateAssertions_FinalStateNeedsStore(t *testing.T) {
	errs := EvaluateAssertions(&Result{}, []Assertion{{Type: AssertFinalState, Regions: intPtr(0)}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires database context")
}

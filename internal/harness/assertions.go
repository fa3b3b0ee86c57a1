package harness

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/realty/internal/region"
	"github.com/roach88/realty/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %v -> %s\n", event.Seq, event.Action, event.Args, event.Outcome)
		}
	}

	return buf.String()
}

// assertTraceContains checks that an event for the action exists, with the
// given outcome when one is specified.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Action != assertion.Action {
			continue
		}
		if assertion.Outcome == "" || assertion.Outcome == event.Outcome {
			return nil
		}
	}

	want := assertion.Action
	if assertion.Outcome != "" {
		want += " with outcome " + assertion.Outcome
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: want,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that actions first appear in the specified order.
// Intervening events are allowed.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if positions[event.Action] == 0 {
			positions[event.Action] = i + 1 // 1-indexed for readability
		}
	}

	for _, action := range assertion.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all actions present: %v", assertion.Actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Actions); i++ {
		prev := assertion.Actions[i-1]
		curr := assertion.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks that the action (optionally with an outcome)
// appears exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Action == assertion.Action && (assertion.Outcome == "" || assertion.Outcome == event.Outcome) {
			count++
		}
	}

	if count != assertion.Count {
		what := assertion.Action
		if assertion.Outcome != "" {
			what += "/" + assertion.Outcome
		}
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, what),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState inspects the store directly, bypassing the registry, so
// it observes exactly what was committed.
func assertFinalState(ctx context.Context, st *store.Store, assertion Assertion) error {
	if assertion.Regions != nil {
		n, err := st.Count(ctx)
		if err != nil {
			return fmt.Errorf("count regions: %w", err)
		}
		if n != int64(*assertion.Regions) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%d regions", *assertion.Regions),
				Actual:   fmt.Sprintf("%d regions", n),
			}
		}
	}

	if assertion.At == nil {
		return nil
	}

	actual, err := regionState(ctx, st, *assertion.At)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		expectedValue := assertion.Expect[key]
		actualValue, exists := actual[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q at %s", key, assertion.At),
				Actual:   fmt.Sprintf("field %q not present (found=%v)", key, actual["found"]),
			}
		}
		if !valuesEqual(actualValue, expectedValue) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v at %s", key, expectedValue, assertion.At),
				Actual:   fmt.Sprintf("field %q = %v", key, actualValue),
			}
		}
	}
	return nil
}

// regionState describes the region at p as a flat map: found, and when
// found: id, name, owner, members (sorted aliases).
func regionState(ctx context.Context, st *store.Store, p region.Point) (map[string]interface{}, error) {
	r, found, err := st.RegionAt(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("region at %s: %w", p, err)
	}
	if !found {
		return map[string]interface{}{"found": false}, nil
	}

	ids, err := st.Members(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("members of %d: %w", r.ID, err)
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, IdentityName(id))
	}
	sort.Strings(names)
	members := make([]interface{}, len(names))
	for i, n := range names {
		members[i] = n
	}

	return map[string]interface{}{
		"found":   true,
		"id":      int(r.ID),
		"name":    r.Name,
		"owner":   IdentityName(r.Owner),
		"members": members,
	}, nil
}

// valuesEqual compares two values for equality.
// Handles nested maps and slices.
func valuesEqual(actual, expected interface{}) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}
	return reflect.DeepEqual(actual, expected)
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for final_state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires database context", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

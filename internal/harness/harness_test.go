package harness

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/realty/internal/region"
)

func pt(x, y, z int) *region.Point {
	p := region.Pt(x, y, z)
	return &p
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func homeStep() Step {
	return Step{
		Action:  ActionRegister,
		Name:    "Home",
		A:       pt(0, 0, 0),
		B:       pt(4, 4, 4),
		Owner:   "alice",
		Members: []string{"bob"},
		Expect:  &Expect{Outcome: "OK"},
	}
}

func TestRun_RecordsTrace(t *testing.T) {
	scenario := &Scenario{
		Name:        "trace",
		Description: "d",
		Steps: []Step{
			homeStep(),
			{Action: ActionAt, At: pt(2, 2, 2), Expect: &Expect{Region: strPtr("Home")}},
			{Action: ActionCanModify, At: pt(2, 2, 2), Actor: "carol", Expect: &Expect{Allowed: boolPtr(false)}},
			{Action: ActionDelete, At: pt(2, 2, 2), Actor: "alice", Expect: &Expect{Outcome: "OK"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 4)
	for i, ev := range result.Trace {
		assert.Equal(t, int64(i+1), ev.Seq)
	}
	assert.Equal(t, "register", result.Trace[0].Action)
	assert.Equal(t, int64(1), result.Trace[0].Result["id"])
	assert.Equal(t, OutcomeFound, result.Trace[1].Outcome)
	assert.Equal(t, "alice", result.Trace[1].Result["owner"])
	assert.Equal(t, OutcomeDenied, result.Trace[2].Outcome)
	assert.Equal(t, "OK", result.Trace[3].Outcome)
}

func TestRun_ExpectationMismatchFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "d",
		Steps: []Step{
			homeStep(),
			{Action: ActionRegister, Name: "Again", A: pt(4, 4, 4), B: pt(8, 8, 8), Owner: "bob", Expect: &Expect{Outcome: "OK"}},
			{Action: ActionCanModify, At: pt(1, 1, 1), Actor: "dave", Expect: &Expect{Allowed: boolPtr(true)}},
			{Action: ActionAt, At: pt(9, 9, 9), Expect: &Expect{Region: strPtr("Home")}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "expected outcome OK, got Overlap")
	assert.Contains(t, result.Errors[1], "expected allowed=true, got Denied")
	assert.Contains(t, result.Errors[2], `expected region "Home", got Unclaimed`)
}

func TestRun_LimitsApply(t *testing.T) {
	scenario := &Scenario{
		Name:        "limits",
		Description: "d",
		Limits:      &Limits{MaxVolume: 8, AdminLevel: intPtr(5)},
		Steps: []Step{
			{Action: ActionRegister, Name: "small", A: pt(0, 0, 0), B: pt(2, 2, 2), Owner: "alice", Expect: &Expect{Outcome: "OK"}},
			{Action: ActionRegister, Name: "big", A: pt(10, 0, 0), B: pt(13, 2, 2), Owner: "alice", Expect: &Expect{Outcome: "TooBig"}},
			{Action: ActionCanModify, At: pt(1, 1, 1), Actor: "bob", Level: 3, Expect: &Expect{Allowed: boolPtr(false)}},
			{Action: ActionCanModify, At: pt(1, 1, 1), Actor: "bob", Level: 5, Expect: &Expect{Allowed: boolPtr(true)}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_IsolatedDatabases(t *testing.T) {
	scenario := &Scenario{Name: "iso", Description: "d", Steps: []Step{homeStep()}}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, first.Pass)
	assert.True(t, second.Pass, "second run starts from an empty store: %v", second.Errors)
	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_AssertionFailuresRecorded(t *testing.T) {
	scenario := &Scenario{
		Name:        "assertions",
		Description: "d",
		Steps:       []Step{homeStep()},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Action: ActionRegister, Count: 2},
			{Type: AssertFinalState, Regions: intPtr(1)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "2 occurrences of register")
}

func TestRunWithLogger_LogsSteps(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := RunWithLogger(&Scenario{Name: "log", Description: "d", Steps: []Step{homeStep()}}, logger)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "step completed")
	assert.Contains(t, buf.String(), "region registered")
}

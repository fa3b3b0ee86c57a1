package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/roach88/realty/internal/region"
	"github.com/roach88/realty/internal/registry"
	"github.com/roach88/realty/internal/store"
	"github.com/roach88/realty/internal/testutil"
)

// Step outcomes for the read-only actions.
const (
	OutcomeFound     = "Found"
	OutcomeUnclaimed = "Unclaimed"
	OutcomeAllowed   = "Allowed"
	OutcomeDenied    = "Denied"
	OutcomeError     = "Error"
)

// Harness executes scenario steps against one registry.
type Harness struct {
	store    *store.Store
	registry *registry.Registry
	seq      *testutil.Sequence
	logger   *slog.Logger
}

// Run executes a scenario in a fresh in-memory SQLite database and returns
// the result. Step expectations and assertions that fail are recorded in
// Result.Errors; only setup failures return an error.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with a caller-supplied logger for the registry and
// harness.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	opts := []registry.Option{registry.WithLogger(logger)}
	if l := scenario.Limits; l != nil {
		opts = append(opts, registry.WithMaxVolume(l.MaxVolume))
		if l.AdminLevel != nil {
			opts = append(opts, registry.WithAdminLevel(*l.AdminLevel))
		}
	}

	h := &Harness{
		store:    st,
		registry: registry.New(st, opts...),
		seq:      testutil.NewSequence(),
		logger:   logger,
	}

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	var (
		ev  TraceEvent
		err error
	)
	switch step.Action {
	case ActionRegister:
		ev, err = h.register(ctx, step)
	case ActionDelete:
		ev, err = h.delete(ctx, step)
	case ActionAt:
		ev, err = h.at(ctx, step)
	case ActionCanModify:
		ev, err = h.canModify(ctx, step)
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	if err != nil {
		return err
	}

	ev.Seq = h.seq.Next()
	ev.Action = step.Action
	result.AddTrace(ev)

	if msg := checkExpect(i, step, ev); msg != "" {
		result.AddError(msg)
	}

	h.logger.Info("step completed", "step", i, "seq", ev.Seq, "action", step.Action, "outcome", ev.Outcome)
	return nil
}

func (h *Harness) register(ctx context.Context, step Step) (TraceEvent, error) {
	owner, err := ResolveIdentity(step.Owner)
	if err != nil {
		return TraceEvent{}, err
	}
	req := registry.RegisterRequest{Name: step.Name, A: *step.A, B: *step.B, Owner: owner}
	for _, m := range step.Members {
		id, err := ResolveIdentity(m)
		if err != nil {
			return TraceEvent{}, err
		}
		req.Members = append(req.Members, id)
	}

	args := map[string]interface{}{
		"name":  step.Name,
		"a":     step.A.String(),
		"b":     step.B.String(),
		"owner": IdentityName(owner),
	}
	if len(step.Members) > 0 {
		args["members"] = step.Members
	}

	res, err := h.registry.RegisterRegion(ctx, req)
	ev := TraceEvent{Args: args, Outcome: res.Outcome.String()}
	if err != nil {
		ev.Result = map[string]interface{}{"error": err.Error()}
		return ev, nil
	}
	if res.Outcome == region.RegistrationOK {
		ev.Result = map[string]interface{}{"id": res.Region.ID, "box": res.Region.Box.String()}
	}
	return ev, nil
}

func (h *Harness) delete(ctx context.Context, step Step) (TraceEvent, error) {
	actor, err := h.actor(step)
	if err != nil {
		return TraceEvent{}, err
	}
	out, err := h.registry.DeleteRegion(ctx, *step.At, actor)
	ev := TraceEvent{Args: actorArgs(step), Outcome: out.String()}
	if err != nil {
		ev.Result = map[string]interface{}{"error": err.Error()}
	}
	return ev, nil
}

func (h *Harness) at(ctx context.Context, step Step) (TraceEvent, error) {
	ev := TraceEvent{Args: map[string]interface{}{"at": step.At.String()}}
	r, found, err := h.registry.RegionAt(ctx, *step.At)
	switch {
	case err != nil:
		ev.Outcome = OutcomeError
		ev.Result = map[string]interface{}{"error": err.Error()}
	case !found:
		ev.Outcome = OutcomeUnclaimed
	default:
		ev.Outcome = OutcomeFound
		ev.Result = map[string]interface{}{
			"id":    r.ID,
			"name":  r.Name,
			"owner": IdentityName(r.Owner),
		}
	}
	return ev, nil
}

func (h *Harness) canModify(ctx context.Context, step Step) (TraceEvent, error) {
	actor, err := h.actor(step)
	if err != nil {
		return TraceEvent{}, err
	}
	ev := TraceEvent{Args: actorArgs(step)}
	ok, err := h.registry.CanModifyAt(ctx, actor, *step.At)
	switch {
	case err != nil:
		ev.Outcome = OutcomeError
		ev.Result = map[string]interface{}{"error": err.Error()}
	case ok:
		ev.Outcome = OutcomeAllowed
	default:
		ev.Outcome = OutcomeDenied
	}
	return ev, nil
}

func (h *Harness) actor(step Step) (region.Actor, error) {
	id, err := ResolveIdentity(step.Actor)
	if err != nil {
		return region.Actor{}, err
	}
	return region.Actor{ID: id, Level: step.Level}, nil
}

func actorArgs(step Step) map[string]interface{} {
	args := map[string]interface{}{
		"at":    step.At.String(),
		"actor": step.Actor,
	}
	if step.Level != 0 {
		args["level"] = step.Level
	}
	return args
}

// checkExpect compares a step's trace event against its expect clause and
// returns a failure message, or "" when it matches.
func checkExpect(i int, step Step, ev TraceEvent) string {
	e := step.Expect
	if e == nil {
		return ""
	}
	switch step.Action {
	case ActionRegister, ActionDelete:
		if e.Outcome != "" && e.Outcome != ev.Outcome {
			return fmt.Sprintf("step %d (%s): expected outcome %s, got %s", i, step.Action, e.Outcome, ev.Outcome)
		}
	case ActionCanModify:
		if e.Allowed != nil {
			want := OutcomeDenied
			if *e.Allowed {
				want = OutcomeAllowed
			}
			if ev.Outcome != want {
				return fmt.Sprintf("step %d (can_modify): expected allowed=%s, got %s", i, strconv.FormatBool(*e.Allowed), ev.Outcome)
			}
		}
	case ActionAt:
		if e.Region != nil {
			got := ""
			if ev.Outcome == OutcomeFound {
				got, _ = ev.Result["name"].(string)
			}
			if ev.Outcome == OutcomeError || got != *e.Region {
				return fmt.Sprintf("step %d (at): expected region %q, got %s %q", i, *e.Region, ev.Outcome, got)
			}
		}
	}
	return ""
}

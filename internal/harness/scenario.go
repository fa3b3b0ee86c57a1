package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roach88/realty/internal/region"
	"github.com/roach88/realty/internal/testutil"
)

// Scenario is a scripted sequence of registry operations with expected
// outcomes, plus assertions over the resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Limits overrides registry policy for this scenario.
	Limits *Limits `yaml:"limits,omitempty"`

	// Steps run in order against a fresh registry.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions"`
}

// Limits mirrors the registry options a scenario may override.
type Limits struct {
	MaxVolume  int64 `yaml:"max_volume,omitempty"`
	AdminLevel *int  `yaml:"admin_level,omitempty"`
}

// Step is one registry operation.
//
// Identities (owner, members, actor) are aliases alice, bob, carol, dave,
// nil, or a literal UUID.
type Step struct {
	// Action is one of register, delete, at, can_modify.
	Action string `yaml:"action"`

	Name    string        `yaml:"name,omitempty"`
	A       *region.Point `yaml:"a,omitempty"`
	B       *region.Point `yaml:"b,omitempty"`
	Owner   string        `yaml:"owner,omitempty"`
	Members []string      `yaml:"members,omitempty"`

	At    *region.Point `yaml:"at,omitempty"`
	Actor string        `yaml:"actor,omitempty"`
	Level int           `yaml:"level,omitempty"`

	// Expect is optional. When set, a mismatch fails the scenario.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the expected result of a step. Only the field matching the
// step's action is consulted.
type Expect struct {
	// Outcome for register and delete (OK, Overlap, TooBig, NotOwner, ...).
	Outcome string `yaml:"outcome,omitempty"`

	// Allowed for can_modify.
	Allowed *bool `yaml:"allowed,omitempty"`

	// Region for at: the region name, or empty for unclaimed space.
	Region *string `yaml:"region,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an action appears in the trace with the given outcome
	// - "trace_order": actions appear in order
	// - "trace_count": an action appears exactly Count times
	// - "final_state": inspect the region at At, or the total Regions count
	Type string `yaml:"type"`

	Action  string   `yaml:"action,omitempty"`
	Outcome string   `yaml:"outcome,omitempty"`
	Count   int      `yaml:"count,omitempty"`
	Actions []string `yaml:"actions,omitempty"`

	// At selects the region for final_state. Expect is a subset match over
	// found, name, owner, and members (sorted aliases).
	At     *region.Point          `yaml:"at,omitempty"`
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Regions is the expected total region count for final_state.
	Regions *int `yaml:"regions,omitempty"`
}

// Step actions.
const (
	ActionRegister  = "register"
	ActionDelete    = "delete"
	ActionAt        = "at"
	ActionCanModify = "can_modify"
)

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

var aliases = map[string]uuid.UUID{
	"alice": testutil.Alice,
	"bob":   testutil.Bob,
	"carol": testutil.Carol,
	"dave":  testutil.Dave,
	"nil":   uuid.Nil,
}

// ResolveIdentity maps an alias or UUID string to a uuid.UUID.
// Empty resolves to the nil identity.
func ResolveIdentity(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	if id, ok := aliases[strings.ToLower(s)]; ok {
		return id, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("unknown identity %q", s)
	}
	return id, nil
}

// IdentityName is the inverse of ResolveIdentity for trace output.
func IdentityName(id uuid.UUID) string {
	for name, v := range aliases {
		if v == id {
			return name
		}
	}
	return id.String()
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, st *Step) error {
	switch st.Action {
	case ActionRegister:
		if st.A == nil || st.B == nil {
			return fmt.Errorf("steps[%d]: register requires a and b", i)
		}
		if _, err := ResolveIdentity(st.Owner); err != nil {
			return fmt.Errorf("steps[%d].owner: %w", i, err)
		}
		for j, m := range st.Members {
			if _, err := ResolveIdentity(m); err != nil {
				return fmt.Errorf("steps[%d].members[%d]: %w", i, j, err)
			}
		}
		if st.Expect != nil && st.Expect.Outcome != "" {
			var o region.RegistrationOutcome
			if err := o.UnmarshalText([]byte(st.Expect.Outcome)); err != nil {
				return fmt.Errorf("steps[%d].expect: %w", i, err)
			}
		}
	case ActionDelete, ActionCanModify:
		if st.At == nil {
			return fmt.Errorf("steps[%d]: %s requires at", i, st.Action)
		}
		if st.Actor == "" {
			return fmt.Errorf("steps[%d]: %s requires actor", i, st.Action)
		}
		if _, err := ResolveIdentity(st.Actor); err != nil {
			return fmt.Errorf("steps[%d].actor: %w", i, err)
		}
		if st.Action == ActionDelete && st.Expect != nil && st.Expect.Outcome != "" {
			var o region.DeletionOutcome
			if err := o.UnmarshalText([]byte(st.Expect.Outcome)); err != nil {
				return fmt.Errorf("steps[%d].expect: %w", i, err)
			}
		}
	case ActionAt:
		if st.At == nil {
			return fmt.Errorf("steps[%d]: at requires at", i)
		}
	case "":
		return fmt.Errorf("steps[%d]: action is required", i)
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", i, st.Action)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: trace_contains requires action", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) < 2 {
			return fmt.Errorf("assertions[%d]: trace_order requires at least 2 actions", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: trace_count requires action", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: trace_count requires non-negative count", index)
		}
	case AssertFinalState:
		if a.At == nil && a.Regions == nil {
			return fmt.Errorf("assertions[%d]: final_state requires at or regions", index)
		}
		if a.At == nil && len(a.Expect) > 0 {
			return fmt.Errorf("assertions[%d]: final_state expect requires at", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// Package harness runs scripted registry scenarios for conformance testing.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: overlap_rejected
//	description: "A touching box is refused"
//	limits: { max_volume: 250000, admin_level: 3 }
//	steps:
//	  - action: register
//	    name: Home
//	    a: { x: 0, y: 0, z: 0 }
//	    b: { x: 10, y: 10, z: 10 }
//	    owner: alice
//	    members: [bob]
//	    expect: { outcome: OK }
//	  - action: can_modify
//	    at: { x: 5, y: 5, z: 5 }
//	    actor: carol
//	    expect: { allowed: false }
//	assertions:
//	  - type: trace_count
//	    action: register
//	    outcome: OK
//	    count: 1
//	  - type: final_state
//	    at: { x: 0, y: 0, z: 0 }
//	    expect: { name: Home, members: [bob] }
//
// Identities are the aliases alice, bob, carol, dave, nil, or literal UUIDs.
//
// # Determinism
//
// Each scenario runs against a fresh in-memory SQLite store. Trace events
// are numbered by testutil.Sequence and region IDs start at 1, so the JSON
// trace is identical across runs and is compared against golden files in
// testdata/golden.
package harness

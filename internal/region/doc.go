// Package region provides the value types shared by every layer of the
// region registry: points, boxes, regions, actors, and the closed outcome
// enumerations returned to hosts.
//
// This package imports nothing internal. Storage backends, the registry,
// the CLI, and the scenario harness all build on it.
//
// Key invariants:
//   - A Box is always normalized (Min <= Max on every axis)
//   - Box intervals are closed: touching faces, edges, or corners overlap
//   - Volume is computed in int64 as (x2-x1)*(y2-y1)*(z2-z1)
//   - The nil owner is uuid.Nil (all-zero identity)
package region

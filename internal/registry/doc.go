// Package registry enforces the region rules on top of a storage Repository:
// the volume limit, the non-overlap invariant, ownership and membership
// permissions, and the admin bypass.
//
// The registry keeps no state of its own. Every call round-trips to the
// repository, which is the single source of truth and the only point where
// concurrent callers are serialized.
//
// Expected conditions (TooBig, Overlap, NotOwner, NoRegion) are returned as
// outcomes with a nil error. Storage faults are returned as
// *region.StorageError together with the Fail outcome, or with false from
// CanModifyAt; callers must treat a non-nil error as neither allow nor deny.
package registry

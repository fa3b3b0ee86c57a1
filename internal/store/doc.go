// Package store provides SQLite-backed durable storage for the region registry.
//
// The store holds two tables:
//   - regions: one row per claim (normalized box corners, owner, name)
//   - memberships: (region_id, player_uuid) pairs granting modify permission
//
// # Critical Patterns
//
// Serialized registration:
//   - Write transactions start with BEGIN IMMEDIATE (_txlock=immediate)
//   - The overlap probe and the insert run in the same transaction
//   - Two concurrent overlapping registrations cannot both commit
//
// Atomic deletion:
//   - The ownership check runs inside the deleting transaction
//   - Membership rows are deleted explicitly and by ON DELETE CASCADE
//
// Binary identities:
//   - UUIDs are bound as 16-byte BLOBs, never as strings
//   - All statements are parameterized
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

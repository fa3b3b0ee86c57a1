package region

import "github.com/google/uuid"

// DefaultMaxVolume is the largest volume a single region may claim.
const DefaultMaxVolume int64 = 250000

// DefaultAdminLevel is the permission level at which an actor bypasses all
// ownership and membership checks.
const DefaultAdminLevel = 3

// NilOwner is the owner recorded for regions registered without one.
var NilOwner = uuid.Nil

// Region is a named, owned, axis-aligned volume claim.
type Region struct {
	ID    int64     `json:"id"`
	Box   Box       `json:"box"`
	Name  string    `json:"name"`
	Owner uuid.UUID `json:"owner"`

	// Members is nil for point lookups; it is only populated on the value
	// returned from registration.
	Members []uuid.UUID `json:"members,omitempty"`
}

// HasOwner reports whether the region was registered with a real owner.
func (r Region) HasOwner() bool {
	return r.Owner != NilOwner
}

// IsOwnedBy reports whether id owns the region. The nil identity never owns
// anything, even an unowned region.
func (r Region) IsOwnedBy(id uuid.UUID) bool {
	return r.HasOwner() && r.Owner == id
}

// Actor is the identity invoking an operation, as supplied by the host.
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Level int       `json:"level"`
}

// IsAdmin reports whether the actor's permission level reaches adminLevel.
func (a Actor) IsAdmin(adminLevel int) bool {
	return a.Level >= adminLevel
}

// UniqueMembers returns members with duplicates and nil identities removed,
// preserving first-seen order. Returns nil for an empty result.
func UniqueMembers(members []uuid.UUID) []uuid.UUID {
	if len(members) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(members))
	out := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if m == uuid.Nil {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

package registry

import (
	"context"

	"github.com/roach88/realty/internal/region"
)

// RegionAt returns the region containing p. Members are not populated.
// An unclaimed point returns found=false and a nil error.
func (r *Registry) RegionAt(ctx context.Context, p region.Point) (region.Region, bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	reg, found, err := r.repo.RegionAt(ctx, p)
	if err != nil {
		return region.Region{}, false, r.storageFault("region_at", err, "point", p.String())
	}
	return reg, found, nil
}

// CanModifyAt reports whether actor may modify blocks at p.
//
// Admins are allowed without any storage access. Unclaimed points are open to
// everyone. Inside a region only the owner and its members are allowed.
//
// A storage fault returns false with a non-nil *region.StorageError; the
// false is not a denial and must not be treated as one.
func (r *Registry) CanModifyAt(ctx context.Context, actor region.Actor, p region.Point) (bool, error) {
	if actor.IsAdmin(r.adminLevel) {
		return true, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	reg, found, err := r.repo.RegionAt(ctx, p)
	if err != nil {
		return false, r.storageFault("can_modify", err, "point", p.String())
	}
	if !found {
		return true, nil
	}
	if reg.IsOwnedBy(actor.ID) {
		return true, nil
	}

	member, err := r.repo.IsMember(ctx, reg.ID, actor.ID)
	if err != nil {
		return false, r.storageFault("can_modify", err, "point", p.String(), "region", reg.ID)
	}
	return member, nil
}

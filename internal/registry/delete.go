package registry

import (
	"context"
	"errors"

	"github.com/roach88/realty/internal/region"
)

// DeleteRegion removes the region containing p on behalf of actor.
//
// Only the owner or an admin may delete. Returns NoRegion for an unclaimed
// point and NotOwner for anyone else. The ownership check and the delete run
// in one repository transaction. A storage fault returns Fail and a
// *region.StorageError.
func (r *Registry) DeleteRegion(ctx context.Context, p region.Point, actor region.Actor) (region.DeletionOutcome, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	admin := actor.IsAdmin(r.adminLevel)
	deleted, err := r.repo.DeleteRegionAt(ctx, p, func(reg region.Region) error {
		if admin || reg.IsOwnedBy(actor.ID) {
			return nil
		}
		return region.ErrNotOwner
	})

	switch {
	case err == nil:
		r.logger.Debug("region deleted", "id", deleted.ID, "box", deleted.Box.String(), "actor", actor.ID.String(), "admin", admin)
		return region.DeletionOK, nil
	case errors.Is(err, region.ErrNoRegion):
		return region.DeletionNoRegion, nil
	case errors.Is(err, region.ErrNotOwner):
		r.logger.Debug("deletion refused", "id", deleted.ID, "actor", actor.ID.String())
		return region.DeletionNotOwner, nil
	default:
		return region.DeletionFail, r.storageFault("delete", err, "point", p.String())
	}
}

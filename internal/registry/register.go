package registry

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/roach88/realty/internal/region"
)

// RegisterRequest describes a region to claim.
type RegisterRequest struct {
	Name string

	// A and B are opposite corners in any order.
	A, B region.Point

	// Owner is uuid.Nil for an unowned region.
	Owner uuid.UUID

	// Members may be nil. Duplicates and nil identities are dropped.
	Members []uuid.UUID
}

// Registration is the result of RegisterRegion. Region is only set when
// Outcome is region.RegistrationOK.
type Registration struct {
	Outcome region.RegistrationOutcome `json:"outcome"`
	Region  region.Region              `json:"region"`
}

// RegisterRegion claims the box spanned by req.A and req.B.
//
// Returns TooBig without touching storage when the normalized box exceeds the
// volume limit, Overlap when it intersects any stored region (touching
// boundaries included), and OK with the stored region otherwise. A storage
// fault returns Fail and a *region.StorageError; nothing is committed.
func (r *Registry) RegisterRegion(ctx context.Context, req RegisterRequest) (Registration, error) {
	box := region.NewBox(req.A, req.B)

	if v := box.Volume(); v > r.maxVolume {
		r.logger.Debug("registration rejected", "outcome", region.RegistrationTooBig, "box", box.String(), "volume", v)
		return Registration{Outcome: region.RegistrationTooBig}, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	stored, err := r.repo.InsertRegion(ctx, region.Region{
		Box:     box,
		Name:    region.NormalizeName(req.Name),
		Owner:   req.Owner,
		Members: region.UniqueMembers(req.Members),
	})
	if errors.Is(err, region.ErrOverlap) {
		r.logger.Debug("registration rejected", "outcome", region.RegistrationOverlap, "box", box.String())
		return Registration{Outcome: region.RegistrationOverlap}, nil
	}
	if err != nil {
		return Registration{Outcome: region.RegistrationFail}, r.storageFault("register", err, "box", box.String())
	}

	r.logger.Debug("region registered", "id", stored.ID, "box", box.String(), "owner", stored.Owner.String(), "members", len(stored.Members))
	return Registration{Outcome: region.RegistrationOK, Region: stored}, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/realty/internal/region"
)

// selectRegionAt finds the region containing a point. Regions never overlap,
// so at most one row matches; LIMIT 1 lets SQLite stop at the first hit.
const selectRegionAt = `
	SELECT ` + regionColumns + `
	FROM regions
	WHERE ? BETWEEN x1 AND x2
	  AND ? BETWEEN y1 AND y2
	  AND ? BETWEEN z1 AND z2
	LIMIT 1
`

// RegionAt returns the region whose box contains p, boundaries included.
// Returns found=false with a nil error when the point is unclaimed.
func (s *Store) RegionAt(ctx context.Context, p region.Point) (region.Region, bool, error) {
	r, found, err := scanRegionRow(s.db.QueryRowContext(ctx, selectRegionAt, p.X, p.Y, p.Z))
	if err != nil {
		return region.Region{}, false, fmt.Errorf("region at %s: %w", p, err)
	}
	return r, found, nil
}

// IsMember reports whether player holds a membership row for the region.
func (s *Store) IsMember(ctx context.Context, regionID int64, player uuid.UUID) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM memberships
		WHERE region_id = ? AND player_uuid = ?
	`, regionID, uuidBytes(player)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return count > 0, nil
}

// Members returns the member identities of a region ordered by their binary
// value. Returns an empty slice (not nil) for a region without members.
func (s *Store) Members(ctx context.Context, regionID int64) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_uuid FROM memberships
		WHERE region_id = ?
		ORDER BY player_uuid
	`, regionID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	members := []uuid.UUID{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		id, err := uuid.FromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode player_uuid: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

// Count returns the number of stored regions.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM regions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count regions: %w", err)
	}
	return n, nil
}

package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/roach88/realty/internal/region"
)

const regionColumns = `id, x1, y1, z1, x2, y2, z2, owner_uuid, name`

const selectRegionAt = `
SELECT ` + regionColumns + `
FROM regions
WHERE $1 BETWEEN x1 AND x2
  AND $2 BETWEEN y1 AND y2
  AND $3 BETWEEN z1 AND z2
ORDER BY id
LIMIT 1`

// insertLockID serializes region inserts so the overlap probe sees every
// committed box. Concurrent inserts that both reached the exclusion check
// would otherwise wait on each other and one would fail with a deadlock.
const insertLockID int64 = 727100010

const selectOverlap = `
SELECT id FROM regions
WHERE x1 <= $4 AND x2 >= $1
  AND y1 <= $5 AND y2 >= $2
  AND z1 <= $6 AND z2 >= $3
LIMIT 1`

func scanRegion(row pgx.Row) (region.Region, error) {
	var (
		r     region.Region
		owner pgtype.UUID
	)
	err := row.Scan(
		&r.ID,
		&r.Box.Min.X, &r.Box.Min.Y, &r.Box.Min.Z,
		&r.Box.Max.X, &r.Box.Max.Y, &r.Box.Max.Z,
		&owner, &r.Name,
	)
	if err != nil {
		return region.Region{}, err
	}
	r.Owner = fromPGUUID(owner)
	return r, nil
}

// InsertRegion stores r and its memberships in one transaction and
// returns r with its assigned ID. Returns region.ErrOverlap when any
// stored box intersects r.Box.
func (s *Store) InsertRegion(ctx context.Context, r region.Region) (region.Region, error) {
	b := r.Box
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, insertLockID); err != nil {
			return fmt.Errorf("lock regions: %w", err)
		}

		var existing int64
		err := tx.QueryRow(ctx, selectOverlap,
			b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z,
		).Scan(&existing)
		switch {
		case err == nil:
			return region.ErrOverlap
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("probe overlap: %w", err)
		}

		err = tx.QueryRow(ctx, `
INSERT INTO regions (x1, y1, z1, x2, y2, z2, owner_uuid, name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`,
			b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z,
			pgUUID(r.Owner), r.Name,
		).Scan(&r.ID)
		if err != nil {
			if isExclusionViolation(err) {
				return region.ErrOverlap
			}
			return fmt.Errorf("insert region: %w", err)
		}

		if len(r.Members) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for _, m := range r.Members {
			batch.Queue(`
INSERT INTO memberships (region_id, player_uuid) VALUES ($1, $2)
ON CONFLICT DO NOTHING`, r.ID, pgUUID(m))
		}
		br := tx.SendBatch(ctx, batch)
		for range r.Members {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert membership: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("insert membership: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, region.ErrOverlap) || isExclusionViolation(err) {
			return region.Region{}, region.ErrOverlap
		}
		return region.Region{}, err
	}
	return r, nil
}

// RegionAt returns the region containing p, if any.
func (s *Store) RegionAt(ctx context.Context, p region.Point) (region.Region, bool, error) {
	r, err := scanRegion(s.pool.QueryRow(ctx, selectRegionAt, p.X, p.Y, p.Z))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return region.Region{}, false, nil
		}
		return region.Region{}, false, fmt.Errorf("region at %s: %w", p, err)
	}
	return r, true, nil
}

// IsMember reports whether player is listed on region id.
func (s *Store) IsMember(ctx context.Context, id int64, player uuid.UUID) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM memberships WHERE region_id = $1 AND player_uuid = $2)`,
		id, pgUUID(player),
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	return ok, nil
}

// DeleteRegionAt locks the region containing p, asks authorize for
// permission, and removes it with its memberships. The lookup, the
// check, and the delete share one transaction. When authorize refuses,
// its error is returned together with the region that was found.
func (s *Store) DeleteRegionAt(ctx context.Context, p region.Point, authorize func(region.Region) error) (region.Region, error) {
	var found region.Region
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		r, err := scanRegion(tx.QueryRow(ctx, selectRegionAt+` FOR UPDATE`, p.X, p.Y, p.Z))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return region.ErrNoRegion
			}
			return fmt.Errorf("lookup region: %w", err)
		}
		found = r

		if authorize != nil {
			if err := authorize(r); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM memberships WHERE region_id = $1`, r.ID); err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM regions WHERE id = $1`, r.ID); err != nil {
			return fmt.Errorf("delete region: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, region.ErrNoRegion) {
			return region.Region{}, err
		}
		return found, err
	}
	return found, nil
}

// Members lists the members of region id ordered by uuid.
func (s *Store) Members(ctx context.Context, id int64) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
SELECT player_uuid FROM memberships WHERE region_id = $1 ORDER BY player_uuid`, id)
	if err != nil {
		return nil, fmt.Errorf("members: %w", err)
	}
	defer rows.Close()

	out := []uuid.UUID{}
	for rows.Next() {
		var v pgtype.UUID
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, fromPGUUID(v))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("members: %w", err)
	}
	return out, nil
}

// Count returns the number of stored regions.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM regions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count regions: %w", err)
	}
	return n, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/realty/internal/region"
)

// selectOverlap finds any region whose closed box intersects the candidate.
// Parameters: candidate x1, y1, z1, x2, y2, z2.
const selectOverlap = `
	SELECT id FROM regions
	WHERE x2 >= ? AND y2 >= ? AND z2 >= ?
	  AND x1 <= ? AND y1 <= ? AND z1 <= ?
	LIMIT 1
`

// InsertRegion stores r and its members in a single transaction and returns
// the stored region with its assigned ID.
//
// Returns region.ErrOverlap (unwrapped) when any stored region intersects
// r.Box. The overlap probe, region insert, ID retrieval, and membership
// inserts share one BEGIN IMMEDIATE transaction; any failure rolls back all
// of them, so a region is never stored without its requested members.
//
// r.Box must already be normalized. Duplicate members are ignored.
func (s *Store) InsertRegion(ctx context.Context, r region.Region) (region.Region, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return region.Region{}, fmt.Errorf("insert region: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	b := r.Box
	var conflictID int64
	err = tx.QueryRowContext(ctx, selectOverlap,
		b.Min.X, b.Min.Y, b.Min.Z,
		b.Max.X, b.Max.Y, b.Max.Z,
	).Scan(&conflictID)
	switch {
	case err == nil:
		return region.Region{}, region.ErrOverlap
	case errors.Is(err, sql.ErrNoRows):
	default:
		return region.Region{}, fmt.Errorf("insert region: overlap check: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO regions
		(x1, y1, z1, x2, y2, z2, owner_uuid, name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.Min.X, b.Min.Y, b.Min.Z,
		b.Max.X, b.Max.Y, b.Max.Z,
		uuidBytes(r.Owner),
		r.Name,
	)
	if err != nil {
		return region.Region{}, fmt.Errorf("insert region: insert: %w", err)
	}

	// Same transaction, same connection: no other insert can interleave.
	r.ID, err = result.LastInsertId()
	if err != nil {
		return region.Region{}, fmt.Errorf("insert region: last insert id: %w", err)
	}

	if len(r.Members) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO memberships (region_id, player_uuid)
			VALUES (?, ?)
			ON CONFLICT(region_id, player_uuid) DO NOTHING
		`)
		if err != nil {
			return region.Region{}, fmt.Errorf("insert region: prepare membership: %w", err)
		}
		defer stmt.Close()

		for _, m := range r.Members {
			if _, err := stmt.ExecContext(ctx, r.ID, uuidBytes(m)); err != nil {
				return region.Region{}, fmt.Errorf("insert region: membership %s: %w", m, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return region.Region{}, fmt.Errorf("insert region: commit: %w", err)
	}

	return r, nil
}

// DeleteRegionAt deletes the region containing p if authorize permits it.
//
// The lookup, the authorize call, and the deletes run in one transaction, so
// no other writer can replace the region between the ownership check and the
// delete. Returns region.ErrNoRegion when p is unclaimed, or authorize's error
// unchanged when it refuses. The deleted region is returned on success and
// alongside an authorize refusal.
//
// Membership rows are deleted explicitly before the region row; the
// ON DELETE CASCADE foreign key covers rows written by other tools.
func (s *Store) DeleteRegionAt(
	ctx context.Context,
	p region.Point,
	authorize func(region.Region) error,
) (region.Region, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return region.Region{}, fmt.Errorf("delete region: begin tx: %w", err)
	}
	defer tx.Rollback()

	r, found, err := scanRegionRow(tx.QueryRowContext(ctx, selectRegionAt, p.X, p.Y, p.Z))
	if err != nil {
		return region.Region{}, fmt.Errorf("delete region: lookup: %w", err)
	}
	if !found {
		return region.Region{}, region.ErrNoRegion
	}

	if authorize != nil {
		if err := authorize(r); err != nil {
			return r, err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM memberships WHERE region_id = ?`, r.ID); err != nil {
		return region.Region{}, fmt.Errorf("delete region: memberships: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM regions WHERE id = ?`, r.ID); err != nil {
		return region.Region{}, fmt.Errorf("delete region: region: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return region.Region{}, fmt.Errorf("delete region: commit: %w", err)
	}

	return r, nil
}

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/realty/internal/region"
)

// regionColumns is the column list every region SELECT uses; scanRegion
// depends on its order.
const regionColumns = `id, x1, y1, z1, x2, y2, z2, owner_uuid, name`

// uuidBytes returns the 16-byte binary form bound to BLOB columns.
func uuidBytes(id uuid.UUID) []byte {
	b := make([]byte, len(id))
	copy(b, id[:])
	return b
}

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRegion reads one row selected with regionColumns.
// Members are left nil; point lookups never populate them.
func scanRegion(row rowScanner) (region.Region, error) {
	var (
		r     region.Region
		owner []byte
	)
	err := row.Scan(
		&r.ID,
		&r.Box.Min.X, &r.Box.Min.Y, &r.Box.Min.Z,
		&r.Box.Max.X, &r.Box.Max.Y, &r.Box.Max.Z,
		&owner,
		&r.Name,
	)
	if err != nil {
		return region.Region{}, err
	}

	r.Owner, err = uuid.FromBytes(owner)
	if err != nil {
		return region.Region{}, fmt.Errorf("decode owner_uuid: %w", err)
	}
	return r, nil
}

// scanRegionRow is scanRegion for QueryRow results, translating
// sql.ErrNoRows into found=false.
func scanRegionRow(row *sql.Row) (region.Region, bool, error) {
	r, err := scanRegion(row)
	if err == sql.ErrNoRows {
		return region.Region{}, false, nil
	}
	if err != nil {
		return region.Region{}, false, err
	}
	return r, true, nil
}

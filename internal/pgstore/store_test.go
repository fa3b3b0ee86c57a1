package pgstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/realty/internal/pgstore"
	"github.com/roach88/realty/internal/pgstore/migrations"
	"github.com/roach88/realty/internal/region"
	"github.com/roach88/realty/internal/testutil"
)

func newTestStore(t *testing.T) *pgstore.Store {
	t.Helper()
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	require.NoError(t, migrations.Apply(ctx, pool))
	testutil.TruncateRegions(t, ctx, pool)
	return pgstore.New(pool)
}

func box(a, b region.Point) region.Box {
	return region.NewBox(a, b)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := pgstore.Open(context.Background(), "")
	require.Error(t, err)
}

func TestApply_Idempotent(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	require.NoError(t, migrations.Apply(ctx, pool))
	require.NoError(t, migrations.Apply(ctx, pool))

	names, err := migrations.Names()
	require.NoError(t, err)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.GreaterOrEqual(t, count, len(names))
}

func TestInsertRegion_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.InsertRegion(ctx, region.Region{
		Box:     box(region.Pt(0, 60, -5), region.Pt(10, 64, 5)),
		Name:    "Home",
		Owner:   testutil.Alice,
		Members: []uuid.UUID{testutil.Carol, testutil.Bob},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	at, ok, err := s.RegionAt(ctx, region.Pt(10, 64, 5))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, got.ID, at.ID)
	assert.Equal(t, testutil.Alice, at.Owner)
	assert.Equal(t, "Home", at.Name)

	members, err := s.Members(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{testutil.Bob, testutil.Carol}, members)

	member, err := s.IsMember(ctx, got.ID, testutil.Bob)
	require.NoError(t, err)
	assert.True(t, member)

	member, err = s.IsMember(ctx, got.ID, testutil.Dave)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestInsertRegion_TouchingBoxesOverlap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.InsertRegion(ctx, region.Region{Box: box(region.Pt(0, 0, 0), region.Pt(10, 10, 10)), Name: "a", Owner: testutil.Alice})
	require.NoError(t, err)

	_, err = s.InsertRegion(ctx, region.Region{Box: box(region.Pt(10, 10, 10), region.Pt(20, 20, 20)), Name: "b", Owner: testutil.Bob})
	assert.ErrorIs(t, err, region.ErrOverlap)

	_, err = s.InsertRegion(ctx, region.Region{Box: box(region.Pt(11, 0, 0), region.Pt(20, 10, 10)), Name: "c", Owner: testutil.Bob})
	assert.NoError(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestInsertRegion_ExclusionConstraintBacksProbe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.InsertRegion(ctx, region.Region{Box: box(region.Pt(0, 0, 0), region.Pt(5, 5, 5)), Name: "a", Owner: testutil.Alice})
	require.NoError(t, err)

	_, err = s.Pool().Exec(ctx, `
INSERT INTO regions (x1, y1, z1, x2, y2, z2, owner_uuid, name)
VALUES (5, 5, 5, 6, 6, 6, $1, 'raw')`, pgtype.UUID{Bytes: testutil.Bob, Valid: true})
	require.Error(t, err, "constraint rejects overlap even without the probe")
}

func TestInsertRegion_ConcurrentOverlapExactlyOneWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const racers = 4
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		overlaps int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.InsertRegion(ctx, region.Region{
				Box:   box(region.Pt(i, 0, 0), region.Pt(i+10, 10, 10)),
				Name:  "race",
				Owner: testutil.Alice,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, region.ErrOverlap):
				overlaps++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, racers-1, overlaps)
}

func TestDeleteRegionAt_CascadesMemberships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.InsertRegion(ctx, region.Region{
		Box:     box(region.Pt(0, 0, 0), region.Pt(3, 3, 3)),
		Name:    "yard",
		Owner:   testutil.Alice,
		Members: []uuid.UUID{testutil.Bob},
	})
	require.NoError(t, err)

	deleted, err := s.DeleteRegionAt(ctx, region.Pt(1, 1, 1), func(r region.Region) error {
		if !r.IsOwnedBy(testutil.Alice) {
			return region.ErrNotOwner
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, got.ID, deleted.ID)

	var rows int
	require.NoError(t, s.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM memberships WHERE region_id = $1`, got.ID).Scan(&rows))
	assert.Zero(t, rows)

	_, ok, err := s.RegionAt(ctx, region.Pt(1, 1, 1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteRegionAt_RefusedLeavesRegion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.InsertRegion(ctx, region.Region{Box: box(region.Pt(0, 0, 0), region.Pt(3, 3, 3)), Name: "yard", Owner: testutil.Alice})
	require.NoError(t, err)

	found, err := s.DeleteRegionAt(ctx, region.Pt(0, 0, 0), func(region.Region) error { return region.ErrNotOwner })
	assert.ErrorIs(t, err, region.ErrNotOwner)
	assert.Equal(t, "yard", found.Name)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteRegionAt_NoRegion(t *testing.T) {
	s := newTestStore(t)

	_, err := s.DeleteRegionAt(context.Background(), region.Pt(100, 100, 100), nil)
	assert.ErrorIs(t, err, region.ErrNoRegion)
}

func TestMembers_EmptyIsNonNil(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.InsertRegion(ctx, region.Region{Box: box(region.Pt(0, 0, 0), region.Pt(1, 1, 1)), Name: "solo", Owner: testutil.Alice})
	require.NoError(t, err)

	members, err := s.Members(ctx, got.ID)
	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)
}

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/realty/internal/region"
)

func TestRegionAt_ClosedContainment(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	in, err := s.InsertRegion(ctx, createTestRegion("unit", region.Pt(0, 0, 0), region.Pt(1, 1, 1), alice, bob))
	require.NoError(t, err)

	for _, p := range []region.Point{region.Pt(0, 0, 0), region.Pt(1, 1, 1), region.Pt(1, 0, 1)} {
		got, found, err := s.RegionAt(ctx, p)
		require.NoError(t, err)
		require.True(t, found, "point %s", p)
		assert.Equal(t, in.ID, got.ID)
		assert.Equal(t, in.Box, got.Box)
		assert.Equal(t, "unit", got.Name)
		assert.Equal(t, alice, got.Owner)
		assert.Nil(t, got.Members)
	}

	_, found, err := s.RegionAt(ctx, region.Pt(2, 0, 0))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRegionAt_NilOwnerRoundTrips(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.InsertRegion(ctx, createTestRegion("spawn", region.Pt(-3, -3, -3), region.Pt(3, 3, 3), uuid.Nil))
	require.NoError(t, err)

	got, found, err := s.RegionAt(ctx, region.Pt(-3, 0, 3))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, region.NilOwner, got.Owner)
}

func TestIsMember(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r, err := s.InsertRegion(ctx, createTestRegion("r", region.Pt(0, 0, 0), region.Pt(1, 1, 1), alice, bob))
	require.NoError(t, err)

	ok, err := s.IsMember(ctx, r.ID, bob)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsMember(ctx, r.ID, carol)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.IsMember(ctx, r.ID, alice)
	require.NoError(t, err)
	assert.False(t, ok, "the owner is not implicitly a member row")

	ok, err = s.IsMember(ctx, r.ID+100, bob)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMembers(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r, err := s.InsertRegion(ctx, createTestRegion("r", region.Pt(0, 0, 0), region.Pt(1, 1, 1), alice, carol, bob))
	require.NoError(t, err)

	members, err := s.Members(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob, carol}, members, "ordered by binary uuid")

	empty, err := s.Members(ctx, r.ID+1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCount(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = s.InsertRegion(ctx, createTestRegion("r", region.Pt(0, 0, 0), region.Pt(1, 1, 1), alice))
	require.NoError(t, err)

	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

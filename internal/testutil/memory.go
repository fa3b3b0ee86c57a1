package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/realty/internal/region"
)

// MemoryRepository is an in-memory region repository for tests.
//
// It mirrors the SQLite store's semantics (closed-interval overlap, atomic
// check-then-insert, membership cascade on delete) and can be told to fail
// specific operations to exercise fault paths.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	regions map[int64]region.Region
	members map[int64]map[uuid.UUID]struct{}
	faults  map[Op]error
	calls   map[Op]int
}

// Op names a repository operation for fault injection and call counting.
type Op string

const (
	OpInsert   Op = "insert"
	OpRegionAt Op = "region_at"
	OpIsMember Op = "is_member"
	OpDelete   Op = "delete"
)

// NewMemoryRepository creates an empty repository. The first ID assigned is 1.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		regions: make(map[int64]region.Region),
		members: make(map[int64]map[uuid.UUID]struct{}),
		faults:  make(map[Op]error),
		calls:   make(map[Op]int),
	}
}

// FailOn makes every subsequent call of op return err. A nil err clears it.
func (m *MemoryRepository) FailOn(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, op)
		return
	}
	m.faults[op] = err
}

// Calls returns how many times op was invoked.
func (m *MemoryRepository) Calls(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Len returns the number of stored regions.
func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.regions)
}

// MembershipRows returns the number of membership rows for a region id,
// including rows of regions that no longer exist.
func (m *MemoryRepository) MembershipRows(regionID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.members[regionID])
}

// enter records the call and returns the injected fault, if any.
// Caller must hold m.mu.
func (m *MemoryRepository) enter(ctx context.Context, op Op) error {
	m.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.faults[op]
}

// InsertRegion stores r if it does not overlap any stored region.
func (m *MemoryRepository) InsertRegion(ctx context.Context, r region.Region) (region.Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpInsert); err != nil {
		return region.Region{}, err
	}

	for _, existing := range m.regions {
		if existing.Box.Overlaps(r.Box) {
			return region.Region{}, region.ErrOverlap
		}
	}

	m.nextID++
	r.ID = m.nextID
	stored := r
	stored.Members = nil
	m.regions[r.ID] = stored

	if len(r.Members) > 0 {
		set := make(map[uuid.UUID]struct{}, len(r.Members))
		for _, id := range r.Members {
			set[id] = struct{}{}
		}
		m.members[r.ID] = set
	}
	return r, nil
}

// RegionAt returns the region containing p.
func (m *MemoryRepository) RegionAt(ctx context.Context, p region.Point) (region.Region, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpRegionAt); err != nil {
		return region.Region{}, false, err
	}
	r, ok := m.regionAtLocked(p)
	return r, ok, nil
}

// regionAtLocked scans in ID order so results are deterministic even if a
// test inserts overlapping data directly. Caller must hold m.mu.
func (m *MemoryRepository) regionAtLocked(p region.Point) (region.Region, bool) {
	ids := make([]int64, 0, len(m.regions))
	for id := range m.regions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if r := m.regions[id]; r.Box.Contains(p) {
			return r, true
		}
	}
	return region.Region{}, false
}

// IsMember reports whether player is a member of regionID.
func (m *MemoryRepository) IsMember(ctx context.Context, regionID int64, player uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpIsMember); err != nil {
		return false, err
	}
	_, ok := m.members[regionID][player]
	return ok, nil
}

// DeleteRegionAt deletes the region at p if authorize permits it.
func (m *MemoryRepository) DeleteRegionAt(
	ctx context.Context,
	p region.Point,
	authorize func(region.Region) error,
) (region.Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpDelete); err != nil {
		return region.Region{}, err
	}

	r, ok := m.regionAtLocked(p)
	if !ok {
		return region.Region{}, region.ErrNoRegion
	}
	if authorize != nil {
		if err := authorize(r); err != nil {
			return r, err
		}
	}
	delete(m.regions, r.ID)
	delete(m.members, r.ID)
	return r, nil
}

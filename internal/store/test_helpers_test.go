package store

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/roach88/realty/internal/region"
)

var (
	alice = uuid.MustParse("00000000-0000-0000-0000-00000000a11c")
	bob   = uuid.MustParse("00000000-0000-0000-0000-000000000b0b")
	carol = uuid.MustParse("00000000-0000-0000-0000-0000000ca201")
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRegion builds a region with a normalized box.
func createTestRegion(name string, a, b region.Point, owner uuid.UUID, members ...uuid.UUID) region.Region {
	return region.Region{
		Box:     region.NewBox(a, b),
		Name:    name,
		Owner:   owner,
		Members: members,
	}
}

func countRows(t *testing.T, s *Store, query string, args ...any) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}

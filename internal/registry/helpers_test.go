package registry_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/realty/internal/pgstore"
	"github.com/roach88/realty/internal/pgstore/migrations"
	"github.com/roach88/realty/internal/registry"
	"github.com/roach88/realty/internal/store"
	"github.com/roach88/realty/internal/testutil"
)

var (
	_ registry.Repository = (*store.Store)(nil)
	_ registry.Repository = (*pgstore.Store)(nil)
	_ registry.Repository = (*testutil.MemoryRepository)(nil)
)

// backend builds a fresh repository for one test.
type backend struct {
	name string
	open func(t *testing.T) registry.Repository
}

var backends = []backend{
	{
		name: "sqlite",
		open: func(t *testing.T) registry.Repository {
			t.Helper()
			s, err := store.Open(filepath.Join(t.TempDir(), "regions.db"))
			if err != nil {
				t.Fatalf("store.Open() failed: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	},
	{
		name: "postgres",
		open: func(t *testing.T) registry.Repository {
			t.Helper()
			pool := testutil.NewTestPool(t)
			ctx := context.Background()
			if err := migrations.Apply(ctx, pool); err != nil {
				t.Fatalf("migrations.Apply() failed: %v", err)
			}
			testutil.TruncateRegions(t, ctx, pool)
			return pgstore.New(pool)
		},
	},
	{
		name: "memory",
		open: func(t *testing.T) registry.Repository {
			return testutil.NewMemoryRepository()
		},
	},
}

// forEachBackend runs fn once per repository implementation.
func forEachBackend(t *testing.T, fn func(t *testing.T, reg *registry.Registry)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, registry.New(b.open(t)))
		})
	}
}

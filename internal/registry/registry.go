package registry

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/realty/internal/region"
)

// Repository is the storage contract the registry depends on.
// Implementations: store.Store (SQLite), pgstore.Store (PostgreSQL).
type Repository interface {
	// InsertRegion atomically checks for overlap and stores the region with
	// its members. Returns region.ErrOverlap when the box intersects a
	// stored region.
	InsertRegion(ctx context.Context, r region.Region) (region.Region, error)

	// RegionAt returns the region containing p, or found=false.
	RegionAt(ctx context.Context, p region.Point) (region.Region, bool, error)

	// IsMember reports whether player is a member of the region.
	IsMember(ctx context.Context, regionID int64, player uuid.UUID) (bool, error)

	// DeleteRegionAt looks up the region at p, calls authorize, and deletes
	// it with its memberships, all in one transaction. Returns
	// region.ErrNoRegion or authorize's error unchanged.
	DeleteRegionAt(ctx context.Context, p region.Point, authorize func(region.Region) error) (region.Region, error)
}

// DefaultQueryTimeout bounds every repository round trip.
const DefaultQueryTimeout = 5 * time.Second

// Registry is the region store: registration, point lookup, permission
// checks, and deletion over an injected Repository.
//
// Thread-safety: Registry holds no mutable state and is safe for concurrent
// use when the Repository is.
type Registry struct {
	repo         Repository
	logger       *slog.Logger
	maxVolume    int64
	adminLevel   int
	queryTimeout time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the structured logger. Defaults to discarding output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxVolume overrides region.DefaultMaxVolume.
func WithMaxVolume(v int64) Option {
	return func(r *Registry) {
		if v > 0 {
			r.maxVolume = v
		}
	}
}

// WithAdminLevel overrides region.DefaultAdminLevel.
func WithAdminLevel(level int) Option {
	return func(r *Registry) {
		r.adminLevel = level
	}
}

// WithQueryTimeout overrides DefaultQueryTimeout. Zero or negative disables
// the registry's own deadline; the caller's context still applies.
func WithQueryTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.queryTimeout = d
	}
}

// New creates a Registry over repo.
func New(repo Repository, opts ...Option) *Registry {
	r := &Registry{
		repo:         repo,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxVolume:    region.DefaultMaxVolume,
		adminLevel:   region.DefaultAdminLevel,
		queryTimeout: DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxVolume returns the configured volume limit.
func (r *Registry) MaxVolume() int64 {
	return r.maxVolume
}

// AdminLevel returns the permission level that bypasses ownership checks.
func (r *Registry) AdminLevel() int {
	return r.adminLevel
}

// withTimeout derives the per-call deadline.
func (r *Registry) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

// storageFault logs and wraps a repository error.
func (r *Registry) storageFault(op string, err error, attrs ...any) error {
	r.logger.Error("storage failure", append([]any{"op", op, "error", err}, attrs...)...)
	return &region.StorageError{Op: op, Err: err}
}

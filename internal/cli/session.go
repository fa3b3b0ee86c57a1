package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/realty/internal/config"
	"github.com/roach88/realty/internal/pgstore"
	"github.com/roach88/realty/internal/registry"
	"github.com/roach88/realty/internal/store"
)

// Backend is a repository the CLI can open and close.
type Backend interface {
	registry.Repository
	Members(ctx context.Context, regionID int64) ([]uuid.UUID, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

var (
	_ Backend = (*store.Store)(nil)
	_ Backend = (*pgstore.Store)(nil)
)

// OpenBackend opens the storage selected by cfg.
func OpenBackend(ctx context.Context, cfg config.Storage) (Backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		st, err := store.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverPostgres:
		st, err := pgstore.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// session bundles what every data command needs.
type session struct {
	cfg      config.Config
	logger   *slog.Logger
	backend  Backend
	registry *registry.Registry
	out      *OutputFormatter
}

func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logger := cfg.Log.NewLogger(cmd.ErrOrStderr(), opts.Verbose)

	logger.Debug("opening storage", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)
	backend, err := OpenBackend(commandContext(cmd), cfg.Storage)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	reg := registry.New(backend,
		registry.WithLogger(logger),
		registry.WithMaxVolume(cfg.Limits.MaxVolume),
		registry.WithAdminLevel(cfg.Limits.AdminLevel),
		registry.WithQueryTimeout(cfg.Limits.QueryTimeout),
	)

	return &session{
		cfg:      cfg,
		logger:   logger,
		backend:  backend,
		registry: reg,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}, nil
}

func (s *session) Close() {
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// commandContext returns the command's context, or Background when unset
// (commands executed directly in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

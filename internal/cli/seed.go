package cli

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/realty/internal/region"
	"github.com/roach88/realty/internal/registry"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Count  int
	Extent int
	Seed   uint64
	Name   string
}

// SeedResult tallies registration outcomes from a seed run.
type SeedResult struct {
	Attempted int   `json:"attempted"`
	OK        int   `json:"ok"`
	Overlap   int   `json:"overlap"`
	TooBig    int   `json:"too_big"`
	Regions   int64 `json:"regions"`
}

func (r SeedResult) String() string {
	return fmt.Sprintf("attempted %d: %d ok, %d overlap, %d too big (%d regions stored)",
		r.Attempted, r.OK, r.Overlap, r.TooBig, r.Regions)
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register random unowned regions",
		Long: `Attempt --count registrations of random boxes with both corners drawn
from [0, --extent) on every axis. Regions are unowned. Most attempts overlap
once the space fills up; the summary reports each outcome.

Example:
  realty seed --db /tmp/realty.db --count 1000 --extent 100 --seed 42`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 1000, "number of registration attempts")
	cmd.Flags().IntVar(&opts.Extent, "extent", 100, "coordinates are drawn from [0, extent)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (0 uses the current time)")
	cmd.Flags().StringVar(&opts.Name, "name", "Region", "name for every seeded region")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	if opts.Count < 0 {
		return NewExitError(ExitCommandError, "--count must not be negative")
	}
	if opts.Extent <= 0 {
		return NewExitError(ExitCommandError, "--extent must be positive")
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	s.logger.Debug("seeding regions", "count", opts.Count, "extent", opts.Extent, "seed", seed)

	ctx := commandContext(cmd)
	var res SeedResult
	for i := 0; i < opts.Count; i++ {
		req := registry.RegisterRequest{
			Name: opts.Name,
			A:    region.Pt(rng.IntN(opts.Extent), rng.IntN(opts.Extent), rng.IntN(opts.Extent)),
			B:    region.Pt(rng.IntN(opts.Extent), rng.IntN(opts.Extent), rng.IntN(opts.Extent)),
		}
		reg, err := s.registry.RegisterRegion(ctx, req)
		if err != nil {
			return s.out.StorageFailure(fmt.Sprintf("seed attempt %d", res.Attempted+1), err, res)
		}
		res.Attempted++
		switch reg.Outcome {
		case region.RegistrationOK:
			res.OK++
		case region.RegistrationOverlap:
			res.Overlap++
		case region.RegistrationTooBig:
			res.TooBig++
		}
		s.out.VerboseLog("%d: %s %s", i, req.A, reg.Outcome)
	}

	res.Regions, err = s.backend.Count(ctx)
	if err != nil {
		return s.out.StorageFailure("count", err, res)
	}
	return s.out.Success(res)
}

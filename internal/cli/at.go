package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/realty/internal/region"
)

// AtOptions holds flags for the at command.
type AtOptions struct {
	*RootOptions
	Members bool
}

// AtResult is the output of the at command.
type AtResult struct {
	At     region.Point   `json:"at"`
	Found  bool           `json:"found"`
	Region *region.Region `json:"region,omitempty"`
}

// Verdict is Found or Unclaimed; both exit successfully.
func (r AtResult) Verdict() (string, bool) {
	if r.Found {
		return "Found", true
	}
	return "Unclaimed", true
}

func (r AtResult) Detail() string {
	if !r.Found {
		return r.At.String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s region %d %q %s owner=%s", r.At, r.Region.ID, r.Region.Name, r.Region.Box, r.Region.Owner)
	for _, m := range r.Region.Members {
		fmt.Fprintf(&b, "\n  member %s", m)
	}
	return b.String()
}

// NewAtCommand creates the at command.
func NewAtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AtOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "at <x,y,z>",
		Short: "Show the region containing a point",
		Long: `Show the region containing a point. Region boundaries are inclusive.

Example:
  realty at 5,62,5 --members
  realty at 5,62,5 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAt(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Members, "members", false, "include member list")

	return cmd
}

func runAt(opts *AtOptions, arg string, cmd *cobra.Command) error {
	p, err := ParsePoint(arg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	r, found, err := s.registry.RegionAt(ctx, p)
	if err != nil {
		return s.out.StorageFailure("at", err, nil)
	}

	out := AtResult{At: p, Found: found}
	if found {
		if opts.Members {
			members, err := s.backend.Members(ctx, r.ID)
			if err != nil {
				return s.out.StorageFailure("members", err, nil)
			}
			r.Members = members
		}
		out.Region = &r
	}
	return s.out.Report("at", out)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/realty/internal/region"
)

// CanModifyOptions holds flags for the can-modify command.
type CanModifyOptions struct {
	*RootOptions
	ActorOptions
	At string
}

// CanModifyResult is the output of the can-modify command.
type CanModifyResult struct {
	At      region.Point `json:"at"`
	Actor   region.Actor `json:"actor"`
	Allowed bool         `json:"allowed"`
}

func (r CanModifyResult) Verdict() (string, bool) {
	if r.Allowed {
		return "Allowed", true
	}
	return "Denied", false
}

func (r CanModifyResult) Detail() string {
	return fmt.Sprintf("%s at %s", r.Actor.ID, r.At)
}

// NewCanModifyCommand creates the can-modify command.
func NewCanModifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CanModifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "can-modify",
		Short: "Check whether a player may modify blocks at a point",
		Long: `Check whether --actor may modify blocks at --at.

Admins always may. Unclaimed space is open to everyone. Inside a region only
the owner and members may.

Exit codes:
  0 - Allowed
  1 - Denied
  2 - Command or storage error (never reported as a denial)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCanModify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "point x,y,z (required)")
	_ = cmd.MarkFlagRequired("at")
	opts.ActorOptions.register(cmd)

	return cmd
}

func runCanModify(opts *CanModifyOptions, cmd *cobra.Command) error {
	p, err := ParsePoint(opts.At)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}
	actor, err := opts.actor()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	allowed, err := s.registry.CanModifyAt(commandContext(cmd), actor, p)
	if err != nil {
		return s.out.StorageFailure("can-modify", err, nil)
	}
	return s.out.Report("can-modify", CanModifyResult{At: p, Actor: actor, Allowed: allowed})
}

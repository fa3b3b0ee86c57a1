package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/realty/internal/region"
)

// ActorOptions identifies who is acting.
type ActorOptions struct {
	Actor string
	Level int
}

func (o *ActorOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Actor, "actor", "", "acting player UUID (required)")
	cmd.Flags().IntVar(&o.Level, "level", 0, "acting player's permission level")
	_ = cmd.MarkFlagRequired("actor")
}

func (o *ActorOptions) actor() (region.Actor, error) {
	id, err := ParseIdentity(o.Actor)
	if err != nil {
		return region.Actor{}, fmt.Errorf("--actor: %w", err)
	}
	return region.Actor{ID: id, Level: o.Level}, nil
}

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	ActorOptions
	At string
}

// DeleteResult is the output of the delete command.
type DeleteResult struct {
	Outcome region.DeletionOutcome `json:"outcome"`
	At      region.Point           `json:"at"`
}

func (r DeleteResult) Verdict() (string, bool) {
	return r.Outcome.String(), r.Outcome == region.DeletionOK
}

func (r DeleteResult) Detail() string {
	return r.At.String()
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the region containing a point",
		Long: `Delete the region containing --at.

Only the region's owner or an admin (level >= limits.admin_level) may delete.
Memberships are removed with the region.

Exit codes:
  0 - Region deleted
  1 - NotOwner or NoRegion
  2 - Command or storage error`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "point x,y,z inside the region (required)")
	_ = cmd.MarkFlagRequired("at")
	opts.ActorOptions.register(cmd)

	return cmd
}

func runDelete(opts *DeleteOptions, cmd *cobra.Command) error {
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

	outcome, err := s.registry.DeleteRegion(commandContext(cmd), p, actor)
	if err != nil {
		return s.out.StorageFailure("delete", err, nil)
	}
	return s.out.Report("delete", DeleteResult{Outcome: outcome, At: p})
}

package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/realty/internal/region"
	"github.com/roach88/realty/internal/registry"
)

// RegisterOptions holds flags for the register command.
type RegisterOptions struct {
	*RootOptions
	Name    string
	A       string
	B       string
	Owner   string
	Members []string
}

// RegisterResult is the output of the register command.
type RegisterResult struct {
	Outcome region.RegistrationOutcome `json:"outcome"`
	Region  *region.Region             `json:"region,omitempty"`
}

func (r RegisterResult) Verdict() (string, bool) {
	return r.Outcome.String(), r.Outcome == region.RegistrationOK
}

func (r RegisterResult) Detail() string {
	if r.Region == nil {
		return ""
	}
	return fmt.Sprintf("region %d %q %s", r.Region.ID, r.Region.Name, r.Region.Box)
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegisterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Claim a box as a new region",
		Long: `Claim the box spanned by two opposite corners.

Boxes that touch an existing region on a face, edge, or corner overlap it.
The volume (x2-x1)*(y2-y1)*(z2-z1) must not exceed limits.max_volume.

Exit codes:
  0 - Region registered
  1 - Rejected (Overlap or TooBig)
  2 - Command or storage error

Example:
  realty register --db ./realty.db --name Home --a 0,60,0 --b 10,64,10 \
    --owner 0190f5c4-7d8e-7000-8000-000000000001`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "region name")
	cmd.Flags().StringVar(&opts.A, "a", "", "first corner x,y,z (required)")
	cmd.Flags().StringVar(&opts.B, "b", "", "opposite corner x,y,z (required)")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner UUID (empty for an unowned region)")
	cmd.Flags().StringSliceVar(&opts.Members, "member", nil, "member UUID (repeatable)")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")

	return cmd
}

func runRegister(opts *RegisterOptions, cmd *cobra.Command) error {
	req, err := opts.request()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.registry.RegisterRegion(commandContext(cmd), req)
	if err != nil {
		return s.out.StorageFailure("register", err, nil)
	}

	out := RegisterResult{Outcome: res.Outcome}
	if res.Outcome == region.RegistrationOK {
		out.Region = &res.Region
	}
	return s.out.Report("register", out)
}

func (o *RegisterOptions) request() (registry.RegisterRequest, error) {
	a, err := ParsePoint(o.A)
	if err != nil {
		return registry.RegisterRequest{}, fmt.Errorf("--a: %w", err)
	}
	b, err := ParsePoint(o.B)
	if err != nil {
		return registry.RegisterRequest{}, fmt.Errorf("--b: %w", err)
	}
	owner, err := ParseIdentity(o.Owner)
	if err != nil {
		return registry.RegisterRequest{}, fmt.Errorf("--owner: %w", err)
	}

	var members []uuid.UUID
	for _, m := range o.Members {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		id, err := ParseIdentity(m)
		if err != nil {
			return registry.RegisterRequest{}, fmt.Errorf("--member: %w", err)
		}
		members = append(members, id)
	}

	return registry.RegisterRequest{Name: o.Name, A: a, B: b, Owner: owner, Members: members}, nil
}

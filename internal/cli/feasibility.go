package cli

import (
	"github.com/spf13/cobra"

	"github.com/me/rtsched/internal/feasibility"
	"github.com/me/rtsched/internal/report"
	"github.com/me/rtsched/pkg/model"
)

// newFeasibilityCmd builds the edf, rm and dm commands.
func newFeasibilityCmd(discipline, short string) *cobra.Command {
	return &cobra.Command{
		Use:   discipline + " <file|->",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := loadTaskSet(cmd, args[0])
			if err != nil {
				return err
			}
			rep, err := feasibility.Analyze(model.Discipline(discipline), n.Tasks)
			if err != nil {
				return err
			}
			logger.Debug("analyzed", "discipline", discipline, "verdict", rep.Verdict)
			f := report.NewFeasibility(n.Name, n.Scale, n.Tasks, rep)
			if err := report.New(cmd.OutOrStdout(), output).Feasibility(f); err != nil {
				return err
			}
			return checkVerdict(n.Name, rep.Verdict)
		},
	}
}

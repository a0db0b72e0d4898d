package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/me/rtsched/internal/config"
	"github.com/me/rtsched/internal/cyclic"
	"github.com/me/rtsched/internal/report"
	"github.com/me/rtsched/internal/taskset"
	"github.com/me/rtsched/pkg/model"
)

func newCyclicCmd() *cobra.Command {
	cfg := config.DefaultAnalysisConfig()

	cmd := &cobra.Command{
		Use:   "cyclic <file|->",
		Short: "Build cyclic-executive timetables for a task set",
		Long: "Check utilization, compute the hyperperiod, search the valid frame sizes and\n" +
			"pack every periodic job of the hyperperiod into frames for each of them.\n" +
			"Exits non-zero unless at least one frame size yields a timetable.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := loadTaskSet(cmd, args[0])
			if err != nil {
				return err
			}
			c, err := runCyclic(cmd.Context(), cfg, n)
			if err != nil {
				return err
			}
			if err := report.New(cmd.OutOrStdout(), output).Cyclic(c); err != nil {
				return err
			}
			return checkVerdict(c.Name, c.Verdict)
		},
	}

	cmd.Flags().Int64Var(&cfg.FrameSize, "frame-size", 0, "Pack only this frame size, in normalized time units (0 for every candidate)")
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "Frame sizes packed in parallel")
	cmd.Flags().Int64Var(&cfg.MaxFrames, "max-frames", cfg.MaxFrames, "Frames allowed across all timetables of the run")
	cmd.Flags().Int64Var(&cfg.MaxJobs, "max-jobs", cfg.MaxJobs, "Jobs allowed across all timetables of the run")
	return cmd
}

// runCyclic runs the frame scheduler and folds whole-run aborts into the
// report.
func runCyclic(ctx context.Context, cfg config.AnalysisConfig, n *taskset.Normalized) (*report.Cyclic, error) {
	res, err := cyclic.NewAnalyzer(cfg, logger).Run(ctx, n.Tasks)
	var (
		ue *model.InfeasibleUtilizationError
		ne *model.NoValidFrameSizeError
	)
	if err != nil && !errors.As(err, &ue) && !errors.As(err, &ne) {
		return nil, err
	}
	logger.Debug("cyclic analysis done", "name", n.Name, "timetables", len(res.Timetables()))
	return report.NewCyclic(n.Name, n.Scale, res, err), nil
}

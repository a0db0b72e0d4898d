package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/me/rtsched/internal/config"
	"github.com/me/rtsched/internal/tui"
)

func newBrowseCmd() *cobra.Command {
	cfg := config.DefaultAnalysisConfig()

	cmd := &cobra.Command{
		Use:   "browse <file>",
		Short: "Page through the timetables of every candidate frame size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-" {
				return errors.New("browse reads keys from stdin; pass the task set as a file")
			}
			n, err := loadTaskSet(cmd, args[0])
			if err != nil {
				return err
			}
			c, err := runCyclic(cmd.Context(), cfg, n)
			if err != nil {
				return err
			}
			return tui.Run(c, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "Frame sizes packed in parallel")
	return cmd
}

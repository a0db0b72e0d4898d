// Package cli implements the rtsched command line: local analyses of task-set
// files and a client for the task-set registry served by rtsched-server.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/rtsched/internal/logging"
	"github.com/me/rtsched/internal/report"
)

// Version is the rtsched release.
const Version = "0.1.0"

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagOutput    string

	logger *slog.Logger
	client *Client
	output report.Format
)

// defaultServer returns the default server URL, checking RTSCHED_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("RTSCHED_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the rtsched CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rtsched",
		Short: "rtsched: schedulability analysis for periodic real-time tasks",
		Long: "rtsched builds cyclic-executive timetables for periodic task sets and runs\n" +
			"the EDF, rate-monotonic and deadline-monotonic feasibility tests.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagDebug {
				flagLogLevel = "debug"
			}
			if err := logging.CheckFormat(flagLogFormat); err != nil {
				return err
			}
			f, err := report.ParseFormat(flagOutput)
			if err != nil {
				return err
			}
			output = f
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
			client = NewClient(flagServer, logger)
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "rtsched server URL (or RTSCHED_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text, json, yaml)")

	root.AddCommand(
		newCyclicCmd(),
		newFeasibilityCmd("edf", "Earliest-deadline-first feasibility (utilization or processor demand)"),
		newFeasibilityCmd("rm", "Rate-monotonic feasibility (utilization bounds and response-time analysis)"),
		newFeasibilityCmd("dm", "Deadline-monotonic feasibility (response-time analysis)"),
		newBrowseCmd(),
		newSetsCmd(),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rtsched version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rtsched %s\n", Version)
		},
	}
}

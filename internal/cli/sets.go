package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/rtsched/internal/report"
	"github.com/me/rtsched/pkg/model"
)

func newSetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "Manage task sets registered with an rtsched server",
	}
	cmd.AddCommand(
		newSetsAddCmd(),
		newSetsListCmd(),
		newSetsShowCmd(),
		newSetsRemoveCmd(),
		newSetsAnalyzeCmd(),
	)
	return cmd
}

func newSetsAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <file|->",
		Short: "Register a task set; identical content returns the existing entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, format, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			rec, created, err := client.RegisterTaskSet(cmd.Context(), name, string(data), string(format))
			if err != nil {
				return inputError(args[0], err)
			}
			if created {
				logger.Info("task set registered", "id", rec.ID, "hash", rec.ContentHash)
			} else {
				logger.Info("task set already registered", "id", rec.ID, "name", rec.Name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Task set name (overrides the name in the file)")
	return cmd
}

func newSetsListCmd() *cobra.Command {
	var (
		limit  int
		offset int
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered task sets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sets, page, err := client.ListTaskSets(cmd.Context(), model.ListOptions{Limit: limit, Offset: offset, Name: prefix})
			if err != nil {
				return fmt.Errorf("list task sets: %w", err)
			}

			if output != report.FormatText {
				r := report.New(cmd.OutOrStdout(), output)
				for i := range sets {
					if err := r.TaskSet(&sets[i]); err != nil {
						return err
					}
				}
				return nil
			}

			if len(sets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No task sets found.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%-39s  %-24s  %5s  %6s  %s\n", "ID", "NAME", "TASKS", "SCALE", "CREATED")
			fmt.Fprintf(cmd.OutOrStdout(), "%-39s  %-24s  %5s  %6s  %s\n", "--", "----", "-----", "-----", "-------")
			for _, s := range sets {
				fmt.Fprintf(cmd.OutOrStdout(), "%-39s  %-24s  %5d  %6d  %s\n", s.ID, s.Name, len(s.Tasks), s.Scale, s.CreatedAt.Format("2006-01-02 15:04:05"))
			}

			if page != nil && page.HasMore {
				fmt.Fprintf(cmd.OutOrStdout(), "\n(%d of %d shown)\n", len(sets), page.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of task sets to show (at most 100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of task sets to skip")
	cmd.Flags().StringVar(&prefix, "name", "", "Only task sets whose name starts with this prefix")
	return cmd
}

func newSetsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a registered task set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := client.GetTaskSet(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get task set: %w", err)
			}
			return report.New(cmd.OutOrStdout(), output).TaskSet(rec)
		},
	}
}

func newSetsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a registered task set",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DeleteTaskSet(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete task set: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newSetsAnalyzeCmd() *cobra.Command {
	var (
		discipline string
		frameSize  int64
	)

	cmd := &cobra.Command{
		Use:   "analyze <id>",
		Short: "Analyze a registered task set on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := model.ParseDiscipline(discipline)
			if !ok {
				return fmt.Errorf("unknown discipline %q (want one of %v)", discipline, model.Disciplines)
			}
			r := report.New(cmd.OutOrStdout(), output)
			if d == model.DisciplineCyclic {
				var c report.Cyclic
				if err := client.AnalyzeTaskSet(cmd.Context(), args[0], d, frameSize, &c); err != nil {
					return fmt.Errorf("analyze task set: %w", err)
				}
				if err := r.Cyclic(&c); err != nil {
					return err
				}
				return checkVerdict(c.Name, c.Verdict)
			}

			var f report.Feasibility
			if err := client.AnalyzeTaskSet(cmd.Context(), args[0], d, frameSize, &f); err != nil {
				return fmt.Errorf("analyze task set: %w", err)
			}
			if err := r.Feasibility(&f); err != nil {
				return err
			}
			return checkVerdict(f.Name, f.Verdict)
		},
	}

	cmd.Flags().StringVarP(&discipline, "discipline", "d", string(model.DisciplineCyclic), "Discipline: cyclic, edf, rm or dm")
	cmd.Flags().Int64Var(&frameSize, "frame-size", 0, "Cyclic only: pack only this frame size, in normalized time units")
	return cmd
}

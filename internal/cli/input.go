package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/rtsched/internal/taskset"
	"github.com/me/rtsched/pkg/model"
)

// readInput reads a task-set file, or stdin when path is "-". The format is
// taken from the file extension and sniffed for stdin.
func readInput(cmd *cobra.Command, path string) ([]byte, taskset.Format, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, taskset.FormatAuto, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read task set: %w", err)
	}
	return data, taskset.FormatForPath(path), nil
}

// loadTaskSet reads, validates and normalizes a task-set file. A set without
// a name is named after its file.
func loadTaskSet(cmd *cobra.Command, path string) (*taskset.Normalized, error) {
	data, format, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	n, err := taskset.New(logger).Load(data, format)
	if err != nil {
		return nil, inputError(path, err)
	}
	if n.Name == "" && path != "-" {
		n.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return n, nil
}

// inputError lists every field problem of a validation error, one per line.
func inputError(path string, err error) error {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Details) == 0 {
		return fmt.Errorf("%s: %w", path, err)
	}
	var b strings.Builder
	b.WriteString(apiErr.Message)
	for _, d := range apiErr.Details {
		b.WriteString("\n  ")
		b.WriteString(path)
		if d.Line > 0 {
			fmt.Fprintf(&b, ":%d", d.Line)
		}
		if d.Field != "" {
			b.WriteString(": ")
			b.WriteString(d.Field)
		}
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	return errors.New(b.String())
}

// verdictError makes the command exit non-zero for any verdict short of
// SCHEDULABLE. The report has already been written when it is returned.
type verdictError struct {
	name    string
	verdict model.Verdict
}

func (e *verdictError) Error() string {
	subject := "task set"
	if e.name != "" {
		subject += " " + e.name
	}
	if !e.verdict.IsConclusive() {
		return fmt.Sprintf("%s: %s, the test is inconclusive", subject, e.verdict)
	}
	return fmt.Sprintf("%s is %s", subject, e.verdict)
}

func checkVerdict(name string, v model.Verdict) error {
	if v == model.VerdictSchedulable {
		return nil
	}
	return &verdictError{name: name, verdict: v}
}

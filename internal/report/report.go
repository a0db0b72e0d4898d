// Package report renders analysis results as styled text, JSON or YAML.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/me/rtsched/internal/cyclic"
	"github.com/me/rtsched/internal/feasibility"
	"github.com/me/rtsched/pkg/model"
)

// Format is an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json or yaml in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// Cyclic is the serializable view of a cyclic-executive analysis.
type Cyclic struct {
	Name        string              `json:"name,omitempty" yaml:"name,omitempty"`
	Discipline  model.Discipline    `json:"discipline" yaml:"discipline"`
	Verdict     model.Verdict       `json:"verdict" yaml:"verdict"`
	Scale       int64               `json:"scale" yaml:"scale"`
	Tasks       model.TaskSet       `json:"tasks" yaml:"tasks"`
	Utilization float64             `json:"utilization" yaml:"utilization"`
	Hyperperiod int64               `json:"hyperperiod,omitempty" yaml:"hyperperiod,omitempty"`
	Search      *cyclic.FrameSearch `json:"search,omitempty" yaml:"search,omitempty"`
	Attempts    []cyclic.Attempt    `json:"attempts,omitempty" yaml:"attempts,omitempty"`
	Abort       string              `json:"abort,omitempty" yaml:"abort,omitempty"`
}

// NewCyclic builds the view of a cyclic run. runErr may be one of the
// whole-run aborts returned by cyclic.Analyzer.Run; other errors are the
// caller's to handle and should not reach here.
func NewCyclic(name string, scale int64, res *cyclic.Result, runErr error) *Cyclic {
	c := &Cyclic{
		Name:        name,
		Discipline:  model.DisciplineCyclic,
		Scale:       scale,
		Tasks:       res.Tasks,
		Utilization: res.Utilization,
		Hyperperiod: res.Hyperperiod,
		Attempts:    res.Attempts,
		Verdict:     res.Verdict(),
	}
	var ue *model.InfeasibleUtilizationError
	if !errors.As(runErr, &ue) {
		search := res.Search
		c.Search = &search
	}
	if runErr != nil {
		c.Abort = runErr.Error()
		c.Verdict = model.VerdictUnschedulable
	}
	return c
}

// Feasibility is the serializable view of an analytical test.
type Feasibility struct {
	Name               string        `json:"name,omitempty" yaml:"name,omitempty"`
	Scale              int64         `json:"scale" yaml:"scale"`
	Tasks              model.TaskSet `json:"tasks" yaml:"tasks"`
	feasibility.Report `yaml:",inline"`
}

// NewFeasibility wraps rep with the task set it was computed for.
func NewFeasibility(name string, scale int64, tasks model.TaskSet, rep *feasibility.Report) *Feasibility {
	return &Feasibility{Name: name, Scale: scale, Tasks: tasks, Report: *rep}
}

// Renderer writes results to w in a fixed format.
type Renderer struct {
	w      io.Writer
	format Format
	styles styles
}

// New creates a Renderer. Text styling adapts to w's color support.
func New(w io.Writer, format Format) *Renderer {
	return &Renderer{w: w, format: format, styles: newStyles(lipgloss.NewRenderer(w))}
}

// Cyclic writes a cyclic analysis.
func (r *Renderer) Cyclic(c *Cyclic) error {
	if r.format == FormatText {
		_, err := io.WriteString(r.w, r.cyclicText(c))
		return err
	}
	return r.encode(c)
}

// Feasibility writes an analytical test result.
func (r *Renderer) Feasibility(f *Feasibility) error {
	if r.format == FormatText {
		_, err := io.WriteString(r.w, r.feasibilityText(f))
		return err
	}
	return r.encode(f)
}

// TaskSet writes a registered task set.
func (r *Renderer) TaskSet(rec *model.TaskSetRecord) error {
	if r.format == FormatText {
		_, err := io.WriteString(r.w, r.taskSetText(rec))
		return err
	}
	return r.encode(rec)
}

func (r *Renderer) encode(v any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", r.format)
	}
}

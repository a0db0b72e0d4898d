package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/me/rtsched/internal/feasibility"
	"github.com/me/rtsched/pkg/model"
)

// MaxDemandRows limits how many processor-demand points the text report lists.
const MaxDemandRows = 20

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	unsure  lipgloss.Style
	detail  lipgloss.Style
	heading lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		label:   r.NewStyle().Width(14).Foreground(lipgloss.Color("#A0AEC0")),
		good:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50")),
		bad:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
		unsure:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801")),
		detail:  r.NewStyle().Foreground(lipgloss.Color("#999999")),
		heading: r.NewStyle().Bold(true),
	}
}

func (s styles) verdict(v model.Verdict) string {
	switch v {
	case model.VerdictSchedulable:
		return s.good.Render(v.String())
	case model.VerdictUnschedulable:
		return s.bad.Render(v.String())
	default:
		return s.unsure.Render(v.String())
	}
}

func (s styles) field(b *strings.Builder, label, value string) {
	b.WriteString(s.label.Render(label))
	b.WriteString(value)
	b.WriteByte('\n')
}

func (r *Renderer) header(b *strings.Builder, d model.Discipline, name string, tasks model.TaskSet, scale int64) {
	title := strings.ToUpper(string(d)) + " analysis"
	if name != "" {
		title += " of " + name
	}
	b.WriteString(r.styles.title.Render(title))
	b.WriteString("\n\n")
	b.WriteString(TaskTable(tasks))
	b.WriteByte('\n')
	if scale > 1 {
		b.WriteString(r.styles.detail.Render(fmt.Sprintf("times in units of 1/%d of the input", scale)))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}

func (r *Renderer) cyclicText(c *Cyclic) string {
	var b strings.Builder
	s := r.styles
	r.header(&b, c.Discipline, c.Name, c.Tasks, c.Scale)

	s.field(&b, "Utilization", fmt.Sprintf("%.4f", c.Utilization))
	if c.Hyperperiod > 0 {
		s.field(&b, "Hyperperiod", strconv.FormatInt(c.Hyperperiod, 10))
	}
	if c.Search != nil {
		s.field(&b, "Frame range", fmt.Sprintf("[%d, %d]", c.Search.MinFrame, c.Search.MaxFrame))
		if c.Search.FrameFloor > 0 {
			s.field(&b, "Frame floor", strconv.FormatInt(c.Search.FrameFloor, 10))
		}
		s.field(&b, "Divisors", joinInts(c.Search.Divisors))
		for _, rej := range c.Search.Rejected {
			s.field(&b, "Rejected", fmt.Sprintf("%d: task %s needs %d > %d", rej.FrameSize, rej.Task, rej.Bound, rej.Deadline))
		}
		s.field(&b, "Candidates", joinInts(c.Search.Candidates))
		if len(c.Search.Skipped) > 0 {
			s.field(&b, "Skipped", joinInts(c.Search.Skipped))
		}
	}

	for _, a := range c.Attempts {
		b.WriteByte('\n')
		if a.Failure != nil {
			b.WriteString(s.heading.Render(fmt.Sprintf("Frame size %d: ", a.FrameSize)))
			b.WriteString(s.bad.Render(a.Failure.Error()))
			b.WriteByte('\n')
			continue
		}
		b.WriteString(s.heading.Render(fmt.Sprintf("Frame size %d: %d frames", a.FrameSize, len(a.Timetable.Frames))))
		b.WriteByte('\n')
		b.WriteString(TimetableTable(a.Timetable))
		b.WriteByte('\n')
	}

	if c.Abort != "" {
		b.WriteByte('\n')
		b.WriteString(s.bad.Render(c.Abort))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	s.field(&b, "Verdict", s.verdict(c.Verdict))
	return b.String()
}

func (r *Renderer) feasibilityText(f *Feasibility) string {
	var b strings.Builder
	s := r.styles
	r.header(&b, f.Discipline, f.Name, f.Tasks, f.Scale)

	s.field(&b, "Utilization", fmt.Sprintf("%.4f", f.Utilization))
	if f.LiuLaylandBound > 0 {
		s.field(&b, "Liu-Layland", fmt.Sprintf("%.4f", f.LiuLaylandBound))
		s.field(&b, "Hyperbolic", fmt.Sprintf("%.4f", f.HyperbolicBound))
		s.field(&b, "Bound test", s.verdict(f.BoundTestVerdict))
	}
	if f.Hyperperiod > 0 {
		s.field(&b, "Hyperperiod", strconv.FormatInt(f.Hyperperiod, 10))
		if f.LStar > 0 {
			s.field(&b, "L*", fmt.Sprintf("%.4f", f.LStar))
		}
		s.field(&b, "Horizon", strconv.FormatInt(f.Horizon, 10))
	}
	if len(f.Responses) > 0 {
		b.WriteByte('\n')
		b.WriteString(ResponseTable(f.Responses))
		b.WriteByte('\n')
	}
	if len(f.Demand) > 0 {
		b.WriteByte('\n')
		b.WriteString(DemandTable(f.Demand, MaxDemandRows))
		b.WriteByte('\n')
		if n := len(f.Demand) - MaxDemandRows; n > 0 {
			b.WriteString(s.detail.Render(fmt.Sprintf("... %d more points", n)))
			b.WriteByte('\n')
		}
	}
	if f.Reason != "" {
		b.WriteByte('\n')
		b.WriteString(s.detail.Render(f.Reason))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	s.field(&b, "Verdict", s.verdict(f.Verdict))
	return b.String()
}

func (r *Renderer) taskSetText(rec *model.TaskSetRecord) string {
	var b strings.Builder
	s := r.styles
	name := rec.Name
	if name == "" {
		name = "(unnamed)"
	}
	b.WriteString(s.title.Render(name))
	b.WriteString("\n\n")
	s.field(&b, "ID", rec.ID)
	s.field(&b, "Content hash", rec.ContentHash)
	s.field(&b, "Scale", strconv.FormatInt(rec.Scale, 10))
	s.field(&b, "Created", rec.CreatedAt.Format(time.RFC3339))
	b.WriteByte('\n')
	b.WriteString(TaskTable(rec.Tasks))
	b.WriteByte('\n')
	return b.String()
}

// TaskTable renders the task parameters with per-task utilization.
func TaskTable(tasks model.TaskSet) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Task", "C", "T", "D", "U")
	for _, task := range tasks {
		t.Row(task.Name,
			strconv.FormatInt(task.ComputingTime, 10),
			strconv.FormatInt(task.Period, 10),
			strconv.FormatInt(task.RelativeDeadline(), 10),
			fmt.Sprintf("%.4f", task.Utilization()))
	}
	return t.Render()
}

// TimetableTable renders one row per frame with its jobs in execution order.
func TimetableTable(tt *model.Timetable) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Frame", "Start", "Jobs", "Slack")
	for _, f := range tt.Frames {
		t.Row(strconv.FormatInt(f.Index, 10),
			strconv.FormatInt(f.Start, 10),
			JobsCell(f),
			strconv.FormatInt(f.Slack, 10))
	}
	return t.Render()
}

// JobsCell formats a frame's jobs as "A#0 [0,1)" entries, or "-" if idle.
func JobsCell(f model.Frame) string {
	if len(f.Jobs) == 0 {
		return "-"
	}
	parts := make([]string, len(f.Jobs))
	for i, j := range f.Jobs {
		parts[i] = fmt.Sprintf("%s#%d [%d,%d)", j.Task, j.Job, j.Start, j.End)
	}
	return strings.Join(parts, " ")
}

// ResponseTable renders response-time analysis rows, highest priority first.
func ResponseTable(rows []feasibility.TaskResponse) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Prio", "Task", "R", "D", "Iter", "Verdict")
	for _, r := range rows {
		t.Row(strconv.Itoa(r.Priority), r.Task,
			strconv.FormatInt(r.ResponseTime, 10),
			strconv.FormatInt(r.Deadline, 10),
			strconv.Itoa(r.Iterations),
			r.Verdict.String())
	}
	return t.Render()
}

// DemandTable renders at most limit processor-demand points.
func DemandTable(points []feasibility.DemandPoint, limit int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("L", "g(0,L)")
	for i, p := range points {
		if i == limit {
			break
		}
		t.Row(strconv.FormatInt(p.L, 10), strconv.FormatInt(p.Demand, 10))
	}
	return t.Render()
}

func joinInts(vs []int64) string {
	if len(vs) == 0 {
		return "none"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ", ")
}

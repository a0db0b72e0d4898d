package report

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/me/rtsched/internal/config"
	"github.com/me/rtsched/internal/cyclic"
	"github.com/me/rtsched/internal/feasibility"
	"github.com/me/rtsched/pkg/model"
)

func runCyclic(t *testing.T, tasks model.TaskSet) *Cyclic {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	res, err := cyclic.NewAnalyzer(config.AnalysisConfig{Workers: 1}, logger).Run(context.Background(), tasks)
	return NewCyclic("demo", 1, res, err)
}

func scenarioOne() model.TaskSet {
	return model.TaskSet{
		{Name: "A", ComputingTime: 1, Period: 4},
		{Name: "B", ComputingTime: 1, Period: 5},
		{Name: "C", ComputingTime: 2, Period: 20},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "JSON", "Yaml"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) = nil error")
	}
}

func TestCyclicText(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatText).Cyclic(runCyclic(t, scenarioOne())); err != nil {
		t.Fatalf("Cyclic: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"CYCLIC analysis of demo",
		"0.5500",
		"Hyperperiod",
		"[2, 4]",
		"4: task B needs 7 > 5",
		"Frame size 2: 10 frames",
		"A#0 [0,1) B#0 [1,2)",
		"C#0 [2,4)",
		"SCHEDULABLE",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("non-terminal output contains ANSI escapes")
	}
}

func TestCyclicText_PlacementFailure(t *testing.T) {
	var buf bytes.Buffer
	tasks := model.TaskSet{
		{Name: "A", ComputingTime: 1, Period: 5},
		{Name: "B", ComputingTime: 3, Period: 10},
		{Name: "C", ComputingTime: 2, Period: 15},
	}
	if err := New(&buf, FormatText).Cyclic(runCyclic(t, tasks)); err != nil {
		t.Fatalf("Cyclic: %v", err)
	}
	if !strings.Contains(buf.String(), "frame size 3: cannot place job #1 of task B") {
		t.Errorf("output missing placement failure:\n%s", buf.String())
	}
}

func TestNewCyclic_Aborts(t *testing.T) {
	over := runCyclic(t, model.TaskSet{{Name: "X", ComputingTime: 5, Period: 3}})
	if over.Verdict != model.VerdictUnschedulable || over.Search != nil {
		t.Errorf("utilization abort = %+v", over)
	}
	if !strings.Contains(over.Abort, "exceeds 1") {
		t.Errorf("Abort = %q", over.Abort)
	}

	none := runCyclic(t, model.TaskSet{
		{Name: "A", ComputingTime: 3, Period: 4},
		{Name: "B", ComputingTime: 5, Period: 20},
	})
	if none.Verdict != model.VerdictUnschedulable || none.Search == nil {
		t.Errorf("frame abort = %+v", none)
	}

	var buf bytes.Buffer
	if err := New(&buf, FormatText).Cyclic(none); err != nil {
		t.Fatalf("Cyclic: %v", err)
	}
	if !strings.Contains(buf.String(), "no valid frame size in [5, 4]") {
		t.Errorf("output missing abort:\n%s", buf.String())
	}
}

func TestCyclicJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatJSON).Cyclic(runCyclic(t, scenarioOne())); err != nil {
		t.Fatalf("Cyclic: %v", err)
	}
	var got struct {
		Verdict  string `json:"verdict"`
		Attempts []struct {
			FrameSize int64 `json:"frame_size"`
			Timetable struct {
				Frames []struct {
					Jobs []model.ScheduledJob `json:"jobs"`
				} `json:"frames"`
			} `json:"timetable"`
		} `json:"attempts"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if got.Verdict != "SCHEDULABLE" || len(got.Attempts) != 1 {
		t.Fatalf("decoded = %+v", got)
	}
	frames := got.Attempts[0].Timetable.Frames
	if len(frames) != 10 || len(frames[0].Jobs) != 2 || frames[7].Jobs == nil {
		t.Errorf("frames = %+v", frames)
	}
}

func TestFeasibilityYAML(t *testing.T) {
	tasks := model.TaskSet{
		{Name: "A", ComputingTime: 1, Period: 2},
		{Name: "B", ComputingTime: 2, Period: 5},
	}
	var buf bytes.Buffer
	f := NewFeasibility("rm-demo", 1, tasks, feasibility.RateMonotonic(tasks))
	if err := New(&buf, FormatYAML).Feasibility(f); err != nil {
		t.Fatalf("Feasibility: %v", err)
	}
	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["verdict"] != "SCHEDULABLE" || got["bound_test_verdict"] != "CANNOT_GUARANTEE" || got["name"] != "rm-demo" {
		t.Errorf("decoded = %v", got)
	}
	if rs, ok := got["responses"].([]any); !ok || len(rs) != 2 {
		t.Errorf("responses = %v", got["responses"])
	}
}

func TestFeasibilityText(t *testing.T) {
	tasks := model.TaskSet{
		{Name: "A", ComputingTime: 2, Period: 4, Deadline: 2},
		{Name: "B", ComputingTime: 2, Period: 4, Deadline: 3},
	}
	var buf bytes.Buffer
	f := NewFeasibility("", 10, tasks, feasibility.EarliestDeadlineFirst(tasks))
	if err := New(&buf, FormatText).Feasibility(f); err != nil {
		t.Fatalf("Feasibility: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"EDF analysis", "1/10", "Horizon", "g(0,L)", "demand g(0, 3) = 4 exceeds 3", "UNSCHEDULABLE"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDemandTable_Limit(t *testing.T) {
	points := make([]feasibility.DemandPoint, 30)
	for i := range points {
		points[i] = feasibility.DemandPoint{L: int64(1000 + i), Demand: 1}
	}
	out := DemandTable(points, 5)
	if !strings.Contains(out, "1004") || strings.Contains(out, "1005") {
		t.Errorf("DemandTable did not stop at the limit:\n%s", out)
	}
}

func TestJobsCell(t *testing.T) {
	if got := JobsCell(model.Frame{}); got != "-" {
		t.Errorf("JobsCell(empty) = %q, want -", got)
	}
	f := model.Frame{Jobs: []model.ScheduledJob{{Task: "A", Job: 3, Start: 12, End: 13}}}
	if got := JobsCell(f); got != "A#3 [12,13)" {
		t.Errorf("JobsCell = %q", got)
	}
}

func TestTaskSetText(t *testing.T) {
	rec := &model.TaskSetRecord{
		ID:          "ts_abc",
		Name:        "radar",
		ContentHash: "deadbeef",
		Scale:       10,
		Tasks:       model.TaskSet{{Name: "A", ComputingTime: 10, Period: 40}},
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	var buf bytes.Buffer
	if err := New(&buf, FormatText).TaskSet(rec); err != nil {
		t.Fatalf("TaskSet: %v", err)
	}
	for _, want := range []string{"radar", "ts_abc", "deadbeef", "2026-03-01T12:00:00Z", "0.2500"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := New(&buf, FormatYAML).TaskSet(rec); err != nil {
		t.Fatalf("TaskSet: %v", err)
	}
	if !strings.Contains(buf.String(), "content_hash: deadbeef") {
		t.Errorf("yaml output:\n%s", buf.String())
	}
}

func TestCyclicText_SizeLimits(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := config.AnalysisConfig{Workers: 1, MaxFrames: 1000}
	tasks := model.TaskSet{{Name: "A", ComputingTime: 1, Period: 1_000_000_000_000}}
	res, err := cyclic.NewAnalyzer(cfg, logger).Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var buf bytes.Buffer
	if err := New(&buf, FormatText).Cyclic(NewCyclic("huge", 1, res, nil)); err != nil {
		t.Fatalf("Cyclic: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Frame floor", "1000000000", "Skipped", "SCHEDULABLE"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

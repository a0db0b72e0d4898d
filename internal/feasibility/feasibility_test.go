package feasibility

import (
	"math"
	"testing"

	"github.com/me/rtsched/pkg/model"
)

func TestLiuLaylandBound(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{0, 0},
		{1, 1},
		{2, 0.828427},
		{3, 0.779763},
	}
	for _, tt := range tests {
		if got := LiuLaylandBound(tt.n); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("LiuLaylandBound(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestResponseTime_Converges(t *testing.T) {
	higher := model.TaskSet{
		{Name: "A", ComputingTime: 1, Period: 4},
		{Name: "B", ComputingTime: 1, Period: 5},
	}
	resp := ResponseTime(model.Task{Name: "C", ComputingTime: 2, Period: 20}, higher)
	if resp.Verdict != model.VerdictSchedulable || resp.ResponseTime != 4 {
		t.Errorf("resp = %+v, want SCHEDULABLE with R=4", resp)
	}
	if resp.Deadline != 20 {
		t.Errorf("Deadline = %d, want 20", resp.Deadline)
	}
}

func TestResponseTime_IterationCap(t *testing.T) {
	higher := model.TaskSet{{Name: "H", ComputingTime: 1, Period: 1}}
	resp := ResponseTime(model.Task{Name: "L", ComputingTime: 1, Period: 1 << 40}, higher)
	if resp.Verdict != model.VerdictCannotGuarantee {
		t.Errorf("Verdict = %s, want CANNOT_GUARANTEE", resp.Verdict)
	}
	if resp.Iterations != MaxIterations {
		t.Errorf("Iterations = %d, want %d", resp.Iterations, MaxIterations)
	}
}

func TestRateMonotonic(t *testing.T) {
	tests := []struct {
		name      string
		tasks     model.TaskSet
		verdict   model.Verdict
		boundTest model.Verdict
	}{
		{
			name: "under liu-layland",
			tasks: model.TaskSet{
				{Name: "C", ComputingTime: 2, Period: 20},
				{Name: "A", ComputingTime: 1, Period: 4},
				{Name: "B", ComputingTime: 1, Period: 5},
			},
			verdict:   model.VerdictSchedulable,
			boundTest: model.VerdictSchedulable,
		},
		{
			name: "bounds inconclusive rta passes",
			tasks: model.TaskSet{
				{Name: "A", ComputingTime: 1, Period: 2},
				{Name: "B", ComputingTime: 2, Period: 5},
			},
			verdict:   model.VerdictSchedulable,
			boundTest: model.VerdictCannotGuarantee,
		},
		{
			name: "full utilization misses",
			tasks: model.TaskSet{
				{Name: "A", ComputingTime: 2, Period: 4},
				{Name: "B", ComputingTime: 3, Period: 6},
			},
			verdict:   model.VerdictUnschedulable,
			boundTest: model.VerdictCannotGuarantee,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := RateMonotonic(tt.tasks)
			if rep.Verdict != tt.verdict {
				t.Errorf("Verdict = %s, want %s (%s)", rep.Verdict, tt.verdict, rep.Reason)
			}
			if rep.BoundTestVerdict != tt.boundTest {
				t.Errorf("BoundTestVerdict = %s, want %s", rep.BoundTestVerdict, tt.boundTest)
			}
		})
	}
}

func TestRateMonotonic_PriorityOrder(t *testing.T) {
	rep := RateMonotonic(model.TaskSet{
		{Name: "C", ComputingTime: 2, Period: 20},
		{Name: "A", ComputingTime: 1, Period: 4},
		{Name: "B", ComputingTime: 1, Period: 5},
	})
	want := []struct {
		name string
		r    int64
	}{{"A", 1}, {"B", 2}, {"C", 4}}
	if len(rep.Responses) != len(want) {
		t.Fatalf("Responses = %+v", rep.Responses)
	}
	for i, w := range want {
		got := rep.Responses[i]
		if got.Task != w.name || got.ResponseTime != w.r || got.Priority != i {
			t.Errorf("Responses[%d] = %+v, want %s R=%d", i, got, w.name, w.r)
		}
	}
}

func TestRateMonotonic_StopsAtFirstMiss(t *testing.T) {
	rep := RateMonotonic(model.TaskSet{
		{Name: "A", ComputingTime: 2, Period: 4},
		{Name: "B", ComputingTime: 2, Period: 5, Deadline: 3},
		{Name: "C", ComputingTime: 1, Period: 20},
	})
	if rep.Verdict != model.VerdictUnschedulable {
		t.Fatalf("Verdict = %s, want UNSCHEDULABLE", rep.Verdict)
	}
	if len(rep.Responses) != 2 || rep.Responses[1].ResponseTime != 4 {
		t.Errorf("Responses = %+v, want stop at B with R=4", rep.Responses)
	}
}

func TestDeadlineMonotonic_BeatsRateMonotonic(t *testing.T) {
	tasks := model.TaskSet{
		{Name: "A", ComputingTime: 2, Period: 5},
		{Name: "B", ComputingTime: 2, Period: 10, Deadline: 2},
	}
	if rep := RateMonotonic(tasks); rep.Verdict != model.VerdictUnschedulable {
		t.Errorf("RM Verdict = %s, want UNSCHEDULABLE", rep.Verdict)
	}
	rep := DeadlineMonotonic(tasks)
	if rep.Verdict != model.VerdictSchedulable {
		t.Fatalf("DM Verdict = %s, want SCHEDULABLE (%s)", rep.Verdict, rep.Reason)
	}
	if rep.Responses[0].Task != "B" || rep.Responses[1].ResponseTime != 4 {
		t.Errorf("Responses = %+v", rep.Responses)
	}
}

func TestEarliestDeadlineFirst(t *testing.T) {
	tests := []struct {
		name    string
		tasks   model.TaskSet
		verdict model.Verdict
		horizon int64
		points  int
	}{
		{
			name: "implicit full utilization",
			tasks: model.TaskSet{
				{Name: "A", ComputingTime: 2, Period: 4},
				{Name: "B", ComputingTime: 3, Period: 6},
			},
			verdict: model.VerdictSchedulable,
		},
		{
			name: "overloaded",
			tasks: model.TaskSet{
				{Name: "A", ComputingTime: 3, Period: 4},
				{Name: "B", ComputingTime: 3, Period: 6},
			},
			verdict: model.VerdictUnschedulable,
		},
		{
			name: "constrained within l-star",
			tasks: model.TaskSet{
				{Name: "A", ComputingTime: 2, Period: 5, Deadline: 4},
				{Name: "B", ComputingTime: 2, Period: 10, Deadline: 2},
			},
			verdict: model.VerdictSchedulable,
			horizon: 5,
			points:  2,
		},
		{
			name: "constrained demand exceeded",
			tasks: model.TaskSet{
				{Name: "A", ComputingTime: 2, Period: 4, Deadline: 2},
				{Name: "B", ComputingTime: 2, Period: 4, Deadline: 3},
			},
			verdict: model.VerdictUnschedulable,
			horizon: 4,
			points:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := EarliestDeadlineFirst(tt.tasks)
			if rep.Verdict != tt.verdict {
				t.Errorf("Verdict = %s, want %s (%s)", rep.Verdict, tt.verdict, rep.Reason)
			}
			if rep.Horizon != tt.horizon {
				t.Errorf("Horizon = %d, want %d", rep.Horizon, tt.horizon)
			}
			if len(rep.Demand) != tt.points {
				t.Errorf("Demand = %+v, want %d points", rep.Demand, tt.points)
			}
		})
	}
}

func TestLStar(t *testing.T) {
	tasks := model.TaskSet{
		{Name: "A", ComputingTime: 2, Period: 5, Deadline: 4},
		{Name: "B", ComputingTime: 2, Period: 10, Deadline: 2},
	}
	if got := LStar(tasks, 0.6); math.Abs(got-5) > 1e-9 {
		t.Errorf("LStar = %v, want 5", got)
	}
}

func TestDemand(t *testing.T) {
	tasks := model.TaskSet{
		{Name: "A", ComputingTime: 2, Period: 4, Deadline: 2},
		{Name: "B", ComputingTime: 2, Period: 4, Deadline: 3},
	}
	tests := []struct {
		l, want int64
	}{
		{1, 0},
		{2, 2},
		{3, 4},
		{6, 6},
		{7, 8},
	}
	for _, tt := range tests {
		if got := Demand(tasks, tt.l); got != tt.want {
			t.Errorf("Demand(%d) = %d, want %d", tt.l, got, tt.want)
		}
	}
}

func TestAnalyze_Dispatch(t *testing.T) {
	tasks := model.TaskSet{{Name: "A", ComputingTime: 1, Period: 4}}
	for _, d := range []model.Discipline{model.DisciplineEDF, model.DisciplineRateMonotonic, model.DisciplineDeadlineMonotonic} {
		rep, err := Analyze(d, tasks)
		if err != nil {
			t.Fatalf("Analyze(%s): %v", d, err)
		}
		if rep.Discipline != d || rep.Verdict != model.VerdictSchedulable {
			t.Errorf("Analyze(%s) = %+v", d, rep)
		}
	}
	if _, err := Analyze(model.DisciplineCyclic, tasks); err == nil {
		t.Error("expected error for cyclic discipline")
	}
	if _, err := Analyze(model.DisciplineEDF, nil); err == nil {
		t.Error("expected error for empty task set")
	}
}

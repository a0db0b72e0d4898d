package feasibility

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/me/rtsched/internal/analysis"
	"github.com/me/rtsched/pkg/model"
)

// MaxIterations caps the response-time fixed-point iteration per task.
const MaxIterations = 10000

// ResponseTime iterates R = C + sum(ceil(R/T_j) * C_j) over the
// higher-priority tasks, starting from R = C. It stops when R is stable
// (schedulable), exceeds the task's deadline (unschedulable), or after
// MaxIterations (cannot guarantee).
func ResponseTime(task model.Task, higher model.TaskSet) TaskResponse {
	resp := TaskResponse{Task: task.Name, Deadline: task.RelativeDeadline()}
	r := task.ComputingTime
	for resp.Iterations < MaxIterations {
		resp.Iterations++
		next := task.ComputingTime
		for _, h := range higher {
			next += analysis.CeilDiv(r, h.Period) * h.ComputingTime
		}
		resp.ResponseTime = next
		switch {
		case next > resp.Deadline:
			resp.Verdict = model.VerdictUnschedulable
			return resp
		case next == r:
			resp.Verdict = model.VerdictSchedulable
			return resp
		}
		r = next
	}
	resp.Verdict = model.VerdictCannotGuarantee
	return resp
}

// RateMonotonic analyzes tasks under fixed priorities by ascending period.
func RateMonotonic(tasks model.TaskSet) *Report {
	u := analysis.Utilization(tasks)
	if u > analysis.UtilizationBound {
		return overloaded(model.DisciplineRateMonotonic, u)
	}

	rep := &Report{
		Discipline:       model.DisciplineRateMonotonic,
		Utilization:      u,
		LiuLaylandBound:  LiuLaylandBound(len(tasks)),
		HyperbolicBound:  HyperbolicProduct(tasks),
		BoundTestVerdict: model.VerdictCannotGuarantee,
	}
	if tasks.ImplicitDeadlines() && (u <= rep.LiuLaylandBound || rep.HyperbolicBound <= 2) {
		rep.BoundTestVerdict = model.VerdictSchedulable
	}

	ordered := tasks.Clone()
	slices.SortStableFunc(ordered, func(a, b model.Task) int {
		return cmp.Compare(a.Period, b.Period)
	})
	responseTimeAnalysis(rep, ordered)
	return rep
}

// DeadlineMonotonic analyzes tasks under fixed priorities by ascending
// relative deadline.
func DeadlineMonotonic(tasks model.TaskSet) *Report {
	u := analysis.Utilization(tasks)
	if u > analysis.UtilizationBound {
		return overloaded(model.DisciplineDeadlineMonotonic, u)
	}

	rep := &Report{Discipline: model.DisciplineDeadlineMonotonic, Utilization: u}
	ordered := tasks.Clone()
	slices.SortStableFunc(ordered, func(a, b model.Task) int {
		return cmp.Compare(a.RelativeDeadline(), b.RelativeDeadline())
	})
	responseTimeAnalysis(rep, ordered)
	return rep
}

// responseTimeAnalysis fills rep from tasks ordered highest priority first.
// The verdict is the worst per-task verdict; analysis stops at the first
// task that misses its deadline.
func responseTimeAnalysis(rep *Report, ordered model.TaskSet) {
	rep.Verdict = model.VerdictSchedulable
	for i, t := range ordered {
		resp := ResponseTime(t, ordered[:i])
		resp.Priority = i
		rep.Responses = append(rep.Responses, resp)

		switch resp.Verdict {
		case model.VerdictUnschedulable:
			rep.Verdict = model.VerdictUnschedulable
			rep.Reason = fmt.Sprintf("task %s: response time %d exceeds deadline %d", t.Name, resp.ResponseTime, resp.Deadline)
			return
		case model.VerdictCannotGuarantee:
			rep.Verdict = model.VerdictCannotGuarantee
			rep.Reason = fmt.Sprintf("task %s: response time did not converge in %d iterations", t.Name, MaxIterations)
		}
	}
}

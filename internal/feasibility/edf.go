package feasibility

import (
	"fmt"
	"math"
	"slices"

	"github.com/me/rtsched/internal/analysis"
	"github.com/me/rtsched/pkg/model"
)

// MaxDemandPoints caps the number of absolute deadlines the processor-demand
// test evaluates before giving up with CANNOT_GUARANTEE.
const MaxDemandPoints = 1 << 20

// EarliestDeadlineFirst analyzes tasks under EDF. With implicit deadlines
// U <= 1 is exact. Otherwise the processor-demand criterion
// g(0, L) <= L is checked at every absolute deadline up to
// min(H, max(D_max, L*)).
func EarliestDeadlineFirst(tasks model.TaskSet) *Report {
	u := analysis.Utilization(tasks)
	if u > analysis.UtilizationBound {
		return overloaded(model.DisciplineEDF, u)
	}
	rep := &Report{Discipline: model.DisciplineEDF, Utilization: u}
	if tasks.ImplicitDeadlines() {
		rep.Verdict = model.VerdictSchedulable
		rep.Reason = "implicit deadlines: utilization bound is exact"
		return rep
	}

	h, err := analysis.CheckedHyperperiod(tasks)
	if err != nil {
		rep.Verdict = model.VerdictCannotGuarantee
		rep.Reason = err.Error()
		return rep
	}
	rep.Hyperperiod = h
	rep.Horizon = h
	if u < analysis.UtilizationBound {
		rep.LStar = LStar(tasks, u)
		var maxD int64
		for _, t := range tasks {
			maxD = max(maxD, t.RelativeDeadline())
		}
		if bound := max(maxD, int64(math.Ceil(rep.LStar))); bound < h {
			rep.Horizon = bound
		}
	}

	points, ok := absoluteDeadlines(tasks, rep.Horizon)
	if !ok {
		rep.Verdict = model.VerdictCannotGuarantee
		rep.Reason = fmt.Sprintf("more than %d deadlines up to %d", MaxDemandPoints, rep.Horizon)
		return rep
	}

	rep.Verdict = model.VerdictSchedulable
	for _, l := range points {
		g := Demand(tasks, l)
		rep.Demand = append(rep.Demand, DemandPoint{L: l, Demand: g})
		if g > l {
			rep.Verdict = model.VerdictUnschedulable
			rep.Reason = fmt.Sprintf("demand g(0, %d) = %d exceeds %d", l, g, l)
			return rep
		}
	}
	return rep
}

// LStar returns sum((T_i - D_i) * U_i) / (1 - U).
func LStar(tasks model.TaskSet, u float64) float64 {
	var sum float64
	for _, t := range tasks {
		sum += float64(t.Period-t.RelativeDeadline()) * t.Utilization()
	}
	return sum / (1 - u)
}

// Demand returns g(0, L): the computation of all jobs with both release
// and absolute deadline inside [0, L].
func Demand(tasks model.TaskSet, l int64) int64 {
	var g int64
	for _, t := range tasks {
		n := (l + t.Period - t.RelativeDeadline()) / t.Period
		if n > 0 {
			g += n * t.ComputingTime
		}
	}
	return g
}

// absoluteDeadlines returns the sorted distinct k*T + D not exceeding horizon.
func absoluteDeadlines(tasks model.TaskSet, horizon int64) ([]int64, bool) {
	seen := make(map[int64]struct{})
	for _, t := range tasks {
		for d := t.RelativeDeadline(); d <= horizon; d += t.Period {
			seen[d] = struct{}{}
			if len(seen) > MaxDemandPoints {
				return nil, false
			}
		}
	}
	points := make([]int64, 0, len(seen))
	for d := range seen {
		points = append(points, d)
	}
	slices.Sort(points)
	return points, true
}

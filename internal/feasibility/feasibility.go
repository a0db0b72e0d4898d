// Package feasibility implements the analytical schedulability tests for
// priority-driven disciplines: utilization bounds, response-time analysis
// for fixed priorities (RM, DM) and the processor-demand criterion for EDF.
package feasibility

import (
	"fmt"
	"math"

	"github.com/me/rtsched/internal/analysis"
	"github.com/me/rtsched/pkg/model"
)

// TaskResponse is the response-time analysis outcome for one task.
type TaskResponse struct {
	Task         string        `json:"task" yaml:"task"`
	Priority     int           `json:"priority" yaml:"priority"` // 0 is highest
	ResponseTime int64         `json:"response_time" yaml:"response_time"`
	Deadline     int64         `json:"deadline" yaml:"deadline"`
	Iterations   int           `json:"iterations" yaml:"iterations"`
	Verdict      model.Verdict `json:"verdict" yaml:"verdict"`
}

// DemandPoint is one evaluation of the processor-demand function g(0, L).
type DemandPoint struct {
	L      int64 `json:"l" yaml:"l"`
	Demand int64 `json:"demand" yaml:"demand"`
}

// Report is the outcome of one feasibility analysis.
type Report struct {
	Discipline  model.Discipline `json:"discipline" yaml:"discipline"`
	Verdict     model.Verdict    `json:"verdict" yaml:"verdict"`
	Utilization float64          `json:"utilization" yaml:"utilization"`

	// Fixed-priority sufficient tests.
	LiuLaylandBound  float64        `json:"liu_layland_bound,omitempty" yaml:"liu_layland_bound,omitempty"`
	HyperbolicBound  float64        `json:"hyperbolic_bound,omitempty" yaml:"hyperbolic_bound,omitempty"`
	BoundTestVerdict model.Verdict  `json:"bound_test_verdict,omitempty" yaml:"bound_test_verdict,omitempty"`
	Responses        []TaskResponse `json:"responses,omitempty" yaml:"responses,omitempty"`

	// EDF processor demand.
	Hyperperiod int64         `json:"hyperperiod,omitempty" yaml:"hyperperiod,omitempty"`
	LStar       float64       `json:"l_star,omitempty" yaml:"l_star,omitempty"`
	Horizon     int64         `json:"horizon,omitempty" yaml:"horizon,omitempty"`
	Demand      []DemandPoint `json:"demand,omitempty" yaml:"demand,omitempty"`

	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Analyze runs the feasibility test for a priority-driven discipline.
func Analyze(d model.Discipline, tasks model.TaskSet) (*Report, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("empty task set")
	}
	switch d {
	case model.DisciplineEDF:
		return EarliestDeadlineFirst(tasks), nil
	case model.DisciplineRateMonotonic:
		return RateMonotonic(tasks), nil
	case model.DisciplineDeadlineMonotonic:
		return DeadlineMonotonic(tasks), nil
	default:
		return nil, fmt.Errorf("no analytical test for discipline %q", d)
	}
}

// LiuLaylandBound returns n(2^(1/n) - 1), the RM utilization bound for n tasks.
func LiuLaylandBound(n int) float64 {
	if n <= 0 {
		return 0
	}
	fn := float64(n)
	return fn * (math.Pow(2, 1/fn) - 1)
}

// HyperbolicProduct returns the product of (U_i + 1). The set is RM
// schedulable if it does not exceed 2.
func HyperbolicProduct(tasks model.TaskSet) float64 {
	p := 1.0
	for _, t := range tasks {
		p *= t.Utilization() + 1
	}
	return p
}

func overloaded(d model.Discipline, u float64) *Report {
	return &Report{
		Discipline:  d,
		Verdict:     model.VerdictUnschedulable,
		Utilization: u,
		Reason:      fmt.Sprintf("utilization %.4f exceeds %g", u, analysis.UtilizationBound),
	}
}

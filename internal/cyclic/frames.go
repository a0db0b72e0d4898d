package cyclic

import (
	"github.com/me/rtsched/internal/analysis"
	"github.com/me/rtsched/internal/config"
	"github.com/me/rtsched/pkg/model"
)

// Rejection records why a divisor of the hyperperiod was not accepted as a
// frame size: the first task whose window constraint it violates.
type Rejection struct {
	FrameSize int64  `json:"frame_size" yaml:"frame_size"`
	Task      string `json:"task" yaml:"task"`
	Bound     int64  `json:"bound" yaml:"bound"`       // 2*Ts - gcd(Ts, T)
	Deadline  int64  `json:"deadline" yaml:"deadline"` // relative deadline it had to fit
}

// FrameSearch is the full outcome of the frame-size search. FrameFloor is
// set when the frame limit raised the lower end of the range above MinFrame.
// Skipped lists candidates the analyzer left unpacked to stay within its
// limits.
type FrameSearch struct {
	MinFrame   int64       `json:"min_frame" yaml:"min_frame"`
	MaxFrame   int64       `json:"max_frame" yaml:"max_frame"`
	FrameFloor int64       `json:"frame_floor,omitempty" yaml:"frame_floor,omitempty"`
	Divisors   []int64     `json:"divisors" yaml:"divisors"`
	Candidates []int64     `json:"candidates" yaml:"candidates"`
	Rejected   []Rejection `json:"rejected,omitempty" yaml:"rejected,omitempty"`
	Skipped    []int64     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Truncated reports whether some frame sizes were left out because of the
// size limits.
func (s *FrameSearch) Truncated() bool {
	return s.FrameFloor > 0 || len(s.Skipped) > 0
}

// FrameSizes returns the valid frame sizes for tasks, smallest first, among
// those giving at most config.DefaultMaxFrames frames.
func FrameSizes(tasks model.TaskSet, hyperperiod int64) []int64 {
	return SearchFrameSizes(tasks, hyperperiod, config.DefaultMaxFrames).Candidates
}

// SearchFrameSizes enumerates every Ts in [max C, min T] that divides the
// hyperperiod, then keeps those with 2*Ts - gcd(Ts, T) <= D for every task.
// A positive maxFrames drops every Ts below hyperperiod/maxFrames, which
// also bounds the enumeration to maxFrames steps.
func SearchFrameSizes(tasks model.TaskSet, hyperperiod, maxFrames int64) FrameSearch {
	s := FrameSearch{
		MinFrame: tasks.MaxComputingTime(),
		MaxFrame: tasks.MinPeriod(),
	}
	if len(tasks) == 0 || hyperperiod <= 0 {
		return s
	}

	lo := max(s.MinFrame, 1)
	if maxFrames > 0 {
		if floor := analysis.CeilDiv(hyperperiod, maxFrames); floor > lo {
			s.FrameFloor = floor
			lo = floor
		}
	}
	s.Divisors = divisorsIn(hyperperiod, lo, s.MaxFrame)

	for _, ts := range s.Divisors {
		if rej, ok := windowViolation(tasks, ts); ok {
			s.Rejected = append(s.Rejected, rej)
			continue
		}
		s.Candidates = append(s.Candidates, ts)
	}
	return s
}

// divisorsIn returns the divisors of h in [lo, hi], ascending. It walks
// whichever is shorter: the range itself or the matching cofactors h/Ts.
func divisorsIn(h, lo, hi int64) []int64 {
	if lo > hi {
		return nil
	}
	var out []int64
	kLo, kHi := analysis.CeilDiv(h, hi), h/lo
	if hi-lo <= kHi-kLo {
		for i := int64(0); i <= hi-lo; i++ {
			if ts := lo + i; h%ts == 0 {
				out = append(out, ts)
			}
		}
		return out
	}
	for k := kHi; k >= kLo; k-- {
		if h%k == 0 {
			out = append(out, h/k)
		}
	}
	return out
}

func windowViolation(tasks model.TaskSet, ts int64) (Rejection, bool) {
	for _, t := range tasks {
		bound := 2*ts - analysis.GCD(ts, t.Period)
		if bound > t.RelativeDeadline() {
			return Rejection{FrameSize: ts, Task: t.Name, Bound: bound, Deadline: t.RelativeDeadline()}, true
		}
	}
	return Rejection{}, false
}

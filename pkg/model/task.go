package model

// Task is one periodic real-time task. All durations share a single
// normalized integer time unit.
type Task struct {
	Name          string `json:"name" yaml:"name"`
	ComputingTime int64  `json:"computing_time" yaml:"computing_time"`
	Period        int64  `json:"period" yaml:"period"`

	// Deadline is the relative deadline. Zero means the deadline equals the period.
	Deadline int64 `json:"deadline,omitempty" yaml:"deadline,omitempty"`
}

// RelativeDeadline returns the task's relative deadline, defaulting to its period.
func (t Task) RelativeDeadline() int64 {
	if t.Deadline > 0 {
		return t.Deadline
	}
	return t.Period
}

// Utilization returns C/T as a real number.
func (t Task) Utilization() float64 {
	return float64(t.ComputingTime) / float64(t.Period)
}

// TaskSet is an ordered sequence of tasks.
type TaskSet []Task

// Clone returns a copy that can be reordered without affecting ts.
func (ts TaskSet) Clone() TaskSet {
	out := make(TaskSet, len(ts))
	copy(out, ts)
	return out
}

// ImplicitDeadlines reports whether every task's deadline equals its period.
func (ts TaskSet) ImplicitDeadlines() bool {
	for _, t := range ts {
		if t.RelativeDeadline() != t.Period {
			return false
		}
	}
	return true
}

// MaxComputingTime returns the largest C in the set, or 0 for an empty set.
func (ts TaskSet) MaxComputingTime() int64 {
	var m int64
	for _, t := range ts {
		if t.ComputingTime > m {
			m = t.ComputingTime
		}
	}
	return m
}

// MinPeriod returns the smallest T in the set, or 0 for an empty set.
func (ts TaskSet) MinPeriod() int64 {
	if len(ts) == 0 {
		return 0
	}
	m := ts[0].Period
	for _, t := range ts[1:] {
		if t.Period < m {
			m = t.Period
		}
	}
	return m
}

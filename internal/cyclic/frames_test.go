package cyclic

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/me/rtsched/internal/analysis"
	"github.com/me/rtsched/pkg/model"
)

func TestSearchFrameSizes_ScenarioOne(t *testing.T) {
	s := SearchFrameSizes(scenarioOne(), 20, 0)
	if s.MinFrame != 2 || s.MaxFrame != 4 {
		t.Errorf("range = [%d, %d], want [2, 4]", s.MinFrame, s.MaxFrame)
	}
	if !reflect.DeepEqual(s.Divisors, []int64{2, 4}) {
		t.Errorf("Divisors = %v, want [2 4]", s.Divisors)
	}
	if !reflect.DeepEqual(s.Candidates, []int64{2}) {
		t.Errorf("Candidates = %v, want [2]", s.Candidates)
	}
	want := []Rejection{{FrameSize: 4, Task: "B", Bound: 7, Deadline: 5}}
	if !reflect.DeepEqual(s.Rejected, want) {
		t.Errorf("Rejected = %+v, want %+v", s.Rejected, want)
	}
}

func TestFrameSizes_EmptyRange(t *testing.T) {
	tasks := model.TaskSet{
		{Name: "A", ComputingTime: 3, Period: 4},
		{Name: "B", ComputingTime: 5, Period: 20},
	}
	if got := FrameSizes(tasks, analysis.Hyperperiod(tasks)); len(got) != 0 {
		t.Errorf("FrameSizes() = %v, want none", got)
	}
}

func TestFrameSizes_Collision(t *testing.T) {
	if got := FrameSizes(collisionSet(), 30); !reflect.DeepEqual(got, []int64{3, 5}) {
		t.Errorf("FrameSizes() = %v, want [3 5]", got)
	}
}

func TestFrameSizes_ConstrainedDeadlineTightensWindow(t *testing.T) {
	implicit := model.TaskSet{
		{Name: "A", ComputingTime: 1, Period: 8},
		{Name: "B", ComputingTime: 2, Period: 8},
	}
	if got := FrameSizes(implicit, 8); !reflect.DeepEqual(got, []int64{2, 4, 8}) {
		t.Errorf("implicit FrameSizes() = %v, want [2 4 8]", got)
	}
	constrained := model.TaskSet{
		{Name: "A", ComputingTime: 1, Period: 8, Deadline: 4},
		{Name: "B", ComputingTime: 2, Period: 8},
	}
	if got := FrameSizes(constrained, 8); !reflect.DeepEqual(got, []int64{2, 4}) {
		t.Errorf("constrained FrameSizes() = %v, want [2 4]", got)
	}
}

func TestFrameSizes_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for trial := 0; trial < 500; trial++ {
		tasks := randomTaskSet(r)
		h := analysis.Hyperperiod(tasks)
		prev := int64(0)
		for _, fs := range FrameSizes(tasks, h) {
			if h%fs != 0 {
				t.Errorf("%v: frame size %d does not divide %d", tasks, fs, h)
			}
			if fs <= prev {
				t.Errorf("%v: candidates not ascending at %d", tasks, fs)
			}
			prev = fs
			if fs < tasks.MaxComputingTime() || fs > tasks.MinPeriod() {
				t.Errorf("%v: frame size %d outside [max C, min T]", tasks, fs)
			}
			for _, task := range tasks {
				if 2*fs-analysis.GCD(fs, task.Period) > task.Period {
					t.Errorf("%v: frame size %d violates window for %s", tasks, fs, task.Name)
				}
			}
		}
	}
}

func TestSearchFrameSizes_FrameLimitRaisesFloor(t *testing.T) {
	tasks := model.TaskSet{{Name: "A", ComputingTime: 1, Period: 1_000_000_000_000}}
	s := SearchFrameSizes(tasks, 1_000_000_000_000, 1<<20)
	if s.FrameFloor != 953675 {
		t.Errorf("FrameFloor = %d, want 953675", s.FrameFloor)
	}
	if !s.Truncated() {
		t.Error("Truncated() = false with a raised floor")
	}
	if len(s.Candidates) == 0 || s.Candidates[len(s.Candidates)-1] != 1_000_000_000_000 {
		t.Fatalf("Candidates = %v, want to end at the period", s.Candidates)
	}
	for _, fs := range s.Candidates {
		if fs < s.FrameFloor || 1_000_000_000_000%fs != 0 {
			t.Errorf("candidate %d below the floor or not a divisor", fs)
		}
	}
}

func TestSearchFrameSizes_CoprimePeriodsOverLimit(t *testing.T) {
	tasks := model.TaskSet{
		{Name: "A", ComputingTime: 1, Period: 1000003},
		{Name: "B", ComputingTime: 1, Period: 999983},
	}
	h := analysis.Hyperperiod(tasks)
	s := SearchFrameSizes(tasks, h, 1<<20)
	if s.FrameFloor == 0 {
		t.Fatal("FrameFloor not set")
	}
	if !reflect.DeepEqual(s.Divisors, []int64{999983}) {
		t.Errorf("Divisors = %v, want [999983]", s.Divisors)
	}
	if len(s.Candidates) != 0 {
		t.Errorf("Candidates = %v, want none", s.Candidates)
	}
	if got := FrameSizes(tasks, h); len(got) != 0 {
		t.Errorf("FrameSizes() = %v, want none", got)
	}
}

func TestDivisorsIn(t *testing.T) {
	for h := int64(1); h <= 60; h++ {
		for lo := int64(1); lo <= h; lo++ {
			for hi := lo - 1; hi <= h; hi++ {
				var want []int64
				for ts := lo; ts <= hi; ts++ {
					if h%ts == 0 {
						want = append(want, ts)
					}
				}
				if got := divisorsIn(h, lo, hi); !reflect.DeepEqual(got, want) {
					t.Fatalf("divisorsIn(%d, %d, %d) = %v, want %v", h, lo, hi, got, want)
				}
			}
		}
	}
}

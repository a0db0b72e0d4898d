// Package cyclic implements the cyclic-executive (frame-based) scheduler:
// frame-size search and greedy first-fit packing of jobs into frames.
package cyclic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/me/rtsched/internal/analysis"
	"github.com/me/rtsched/internal/config"
	"github.com/me/rtsched/pkg/model"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidFrameSize is returned by Run when AnalysisConfig.FrameSize is
// set to a value outside the candidate list.
var ErrInvalidFrameSize = errors.New("not a valid candidate")

// Attempt is the outcome of packing one candidate frame size. Exactly one of
// Timetable and Failure is set.
type Attempt struct {
	FrameSize int64                 `json:"frame_size" yaml:"frame_size"`
	Timetable *model.Timetable      `json:"timetable,omitempty" yaml:"timetable,omitempty"`
	Failure   *model.PlacementError `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Result collects every stage of a cyclic analysis. Stages after an abort
// are left zero.
type Result struct {
	Tasks       model.TaskSet `json:"tasks" yaml:"tasks"`
	Utilization float64       `json:"utilization" yaml:"utilization"`
	Hyperperiod int64         `json:"hyperperiod" yaml:"hyperperiod"`
	Search      FrameSearch   `json:"search" yaml:"search"`
	Attempts    []Attempt     `json:"attempts" yaml:"attempts"`
}

// Verdict summarizes the result: schedulable when at least one frame size
// packs. When none packs but the size limits left frame sizes untried, the
// result cannot guarantee that no timetable exists.
func (r *Result) Verdict() model.Verdict {
	for _, a := range r.Attempts {
		if a.Timetable != nil {
			return model.VerdictSchedulable
		}
	}
	if r.Search.Truncated() {
		return model.VerdictCannotGuarantee
	}
	return model.VerdictUnschedulable
}

// Timetables returns the successful timetables in ascending frame size.
func (r *Result) Timetables() []*model.Timetable {
	var out []*model.Timetable
	for _, a := range r.Attempts {
		if a.Timetable != nil {
			out = append(out, a.Timetable)
		}
	}
	return out
}

// Analyzer runs the full cyclic pipeline.
type Analyzer struct {
	cfg    config.AnalysisConfig
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(cfg config.AnalysisConfig, logger *slog.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, logger: logger.With("component", "cyclic")}
}

// Run computes utilization, hyperperiod and the frame-size candidates, then
// packs every candidate that fits the size limits. The returned Result is
// non-nil whenever tasks is non-empty, even when err reports an abort:
// *model.InfeasibleUtilizationError, *model.NoValidFrameSizeError or
// *model.ScheduleSizeError. Placement failures are recorded on the attempts
// and are not errors.
func (a *Analyzer) Run(ctx context.Context, tasks model.TaskSet) (*Result, error) {
	if len(tasks) == 0 {
		return nil, errors.New("empty task set")
	}

	res := &Result{Tasks: tasks, Utilization: analysis.Utilization(tasks)}
	a.logger.Debug("utilization", "tasks", len(tasks), "value", res.Utilization)
	if res.Utilization > analysis.UtilizationBound {
		return res, &model.InfeasibleUtilizationError{Utilization: res.Utilization}
	}

	res.Hyperperiod = analysis.Hyperperiod(tasks)
	maxFrames, maxJobs := a.cfg.Limits()
	jobs := jobCount(tasks, res.Hyperperiod)
	res.Search = SearchFrameSizes(tasks, res.Hyperperiod, maxFrames)
	a.logger.Debug("frame search",
		"hyperperiod", res.Hyperperiod,
		"jobs", jobs,
		"range", fmt.Sprintf("[%d, %d]", res.Search.MinFrame, res.Search.MaxFrame),
		"floor", res.Search.FrameFloor,
		"divisors", res.Search.Divisors,
		"candidates", res.Search.Candidates,
	)

	sizeErr := &model.ScheduleSizeError{Hyperperiod: res.Hyperperiod, Jobs: jobs, MaxFrames: maxFrames, MaxJobs: maxJobs}
	if len(res.Search.Candidates) == 0 {
		if res.Search.FrameFloor > 0 {
			return res, sizeErr
		}
		return res, &model.NoValidFrameSizeError{
			MinFrame:    res.Search.MinFrame,
			MaxFrame:    res.Search.MaxFrame,
			Hyperperiod: res.Hyperperiod,
		}
	}

	sizes := res.Search.Candidates
	if fs := a.cfg.FrameSize; fs > 0 {
		if !slices.Contains(sizes, fs) {
			if fs < res.Search.FrameFloor && res.Hyperperiod%fs == 0 {
				sizeErr.Frames = res.Hyperperiod / fs
				return res, sizeErr
			}
			return res, fmt.Errorf("frame size %d is %w %v", fs, ErrInvalidFrameSize, sizes)
		}
		sizes = []int64{fs}
	}

	sizes, res.Search.Skipped = budget(sizes, res.Hyperperiod, jobs, maxFrames, maxJobs)
	if len(sizes) == 0 {
		sizeErr.Frames = res.Hyperperiod / res.Search.Skipped[len(res.Search.Skipped)-1]
		return res, sizeErr
	}
	if len(res.Search.Skipped) > 0 {
		a.logger.Debug("frame sizes over the size limits", "skipped", res.Search.Skipped)
	}

	attempts, err := a.packAll(ctx, tasks, sizes, res.Hyperperiod)
	if err != nil {
		return res, err
	}
	res.Attempts = attempts
	return res, nil
}

// jobCount returns the number of jobs in one hyperperiod, saturating at
// math.MaxInt64.
func jobCount(tasks model.TaskSet, hyperperiod int64) int64 {
	var n int64
	for _, t := range tasks {
		k := hyperperiod / t.Period
		if k > math.MaxInt64-n {
			return math.MaxInt64
		}
		n += k
	}
	return n
}

// budget keeps the largest frame sizes whose timetables together stay within
// maxFrames frames and maxJobs jobs, and returns the rest as skipped. Both
// slices stay in ascending order. Smaller frame sizes cost more frames, so
// the kept sizes are always a suffix of sizes.
func budget(sizes []int64, hyperperiod, jobs, maxFrames, maxJobs int64) (kept, skipped []int64) {
	var frames, placed int64
	for i := len(sizes) - 1; i >= 0; i-- {
		n := hyperperiod / sizes[i]
		if n > maxFrames-frames || jobs > maxJobs-placed {
			return slices.Clone(sizes[i+1:]), slices.Clone(sizes[:i+1])
		}
		frames += n
		placed += jobs
	}
	return sizes, nil
}

// packAll packs each frame size, at most cfg.Workers at a time. Attempts are
// indexed by position so the output order never depends on timing.
func (a *Analyzer) packAll(ctx context.Context, tasks model.TaskSet, sizes []int64, hyperperiod int64) ([]Attempt, error) {
	attempts := make([]Attempt, len(sizes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.cfg.Workers, 1))
	for i, fs := range sizes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			att, err := a.attempt(tasks, fs, hyperperiod)
			attempts[i] = att
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *Analyzer) attempt(tasks model.TaskSet, frameSize, hyperperiod int64) (Attempt, error) {
	tt, err := Pack(tasks, frameSize, hyperperiod)
	if err != nil {
		var pe *model.PlacementError
		if errors.As(err, &pe) {
			a.logger.Debug("placement failed", "frame_size", frameSize, "task", pe.Task, "job", pe.Job)
			return Attempt{FrameSize: frameSize, Failure: pe}, nil
		}
		return Attempt{FrameSize: frameSize}, err
	}
	a.logger.Debug("packed", "frame_size", frameSize, "frames", len(tt.Frames))
	return Attempt{FrameSize: frameSize, Timetable: tt}, nil
}

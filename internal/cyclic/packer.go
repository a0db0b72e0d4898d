package cyclic

import (
	"fmt"
	"sort"

	"github.com/me/rtsched/internal/analysis"
	"github.com/me/rtsched/pkg/model"
)

// slot is the working state of one frame during packing.
type slot struct {
	spare int64
	jobs  []model.ScheduledJob
}

// Pack assigns every job of every task in the hyperperiod to a frame of
// length frameSize, greedily and first-fit, shortest period first. It returns
// a *model.PlacementError naming the first job that fits in no eligible frame.
func Pack(tasks model.TaskSet, frameSize, hyperperiod int64) (*model.Timetable, error) {
	if frameSize <= 0 || hyperperiod%frameSize != 0 {
		return nil, fmt.Errorf("frame size %d does not divide hyperperiod %d", frameSize, hyperperiod)
	}
	slots, err := packSlots(tasks, frameSize, hyperperiod)
	if err != nil {
		return nil, err
	}

	numFrames := hyperperiod / frameSize
	tt := &model.Timetable{
		FrameSize:   frameSize,
		Hyperperiod: hyperperiod,
		Frames:      make([]model.Frame, numFrames),
	}
	for i := range tt.Frames {
		jobs := slots[i].jobs
		if jobs == nil {
			jobs = []model.ScheduledJob{}
		}
		tt.Frames[i] = model.Frame{
			Index: int64(i),
			Start: int64(i) * frameSize,
			Slack: slots[i].spare,
			Jobs:  jobs,
		}
	}
	return tt, nil
}

// packSlots runs the placement and returns all numFrames+1 slots. The
// trailing slot is probed by the scan bound but never receives a job: it
// starts at the hyperperiod, past every deadline.
func packSlots(tasks model.TaskSet, frameSize, hyperperiod int64) ([]slot, error) {
	ordered := tasks.Clone()
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Period < ordered[j].Period
	})

	numFrames := hyperperiod / frameSize
	slots := make([]slot, numFrames+1)
	for i := range slots {
		slots[i].spare = frameSize
	}

	for _, t := range ordered {
		numJobs := hyperperiod / t.Period
		for i := int64(0); i < numJobs; i++ {
			activation := i * t.Period
			deadline := activation + t.RelativeDeadline()
			first := analysis.CeilDiv(activation, frameSize)

			placed := false
			for off := int64(0); first+off <= numFrames && off*frameSize <= t.Period; off++ {
				f := first + off
				s := &slots[f]
				start := f*frameSize + (frameSize - s.spare)
				if start+t.ComputingTime > deadline {
					break // later frames only start later
				}
				if s.spare < t.ComputingTime {
					continue
				}
				s.jobs = append(s.jobs, model.ScheduledJob{
					Task:       t.Name,
					Job:        i,
					Activation: activation,
					Deadline:   deadline,
					Start:      start,
					End:        start + t.ComputingTime,
				})
				s.spare -= t.ComputingTime
				placed = true
				break
			}
			if !placed {
				return nil, &model.PlacementError{
					Task:       t.Name,
					Job:        i,
					Activation: activation,
					FrameSize:  frameSize,
				}
			}
		}
	}
	return slots, nil
}

package model

// ScheduledJob is one job instance placed in a frame.
type ScheduledJob struct {
	Task       string `json:"task" yaml:"task"`
	Job        int64  `json:"job" yaml:"job"`
	Activation int64  `json:"activation" yaml:"activation"`
	Deadline   int64  `json:"deadline" yaml:"deadline"`
	Start      int64  `json:"start" yaml:"start"`
	End        int64  `json:"end" yaml:"end"`
}

// Frame is one fixed-length slice of the hyperperiod. Jobs run back to back
// in the order they were placed.
type Frame struct {
	Index int64          `json:"index" yaml:"index"`
	Start int64          `json:"start" yaml:"start"`
	Slack int64          `json:"slack" yaml:"slack"`
	Jobs  []ScheduledJob `json:"jobs" yaml:"jobs"`
}

// Timetable is a complete static schedule for one frame size.
type Timetable struct {
	FrameSize   int64   `json:"frame_size" yaml:"frame_size"`
	Hyperperiod int64   `json:"hyperperiod" yaml:"hyperperiod"`
	Frames      []Frame `json:"frames" yaml:"frames"`
}

// JobCount returns the number of jobs placed for the named task.
func (tt *Timetable) JobCount(task string) int {
	n := 0
	for _, f := range tt.Frames {
		for _, j := range f.Jobs {
			if j.Task == task {
				n++
			}
		}
	}
	return n
}

// Busy returns the total computing time placed in the timetable.
func (tt *Timetable) Busy() int64 {
	var busy int64
	for _, f := range tt.Frames {
		busy += tt.FrameSize - f.Slack
	}
	return busy
}

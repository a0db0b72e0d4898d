package model

import "fmt"

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
)

// APIError is a structured error returned by the rtsched API and the
// task-set validator.
type APIError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// NewValidationError creates an APIError with validation details.
func NewValidationError(msg string, details ...FieldError) *APIError {
	return &APIError{Code: ErrValidation, Message: msg, Details: details}
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

// InfeasibleUtilizationError aborts a run whose utilization exceeds 1.
type InfeasibleUtilizationError struct {
	Utilization float64
}

func (e *InfeasibleUtilizationError) Error() string {
	return fmt.Sprintf("utilization %.4f exceeds 1: no schedule exists", e.Utilization)
}

// NoValidFrameSizeError aborts a run for which no frame size satisfies the
// divisor and window constraints.
type NoValidFrameSizeError struct {
	MinFrame    int64
	MaxFrame    int64
	Hyperperiod int64
}

func (e *NoValidFrameSizeError) Error() string {
	return fmt.Sprintf("no valid frame size in [%d, %d] for hyperperiod %d", e.MinFrame, e.MaxFrame, e.Hyperperiod)
}

// ScheduleSizeError aborts a run whose timetables would exceed the
// configured size limits. Frames is 0 when no frame size stays within
// MaxFrames.
type ScheduleSizeError struct {
	Hyperperiod int64
	Frames      int64
	Jobs        int64
	MaxFrames   int64
	MaxJobs     int64
}

func (e *ScheduleSizeError) Error() string {
	if e.Frames == 0 {
		return fmt.Sprintf("hyperperiod %d: no valid frame size yields at most %d frames", e.Hyperperiod, e.MaxFrames)
	}
	return fmt.Sprintf("hyperperiod %d: the smallest timetable has %d frames and %d jobs, limit is %d frames and %d jobs",
		e.Hyperperiod, e.Frames, e.Jobs, e.MaxFrames, e.MaxJobs)
}

// PlacementError reports the first job a frame size could not accommodate.
type PlacementError struct {
	Task       string `json:"task" yaml:"task"`
	Job        int64  `json:"job" yaml:"job"`
	Activation int64  `json:"activation" yaml:"activation"`
	FrameSize  int64  `json:"frame_size" yaml:"frame_size"`
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("frame size %d: cannot place job #%d of task %s (activation %d)", e.FrameSize, e.Job, e.Task, e.Activation)
}

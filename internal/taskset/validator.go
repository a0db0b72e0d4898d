package taskset

import (
	"fmt"
	"log/slog"

	"github.com/me/rtsched/pkg/model"
)

// Validator checks a parsed document before normalization.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a Validator with the given logger.
func NewValidator(logger *slog.Logger) *Validator {
	return &Validator{logger: logger.With("component", "validator")}
}

// Validate returns nil if doc is usable, or an *model.APIError listing every
// problem found.
func (v *Validator) Validate(doc *Document) *model.APIError {
	if len(doc.Tasks) == 0 {
		return model.NewValidationError("task set validation failed",
			model.FieldError{Field: "tasks", Message: "task set is empty"})
	}

	var errs []model.FieldError
	errs = append(errs, v.validateValues(doc)...)
	errs = append(errs, v.validateNames(doc)...)

	if len(errs) == 0 {
		return nil
	}
	v.logger.Debug("rejected", "errors", len(errs))
	return model.NewValidationError("task set validation failed", errs...)
}

func (v *Validator) validateValues(doc *Document) []model.FieldError {
	var errs []model.FieldError
	for i, t := range doc.Tasks {
		field := func(name string) string { return fmt.Sprintf("tasks[%d].%s", i, name) }

		if !t.ComputingTime.IsSet() {
			errs = append(errs, model.FieldError{Field: field("computing_time"), Line: t.Line, Message: "computing time is required"})
		} else if t.ComputingTime.Sign() <= 0 {
			errs = append(errs, model.FieldError{Field: field("computing_time"), Line: t.Line,
				Message: fmt.Sprintf("computing time must be positive, got %s", t.ComputingTime)})
		}

		if !t.Period.IsSet() {
			errs = append(errs, model.FieldError{Field: field("period"), Line: t.Line, Message: "period is required"})
			continue
		}
		if t.Period.Sign() <= 0 {
			errs = append(errs, model.FieldError{Field: field("period"), Line: t.Line,
				Message: fmt.Sprintf("period must be positive, got %s", t.Period)})
			continue
		}

		if t.Deadline.IsSet() {
			switch {
			case t.Deadline.Sign() <= 0:
				errs = append(errs, model.FieldError{Field: field("deadline"), Line: t.Line,
					Message: fmt.Sprintf("deadline must be positive, got %s", t.Deadline)})
			case t.Deadline.Cmp(t.Period) > 0:
				errs = append(errs, model.FieldError{Field: field("deadline"), Line: t.Line,
					Message: fmt.Sprintf("deadline %s exceeds period %s", t.Deadline, t.Period)})
			}
		}
	}
	return errs
}

func (v *Validator) validateNames(doc *Document) []model.FieldError {
	var errs []model.FieldError
	seen := make(map[string]int, len(doc.Tasks))
	for i, t := range doc.Tasks {
		if t.Name == "" {
			errs = append(errs, model.FieldError{Field: fmt.Sprintf("tasks[%d].name", i), Line: t.Line, Message: "task name is required"})
			continue
		}
		if first, dup := seen[t.Name]; dup {
			errs = append(errs, model.FieldError{
				Field:   fmt.Sprintf("tasks[%d].name", i),
				Line:    t.Line,
				Message: fmt.Sprintf("duplicate task name %q (first at tasks[%d])", t.Name, first),
			})
			continue
		}
		seen[t.Name] = i
	}
	return errs
}

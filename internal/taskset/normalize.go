package taskset

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/me/rtsched/internal/analysis"
	"github.com/me/rtsched/pkg/model"
)

// Normalized is a task set in integer time units. An input value v maps to
// v*Scale units.
type Normalized struct {
	Name  string
	Tasks model.TaskSet
	Scale int64
}

// Normalize scales every value of doc by 10^k, k being the largest number
// of decimal places among them, and rounds to the nearest integer. It fails
// if a value leaves the int64 range, rounds to zero, or the hyperperiod of
// the result overflows.
func Normalize(doc *Document) (*Normalized, error) {
	k := 0
	for _, t := range doc.Tasks {
		k = max(k, t.ComputingTime.Decimals(), t.Period.Decimals(), t.Deadline.Decimals())
	}
	scale := int64(1)
	for range k {
		scale *= 10
	}

	n := &Normalized{
		Name:  doc.Name,
		Tasks: make(model.TaskSet, 0, len(doc.Tasks)),
		Scale: scale,
	}
	var errs []model.FieldError
	for i, rt := range doc.Tasks {
		task := model.Task{Name: rt.Name}
		values := []struct {
			field string
			q     Quantity
			out   *int64
		}{
			{"computing_time", rt.ComputingTime, &task.ComputingTime},
			{"period", rt.Period, &task.Period},
			{"deadline", rt.Deadline, &task.Deadline},
		}
		for _, v := range values {
			if !v.q.IsSet() {
				continue
			}
			scaled, ok := v.q.Scaled(scale)
			switch {
			case !ok:
				errs = append(errs, model.FieldError{Field: fmt.Sprintf("tasks[%d].%s", i, v.field), Line: rt.Line,
					Message: fmt.Sprintf("%s does not fit in a 64-bit integer at scale %d", v.q, scale)})
			case scaled <= 0 && v.q.Sign() > 0:
				errs = append(errs, model.FieldError{Field: fmt.Sprintf("tasks[%d].%s", i, v.field), Line: rt.Line,
					Message: fmt.Sprintf("%s rounds to zero at scale %d", v.q, scale)})
			}
			*v.out = scaled
		}
		n.Tasks = append(n.Tasks, task)
	}
	if len(errs) > 0 {
		return nil, model.NewValidationError("task set normalization failed", errs...)
	}

	if _, err := analysis.CheckedHyperperiod(n.Tasks); err != nil {
		if errors.Is(err, analysis.ErrHyperperiodOverflow) {
			return nil, model.NewValidationError("task set normalization failed",
				model.FieldError{Field: "tasks", Message: fmt.Sprintf("%v at scale %d", err, scale)})
		}
		return nil, err
	}
	return n, nil
}

// ContentHash returns the SHA-256 of the canonical task list, so equal task
// sets hash equally regardless of input formatting.
func ContentHash(tasks model.TaskSet, scale int64) string {
	var b strings.Builder
	b.WriteString("scale=")
	b.WriteString(strconv.FormatInt(scale, 10))
	b.WriteByte('\n')
	for _, t := range tasks {
		fmt.Fprintf(&b, "%s,%d,%d,%d\n", t.Name, t.ComputingTime, t.Period, t.RelativeDeadline())
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Package analysis holds the pure task-set measures shared by every
// scheduling discipline: utilization and hyperperiod.
package analysis

import (
	"errors"
	"math"

	"github.com/me/rtsched/pkg/model"
)

// UtilizationBound is the largest total utilization any uniprocessor
// schedule can sustain.
const UtilizationBound = 1.0

// ErrHyperperiodOverflow is returned when the LCM of the periods does not
// fit in an int64.
var ErrHyperperiodOverflow = errors.New("hyperperiod overflows int64")

// Utilization returns the sum of C/T over all tasks.
func Utilization(tasks model.TaskSet) float64 {
	var u float64
	for _, t := range tasks {
		u += t.Utilization()
	}
	return u
}

// Hyperperiod returns the least common multiple of all periods, folding from 1.
func Hyperperiod(tasks model.TaskSet) int64 {
	h := int64(1)
	for _, t := range tasks {
		h = LCM(h, t.Period)
	}
	return h
}

// CheckedHyperperiod is Hyperperiod with overflow detection.
func CheckedHyperperiod(tasks model.TaskSet) (int64, error) {
	h := int64(1)
	for _, t := range tasks {
		q := t.Period / GCD(h, t.Period)
		if q != 0 && h > math.MaxInt64/q {
			return 0, ErrHyperperiodOverflow
		}
		h *= q
	}
	return h, nil
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of a and b, or 0 if either is 0.
func LCM(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	return a / GCD(a, b) * b
}

// CeilDiv returns ceil(a/b) for non-negative a and positive b.
func CeilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

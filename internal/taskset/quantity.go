package taskset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxDecimals bounds the scale factor to 10^MaxDecimals. Values with finer
// resolution are rounded at that scale.
const MaxDecimals = 9

// Quantity is a time value as written in the input. The literal text is kept
// so that normalization works on the exact decimal, not a float64.
type Quantity struct {
	Literal string
	value   *big.Rat
}

// ParseQuantity parses a decimal literal such as "4", "0.25" or "1.5e-3".
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quantity{}, fmt.Errorf("empty value")
	}
	if strings.Contains(s, "/") {
		return Quantity{}, fmt.Errorf("invalid number %q", s)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Quantity{}, fmt.Errorf("invalid number %q", s)
	}
	return Quantity{Literal: s, value: r}, nil
}

// IsSet reports whether the quantity was present in the input.
func (q Quantity) IsSet() bool { return q.value != nil }

// Rat returns the exact value, or zero if unset.
func (q Quantity) Rat() *big.Rat {
	if q.value == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(q.value)
}

// Sign returns -1, 0 or +1.
func (q Quantity) Sign() int {
	if q.value == nil {
		return 0
	}
	return q.value.Sign()
}

// Cmp compares q and o by value.
func (q Quantity) Cmp(o Quantity) int { return q.Rat().Cmp(o.Rat()) }

// Decimals returns the smallest k <= MaxDecimals for which value*10^k is an
// integer, or MaxDecimals if there is none.
func (q Quantity) Decimals() int {
	if q.value == nil {
		return 0
	}
	r := q.Rat()
	ten := big.NewRat(10, 1)
	for k := 0; k < MaxDecimals; k++ {
		if r.IsInt() {
			return k
		}
		r.Mul(r, ten)
	}
	return MaxDecimals
}

// Scaled returns value*scale rounded half away from zero, and whether the
// result fits in an int64.
func (q Quantity) Scaled(scale int64) (int64, bool) {
	r := q.Rat()
	r.Mul(r, new(big.Rat).SetInt64(scale))

	num := new(big.Int).Abs(r.Num())
	den := r.Denom()
	// floor((2*num + den) / (2*den))
	n := new(big.Int).Lsh(num, 1)
	n.Add(n, den)
	d := new(big.Int).Lsh(den, 1)
	n.Quo(n, d)
	if r.Sign() < 0 {
		n.Neg(n)
	}
	if !n.IsInt64() {
		return 0, false
	}
	return n.Int64(), true
}

func (q Quantity) String() string { return q.Literal }

// UnmarshalYAML keeps the scalar's literal text.
func (q *Quantity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	parsed, err := ParseQuantity(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*q = parsed
	return nil
}

// UnmarshalJSON accepts a JSON number or a numeric string and keeps its text.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = Quantity{}
		return nil
	}
	lit := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &lit); err != nil {
			return err
		}
	}
	parsed, err := ParseQuantity(lit)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

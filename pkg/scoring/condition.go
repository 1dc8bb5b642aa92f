package scoring

import (
	"math"
	"strconv"
	"strings"
)

// conditionEpsilon is the tolerance for == and != comparisons.
const conditionEpsilon = 1e-9

// CompareOp is a threshold comparison operator.
type CompareOp string

const (
	OpGreaterEqual CompareOp = ">="
	OpLessEqual    CompareOp = "<="
	OpEqual        CompareOp = "=="
	OpNotEqual     CompareOp = "!="
	OpGreater      CompareOp = ">"
	OpLess         CompareOp = "<"
)

// Operators are tried in this order so that ">=" is never read as ">".
var compareOps = []CompareOp{OpGreaterEqual, OpLessEqual, OpEqual, OpNotEqual, OpGreater, OpLess}

// Comparison is a single "<op> <number>" clause.
type Comparison struct {
	Op        CompareOp
	Threshold float64
}

// Holds reports whether v satisfies the comparison.
func (c Comparison) Holds(v float64) bool {
	switch c.Op {
	case OpGreaterEqual:
		return v >= c.Threshold
	case OpLessEqual:
		return v <= c.Threshold
	case OpEqual:
		return math.Abs(v-c.Threshold) < conditionEpsilon
	case OpNotEqual:
		return math.Abs(v-c.Threshold) >= conditionEpsilon
	case OpGreater:
		return v > c.Threshold
	case OpLess:
		return v < c.Threshold
	}
	return false
}

// Condition is a conjunction of comparisons joined by "&&".
type Condition []Comparison

// Holds reports whether every comparison holds for v.
func (c Condition) Holds(v float64) bool {
	for _, cmp := range c {
		if !cmp.Holds(v) {
			return false
		}
	}
	return true
}

// ParseCondition parses expressions such as ">= 65" or ">= 30 && < 40".
// There is no OR, no grouping and no nesting.
func ParseCondition(expr string) (Condition, error) {
	parts := strings.Split(strings.TrimSpace(expr), "&&")
	cond := make(Condition, 0, len(parts))
	for _, part := range parts {
		cmp, err := parseComparison(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		cond = append(cond, cmp)
	}
	return cond, nil
}

func parseComparison(s string) (Comparison, error) {
	for _, op := range compareOps {
		rest, ok := strings.CutPrefix(s, string(op))
		if !ok {
			continue
		}
		threshold, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			return Comparison{}, &CalculationError{
				Kind:   ErrConditionParse,
				Expr:   s,
				Reason: "invalid number after '" + string(op) + "'",
			}
		}
		return Comparison{Op: op, Threshold: threshold}, nil
	}
	return Comparison{}, &CalculationError{
		Kind:   ErrConditionParse,
		Expr:   s,
		Reason: "unknown operator (expected: >=, <=, ==, !=, >, <)",
	}
}

// EvaluateCondition parses expr and evaluates it against v.
func EvaluateCondition(expr string, v float64) (bool, error) {
	cond, err := ParseCondition(expr)
	if err != nil {
		return false, err
	}
	return cond.Holds(v), nil
}

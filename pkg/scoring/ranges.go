package scoring

import (
	"strconv"
	"strings"
)

// Matches reports whether total falls inside the range.
//
// Forms are tried in a fixed order: exact integer, "min-max" (inclusive),
// "≥n"/">=n", "≤n"/"<=n", ">n", "<n", then a plain integer string.
// Negative bounds are not supported.
func (r ScoreRange) Matches(total int) (bool, error) {
	if r.Exact != nil {
		return total == *r.Exact, nil
	}
	s := strings.TrimSpace(r.Expr)

	if strings.Contains(s, "-") {
		if parts := strings.Split(s, "-"); len(parts) == 2 {
			lo, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
			hi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err1 != nil || err2 != nil {
				return false, rangeError(s, "invalid range format")
			}
			return total >= lo && total <= hi, nil
		}
	}

	if rest, ok := cutAnyPrefix(s, "≥", ">="); ok {
		n, err := rangeBound(s, rest)
		if err != nil {
			return false, err
		}
		return total >= n, nil
	}
	if rest, ok := cutAnyPrefix(s, "≤", "<="); ok {
		n, err := rangeBound(s, rest)
		if err != nil {
			return false, err
		}
		return total <= n, nil
	}
	if rest, ok := strings.CutPrefix(s, ">"); ok {
		n, err := rangeBound(s, rest)
		if err != nil {
			return false, err
		}
		return total > n, nil
	}
	if rest, ok := strings.CutPrefix(s, "<"); ok {
		n, err := rangeBound(s, rest)
		if err != nil {
			return false, err
		}
		return total < n, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		return total == n, nil
	}
	return false, rangeError(s, "unrecognized range format")
}

// Validate reports a parse error in the range expression, if any.
// Parse failures do not depend on the total being matched.
func (r ScoreRange) Validate() error {
	_, err := r.Matches(0)
	return err
}

func cutAnyPrefix(s string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(s, p); ok {
			return rest, true
		}
	}
	return s, false
}

func rangeBound(expr, rest string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, rangeError(expr, "invalid number in range")
	}
	return n, nil
}

func rangeError(expr, reason string) error {
	return &CalculationError{Kind: ErrConditionParse, Expr: expr, Reason: reason}
}

package scoring_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

func TestEvaluateCondition(t *testing.T) {
	tests := []struct {
		expr  string
		value float64
		want  bool
	}{
		{">= 65", 65, true},
		{">= 65", 70, true},
		{">= 65", 60, false},
		{"> 50", 51, true},
		{"> 50", 50, false},
		{"< 100", 99, true},
		{"< 100", 100, false},
		{"<= 100", 100, true},
		{"<= 100", 101, false},
		{"== 3", 3, true},
		{"== 3", 3.0000000001, true},
		{"== 3", 3.1, false},
		{"!= 3", 3, false},
		{"!= 3", 4, true},
		{">=65", 65, true},
		{"  <  1.5  ", 1.4, true},
		{">= -5", -5, true},
	}

	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := scoring.EvaluateCondition(tc.expr, tc.value)
			if err != nil {
				t.Fatalf("EvaluateCondition(%q, %v) error: %v", tc.expr, tc.value, err)
			}
			if got != tc.want {
				t.Errorf("EvaluateCondition(%q, %v) = %v, want %v", tc.expr, tc.value, got, tc.want)
			}
		})
	}
}

func TestEvaluateCondition_Compound(t *testing.T) {
	tests := []struct {
		expr  string
		value float64
		want  bool
	}{
		{">= 30 && < 40", 30, true},
		{">= 30 && < 40", 35, true},
		{">= 30 && < 40", 39.9, true},
		{">= 30 && < 40", 40, false},
		{">= 30 && < 40", 29.9, false},
		{">= 10 && < 20 && != 15", 12, true},
		{">= 10 && < 20 && != 15", 15, false},
	}

	for _, tc := range tests {
		got, err := scoring.EvaluateCondition(tc.expr, tc.value)
		if err != nil {
			t.Fatalf("EvaluateCondition(%q) error: %v", tc.expr, err)
		}
		if got != tc.want {
			t.Errorf("EvaluateCondition(%q, %v) = %v, want %v", tc.expr, tc.value, got, tc.want)
		}
	}
}

func TestParseCondition_Errors(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		wantExpr string
		reason   string
	}{
		{name: "no operator", expr: "65", wantExpr: "65", reason: "unknown operator"},
		{name: "word operator", expr: "gt 65", wantExpr: "gt 65", reason: "unknown operator"},
		{name: "bad number", expr: ">= abc", wantExpr: ">= abc", reason: "invalid number after '>='"},
		{name: "missing number", expr: "<", wantExpr: "<", reason: "invalid number after '<'"},
		{name: "bad second clause", expr: ">= 30 && ~40", wantExpr: "~40", reason: "unknown operator"},
		{name: "dangling and", expr: ">= 30 &&", wantExpr: "", reason: "unknown operator"},
		{name: "or is not supported", expr: ">= 30 || < 10", wantExpr: ">= 30 || < 10", reason: "invalid number after '>='"},
		{name: "empty", expr: "", wantExpr: "", reason: "unknown operator"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := scoring.ParseCondition(tc.expr)
			if !errors.Is(err, scoring.ErrConditionParse) {
				t.Fatalf("expected ErrConditionParse, got %v", err)
			}
			var ce *scoring.CalculationError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *CalculationError, got %T", err)
			}
			if ce.Expr != tc.wantExpr {
				t.Errorf("Expr = %q, want %q", ce.Expr, tc.wantExpr)
			}
			if !strings.Contains(ce.Reason, tc.reason) {
				t.Errorf("Reason = %q, want it to contain %q", ce.Reason, tc.reason)
			}
		})
	}
}

func TestParseCondition_OperatorPrecedence(t *testing.T) {
	cond, err := scoring.ParseCondition(">= 5 && <= 9")
	if err != nil {
		t.Fatalf("ParseCondition error: %v", err)
	}
	if len(cond) != 2 {
		t.Fatalf("expected 2 comparisons, got %d", len(cond))
	}
	if cond[0].Op != scoring.OpGreaterEqual || cond[0].Threshold != 5 {
		t.Errorf("first comparison = %+v, want >= 5", cond[0])
	}
	if cond[1].Op != scoring.OpLessEqual || cond[1].Threshold != 9 {
		t.Errorf("second comparison = %+v, want <= 9", cond[1])
	}
}

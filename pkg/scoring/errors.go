package scoring

import (
	"errors"
	"fmt"
	"strconv"
)

// Error kinds. Every *CalculationError unwraps to exactly one of these.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidInput         = errors.New("invalid input")
	ErrOutOfRange           = errors.New("out of range")
	ErrUnknownOption        = errors.New("unknown option")
	ErrConditionParse       = errors.New("condition parse error")
	ErrNoInterpretation     = errors.New("no interpretation")
	ErrUnknownFormula       = errors.New("unknown formula")
)

// ErrNilDefinition is returned by Calculate for a nil definition. It is a
// caller bug, so it is not wrapped in a *CalculationError.
var ErrNilDefinition = errors.New("score definition is nil")

// CalculationError reports why a calculation failed. Only the fields
// relevant to Kind are populated.
type CalculationError struct {
	Kind    error
	Field   string
	Option  string
	Expr    string
	Formula string
	Reason  string
	Value   float64
	Min     *float64
	Max     *float64
	Total   int
}

func (e *CalculationError) Error() string {
	switch e.Kind {
	case ErrMissingRequiredField:
		return fmt.Sprintf("missing required field: %s", e.Field)
	case ErrInvalidInput:
		return fmt.Sprintf("invalid input value for field '%s': %s", e.Field, e.Reason)
	case ErrOutOfRange:
		return fmt.Sprintf("field '%s' is out of range: %s (allowed: %s - %s)",
			e.Field, formatFloat(e.Value), formatBound(e.Min, "-inf"), formatBound(e.Max, "inf"))
	case ErrUnknownOption:
		return fmt.Sprintf("unknown dropdown option '%s' for field '%s'", e.Option, e.Field)
	case ErrConditionParse:
		if e.Field != "" {
			return fmt.Sprintf("failed to parse condition '%s' for field '%s': %s", e.Expr, e.Field, e.Reason)
		}
		return fmt.Sprintf("failed to parse condition '%s': %s", e.Expr, e.Reason)
	case ErrNoInterpretation:
		return fmt.Sprintf("no interpretation found for score %d", e.Total)
	case ErrUnknownFormula:
		return fmt.Sprintf("unknown formula: %s", e.Formula)
	default:
		return "calculation failed"
	}
}

func (e *CalculationError) Unwrap() error { return e.Kind }

// Code returns a stable machine-readable identifier for the error kind.
func (e *CalculationError) Code() string {
	switch e.Kind {
	case ErrMissingRequiredField:
		return "missing_required_field"
	case ErrInvalidInput:
		return "invalid_input"
	case ErrOutOfRange:
		return "out_of_range"
	case ErrUnknownOption:
		return "unknown_option"
	case ErrConditionParse:
		return "condition_parse_error"
	case ErrNoInterpretation:
		return "no_interpretation"
	case ErrUnknownFormula:
		return "unknown_formula"
	default:
		return "calculation_error"
	}
}

func missingField(field string) *CalculationError {
	return &CalculationError{Kind: ErrMissingRequiredField, Field: field}
}

func invalidInput(field, reason string) *CalculationError {
	return &CalculationError{Kind: ErrInvalidInput, Field: field, Reason: reason}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBound(b *float64, unbounded string) string {
	if b == nil {
		return unbounded
	}
	return formatFloat(*b)
}

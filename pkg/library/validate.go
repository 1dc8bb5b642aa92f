package library

import (
	"fmt"

	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

// Validate checks what the engine relies on: a name, at least one input and
// one interpretation, unique labelled field IDs, a registered formula, and
// well-formed condition and range expressions.
func Validate(def *scoring.ScoreDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("score name is empty")
	}
	if len(def.Inputs) == 0 {
		return fmt.Errorf("score has no input fields")
	}
	if len(def.Interpretation) == 0 {
		return fmt.Errorf("score has no interpretation rules")
	}
	if def.Formula != "" && !scoring.KnownFormula(def.Formula) {
		return fmt.Errorf("unknown formula %q", def.Formula)
	}

	seen := make(map[string]bool, len(def.Inputs))
	for i := range def.Inputs {
		f := &def.Inputs[i]
		if f.Field == "" {
			return fmt.Errorf("input field %d has empty field name", i)
		}
		if f.Label == "" {
			return fmt.Errorf("input field '%s' has empty label", f.Field)
		}
		if seen[f.Field] {
			return fmt.Errorf("duplicate field name: '%s'", f.Field)
		}
		seen[f.Field] = true

		if err := validateField(f); err != nil {
			return err
		}
	}

	for i, rule := range def.Interpretation {
		if !rule.RiskLevel.Valid() {
			return fmt.Errorf("interpretation %d: missing or unknown risk_level %q", i, rule.RiskLevel)
		}
		if err := rule.Score.Validate(); err != nil {
			return fmt.Errorf("interpretation %d: %w", i, err)
		}
	}
	return nil
}

func validateField(f *scoring.InputField) error {
	switch f.Kind {
	case scoring.KindBoolean, scoring.KindNumber:
	case scoring.KindCategory:
		if len(f.Options) == 0 {
			return fmt.Errorf("dropdown field '%s' has no options", f.Field)
		}
		values := make(map[string]bool, len(f.Options))
		for _, opt := range f.Options {
			if values[opt.Value] {
				return fmt.Errorf("dropdown field '%s' repeats option '%s'", f.Field, opt.Value)
			}
			values[opt.Value] = true
		}
	default:
		return fmt.Errorf("input field '%s' has no type", f.Field)
	}

	if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		return fmt.Errorf("input field '%s' has min %v greater than max %v", f.Field, *f.Min, *f.Max)
	}
	for _, cp := range f.Points.Conditions {
		if _, err := scoring.ParseCondition(cp.Condition); err != nil {
			return fmt.Errorf("input field '%s': %w", f.Field, err)
		}
	}
	return nil
}

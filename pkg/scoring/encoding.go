package scoring

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes an input field, defaulting Required to true.
func (f *InputField) UnmarshalYAML(value *yaml.Node) error {
	type plain InputField
	p := plain{Required: true}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*f = InputField(p)
	return nil
}

func (k *InputKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseInputKind(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*k = parsed
	return nil
}

func (s *Specialty) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*s = ParseSpecialty(raw)
	return nil
}

func (l *RiskLevel) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	lvl := RiskLevel(raw)
	if !lvl.Valid() {
		return fmt.Errorf("line %d: unknown risk level %q", value.Line, raw)
	}
	*l = lvl
	return nil
}

// UnmarshalYAML accepts an integer (fixed points) or a sequence of
// {condition, points} mappings.
func (r *PointRule) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var n int
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("line %d: points must be an integer or a list of conditions", value.Line)
		}
		*r = FixedPoints(n)
		return nil
	case yaml.SequenceNode:
		var conds []ConditionedPoints
		if err := value.Decode(&conds); err != nil {
			return err
		}
		*r = PointRule{Conditions: conds}
		return nil
	default:
		return fmt.Errorf("line %d: points must be an integer or a list of conditions", value.Line)
	}
}

// UnmarshalYAML treats an integer node as an exact score and any other
// scalar as a range expression. A quoted "2" stays an expression.
func (r *ScoreRange) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: score must be an integer or a range string", value.Line)
	}
	if value.Tag == "!!int" {
		var n int
		if err := value.Decode(&n); err != nil {
			return err
		}
		*r = ExactScore(n)
		return nil
	}
	*r = RangeScore(value.Value)
	return nil
}

func (r PointRule) MarshalJSON() ([]byte, error) {
	if r.IsConditional() {
		return json.Marshal(r.Conditions)
	}
	return json.Marshal(r.Fixed)
}

func (r ScoreRange) MarshalJSON() ([]byte, error) {
	if r.Exact != nil {
		return json.Marshal(*r.Exact)
	}
	return json.Marshal(r.Expr)
}

package scoring

import "math"

// FieldPoints computes the contribution of one field. present is false when
// the caller supplied no answer for it.
func FieldPoints(f *InputField, v InputValue, present bool) (int, error) {
	switch f.Kind {
	case KindBoolean:
		return booleanPoints(f, v, present)
	case KindNumber:
		return numberPoints(f, v, present)
	case KindCategory:
		return categoryPoints(f, v, present)
	default:
		return 0, invalidInput(f.Field, "unsupported input type '"+string(f.Kind)+"'")
	}
}

func booleanPoints(f *InputField, v InputValue, present bool) (int, error) {
	if !present {
		return 0, nil
	}
	checked, ok := v.AsBool()
	if !ok {
		return 0, invalidInput(f.Field, "expected boolean value")
	}
	if !checked || f.Points.IsConditional() {
		// Conditions only make sense for numbers; a conditioned boolean scores 0.
		return 0, nil
	}
	return f.Points.Fixed, nil
}

func numberPoints(f *InputField, v InputValue, present bool) (int, error) {
	if !present {
		if f.Required {
			return 0, missingField(f.Field)
		}
		return 0, nil
	}
	n, err := checkNumber(f, v)
	if err != nil {
		return 0, err
	}
	if !f.Points.IsConditional() {
		return f.Points.Fixed, nil
	}
	for _, cp := range f.Points.Conditions {
		cond, err := ParseCondition(cp.Condition)
		if err != nil {
			return 0, withField(err, f.Field)
		}
		if cond.Holds(n) {
			return cp.Points, nil
		}
	}
	return 0, nil
}

func categoryPoints(f *InputField, v InputValue, present bool) (int, error) {
	if !present {
		return 0, nil
	}
	opt, err := checkCategory(f, v)
	if err != nil {
		return 0, err
	}
	return opt.Points, nil
}

// checkNumber validates kind, finiteness and inclusive bounds.
func checkNumber(f *InputField, v InputValue) (float64, error) {
	n, ok := v.AsNumber()
	if !ok {
		return 0, invalidInput(f.Field, "expected numeric value")
	}
	// NaN compares false against both bounds.
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, invalidInput(f.Field, "expected a finite number")
	}
	if (f.Min != nil && n < *f.Min) || (f.Max != nil && n > *f.Max) {
		return 0, &CalculationError{Kind: ErrOutOfRange, Field: f.Field, Value: n, Min: f.Min, Max: f.Max}
	}
	return n, nil
}

func checkCategory(f *InputField, v InputValue) (*Option, error) {
	selected, ok := v.AsCategory()
	if !ok {
		return nil, invalidInput(f.Field, "expected dropdown/string value")
	}
	opt, ok := f.Option(selected)
	if !ok {
		return nil, &CalculationError{Kind: ErrUnknownOption, Field: f.Field, Option: selected}
	}
	return opt, nil
}

// checkValue validates an answer against its field without scoring it.
func checkValue(f *InputField, v InputValue) error {
	switch f.Kind {
	case KindBoolean:
		if _, ok := v.AsBool(); !ok {
			return invalidInput(f.Field, "expected boolean value")
		}
		return nil
	case KindNumber:
		_, err := checkNumber(f, v)
		return err
	case KindCategory:
		_, err := checkCategory(f, v)
		return err
	default:
		return invalidInput(f.Field, "unsupported input type '"+string(f.Kind)+"'")
	}
}

func withField(err error, field string) error {
	if ce, ok := err.(*CalculationError); ok && ce.Field == "" {
		ce.Field = field
	}
	return err
}

package scoring

// Engine evaluates score definitions against inputs. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	formulas map[string]FormulaFunc
}

// NewEngine creates an engine over the built-in formula registry.
func NewEngine() *Engine {
	return &Engine{formulas: formulas}
}

var defaultEngine = NewEngine()

// Calculate evaluates def with the default engine.
func Calculate(def *ScoreDefinition, inputs Inputs) (*CalculationResult, error) {
	return defaultEngine.Calculate(def, inputs)
}

// Calculate validates inputs, computes the total (by point summation or by
// the named formula) and matches it against the interpretation rules.
// It returns either a result or an error, never both. Every error is a
// *CalculationError except ErrNilDefinition.
func (e *Engine) Calculate(def *ScoreDefinition, inputs Inputs) (*CalculationResult, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}

	// Presence is checked up front, in definition order.
	for i := range def.Inputs {
		f := &def.Inputs[i]
		if _, ok := inputs[f.Field]; f.Required && !ok {
			return nil, missingField(f.Field)
		}
	}

	var (
		total     int
		breakdown []FieldScore
		err       error
	)
	if def.Formula != "" {
		total, breakdown, err = e.formulaTotal(def, inputs)
	} else {
		total, breakdown, err = pointTotal(def, inputs)
	}
	if err != nil {
		return nil, err
	}

	rule, err := Interpret(def, total)
	if err != nil {
		return nil, err
	}

	return &CalculationResult{
		Total:            total,
		Breakdown:        breakdown,
		RiskLevel:        rule.RiskLevel,
		Risk:             rule.Risk,
		RiskDE:           rule.RiskDE,
		Recommendation:   rule.Recommendation,
		RecommendationDE: rule.RecommendationDE,
		Details:          rule.Details,
		DetailsDE:        rule.DetailsDE,
	}, nil
}

func pointTotal(def *ScoreDefinition, inputs Inputs) (int, []FieldScore, error) {
	total := 0
	breakdown := make([]FieldScore, 0, len(def.Inputs))
	for i := range def.Inputs {
		f := &def.Inputs[i]
		v, present := inputs[f.Field]
		pts, err := FieldPoints(f, v, present)
		if err != nil {
			return 0, nil, err
		}
		breakdown = append(breakdown, FieldScore{
			Field:   f.Field,
			Label:   f.Label,
			LabelDE: f.LabelDE,
			Points:  pts,
		})
		total += pts
	}
	return total, breakdown, nil
}

func (e *Engine) formulaTotal(def *ScoreDefinition, inputs Inputs) (int, []FieldScore, error) {
	fn, ok := e.formulas[def.Formula]
	if !ok {
		return 0, nil, &CalculationError{Kind: ErrUnknownFormula, Formula: def.Formula}
	}
	// Declared kinds, bounds and options still apply to formula inputs.
	for i := range def.Inputs {
		f := &def.Inputs[i]
		if v, ok := inputs[f.Field]; ok {
			if err := checkValue(f, v); err != nil {
				return 0, nil, err
			}
		}
	}
	return fn(inputs)
}

// Interpret returns the first interpretation rule whose range matches total.
func Interpret(def *ScoreDefinition, total int) (*InterpretationRule, error) {
	for i := range def.Interpretation {
		ok, err := def.Interpretation[i].Score.Matches(total)
		if err != nil {
			return nil, err
		}
		if ok {
			return &def.Interpretation[i], nil
		}
	}
	return nil, &CalculationError{Kind: ErrNoInterpretation, Total: total}
}

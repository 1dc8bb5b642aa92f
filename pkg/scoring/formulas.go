package scoring

import (
	"fmt"
	"math"
	"sort"
)

// Built-in formula identifiers, as named by a definition's formula key.
const (
	FormulaCKDEPI2021 = "ckd_epi_2021"
	FormulaKFRE4Var   = "kfre_4var"
)

// FormulaFunc computes a derived value and its breakdown from raw inputs.
type FormulaFunc func(inputs Inputs) (int, []FieldScore, error)

var formulas = map[string]FormulaFunc{
	FormulaCKDEPI2021: egfrCKDEPI2021,
	FormulaKFRE4Var:   kfre4Var,
}

// KnownFormula reports whether name is a registered formula.
func KnownFormula(name string) bool {
	_, ok := formulas[name]
	return ok
}

// Formulas returns the registered formula names, sorted.
func Formulas() []string {
	names := make([]string, 0, len(formulas))
	for name := range formulas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EvaluateFormula runs the named formula.
func EvaluateFormula(name string, inputs Inputs) (int, []FieldScore, error) {
	fn, ok := formulas[name]
	if !ok {
		return 0, nil, &CalculationError{Kind: ErrUnknownFormula, Formula: name}
	}
	return fn(inputs)
}

// egfrCKDEPI2021 is the race-free CKD-EPI 2021 creatinine equation.
// Creatinine is given in µmol/L and converted to mg/dL.
//
//	eGFR = 142 × min(Scr/κ,1)^α × max(Scr/κ,1)^-1.200 × 0.9938^age × 1.012 [female]
func egfrCKDEPI2021(inputs Inputs) (int, []FieldScore, error) {
	age, err := requireNumber(inputs, "age")
	if err != nil {
		return 0, nil, err
	}
	female, err := requireSex(inputs, "sex")
	if err != nil {
		return 0, nil, err
	}
	creatinine, err := requireNumber(inputs, "creatinine")
	if err != nil {
		return 0, nil, err
	}

	scr := creatinine / 88.4
	kappa, alpha, sexFactor := 0.9, -0.302, 1.0
	if female {
		kappa, alpha, sexFactor = 0.7, -0.241, 1.012
	}
	ratio := scr / kappa
	egfr := 142 * math.Pow(math.Min(ratio, 1), alpha) *
		math.Pow(math.Max(ratio, 1), -1.200) *
		math.Pow(0.9938, age) * sexFactor
	if !finite(egfr) {
		return 0, nil, invalidInput("creatinine", "eGFR is not a finite number")
	}
	value := int(math.Round(egfr))

	breakdown := []FieldScore{
		ageEntry(age),
		sexEntry(female),
		{
			Field:   "creatinine",
			Label:   fmt.Sprintf("Creatinine: %.0f μmol/L (%.2f mg/dL)", creatinine, scr),
			LabelDE: fmt.Sprintf("Kreatinin: %.0f μmol/L (%.2f mg/dL)", creatinine, scr),
		},
		{
			Field:   "result",
			Label:   fmt.Sprintf("eGFR: %d mL/min/1.73m²", value),
			LabelDE: fmt.Sprintf("eGFR: %d mL/min/1,73m²", value),
			Points:  value,
		},
	}
	return value, breakdown, nil
}

// kfre4Var is the 4-variable Kidney Failure Risk Equation (2-year horizon).
// ACR is given in mg/mmol and converted to mg/g.
//
//	sum  = -0.2201(age/10-7.036) + 0.2467(male-0.5642) - 0.5567(eGFR/5-7.222) + 0.4510(ln ACR-5.137)
//	risk = 1 - 0.9832^exp(sum)
func kfre4Var(inputs Inputs) (int, []FieldScore, error) {
	age, err := requireNumber(inputs, "age")
	if err != nil {
		return 0, nil, err
	}
	female, err := requireSex(inputs, "sex")
	if err != nil {
		return 0, nil, err
	}
	egfr, err := requireNumber(inputs, "egfr")
	if err != nil {
		return 0, nil, err
	}
	acr, err := requireNumber(inputs, "acr")
	if err != nil {
		return 0, nil, err
	}
	if acr <= 0 {
		return 0, nil, invalidInput("acr", "ACR must be greater than 0")
	}

	male := 1.0
	if female {
		male = 0
	}
	acrMgG := acr * 8.84
	sum := -0.2201*(age/10-7.036) +
		0.2467*(male-0.5642) -
		0.5567*(egfr/5-7.222) +
		0.4510*(math.Log(acrMgG)-5.137)
	risk := 1 - math.Pow(0.9832, math.Exp(sum))
	if !finite(risk) {
		return 0, nil, invalidInput("acr", "risk is not a finite number")
	}
	percent := min(max(int(math.Round(risk*100)), 0), 100)

	breakdown := []FieldScore{
		ageEntry(age),
		sexEntry(female),
		{
			Field:   "egfr",
			Label:   fmt.Sprintf("eGFR: %.0f mL/min/1.73m²", egfr),
			LabelDE: fmt.Sprintf("eGFR: %.0f mL/min/1,73m²", egfr),
		},
		{
			Field:   "acr",
			Label:   fmt.Sprintf("ACR: %.1f mg/mmol (%.0f mg/g)", acr, acrMgG),
			LabelDE: fmt.Sprintf("ACR: %.1f mg/mmol (%.0f mg/g)", acr, acrMgG),
		},
		{
			Field:   "result",
			Label:   fmt.Sprintf("2-year risk: %d%%", percent),
			LabelDE: fmt.Sprintf("2-Jahres-Risiko: %d%%", percent),
			Points:  percent,
		},
	}
	return percent, breakdown, nil
}

func ageEntry(age float64) FieldScore {
	return FieldScore{
		Field:   "age",
		Label:   fmt.Sprintf("Age: %.0f years", age),
		LabelDE: fmt.Sprintf("Alter: %.0f Jahre", age),
	}
}

func sexEntry(female bool) FieldScore {
	if female {
		return FieldScore{Field: "sex", Label: "Sex: Female", LabelDE: "Geschlecht: Weiblich"}
	}
	return FieldScore{Field: "sex", Label: "Sex: Male", LabelDE: "Geschlecht: Männlich"}
}

func requireNumber(inputs Inputs, field string) (float64, error) {
	v, ok := inputs[field]
	if !ok {
		return 0, missingField(field)
	}
	n, ok := v.AsNumber()
	if !ok {
		return 0, invalidInput(field, "expected numeric value")
	}
	if !finite(n) {
		return 0, invalidInput(field, "expected a finite number")
	}
	return n, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// requireSex returns true for "female" and false for "male".
func requireSex(inputs Inputs, field string) (bool, error) {
	v, ok := inputs[field]
	if !ok {
		return false, missingField(field)
	}
	s, ok := v.AsCategory()
	if !ok {
		return false, invalidInput(field, "expected dropdown/string value")
	}
	switch s {
	case "female":
		return true, nil
	case "male":
		return false, nil
	default:
		return false, invalidInput(field, fmt.Sprintf("expected 'male' or 'female', got '%s'", s))
	}
}

package scoring_test

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

func boolField(id string, points int) scoring.InputField {
	return scoring.InputField{Field: id, Kind: scoring.KindBoolean, Label: id, Points: scoring.FixedPoints(points)}
}

// chads2va builds a CHA2DS2-VA style definition: age tiers plus five
// risk-factor checkboxes.
func chads2va() *scoring.ScoreDefinition {
	return &scoring.ScoreDefinition{
		Name:      "CHA2DS2-VA",
		Specialty: scoring.SpecialtyCardiology,
		Inputs: []scoring.InputField{
			*ageField(),
			boolField("heart_failure", 1),
			boolField("hypertension", 1),
			boolField("diabetes", 1),
			boolField("stroke_tia", 2),
			boolField("vascular_disease", 1),
		},
		Interpretation: []scoring.InterpretationRule{
			{
				Score:          scoring.ExactScore(0),
				Risk:           "Low",
				RiskLevel:      scoring.RiskLow,
				Recommendation: "Anticoagulation not recommended",
			},
			{
				Score:          scoring.RangeScore("1"),
				Risk:           "Moderate",
				RiskLevel:      scoring.RiskModerate,
				Recommendation: "Consider anticoagulation",
			},
			{
				Score:            scoring.RangeScore("≥2"),
				Risk:             "Moderate-High",
				RiskDE:           "Mittel-Hoch",
				RiskLevel:        scoring.RiskHigh,
				Recommendation:   "Anticoagulation recommended",
				RecommendationDE: "Antikoagulation empfohlen",
				Details:          "Annual stroke risk increases with each point",
			},
		},
	}
}

func TestCalculate_EndToEnd(t *testing.T) {
	def := chads2va()
	result, err := scoring.Calculate(def, scoring.Inputs{
		"age":          scoring.Number(72),
		"hypertension": scoring.Bool(true),
		"diabetes":     scoring.Bool(true),
	})
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}

	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}
	if result.Risk != "Moderate-High" || result.RiskDE != "Mittel-Hoch" {
		t.Errorf("Risk = %q/%q, want Moderate-High/Mittel-Hoch", result.Risk, result.RiskDE)
	}
	if result.RiskLevel != scoring.RiskHigh {
		t.Errorf("RiskLevel = %s, want High", result.RiskLevel)
	}
	if result.Details == "" {
		t.Error("expected details from the matched rule")
	}

	// Every field appears in definition order, zeros included.
	var fields []string
	for _, fs := range result.Breakdown {
		fields = append(fields, fs.Field)
	}
	want := []string{"age", "heart_failure", "hypertension", "diabetes", "stroke_tia", "vascular_disease"}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("breakdown fields = %v, want %v", fields, want)
	}

	for field, pts := range map[string]int{"age": 1, "heart_failure": 0, "hypertension": 1, "diabetes": 1, "stroke_tia": 0} {
		got, ok := result.PointsFor(field)
		if !ok || got != pts {
			t.Errorf("PointsFor(%s) = %d, %v; want %d", field, got, ok, pts)
		}
	}
	if _, ok := result.PointsFor("weight"); ok {
		t.Error("PointsFor(weight) should report absent")
	}
}

func TestCalculate_LowRisk(t *testing.T) {
	result, err := scoring.Calculate(chads2va(), scoring.Inputs{"age": scoring.Number(40)})
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	if result.Total != 0 || result.Risk != "Low" {
		t.Errorf("got total %d risk %q, want 0 Low", result.Total, result.Risk)
	}
	if !strings.Contains(result.Recommendation, "not") {
		t.Errorf("Recommendation = %q", result.Recommendation)
	}
}

func TestCalculate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		def    func() *scoring.ScoreDefinition
		inputs scoring.Inputs
		want   error
	}{
		{
			name:   "missing required age",
			def:    chads2va,
			inputs: scoring.Inputs{"hypertension": scoring.Bool(true)},
			want:   scoring.ErrMissingRequiredField,
		},
		{
			name:   "age above max",
			def:    chads2va,
			inputs: scoring.Inputs{"age": scoring.Number(150)},
			want:   scoring.ErrOutOfRange,
		},
		{
			name:   "NaN age",
			def:    chads2va,
			inputs: scoring.Inputs{"age": scoring.Number(math.NaN()), "hypertension": scoring.Bool(true)},
			want:   scoring.ErrInvalidInput,
		},
		{
			name:   "infinite age",
			def:    chads2va,
			inputs: scoring.Inputs{"age": scoring.Number(math.Inf(1))},
			want:   scoring.ErrInvalidInput,
		},
		{
			name:   "boolean given as number",
			def:    chads2va,
			inputs: scoring.Inputs{"age": scoring.Number(50), "diabetes": scoring.Number(1)},
			want:   scoring.ErrInvalidInput,
		},
		{
			name: "no interpretation covers the total",
			def: func() *scoring.ScoreDefinition {
				d := chads2va()
				d.Interpretation = d.Interpretation[:1]
				return d
			},
			inputs: scoring.Inputs{"age": scoring.Number(80)},
			want:   scoring.ErrNoInterpretation,
		},
		{
			name: "malformed interpretation range",
			def: func() *scoring.ScoreDefinition {
				d := chads2va()
				d.Interpretation[0].Score = scoring.RangeScore("zero")
				return d
			},
			inputs: scoring.Inputs{"age": scoring.Number(40)},
			want:   scoring.ErrConditionParse,
		},
		{
			name: "unknown formula",
			def: func() *scoring.ScoreDefinition {
				d := chads2va()
				d.Formula = "mdrd"
				return d
			},
			inputs: scoring.Inputs{"age": scoring.Number(40)},
			want:   scoring.ErrUnknownFormula,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := scoring.Calculate(tc.def(), tc.inputs)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if result != nil {
				t.Error("result must be nil when an error is returned")
			}
		})
	}
}

func TestCalculate_NoInterpretationMessage(t *testing.T) {
	d := chads2va()
	d.Interpretation = d.Interpretation[:1]
	_, err := scoring.Calculate(d, scoring.Inputs{"age": scoring.Number(80)})
	if err == nil || err.Error() != "no interpretation found for score 2" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestCalculate_MissingFieldsInDefinitionOrder(t *testing.T) {
	d := chads2va()
	d.Inputs[1].Required = true // heart_failure
	d.Inputs[4].Required = true // stroke_tia

	_, err := scoring.Calculate(d, scoring.Inputs{"stroke_tia": scoring.Bool(true)})
	var ce *scoring.CalculationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CalculationError, got %v", err)
	}
	if ce.Field != "age" {
		t.Errorf("first missing field = %q, want age", ce.Field)
	}

	_, err = scoring.Calculate(d, scoring.Inputs{"age": scoring.Number(50)})
	if !errors.As(err, &ce) || ce.Field != "heart_failure" {
		t.Errorf("expected heart_failure missing, got %v", err)
	}
}

func TestCalculate_BoundsInclusive(t *testing.T) {
	for _, age := range []float64{0, 120} {
		if _, err := scoring.Calculate(chads2va(), scoring.Inputs{"age": scoring.Number(age)}); err != nil {
			t.Errorf("age %v should be accepted: %v", age, err)
		}
	}
	for _, age := range []float64{-1, 120.01} {
		_, err := scoring.Calculate(chads2va(), scoring.Inputs{"age": scoring.Number(age)})
		if !errors.Is(err, scoring.ErrOutOfRange) {
			t.Errorf("age %v: expected out of range, got %v", age, err)
		}
	}
}

func ckdDefinition() *scoring.ScoreDefinition {
	return &scoring.ScoreDefinition{
		Name:      "CKD-EPI 2021",
		Specialty: scoring.SpecialtyNephrology,
		Formula:   scoring.FormulaCKDEPI2021,
		Inputs: []scoring.InputField{
			{Field: "age", Kind: scoring.KindNumber, Label: "Age", Min: ptr(18), Max: ptr(120), Required: true},
			{Field: "sex", Kind: scoring.KindCategory, Label: "Sex", Required: true, Options: []scoring.Option{
				{Value: "female", Label: "Female"},
				{Value: "male", Label: "Male"},
			}},
			{Field: "creatinine", Kind: scoring.KindNumber, Label: "Creatinine", Min: ptr(10), Max: ptr(2000), Required: true},
		},
		Interpretation: []scoring.InterpretationRule{
			{Score: scoring.RangeScore("≥90"), Risk: "G1", RiskLevel: scoring.RiskVeryLow},
			{Score: scoring.RangeScore("60-89"), Risk: "G2", RiskLevel: scoring.RiskLow},
			{Score: scoring.RangeScore("45-59"), Risk: "G3a", RiskLevel: scoring.RiskModerate},
			{Score: scoring.RangeScore("30-44"), Risk: "G3b", RiskLevel: scoring.RiskHigh},
			{Score: scoring.RangeScore("15-29"), Risk: "G4", RiskLevel: scoring.RiskVeryHigh},
			{Score: scoring.RangeScore("<15"), Risk: "G5", RiskLevel: scoring.RiskCritical},
		},
	}
}

func TestCalculate_FormulaMode(t *testing.T) {
	result, err := scoring.Calculate(ckdDefinition(), scoring.Inputs{
		"age":        scoring.Number(55),
		"sex":        scoring.Category("female"),
		"creatinine": scoring.Number(80),
	})
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	if result.Total < 74 || result.Total > 80 {
		t.Errorf("eGFR = %d, want within [74, 80]", result.Total)
	}
	if result.Risk != "G2" {
		t.Errorf("Risk = %q, want G2", result.Risk)
	}
	if pts, _ := result.PointsFor("result"); pts != result.Total {
		t.Errorf("result entry = %d, want %d", pts, result.Total)
	}
}

func TestCalculate_FormulaModeValidatesDeclaredFields(t *testing.T) {
	tests := []struct {
		name   string
		inputs scoring.Inputs
		want   error
	}{
		{
			name:   "creatinine above max",
			inputs: scoring.Inputs{"age": scoring.Number(55), "sex": scoring.Category("female"), "creatinine": scoring.Number(5000)},
			want:   scoring.ErrOutOfRange,
		},
		{
			name:   "sex not among options",
			inputs: scoring.Inputs{"age": scoring.Number(55), "sex": scoring.Category("F"), "creatinine": scoring.Number(80)},
			want:   scoring.ErrUnknownOption,
		},
		{
			name:   "missing sex",
			inputs: scoring.Inputs{"age": scoring.Number(55), "creatinine": scoring.Number(80)},
			want:   scoring.ErrMissingRequiredField,
		},
		{
			name:   "NaN age",
			inputs: scoring.Inputs{"age": scoring.Number(math.NaN()), "sex": scoring.Category("male"), "creatinine": scoring.Number(80)},
			want:   scoring.ErrInvalidInput,
		},
		{
			name:   "infinite creatinine",
			inputs: scoring.Inputs{"age": scoring.Number(55), "sex": scoring.Category("male"), "creatinine": scoring.Number(math.Inf(1))},
			want:   scoring.ErrInvalidInput,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := scoring.Calculate(ckdDefinition(), tc.inputs)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	def := chads2va()
	inputs := scoring.Inputs{
		"age":              scoring.Number(78),
		"stroke_tia":       scoring.Bool(true),
		"vascular_disease": scoring.Bool(false),
	}
	engine := scoring.NewEngine()
	first, err := engine.Calculate(def, inputs)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Calculate(def, inputs)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestCalculate_ConcurrentUse(t *testing.T) {
	def := chads2va()
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(age float64) {
			defer wg.Done()
			if _, err := scoring.Calculate(def, scoring.Inputs{"age": scoring.Number(age)}); err != nil {
				errs <- err
			}
		}(float64(50 + i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent calculate: %v", err)
	}
}

func TestCalculate_NilDefinition(t *testing.T) {
	result, err := scoring.Calculate(nil, scoring.Inputs{})
	if !errors.Is(err, scoring.ErrNilDefinition) {
		t.Fatalf("expected ErrNilDefinition, got %v", err)
	}
	if result != nil {
		t.Error("result must be nil when an error is returned")
	}
}

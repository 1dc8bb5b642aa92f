package scoring

import "strconv"

// ScoreDefinition is the declarative description of one clinical score.
// It is read-only once loaded; the engine never mutates it.
type ScoreDefinition struct {
	Name             string               `yaml:"name" json:"name"`
	NameDE           string               `yaml:"name_de" json:"name_de,omitempty"`
	Specialty        Specialty            `yaml:"specialty" json:"specialty"`
	SpecialtyDE      string               `yaml:"specialty_de" json:"specialty_de,omitempty"`
	Version          string               `yaml:"version" json:"version,omitempty"`
	GuidelineSource  string               `yaml:"guideline_source" json:"guideline_source,omitempty"`
	Reference        string               `yaml:"reference" json:"reference,omitempty"`
	ValidationStatus string               `yaml:"validation_status" json:"validation_status,omitempty"`
	Description      string               `yaml:"description" json:"description,omitempty"`
	DescriptionDE    string               `yaml:"description_de" json:"description_de,omitempty"`
	Inputs           []InputField         `yaml:"inputs" json:"inputs"`
	Interpretation   []InterpretationRule `yaml:"interpretation" json:"interpretation"`
	Formula          string               `yaml:"formula,omitempty" json:"formula,omitempty"`
	Metadata         map[string]string    `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Field returns the input field with the given identifier.
func (d *ScoreDefinition) Field(id string) (*InputField, bool) {
	for i := range d.Inputs {
		if d.Inputs[i].Field == id {
			return &d.Inputs[i], true
		}
	}
	return nil, false
}

// InputField describes one question of a score.
type InputField struct {
	Field    string    `yaml:"field" json:"field"`
	Kind     InputKind `yaml:"type" json:"type"`
	Label    string    `yaml:"label" json:"label"`
	LabelDE  string    `yaml:"label_de" json:"label_de,omitempty"`
	Unit     string    `yaml:"unit,omitempty" json:"unit,omitempty"`
	UnitDE   string    `yaml:"unit_de,omitempty" json:"unit_de,omitempty"`
	Points   PointRule `yaml:"points" json:"points"`
	Help     string    `yaml:"help,omitempty" json:"help,omitempty"`
	HelpDE   string    `yaml:"help_de,omitempty" json:"help_de,omitempty"`
	Min      *float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max      *float64  `yaml:"max,omitempty" json:"max,omitempty"`
	Options  []Option  `yaml:"options,omitempty" json:"options,omitempty"`
	Required bool      `yaml:"required" json:"required"`
}

// Option looks up a dropdown option by its value. Matching is case-sensitive.
func (f *InputField) Option(value string) (*Option, bool) {
	for i := range f.Options {
		if f.Options[i].Value == value {
			return &f.Options[i], true
		}
	}
	return nil, false
}

// Option is one selectable value of a dropdown field.
type Option struct {
	Value         string `yaml:"value" json:"value"`
	Label         string `yaml:"label" json:"label"`
	LabelDE       string `yaml:"label_de" json:"label_de,omitempty"`
	Points        int    `yaml:"points" json:"points"`
	Description   string `yaml:"description,omitempty" json:"description,omitempty"`
	DescriptionDE string `yaml:"description_de,omitempty" json:"description_de,omitempty"`
}

// PointRule maps a field value to points: either a fixed value or an
// ordered list of conditions where the first match wins.
type PointRule struct {
	Fixed      int
	Conditions []ConditionedPoints
}

// FixedPoints returns a rule that always yields n.
func FixedPoints(n int) PointRule { return PointRule{Fixed: n} }

// ConditionalPoints returns a rule evaluated top to bottom.
func ConditionalPoints(conds ...ConditionedPoints) PointRule {
	return PointRule{Conditions: conds}
}

// IsConditional reports whether the rule carries conditions.
func (r PointRule) IsConditional() bool { return len(r.Conditions) > 0 }

// ConditionedPoints awards Points when Condition holds for the field value.
type ConditionedPoints struct {
	Condition string `yaml:"condition" json:"condition"`
	Points    int    `yaml:"points" json:"points"`
	Label     string `yaml:"label,omitempty" json:"label,omitempty"`
	LabelDE   string `yaml:"label_de,omitempty" json:"label_de,omitempty"`
}

// InterpretationRule maps a total (or a range of totals) to a risk statement.
type InterpretationRule struct {
	Score            ScoreRange `yaml:"score" json:"score"`
	Risk             string     `yaml:"risk" json:"risk"`
	RiskDE           string     `yaml:"risk_de" json:"risk_de,omitempty"`
	RiskLevel        RiskLevel  `yaml:"risk_level" json:"risk_level"`
	Recommendation   string     `yaml:"recommendation" json:"recommendation"`
	RecommendationDE string     `yaml:"recommendation_de" json:"recommendation_de,omitempty"`
	Details          string     `yaml:"details,omitempty" json:"details,omitempty"`
	DetailsDE        string     `yaml:"details_de,omitempty" json:"details_de,omitempty"`
}

// ScoreRange is either an exact integer or a range expression such as
// "1-3", "≥2", "<5" or "4".
type ScoreRange struct {
	Exact *int
	Expr  string
}

// ExactScore returns a range matching exactly n.
func ExactScore(n int) ScoreRange { return ScoreRange{Exact: &n} }

// RangeScore returns a range given by an expression.
func RangeScore(expr string) ScoreRange { return ScoreRange{Expr: expr} }

func (r ScoreRange) String() string {
	if r.Exact != nil {
		return strconv.Itoa(*r.Exact)
	}
	return r.Expr
}

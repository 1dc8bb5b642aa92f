// Package scoring implements the KlinScore calculation engine.
// It evaluates declarative clinical score definitions against patient inputs
// and produces explainable, deterministic results.
package scoring

// CalculationResult is the complete output of evaluating a score definition.
// Immutable once computed.
type CalculationResult struct {
	Total            int          `json:"total"`
	Breakdown        []FieldScore `json:"breakdown"`
	RiskLevel        RiskLevel    `json:"risk_level"`
	Risk             string       `json:"risk"`
	RiskDE           string       `json:"risk_de,omitempty"`
	Recommendation   string       `json:"recommendation"`
	RecommendationDE string       `json:"recommendation_de,omitempty"`
	Details          string       `json:"details,omitempty"`
	DetailsDE        string       `json:"details_de,omitempty"`
}

// FieldScore is the contribution of a single input field to the total.
// For formula scores, non-result entries carry 0 points and the "result"
// entry carries the computed value.
type FieldScore struct {
	Field   string `json:"field"`
	Label   string `json:"label"`
	LabelDE string `json:"label_de,omitempty"`
	Points  int    `json:"points"`
}

// PointsFor returns the recorded points for a field, if the breakdown has it.
func (r *CalculationResult) PointsFor(field string) (int, bool) {
	for _, fs := range r.Breakdown {
		if fs.Field == field {
			return fs.Points, true
		}
	}
	return 0, false
}

// RiskLevel is the severity category of an interpretation.
// It drives presentation only and never participates in matching.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "VeryLow"
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "VeryHigh"
	RiskCritical RiskLevel = "Critical"
	RiskNone     RiskLevel = "None"
)

// Rank orders risk levels from least to most severe. RiskNone ranks lowest.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskVeryLow:
		return 1
	case RiskLow:
		return 2
	case RiskModerate:
		return 3
	case RiskHigh:
		return 4
	case RiskVeryHigh:
		return 5
	case RiskCritical:
		return 6
	default:
		return 0
	}
}

// Color returns the hex display color for the level.
func (l RiskLevel) Color() string {
	switch l {
	case RiskVeryLow:
		return "#4CAF50"
	case RiskLow:
		return "#8BC34A"
	case RiskModerate:
		return "#FFC107"
	case RiskHigh:
		return "#FF9800"
	case RiskVeryHigh:
		return "#F44336"
	case RiskCritical:
		return "#B71C1C"
	default:
		return "#9E9E9E"
	}
}

// Valid reports whether l is one of the known levels.
func (l RiskLevel) Valid() bool {
	return l == RiskNone || l.Rank() > 0
}

// Specialty classifies a score by medical discipline.
type Specialty string

const (
	SpecialtyCardiology       Specialty = "Cardiology"
	SpecialtyNephrology       Specialty = "Nephrology"
	SpecialtyAnesthesiology   Specialty = "Anesthesiology"
	SpecialtyEmergency        Specialty = "Emergency"
	SpecialtyInternalMedicine Specialty = "InternalMedicine"
	SpecialtySurgery          Specialty = "Surgery"
	SpecialtyOther            Specialty = "Other"
)

// ParseSpecialty maps a definition value to a Specialty. Unknown values map to Other.
func ParseSpecialty(s string) Specialty {
	switch sp := Specialty(s); sp {
	case SpecialtyCardiology, SpecialtyNephrology, SpecialtyAnesthesiology,
		SpecialtyEmergency, SpecialtyInternalMedicine, SpecialtySurgery:
		return sp
	default:
		return SpecialtyOther
	}
}

// DisplayName returns the English display name.
func (s Specialty) DisplayName() string {
	switch s {
	case SpecialtyEmergency:
		return "Emergency Medicine"
	case SpecialtyInternalMedicine:
		return "Internal Medicine"
	case SpecialtyCardiology, SpecialtyNephrology, SpecialtyAnesthesiology, SpecialtySurgery:
		return string(s)
	default:
		return "Other"
	}
}

// DisplayNameDE returns the German display name.
func (s Specialty) DisplayNameDE() string {
	switch s {
	case SpecialtyCardiology:
		return "Kardiologie"
	case SpecialtyNephrology:
		return "Nephrologie"
	case SpecialtyAnesthesiology:
		return "Anästhesiologie"
	case SpecialtyEmergency:
		return "Notfallmedizin"
	case SpecialtyInternalMedicine:
		return "Innere Medizin"
	case SpecialtySurgery:
		return "Chirurgie"
	default:
		return "Sonstiges"
	}
}

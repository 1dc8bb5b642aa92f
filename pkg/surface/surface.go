// Package surface renders calculation results for export and display.
// Implementations handle different output targets: terminal, JSON, CSV, Markdown.
package surface

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

// TimestampLayout is the layout of Record.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Renderer produces formatted output from a Record.
type Renderer interface {
	// Render writes the formatted record to the writer.
	Render(w io.Writer, rec *Record) error
}

// Record is the flattened, single-language view of one calculation.
type Record struct {
	ScoreID        string            `json:"score_id,omitempty"`
	ScoreName      string            `json:"score_name"`
	Language       string            `json:"language"`
	TotalScore     int               `json:"total_score"`
	RiskLevel      scoring.RiskLevel `json:"risk_level"`
	Risk           string            `json:"risk"`
	Recommendation string            `json:"recommendation"`
	Details        string            `json:"details"`
	FieldBreakdown []FieldEntry      `json:"field_breakdown"`
	Timestamp      string            `json:"timestamp"`
}

// FieldEntry is one contributing factor in a Record.
type FieldEntry struct {
	Field  string `json:"field"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// NewRecord flattens a result into a Record in the given language ("en" or
// "de"). Factors that contributed zero points are dropped. German text falls
// back to English where a definition has no translation.
func NewRecord(scoreID string, def *scoring.ScoreDefinition, result *scoring.CalculationResult, lang string, now time.Time) *Record {
	de := lang == "de"
	pick := func(en, german string) string {
		if de && german != "" {
			return german
		}
		return en
	}

	name := scoreID
	if def != nil {
		name = pick(def.Name, def.NameDE)
	}
	if !de {
		lang = "en"
	}

	rec := &Record{
		ScoreID:        scoreID,
		ScoreName:      name,
		Language:       lang,
		TotalScore:     result.Total,
		RiskLevel:      result.RiskLevel,
		Risk:           pick(result.Risk, result.RiskDE),
		Recommendation: pick(result.Recommendation, result.RecommendationDE),
		Details:        pick(result.Details, result.DetailsDE),
		FieldBreakdown: []FieldEntry{},
		Timestamp:      now.Format(TimestampLayout),
	}
	for _, fs := range result.Breakdown {
		if fs.Points == 0 {
			continue
		}
		rec.FieldBreakdown = append(rec.FieldBreakdown, FieldEntry{
			Field:  fs.Field,
			Label:  pick(fs.Label, fs.LabelDE),
			Points: fs.Points,
		})
	}
	return rec
}

// DefaultFilename returns klinscore_<name>_<YYYYMMDD_HHMMSS>.<ext>, with every
// character of the score name other than letters, digits, '-' and '_'
// replaced by '_'.
func DefaultFilename(scoreName, ext string, now time.Time) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, scoreName)
	return fmt.Sprintf("klinscore_%s_%s.%s", safe, now.Format("20060102_150405"), ext)
}

// Formats lists the names accepted by ForFormat.
var Formats = []string{"text", "json", "csv", "markdown"}

// ForFormat returns the renderer and file extension for a format name.
func ForFormat(format string) (Renderer, string, error) {
	switch strings.ToLower(format) {
	case "", "text", "terminal":
		return &TerminalRenderer{}, "txt", nil
	case "json":
		return &JSONRenderer{}, "json", nil
	case "csv":
		return &CSVRenderer{}, "csv", nil
	case "markdown", "md":
		return &MarkdownRenderer{}, "md", nil
	default:
		return nil, "", fmt.Errorf("unknown output format %q (expected one of %s)", format, strings.Join(Formats, ", "))
	}
}

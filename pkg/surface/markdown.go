package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

// MarkdownRenderer produces a Markdown summary suitable for pasting into
// notes or tickets.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, rec *Record) error {
	_, err := io.WriteString(w, buildMarkdownSummary(rec))
	return err
}

func buildMarkdownSummary(rec *Record) string {
	de := rec.Language == "de"
	label := func(en, german string) string {
		if de {
			return german
		}
		return en
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s: %d\n\n", rec.ScoreName, rec.TotalScore)
	fmt.Fprintf(&sb, "%s **%s**: %s\n\n", riskIcon(rec.RiskLevel), label("Risk", "Risiko"), rec.Risk)
	fmt.Fprintf(&sb, "**%s**: %s\n\n", label("Recommendation", "Empfehlung"), rec.Recommendation)
	if rec.Details != "" {
		fmt.Fprintf(&sb, "_%s_\n\n", rec.Details)
	}

	if len(rec.FieldBreakdown) > 0 {
		fmt.Fprintf(&sb, "| %s | %s |\n|--------|-------|\n", label("Factor", "Faktor"), label("Points", "Punkte"))
		for _, fe := range rec.FieldBreakdown {
			fmt.Fprintf(&sb, "| %s | %d |\n", strings.ReplaceAll(fe.Label, "|", `\|`), fe.Points)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "_%s_\n", rec.Timestamp)
	return sb.String()
}

func riskIcon(level scoring.RiskLevel) string {
	switch level {
	case scoring.RiskCritical, scoring.RiskVeryHigh:
		return ":red_circle:"
	case scoring.RiskHigh:
		return ":orange_circle:"
	case scoring.RiskModerate:
		return ":yellow_circle:"
	case scoring.RiskLow, scoring.RiskVeryLow:
		return ":green_circle:"
	default:
		return ":white_circle:"
	}
}

package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

// TerminalRenderer renders a Record as colored terminal output.
// Colors are off when Plain is set or NO_COLOR is present in the environment.
type TerminalRenderer struct {
	Plain bool
}

// ANSI color codes
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
)

func riskColor(level scoring.RiskLevel) string {
	switch level {
	case scoring.RiskVeryLow, scoring.RiskLow:
		return colorGreen
	case scoring.RiskModerate:
		return colorYellow
	case scoring.RiskHigh, scoring.RiskVeryHigh:
		return colorRed
	case scoring.RiskCritical:
		return colorMagenta
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func (r *TerminalRenderer) colored(s, color string) string {
	if r.Plain || noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) bold(s string) string { return r.colored(s, colorBold) }

func (r *TerminalRenderer) dim(s string) string { return r.colored(s, colorDim) }

func (r *TerminalRenderer) Render(w io.Writer, rec *Record) error {
	de := rec.Language == "de"
	label := func(en, german string) string {
		if de {
			return german
		}
		return en
	}

	fmt.Fprintf(w, "%s\n\n", r.bold(fmt.Sprintf("%s: %d", rec.ScoreName, rec.TotalScore)))

	rc := riskColor(rec.RiskLevel)
	fmt.Fprintf(w, "%s %s\n", label("Risk:", "Risiko:"), r.colored(rec.Risk, rc))
	fmt.Fprintf(w, "%s\n", label("Recommendation:", "Empfehlung:"))
	for _, line := range wrapText(rec.Recommendation, 70) {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if rec.Details != "" {
		fmt.Fprintf(w, "%s\n", label("Details:", "Details:"))
		for _, line := range wrapText(rec.Details, 70) {
			fmt.Fprintf(w, "  %s\n", r.dim(line))
		}
	}
	fmt.Fprintln(w)

	if len(rec.FieldBreakdown) == 0 {
		fmt.Fprintln(w, label("No contributing factors.", "Keine beitragenden Faktoren."))
	} else {
		fmt.Fprintln(w, label("Contributing factors:", "Beitragende Faktoren:"))
		for _, fe := range rec.FieldBreakdown {
			sign := "+"
			if fe.Points < 0 {
				sign = ""
			}
			fmt.Fprintf(w, "  (%s%d) %s\n", sign, fe.Points, fe.Label)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", r.dim(rec.Timestamp))
	return nil
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}

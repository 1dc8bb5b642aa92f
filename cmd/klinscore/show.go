package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

func newShowCmd(g *globalOpts) *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "show <score-id>",
		Short: "Show a score definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, lib, err := loadEnv(g)
			if err != nil {
				return err
			}
			def, err := lib.Get(args[0])
			if err != nil {
				return err
			}
			if outputFmt == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(def)
			}
			return runShow(cmd.OutOrStdout(), args[0], def)
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	return cmd
}

func runShow(out io.Writer, id string, def *scoring.ScoreDefinition) error {
	fmt.Fprintf(out, "%s (%s)\n", def.Name, id)
	if def.Description != "" {
		fmt.Fprintf(out, "%s\n", def.Description)
	}
	fmt.Fprintf(out, "Specialty: %s\n", def.Specialty.DisplayName())
	if def.Version != "" {
		fmt.Fprintf(out, "Version:   %s\n", def.Version)
	}
	if def.GuidelineSource != "" {
		fmt.Fprintf(out, "Guideline: %s\n", def.GuidelineSource)
	}
	if def.Reference != "" {
		fmt.Fprintf(out, "Reference: %s\n", def.Reference)
	}
	if def.Formula != "" {
		fmt.Fprintf(out, "Formula:   %s\n", def.Formula)
	}

	fmt.Fprintln(out, "\nInputs:")
	for i := range def.Inputs {
		f := &def.Inputs[i]
		fmt.Fprintf(out, "  %s  %s [%s]%s\n", f.Field, f.Label, f.Kind, describeField(f))
		for _, cp := range f.Points.Conditions {
			fmt.Fprintf(out, "      if %s: %+d\n", cp.Condition, cp.Points)
		}
		for _, opt := range f.Options {
			fmt.Fprintf(out, "      %s = %s (%+d)\n", opt.Value, opt.Label, opt.Points)
		}
	}

	fmt.Fprintln(out, "\nInterpretation:")
	for _, rule := range def.Interpretation {
		fmt.Fprintf(out, "  %-6s %s: %s\n", rule.Score.String(), rule.Risk, rule.Recommendation)
	}
	return nil
}

// describeField summarizes unit, bounds, requiredness and fixed points.
func describeField(f *scoring.InputField) string {
	var parts []string
	if f.Unit != "" {
		parts = append(parts, f.Unit)
	}
	if f.Min != nil || f.Max != nil {
		parts = append(parts, boundString(f.Min, "-inf")+".."+boundString(f.Max, "inf"))
	}
	if f.Required {
		parts = append(parts, "required")
	}
	if f.Kind == scoring.KindBoolean && !f.Points.IsConditional() {
		parts = append(parts, fmt.Sprintf("%+d if yes", f.Points.Fixed))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, ", ")
}

func boundString(b *float64, unbounded string) string {
	if b == nil {
		return unbounded
	}
	return strconv.FormatFloat(*b, 'f', -1, 64)
}

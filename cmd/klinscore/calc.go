package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeffcwolf/klinscore/pkg/scoring"
	"github.com/jeffcwolf/klinscore/pkg/surface"
)

func newCalcCmd(g *globalOpts) *cobra.Command {
	var opts calcOpts

	cmd := &cobra.Command{
		Use:   "calc <score-id>",
		Short: "Calculate a score",
		Long: `Evaluates a score against the given inputs and prints the total, risk,
recommendation and the contributing factors.

Inputs come from --inputs (a JSON object of field to value) and --set
field=value flags; --set wins. Booleans accept true/false, yes/no, ja/nein, 1/0.`,
		Example: `  klinscore calc cha2ds2_va --set age=72 --set hypertension=yes
  klinscore calc ckd_epi_2021 --set age=55 --set sex=female --set creatinine=80 --output json
  klinscore calc kfre --inputs patient.json --lang de --output csv --out exports/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.scoreID = args[0]
			return runCalc(cmd.Context(), g, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Input value as field=value (repeatable)")
	cmd.Flags().StringVar(&opts.inputsFile, "inputs", "", "JSON file with input values")
	cmd.Flags().StringVar(&opts.outputFmt, "output", "text", "Output format: "+strings.Join(surface.Formats, ", "))
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Output language: en or de (default from config)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Record the calculation in the history")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "Write output to this file or directory instead of stdout")

	return cmd
}

type calcOpts struct {
	scoreID    string
	sets       []string
	inputsFile string
	outputFmt  string
	lang       string
	save       bool
	outPath    string
}

func runCalc(ctx context.Context, g *globalOpts, opts calcOpts, stdout io.Writer) error {
	cfg, lib, err := loadEnv(g)
	if err != nil {
		return err
	}
	def, err := lib.Get(opts.scoreID)
	if err != nil {
		return err
	}

	renderer, ext, err := surface.ForFormat(opts.outputFmt)
	if err != nil {
		return err
	}
	lang := firstNonEmpty(opts.lang, cfg.Language)
	if lang != "en" && lang != "de" {
		return fmt.Errorf("unknown language %q (expected en or de)", lang)
	}

	inputs, err := collectInputs(def, opts.inputsFile, opts.sets)
	if err != nil {
		return err
	}

	var (
		result *scoring.CalculationResult
		now    = time.Now()
	)
	if opts.save {
		svc, closeFn, err := openHistory(ctx, cfg)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer closeFn()

		rec, err := svc.Calculate(ctx, opts.scoreID, def, inputs)
		if err != nil {
			return err
		}
		result, now = rec.Result, rec.CreatedAt.Local()
		fmt.Fprintf(os.Stderr, "Recorded calculation %s\n", rec.ID)
	} else {
		result, err = scoring.Calculate(def, inputs)
		if err != nil {
			return err
		}
	}

	out := surface.NewRecord(opts.scoreID, def, result, lang, now)

	if opts.outPath == "" {
		return renderer.Render(stdout, out)
	}

	path := resolveOutPath(opts.outPath, out.ScoreName, ext, now)
	if t, ok := renderer.(*surface.TerminalRenderer); ok {
		t.Plain = true
	}
	if err := writeRendered(path, renderer, out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved: %s\n", path)
	return nil
}

// collectInputs merges the JSON inputs file with --set overrides.
func collectInputs(def *scoring.ScoreDefinition, inputsFile string, sets []string) (scoring.Inputs, error) {
	inputs := scoring.Inputs{}
	if inputsFile != "" {
		data, err := os.ReadFile(inputsFile)
		if err != nil {
			return nil, fmt.Errorf("reading inputs: %w", err)
		}
		if err := json.Unmarshal(data, &inputs); err != nil {
			return nil, fmt.Errorf("parsing inputs %s: %w", inputsFile, err)
		}
	}

	for _, s := range sets {
		name, raw, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q (expected field=value)", s)
		}
		field, ok := def.Field(name)
		if !ok {
			return nil, fmt.Errorf("unknown field %q for score %s", name, def.Name)
		}
		v, err := scoring.ParseInput(field, raw)
		if err != nil {
			return nil, err
		}
		inputs[name] = v
	}
	return inputs, nil
}

// resolveOutPath places the default export filename inside path when path
// is an existing directory or ends with a separator.
func resolveOutPath(path, scoreName, ext string, now time.Time) string {
	isDir := strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator))
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		isDir = true
	}
	if isDir {
		return filepath.Join(path, surface.DefaultFilename(scoreName, ext, now))
	}
	return path
}

func writeRendered(path string, r surface.Renderer, rec *surface.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := r.Render(f, rec); err != nil {
		f.Close()
		return fmt.Errorf("render output: %w", err)
	}
	return f.Close()
}

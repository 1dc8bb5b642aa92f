package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeffcwolf/klinscore/pkg/config"
	"github.com/jeffcwolf/klinscore/pkg/surface"
)

func newHistoryCmd(g *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded calculations",
	}
	cmd.AddCommand(newHistoryListCmd(g), newHistoryShowCmd(g))
	return cmd
}

func newHistoryListCmd(g *globalOpts) *cobra.Command {
	var (
		scoreID string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded calculations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd.Context(), g, scoreID, limit, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&scoreID, "score", "", "Only list calculations of this score")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of calculations")
	return cmd
}

func runHistoryList(ctx context.Context, g *globalOpts, scoreID string, limit int, out io.Writer) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	svc, closeFn, err := openHistory(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer closeFn()

	list, err := svc.List(ctx, scoreID, limit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(os.Stderr, "No calculations recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCORE\tTOTAL\tRISK\tCREATED")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.ScoreID, s.Total, s.RiskLevel, s.CreatedAt.Local().Format(surface.TimestampLayout))
	}
	return tw.Flush()
}

type historyShowOpts struct {
	id        string
	outputFmt string
	lang      string
	outPath   string
	export    bool
}

func newHistoryShowCmd(g *globalOpts) *cobra.Command {
	var opts historyShowOpts

	cmd := &cobra.Command{
		Use:   "show <calculation-id>",
		Short: "Show or export a recorded calculation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.id = args[0]
			return runHistoryShow(cmd.Context(), g, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.outputFmt, "output", "text", "Output format: "+strings.Join(surface.Formats, ", "))
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Output language: en or de (default from config)")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "Write output to this file or directory instead of stdout")
	cmd.Flags().BoolVar(&opts.export, "export", false, "Write output to the default export directory")
	return cmd
}

func runHistoryShow(ctx context.Context, g *globalOpts, opts historyShowOpts, stdout io.Writer) error {
	cfg, lib, err := loadEnv(g)
	if err != nil {
		return err
	}
	renderer, ext, err := surface.ForFormat(opts.outputFmt)
	if err != nil {
		return err
	}
	lang := firstNonEmpty(opts.lang, cfg.Language)

	svc, closeFn, err := openHistory(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer closeFn()

	rec, err := svc.Get(ctx, opts.id)
	if err != nil {
		return err
	}

	def, err := lib.Get(rec.ScoreID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: score %s is no longer available; showing stored name only\n", rec.ScoreID)
		def = nil
	}
	out := surface.NewRecord(rec.ScoreID, def, rec.Result, lang, rec.CreatedAt.Local())
	if def == nil {
		out.ScoreName = rec.ScoreName
	}

	outPath := opts.outPath
	if outPath == "" && opts.export {
		outPath = config.ExportDir() + string(os.PathSeparator)
	}
	if outPath == "" {
		return renderer.Render(stdout, out)
	}

	path := resolveOutPath(outPath, out.ScoreName, ext, rec.CreatedAt.Local())
	if t, ok := renderer.(*surface.TerminalRenderer); ok {
		t.Plain = true
	}
	if err := writeRendered(path, renderer, out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved: %s\n", path)
	return nil
}

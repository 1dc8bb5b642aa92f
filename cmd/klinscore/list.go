package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeffcwolf/klinscore/pkg/library"
	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

func newListCmd(g *globalOpts) *cobra.Command {
	var specialty string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, lib, err := loadEnv(g)
			if err != nil {
				return err
			}
			return runList(cmd.OutOrStdout(), lib, specialty)
		},
	}

	cmd.Flags().StringVar(&specialty, "specialty", "", "Only list scores of this specialty (e.g. Cardiology)")
	return cmd
}

func runList(out io.Writer, lib *library.Library, specialty string) error {
	var entries []*library.Entry
	if specialty != "" {
		entries = lib.ForSpecialty(scoring.ParseSpecialty(specialty))
	} else {
		entries = lib.Entries()
	}

	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No scores found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSPECIALTY\tVERSION")
	for _, e := range entries {
		d := e.Definition
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, d.Name, d.Specialty.DisplayName(), d.Version)
	}
	return tw.Flush()
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/octobees/wa-validator/internal/phone"
	"github.com/octobees/wa-validator/internal/service"
)

var normalizeJSON bool

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file.csv|file.xlsx>",
	Short: "Normalize the phone columns of a contact file",
	Long:  "Reads a contact export, normalizes every phone value and reports which rows would be sent to enrichment. Nothing is written.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "open %s", args[0])
		}
		defer f.Close()

		rows, err := service.ParseImportFile(args[0], f)
		if err != nil {
			return err
		}
		enriched, summary := service.AnalyzeRows(rows)

		out := cmd.OutOrStdout()
		if normalizeJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"rows": enriched, "summary": summary})
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CLIENT ID\tNAME\tPHONE\tVALID\tENRICH\tISSUES")
		for _, r := range enriched {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\t%s\n",
				r.ClientID, r.Name(), phone.FormatForDisplay(r.NormalizedPhone), r.PhoneValid, r.NeedsEnrichment, strings.Join(r.PhoneIssues, "; "))
		}
		if err := w.Flush(); err != nil {
			return eris.Wrap(err, "write table")
		}
		fmt.Fprintf(out, "\n%d rows, %d valid, %d need enrichment\n", summary.Total, summary.Valid, summary.NeedsEnrichment)
		return nil
	},
}

func init() {
	normalizeCmd.Flags().BoolVar(&normalizeJSON, "json", false, "print rows and summary as JSON")
	rootCmd.AddCommand(normalizeCmd)
}

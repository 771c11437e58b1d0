package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"docassist/internal/common"
	"docassist/internal/normalize"
)

func cmdExtract() *cobra.Command {
	var query string
	var outDir string
	var localWorkbook bool

	cmd := &cobra.Command{
		Use:   "extract -q <query> FILE...",
		Short: "one-shot extraction: submit documents, save the artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(outDir)
			if err != nil {
				return err
			}
			defer a.exporter.Wait()

			if err := a.orch.SelectFiles(args); err != nil {
				return err
			}
			if err := a.orch.SetQuery(query); err != nil {
				return err
			}

			rec, err := a.orch.Extract(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd, rec)

			if path, err := a.exporter.SaveReport(rec, query); err == nil {
				cmd.Printf("report saved to %s\n", path)
			} else if !errors.Is(err, common.ErrSelection) {
				return err
			}

			return saveSpreadsheet(cmd.Context(), cmd, a, rec, localWorkbook)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "what to extract, in plain English")
	cmd.Flags().StringVarP(&outDir, "output-dir", "o", "", "directory for saved artifacts (default $DOCASSIST_OUTPUT_DIR or .)")
	cmd.Flags().BoolVar(&localWorkbook, "local-workbook", false, "build the spreadsheet locally instead of downloading it")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func saveSpreadsheet(ctx context.Context, cmd *cobra.Command, a *app, rec *normalize.CanonicalRecord, forceLocal bool) error {
	if !forceLocal && rec.DownloadRef != "" {
		path, err := a.exporter.DownloadSpreadsheet(ctx, rec)
		if err != nil {
			return err
		}
		cmd.Printf("spreadsheet saved to %s\n", path)
		return nil
	}

	path, err := a.exporter.SaveWorkbook(rec, "extracted_data.xlsx")
	if err != nil {
		if errors.Is(err, common.ErrSelection) {
			cmd.Println("no rows extracted; skipping spreadsheet")
			return nil
		}
		return err
	}
	cmd.Printf("spreadsheet built locally at %s\n", path)
	return nil
}

func printSummary(cmd *cobra.Command, rec *normalize.CanonicalRecord) {
	cmd.Printf("rows: %d  columns: %d\n", rec.RowCount, len(rec.Columns))
	if rec.RowCount == 0 {
		return
	}
	printPreview(cmd, rec)
}

func printPreview(cmd *cobra.Command, rec *normalize.CanonicalRecord) {
	cmd.Println(strings.Join(rec.Columns, " | "))
	for _, row := range rec.Preview {
		cells := make([]string, len(rec.Columns))
		for i, col := range rec.Columns {
			cells[i] = truncate(normalize.Cell(row, col), 40)
		}
		cmd.Println(strings.Join(cells, " | "))
	}
	if rec.RowCount > len(rec.Preview) {
		cmd.Printf("... and %d more rows\n", rec.RowCount-len(rec.Preview))
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

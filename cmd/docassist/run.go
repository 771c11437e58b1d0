package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docassist/constants"
)

func cmdRun() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "guided interactive extraction session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(outDir)
			if err != nil {
				return err
			}
			defer a.exporter.Wait()
			return runSession(cmd, a)
		},
	}
	cmd.Flags().StringVarP(&outDir, "output-dir", "o", "", "directory for saved artifacts (default $DOCASSIST_OUTPUT_DIR or .)")
	return cmd
}

// runSession walks the user through the workflow steps on stdin. Every
// failure is a transient notice: the session regresses per the workflow
// rules and the loop continues from the active step.
func runSession(cmd *cobra.Command, a *app) error {
	in := bufio.NewScanner(os.Stdin)

	for {
		s := a.orch.Session()
		switch s.Step {
		case constants.StepUpload:
			cmd.Println("Step 1 - choose documents (paths separated by spaces, or 'quit'):")
			line, ok := readLine(in)
			if !ok || line == "quit" {
				return nil
			}
			if err := a.orch.SelectFiles(strings.Fields(line)); err != nil {
				cmd.Printf("notice: %v\n", err)
			}

		case constants.StepQuery:
			cmd.Println("Step 2 - what do you want to extract? ('files' to re-select, 'quit' to exit):")
			line, ok := readLine(in)
			if !ok || line == "quit" {
				return nil
			}
			if line == "files" {
				forceUploadPrompt(cmd, a, in)
				continue
			}
			if err := a.orch.SetQuery(line); err != nil {
				cmd.Printf("notice: %v\n", err)
				continue
			}
			cmd.Println("Step 3 - processing...")
			rec, err := a.orch.Extract(cmd.Context())
			if err != nil {
				// The workflow has already regressed to the query step.
				cmd.Printf("extraction failed: %v\n", err)
				continue
			}
			cmd.Println("Step 4 - extracted data preview:")
			printSummary(cmd, rec)

		case constants.StepPreview, constants.StepReportReady:
			cmd.Println("actions: [x] download spreadsheet  [w] build workbook locally  [r] save text report  [f] new files  [q] quit")
			line, ok := readLine(in)
			if !ok || line == "q" {
				return nil
			}
			handlePreviewAction(cmd, a, in, line)

		default:
			return fmt.Errorf("unexpected workflow step %s", s.Step)
		}
	}
}

func handlePreviewAction(cmd *cobra.Command, a *app, in *bufio.Scanner, action string) {
	rec := a.orch.Session().Result
	switch action {
	case "x":
		path, err := a.exporter.DownloadSpreadsheet(cmd.Context(), rec)
		if err != nil {
			cmd.Printf("notice: %v\n", err)
			return
		}
		cmd.Printf("spreadsheet saved to %s\n", path)
	case "w":
		path, err := a.exporter.SaveWorkbook(rec, "extracted_data.xlsx")
		if err != nil {
			cmd.Printf("notice: %v\n", err)
			return
		}
		cmd.Printf("spreadsheet built locally at %s\n", path)
	case "r":
		if a.orch.Session().Step == constants.StepPreview {
			if err := a.orch.GenerateReport(cmd.Context()); err != nil {
				cmd.Printf("notice: %v\n", err)
				return
			}
		}
		path, err := a.exporter.SaveReport(rec, a.orch.Session().Query)
		if err != nil {
			cmd.Printf("notice: %v\n", err)
			return
		}
		cmd.Printf("report saved to %s\n", path)
	case "f":
		forceUploadPrompt(cmd, a, in)
	default:
		cmd.Println("unknown action")
	}
}

func forceUploadPrompt(cmd *cobra.Command, a *app, in *bufio.Scanner) {
	cmd.Println("choose documents (paths separated by spaces):")
	line, ok := readLine(in)
	if !ok {
		return
	}
	if err := a.orch.SelectFiles(strings.Fields(line)); err != nil {
		cmd.Printf("notice: %v\n", err)
	}
}

func readLine(in *bufio.Scanner) (string, bool) {
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docassist/internal/common"
	"docassist/internal/export"
	"docassist/internal/extraction"
	"docassist/internal/orchestrator"
	"docassist/internal/report"
)

const version = "0.1.0"

func main() {
	// Missing .env is fine; the defaults cover local use.
	_ = godotenv.Load()

	var verbose bool
	root := &cobra.Command{
		Use:   "docassist",
		Short: "guided document data extraction",
		Long:  "docassist submits documents with a plain-English query to the extraction service and turns the result into spreadsheets and reports.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelInfo
			}
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log request details")

	root.AddCommand(cmdRun())
	root.AddCommand(cmdExtract())
	root.AddCommand(cmdHealth())
	root.AddCommand(cmdVersion())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app bundles the wired components a command needs.
type app struct {
	cfg      *common.Config
	client   *extraction.Client
	orch     *orchestrator.Orchestrator
	exporter *export.Service
}

func buildApp(outDir string) (*app, error) {
	cfg := common.LoadConfig()
	if outDir != "" {
		cfg.Export.OutputDir = outDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := extraction.NewClient(cfg.Service.BaseURL, nil, nil, slog.Default())
	orch := orchestrator.New(client, orchestrator.Config{Timeout: cfg.Service.Timeout}, slog.Default())
	exporter := export.NewService(client, nil, cfg.Export.OutputDir, report.NewBuilder(), slog.Default())
	return &app{cfg: cfg, client: client, orch: orch, exporter: exporter}, nil
}

func cmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the docassist version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("docassist %s\n", version)
		},
	}
}

func cmdHealth() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "probe the extraction service",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp("")
			if err != nil {
				return err
			}
			if err := a.client.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("%s: healthy\n", a.cfg.Service.BaseURL)
			return nil
		},
	}
}

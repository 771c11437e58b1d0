// Package export produces the user-facing artifacts of a completed
// extraction run: the server-generated spreadsheet, a locally built
// workbook, and the plaintext analysis report.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"docassist/constants"
	"docassist/internal/common"
	"docassist/internal/normalize"
	"docassist/internal/report"
)

// Downloader is the slice of the extraction client the exporter needs.
type Downloader interface {
	Download(ctx context.Context, filename string) ([]byte, error)
	Cleanup(ctx context.Context, filename string) error
}

const cleanupTimeout = 30 * time.Second

// Service saves artifacts derived from a canonical record. It only reads
// the record; session state is never touched.
type Service struct {
	client  Downloader
	fs      afero.Fs
	outDir  string
	builder *report.Builder
	logger  *slog.Logger

	wg sync.WaitGroup
}

func NewService(client Downloader, fs afero.Fs, outDir string, builder *report.Builder, logger *slog.Logger) *Service {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if builder == nil {
		builder = report.NewBuilder()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, fs: fs, outDir: outDir, builder: builder, logger: logger}
}

// DownloadSpreadsheet fetches the generated spreadsheet named by the
// record's download reference and saves it under the output directory.
// After a successful save it requests server-side deletion of the artifact
// in a detached task; cleanup failure is logged and never surfaced.
func (s *Service) DownloadSpreadsheet(ctx context.Context, rec *normalize.CanonicalRecord) (string, error) {
	if rec == nil || rec.DownloadRef == "" {
		return "", common.SelectionErrorf("no spreadsheet available for download")
	}
	start := time.Now()
	filename := path.Base(rec.DownloadRef)

	data, err := s.client.Download(ctx, filename)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(s.outDir, filename)
	if err := afero.WriteFile(s.fs, dest, data, 0o644); err != nil {
		return "", fmt.Errorf("save spreadsheet: %w", err)
	}

	s.logger.Info("export.spreadsheet.ok",
		"filename", filename,
		"bytes", len(data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		cctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := s.client.Cleanup(cctx, filename); err != nil {
			s.logger.Warn("export.cleanup.failed", "filename", filename, "error", err)
			return
		}
		s.logger.Info("export.cleanup.ok", "filename", filename)
	}()

	return dest, nil
}

// SaveReport builds the plaintext report for the record and saves it as
// analysis_report.txt. No network call is involved.
func (s *Service) SaveReport(rec *normalize.CanonicalRecord, query string) (string, error) {
	if rec == nil || len(rec.FullData) == 0 {
		return "", common.SelectionErrorf("no data available for report generation")
	}

	text := s.builder.Build(rec.FullData, query)
	dest := filepath.Join(s.outDir, constants.ReportFilename)
	if err := afero.WriteFile(s.fs, dest, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}

	s.logger.Info("export.report.ok", "filename", constants.ReportFilename, "rows", rec.RowCount)
	return dest, nil
}

// Wait blocks until all detached cleanup tasks have finished. Callers use
// it to flush advisory work before exiting.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Package orchestrator drives the asynchronous extraction lifecycle
// against the workflow session: guard checks, the single outbound request,
// and the success or regression transition that follows it.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docassist/constants"
	"docassist/internal/common"
	"docassist/internal/extraction"
	"docassist/internal/normalize"
	"docassist/internal/workflow"
)

// ErrRunSuperseded reports that an extraction finished after its selection
// had been replaced; the result was discarded, not applied.
var ErrRunSuperseded = errors.New("extraction run superseded by a newer selection")

// Extractor is the slice of the extraction client the orchestrator needs.
type Extractor interface {
	Extract(ctx context.Context, paths []string, query string) (*extraction.Envelope, error)
}

// Config tunes the orchestrator. Zero values fall back to defaults.
type Config struct {
	// Timeout bounds an extraction call when the caller's context has no
	// deadline of its own.
	Timeout time.Duration
	// ReportDelay is the fixed delay of the report-generation stub that
	// stands in for a future server-side call.
	ReportDelay time.Duration
}

const (
	defaultTimeout     = 5 * time.Minute
	defaultReportDelay = 2 * time.Second
)

// Orchestrator owns the workflow session and serializes access to it. At
// most one extraction run is honored at a time: replacing the selection
// while a run is in flight marks that run stale and its result is dropped.
type Orchestrator struct {
	mu      sync.Mutex
	session workflow.Session

	client      Extractor
	timeout     time.Duration
	reportDelay time.Duration
	logger      *slog.Logger
}

func New(client Extractor, cfg Config, logger *slog.Logger) *Orchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ReportDelay <= 0 {
		cfg.ReportDelay = defaultReportDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		session:     workflow.NewSession(),
		client:      client,
		timeout:     cfg.Timeout,
		reportDelay: cfg.ReportDelay,
		logger:      logger,
	}
}

// Session returns a snapshot of the current workflow state.
func (o *Orchestrator) Session() workflow.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// SelectFiles validates and installs a new file selection, replacing any
// prior one and regressing the workflow to the query step.
func (o *Orchestrator) SelectFiles(paths []string) error {
	sel, err := workflow.NewFileSelection(paths)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session.Step == constants.StepProcessing {
		o.logger.Info("orchestrator.selection.supersedes_run", "run_id", o.session.RunID)
	}
	o.session = workflow.Apply(o.session, workflow.FilesSelected{Selection: sel})
	o.logger.Info("orchestrator.selection.ok", "files", len(sel.Paths), "multiple", sel.Multiple)
	return nil
}

// SetQuery records the extraction query. The query is only editable while
// the query step is active.
func (o *Orchestrator) SetQuery(query string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session.Step != constants.StepQuery {
		return common.SelectionErrorf("query is not editable at step %s", o.session.Step)
	}
	o.session = workflow.Apply(o.session, workflow.QueryChanged{Query: query})
	return nil
}

// Extract runs one extraction against the current selection and query.
// Exactly one outbound call is made; on failure the workflow regresses to
// the query step so the user can edit and retry manually.
func (o *Orchestrator) Extract(ctx context.Context) (*normalize.CanonicalRecord, error) {
	o.mu.Lock()
	if !workflow.CanExtract(o.session) {
		err := o.guardError()
		o.mu.Unlock()
		return nil, err
	}
	runID := uuid.New()
	o.session = workflow.Apply(o.session, workflow.ExtractionStarted{RunID: runID})
	paths := append([]string(nil), o.session.Selection.Paths...)
	query := strings.TrimSpace(o.session.Query)
	o.mu.Unlock()

	o.logger.Info("orchestrator.extract.start", "run_id", runID, "files", len(paths))
	start := time.Now()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	env, err := o.client.Extract(ctx, paths, query)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.Step != constants.StepProcessing || o.session.RunID != runID {
		o.logger.Info("orchestrator.extract.stale_run_discarded",
			"run_id", runID, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, ErrRunSuperseded
	}

	if err != nil {
		o.session = workflow.Apply(o.session, workflow.ExtractionFailed{RunID: runID})
		o.logger.Error("orchestrator.extract.failed",
			"run_id", runID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	rec := normalize.Normalize(env.ExtractedData)
	rec.DownloadRef = env.DownloadURL
	o.session = workflow.Apply(o.session, workflow.ExtractionSucceeded{RunID: runID, Record: &rec})

	o.logger.Info("orchestrator.extract.ok",
		"run_id", runID,
		"rows", rec.RowCount,
		"columns", len(rec.Columns),
		"has_download_ref", rec.DownloadRef != "",
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &rec, nil
}

// GenerateReport completes the report step for the current preview. The
// fixed delay stands in for a server-side report-generation call that does
// not exist yet.
func (o *Orchestrator) GenerateReport(ctx context.Context) error {
	o.mu.Lock()
	if o.session.Step != constants.StepPreview {
		o.mu.Unlock()
		return common.SelectionErrorf("report generation requires an extracted preview")
	}
	o.mu.Unlock()

	select {
	case <-time.After(o.reportDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session.Step != constants.StepPreview {
		return common.SelectionErrorf("preview was replaced before the report completed")
	}
	o.session = workflow.Apply(o.session, workflow.ReportGenerated{})
	o.logger.Info("orchestrator.report.ok")
	return nil
}

// guardError names the first unmet extraction precondition. Callers hold
// the session lock.
func (o *Orchestrator) guardError() error {
	s := o.session
	switch {
	case s.Step == constants.StepProcessing:
		return common.SelectionErrorf("an extraction is already in flight")
	case s.Selection == nil || len(s.Selection.Paths) == 0:
		return common.SelectionErrorf("no files selected")
	case strings.TrimSpace(s.Query) == "":
		return common.SelectionErrorf("extraction query is empty")
	default:
		return common.SelectionErrorf("extraction is not available at step %s", s.Step)
	}
}

package workflow

import (
	"github.com/google/uuid"

	"docassist/constants"
	"docassist/internal/normalize"
)

// Event is a workflow transition trigger. Events that are not legal for the
// current step are no-ops: Apply returns the session unchanged, matching
// the inert-control semantics of the step gating.
type Event interface {
	event()
}

// FilesSelected replaces the file selection. From any step past upload this
// restarts the pipeline: the step regresses to query, any result is
// discarded, and an in-flight run goes stale.
type FilesSelected struct {
	Selection *FileSelection
}

// QueryChanged updates the extraction query while the query step is active.
type QueryChanged struct {
	Query string
}

// ExtractionStarted moves the session into processing under a fresh run ID.
type ExtractionStarted struct {
	RunID uuid.UUID
}

// ExtractionSucceeded delivers the canonical record for a run.
type ExtractionSucceeded struct {
	RunID  uuid.UUID
	Record *normalize.CanonicalRecord
}

// ExtractionFailed regresses a run back to the query step so the user can
// edit the query or retry. The failure reason is a transient notice owned
// by the caller, not workflow state.
type ExtractionFailed struct {
	RunID uuid.UUID
}

// ReportGenerated marks report generation complete for the current result.
type ReportGenerated struct{}

func (FilesSelected) event()       {}
func (QueryChanged) event()        {}
func (ExtractionStarted) event()   {}
func (ExtractionSucceeded) event() {}
func (ExtractionFailed) event()    {}
func (ReportGenerated) event()     {}

// Apply is the pure transition function. It never mutates its input.
func Apply(s Session, e Event) Session {
	switch ev := e.(type) {
	case FilesSelected:
		if ev.Selection == nil || len(ev.Selection.Paths) == 0 {
			return s
		}
		s.Selection = ev.Selection
		s.Result = nil
		s.RunID = uuid.Nil
		s.Step = constants.StepQuery
		return s

	case QueryChanged:
		if s.Step != constants.StepQuery {
			return s
		}
		s.Query = ev.Query
		return s

	case ExtractionStarted:
		if !CanExtract(s) || ev.RunID == uuid.Nil {
			return s
		}
		s.Step = constants.StepProcessing
		s.RunID = ev.RunID
		return s

	case ExtractionSucceeded:
		if s.Step != constants.StepProcessing || ev.RunID != s.RunID {
			return s
		}
		s.Result = ev.Record
		s.RunID = uuid.Nil
		s.Step = constants.StepPreview
		return s

	case ExtractionFailed:
		if s.Step != constants.StepProcessing || ev.RunID != s.RunID {
			return s
		}
		s.RunID = uuid.Nil
		s.Step = constants.StepQuery
		return s

	case ReportGenerated:
		if s.Step != constants.StepPreview {
			return s
		}
		s.Step = constants.StepReportReady
		return s

	default:
		return s
	}
}

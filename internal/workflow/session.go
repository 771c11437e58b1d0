// Package workflow owns the guided step sequence for an extraction session.
// State lives in an explicit Session value and every transition is a pure
// function of (session, event), so the engine is testable without any
// rendering or network harness.
package workflow

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docassist/constants"
	"docassist/internal/common"
	"docassist/internal/normalize"
)

// FileSelection is the document set for one extraction run. Selections are
// replaced atomically; Multiple mirrors the cardinality at selection time.
type FileSelection struct {
	Paths    []string `json:"paths"`
	Multiple bool     `json:"multiple"`
}

// NewFileSelection validates paths against the upload allowlist and builds
// a selection. An empty or disallowed pick is a selection error.
func NewFileSelection(paths []string) (*FileSelection, error) {
	if len(paths) == 0 {
		return nil, common.SelectionErrorf("no files selected")
	}
	for _, p := range paths {
		if !constants.AllowedExt(filepath.Ext(p)) {
			return nil, common.SelectionErrorf("unsupported file type %q", filepath.Ext(p))
		}
	}
	return &FileSelection{
		Paths:    append([]string(nil), paths...),
		Multiple: len(paths) > 1,
	}, nil
}

// Session is the complete workflow state. It is serializable and owns the
// current step; the result record is replaced, never mutated in place.
type Session struct {
	Step      constants.Step             `json:"step"`
	Selection *FileSelection             `json:"selection,omitempty"`
	Query     string                     `json:"query"`
	Result    *normalize.CanonicalRecord `json:"result,omitempty"`

	// RunID identifies the extraction run the session is waiting on.
	// Zero when no run is in flight. Results carrying any other run ID
	// are stale and must be discarded.
	RunID uuid.UUID `json:"run_id"`
}

// NewSession starts a session at the upload step.
func NewSession() Session {
	return Session{Step: constants.StepUpload}
}

// CanExtract reports whether the extraction trigger is available: the
// session sits at the query step with a non-empty selection and a query
// that is more than whitespace.
func CanExtract(s Session) bool {
	return s.Step == constants.StepQuery &&
		s.Selection != nil && len(s.Selection.Paths) > 0 &&
		strings.TrimSpace(s.Query) != ""
}

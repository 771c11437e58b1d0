package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docassist/constants"
	"docassist/internal/common"
	"docassist/internal/extraction"
)

type fakeExtractor struct {
	env      *extraction.Envelope
	err      error
	calls    int
	onCalled func()
}

func (f *fakeExtractor) Extract(_ context.Context, _ []string, _ string) (*extraction.Envelope, error) {
	f.calls++
	if f.onCalled != nil {
		f.onCalled()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.env, nil
}

func successEnvelope(data string) *extraction.Envelope {
	return &extraction.Envelope{
		Status:        extraction.StatusSuccess,
		DownloadURL:   "/download/run_extracted.xlsx",
		ExtractedData: json.RawMessage(data),
	}
}

func fastConfig() Config {
	return Config{Timeout: time.Second, ReportDelay: time.Millisecond}
}

func ready(t *testing.T, client Extractor, query string, paths ...string) *Orchestrator {
	t.Helper()
	o := New(client, fastConfig(), nil)
	require.NoError(t, o.SelectFiles(paths))
	require.NoError(t, o.SetQuery(query))
	return o
}

func TestExtract_SuccessAdvancesToPreview(t *testing.T) {
	fx := &fakeExtractor{env: successEnvelope(`[{"name":"A"},{"name":"B"}]`)}
	o := ready(t, fx, "extract names", "doc.pdf")

	rec, err := o.Extract(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, rec.RowCount)
	assert.Equal(t, []string{"name"}, rec.Columns)
	assert.Equal(t, "/download/run_extracted.xlsx", rec.DownloadRef)

	s := o.Session()
	assert.Equal(t, constants.StepPreview, s.Step)
	assert.Same(t, rec, s.Result)
	assert.Equal(t, 1, fx.calls, "exactly one outbound call per invocation")
}

func TestExtract_SingleObjectPayload(t *testing.T) {
	fx := &fakeExtractor{env: successEnvelope(`{"total": 42}`)}
	o := ready(t, fx, "extract totals", "a.pdf", "b.pdf", "c.pdf")

	rec, err := o.Extract(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rec.RowCount)
	assert.Equal(t, []string{"total"}, rec.Columns)
	require.Len(t, rec.FullData, 1)
}

func TestExtract_GuardFailures(t *testing.T) {
	t.Run("no selection", func(t *testing.T) {
		o := New(&fakeExtractor{}, fastConfig(), nil)
		_, err := o.Extract(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrSelection))
	})

	t.Run("blank query", func(t *testing.T) {
		o := New(&fakeExtractor{}, fastConfig(), nil)
		require.NoError(t, o.SelectFiles([]string{"a.pdf"}))
		require.NoError(t, o.SetQuery("   "))
		_, err := o.Extract(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query is empty")
	})
}

func TestExtract_FailureRegressesToQuery(t *testing.T) {
	fx := &fakeExtractor{err: common.DomainErrorf("unreadable file")}
	o := ready(t, fx, "extract names", "doc.pdf")

	_, err := o.Extract(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable file")

	s := o.Session()
	assert.Equal(t, constants.StepQuery, s.Step)
	assert.Nil(t, s.Result)
	assert.Equal(t, "extract names", s.Query, "retry keeps the query")

	// Manual retry works after the regression.
	fx.err = nil
	fx.env = successEnvelope(`[{"name":"A"}]`)
	_, err = o.Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, constants.StepPreview, o.Session().Step)
}

func TestExtract_ReselectionDiscardsInFlightRun(t *testing.T) {
	fx := &fakeExtractor{env: successEnvelope(`[{"name":"stale"}]`)}
	o := ready(t, fx, "extract names", "old.pdf")
	fx.onCalled = func() {
		require.NoError(t, o.SelectFiles([]string{"new.pdf"}))
	}

	_, err := o.Extract(context.Background())

	assert.ErrorIs(t, err, ErrRunSuperseded)
	s := o.Session()
	assert.Equal(t, constants.StepQuery, s.Step)
	assert.Equal(t, []string{"new.pdf"}, s.Selection.Paths)
	assert.Nil(t, s.Result, "stale record must not be applied")
}

func TestSetQuery_OnlyAtQueryStep(t *testing.T) {
	o := New(&fakeExtractor{}, fastConfig(), nil)

	err := o.SetQuery("too early")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrSelection))
}

func TestGenerateReport(t *testing.T) {
	fx := &fakeExtractor{env: successEnvelope(`[{"a":1}]`)}
	o := ready(t, fx, "q", "doc.pdf")

	err := o.GenerateReport(context.Background())
	require.Error(t, err, "no preview yet")

	_, err = o.Extract(context.Background())
	require.NoError(t, err)

	require.NoError(t, o.GenerateReport(context.Background()))
	assert.Equal(t, constants.StepReportReady, o.Session().Step)
}

func TestGenerateReport_Cancellation(t *testing.T) {
	fx := &fakeExtractor{env: successEnvelope(`[{"a":1}]`)}
	o := New(fx, Config{Timeout: time.Second, ReportDelay: time.Minute}, nil)
	require.NoError(t, o.SelectFiles([]string{"doc.pdf"}))
	require.NoError(t, o.SetQuery("q"))
	_, err := o.Extract(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = o.GenerateReport(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, constants.StepPreview, o.Session().Step)
}

func TestSelectFiles_ReplacesPriorSelection(t *testing.T) {
	o := New(&fakeExtractor{}, fastConfig(), nil)

	require.NoError(t, o.SelectFiles([]string{"a.pdf"}))
	require.NoError(t, o.SelectFiles([]string{"b.pdf", "c.docx"}))

	s := o.Session()
	assert.Equal(t, []string{"b.pdf", "c.docx"}, s.Selection.Paths, "no accumulation across picks")
	assert.True(t, s.Selection.Multiple)
	assert.Equal(t, constants.StepQuery, s.Step)
}

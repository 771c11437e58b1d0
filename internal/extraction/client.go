// Package extraction is the HTTP client for the document extraction
// service. The service is consumed as a black box: one multipart upload
// per run, plus download and cleanup calls for the generated spreadsheet.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"docassist/internal/common"
)

// FileField is the service's repeatable multipart slot for document
// payloads. Single and multi-file submissions use the same field name.
const FileField = "filess"

const defaultTimeout = 5 * time.Minute

type Client struct {
	baseURL string
	http    *http.Client
	fs      afero.Fs
	log     *slog.Logger
}

// NewClient builds a client for the service at baseURL. A nil httpClient
// gets a default with a request timeout so a hung extraction cannot stall
// the workflow forever; a nil fs reads from the OS filesystem.
func NewClient(baseURL string, httpClient *http.Client, fs afero.Fs, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		fs:      fs,
		log:     logger,
	}
}

// Extract uploads the selected documents with the query and returns the
// service's reply envelope. Exactly one outbound call is made; retries are
// a caller decision.
func (c *Client) Extract(ctx context.Context, paths []string, query string) (*Envelope, error) {
	reqID := uuid.New().String()
	start := time.Now()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, p := range paths {
		if err := c.appendFile(mw, p); err != nil {
			return nil, err
		}
	}
	if err := mw.WriteField("query", query); err != nil {
		return nil, fmt.Errorf("write query field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.log.Info("extract.request",
		"req_id", reqID,
		"files", len(paths),
		"query_len", len(query),
		"content_length", body.Len(),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("extract.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.TransportErrorf("extraction request failed: %v", err)
	}
	defer c.closeBody(resp.Body, reqID)

	raw, _ := io.ReadAll(resp.Body)

	c.log.Info("extract.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, common.TransportErrorf("%s", transportDetail(raw, resp.StatusCode))
	}

	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if env.Status != StatusSuccess {
		msg := env.Message
		if msg == "" {
			msg = "extraction failed"
		}
		return nil, common.DomainErrorf("%s", msg)
	}
	return env, nil
}

// Download fetches the generated spreadsheet bytes for a filename.
func (c *Client) Download(ctx context.Context, filename string) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/download/"+url.PathEscape(filename), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("download.send_error", "req_id", reqID, "filename", filename, "error", err)
		return nil, common.TransportErrorf("download failed: %v", err)
	}
	defer c.closeBody(resp.Body, reqID)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, common.TransportErrorf("%s", transportDetail(raw, resp.StatusCode))
	}

	c.log.Info("download.ok",
		"req_id", reqID,
		"filename", filename,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return raw, nil
}

// Cleanup asks the service to delete a generated artifact. Callers treat
// failures as advisory.
func (c *Client) Cleanup(ctx context.Context, filename string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/cleanup/"+url.PathEscape(filename), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return common.TransportErrorf("cleanup failed: %v", err)
	}
	defer c.closeBody(resp.Body, "")
	if resp.StatusCode/100 != 2 {
		return common.TransportErrorf("cleanup returned status %d", resp.StatusCode)
	}
	return nil
}

// Health probes the service's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return common.TransportErrorf("health check failed: %v", err)
	}
	defer c.closeBody(resp.Body, "")
	if resp.StatusCode/100 != 2 {
		return common.TransportErrorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) appendFile(mw *multipart.Writer, path string) error {
	f, err := c.fs.Open(path)
	if err != nil {
		return common.SelectionErrorf("open %s: %v", path, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile(FileField, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s into request: %w", path, err)
	}
	return nil
}

func (c *Client) closeBody(body io.ReadCloser, reqID string) {
	if err := body.Close(); err != nil {
		c.log.Warn("response_body_close_error", "req_id", reqID, "error", err)
	}
}

// transportDetail pulls the service's structured error detail out of a
// non-2xx body, falling back to a generic message.
func transportDetail(raw []byte, status int) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Detail != "" {
		return eb.Detail
	}
	return fmt.Sprintf("extraction service returned status %d", status)
}

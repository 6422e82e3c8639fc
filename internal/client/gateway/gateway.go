// Package gateway is the HTTP client for the validation backend. It owns the
// wire formats: multipart upload encoding and the mapping from the backend's
// Portuguese status strings to the closed tag sets in internal/domain.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"valsign/internal/client/selection"
	"valsign/internal/domain"
	"valsign/internal/infra"
)

var (
	// ErrNetworkUnreachable indicates the backend produced no response at all.
	ErrNetworkUnreachable = errors.New("gateway: backend unreachable")
	// ErrMalformedResponse indicates a response that could not be decoded or
	// was missing required fields.
	ErrMalformedResponse = errors.New("gateway: malformed response")
	// ErrEmptyBatch indicates Submit was called with no files. The
	// orchestrator rejects empty selections before reaching the gateway, so
	// seeing this error means a caller skipped that check.
	ErrEmptyBatch = errors.New("gateway: empty batch")
)

// UploadError carries the HTTP outcome of a rejected submission.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("gateway: upload failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway: upload failed with status %d: %s", e.StatusCode, body)
}

// Options configures the gateway client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the validation backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("gateway: base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}, nil
}

type uploadResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

type statusFileEntry struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	IsValid  *bool  `json:"is_valid"`
	Error    string `json:"error,omitempty"`
}

type statusResponse struct {
	ID         string            `json:"id"`
	Status     string            `json:"status"`
	Progress   int               `json:"progress"`
	Files      []statusFileEntry `json:"files"`
	ReportPath string            `json:"report_path"`
}

// Submit encodes the batch as one multipart request against the upload
// endpoint and returns the server-assigned job id. There are no retries at
// this layer; a failed submission is surfaced and the user re-triggers it.
func (c *Client) Submit(ctx context.Context, files []selection.Candidate) (string, error) {
	if len(files) == 0 {
		return "", ErrEmptyBatch
	}

	body, contentType, err := encodeBatch(files)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/", body)
	if err != nil {
		return "", fmt.Errorf("gateway: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gateway: read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UploadError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var decoded uploadResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode upload body: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(decoded.JobID) == "" {
		return "", fmt.Errorf("%w: missing job_id", ErrMalformedResponse)
	}
	c.logger.Debug().Str("job_id", decoded.JobID).Int("files", len(files)).Msg("gateway: batch submitted")
	return decoded.JobID, nil
}

// Status queries job progress and maps the wire payload to domain tags.
func (c *Client) Status(ctx context.Context, jobID string) (*domain.JobUpdate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: build status request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway: read status response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway: status query failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded statusResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode status body: %v", ErrMalformedResponse, err)
	}
	return mapStatus(jobID, &decoded)
}

// ReportURL returns the download location for a job's report artifact.
func (c *Client) ReportURL(jobID string) string {
	return c.baseURL + "/report/" + jobID
}

// FetchReport streams the report artifact into w.
func (c *Client) FetchReport(ctx context.Context, jobID string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ReportURL(jobID), nil)
	if err != nil {
		return fmt.Errorf("gateway: build report request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway: report download failed with status %d", resp.StatusCode)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("gateway: read report: %w", err)
	}
	return nil
}

// encodeBatch builds the multipart body in memory; batches are user-selected
// documents, not bulk archives.
func encodeBatch(files []selection.Candidate) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("gateway: create form part: %w", err)
		}
		if f.Open == nil {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("gateway: open %s: %w", f.Name, err)
		}
		_, err = io.Copy(part, rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("gateway: encode %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("gateway: finalize multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func mapStatus(jobID string, resp *statusResponse) (*domain.JobUpdate, error) {
	status, ok := domain.ParseJobStatus(resp.Status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown job status %q", ErrMalformedResponse, resp.Status)
	}
	update := &domain.JobUpdate{
		JobID:      jobID,
		Status:     status,
		Progress:   clampProgress(resp.Progress),
		ReportPath: resp.ReportPath,
	}
	for _, f := range resp.Files {
		state, ok := domain.ParseFileState(f.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown file status %q", ErrMalformedResponse, f.Status)
		}
		entry := domain.FileResult{Filename: f.Filename, State: state, Error: f.Error}
		if f.IsValid != nil {
			entry.IsValid = *f.IsValid
		}
		update.Files = append(update.Files, entry)
	}
	return update, nil
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

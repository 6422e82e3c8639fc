package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"valsign/internal/client/selection"
	"valsign/internal/domain"
)

func candidate(name, content string) selection.Candidate {
	return selection.Candidate{
		Name:      name,
		SizeBytes: int64(len(content)),
		MediaType: "application/pdf",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Options{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c
}

func TestSubmitEncodesMultipartBatch(t *testing.T) {
	var gotNames []string
	var gotContents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		for _, fh := range r.MultipartForm.File["files"] {
			gotNames = append(gotNames, fh.Filename)
			f, err := fh.Open()
			if err != nil {
				t.Fatalf("open part: %v", err)
			}
			data, _ := io.ReadAll(f)
			f.Close()
			gotContents = append(gotContents, string(data))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"job_id":"J1","message":"2 arquivos recebidos para validação"}`)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	jobID, err := c.Submit(context.Background(), []selection.Candidate{
		candidate("a.pdf", "%PDF-1.7 aaa"),
		candidate("b.pdf", "%PDF-1.7 bbb"),
	})
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if jobID != "J1" {
		t.Fatalf("Submit() job id = %q, want J1", jobID)
	}
	if len(gotNames) != 2 || gotNames[0] != "a.pdf" || gotNames[1] != "b.pdf" {
		t.Fatalf("server saw parts %v", gotNames)
	}
	if gotContents[0] != "%PDF-1.7 aaa" {
		t.Fatalf("part content = %q", gotContents[0])
	}
}

func TestSubmitEmptyBatch(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1")
	if _, err := c.Submit(context.Background(), nil); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("Submit() error = %v, want ErrEmptyBatch", err)
	}
}

func TestSubmitUploadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal failure", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	_, err := c.Submit(context.Background(), []selection.Candidate{candidate("a.pdf", "x")})
	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("Submit() error = %v, want *UploadError", err)
	}
	if ue.StatusCode != http.StatusInternalServerError {
		t.Fatalf("UploadError.StatusCode = %d, want 500", ue.StatusCode)
	}
	if !strings.Contains(ue.Body, "internal failure") {
		t.Fatalf("UploadError.Body = %q", ue.Body)
	}
}

func TestSubmitNetworkUnreachable(t *testing.T) {
	// Closed server: transport-level failure, no HTTP response at all.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newClient(t, srv.URL)
	_, err := c.Submit(context.Background(), []selection.Candidate{candidate("a.pdf", "x")})
	if !errors.Is(err, ErrNetworkUnreachable) {
		t.Fatalf("Submit() error = %v, want ErrNetworkUnreachable", err)
	}
}

func TestSubmitMissingJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":"ok"}`)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	_, err := c.Submit(context.Background(), []selection.Candidate{candidate("a.pdf", "x")})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("Submit() error = %v, want ErrMalformedResponse", err)
	}
}

func TestStatusMapsWireTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status/J1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{
			"id": "J1",
			"status": "processando",
			"progress": 50,
			"files": [
				{"filename": "a.pdf", "status": "validado", "is_valid": true},
				{"filename": "b.pdf", "status": "processando"}
			]
		}`)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	update, err := c.Status(context.Background(), "J1")
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if update.Status != domain.JobProcessing {
		t.Fatalf("Status = %q, want processing", update.Status)
	}
	if update.Progress != 50 {
		t.Fatalf("Progress = %d, want 50", update.Progress)
	}
	if len(update.Files) != 2 {
		t.Fatalf("Files len = %d, want 2", len(update.Files))
	}
	if update.Files[0].State != domain.FileValidated || !update.Files[0].IsValid {
		t.Fatalf("Files[0] = %+v, want validated/valid", update.Files[0])
	}
	if update.Files[1].State != domain.FileProcessing {
		t.Fatalf("Files[1].State = %q, want processing", update.Files[1].State)
	}
	if update.ReportAvailable() {
		t.Fatalf("ReportAvailable() = true without report_path")
	}
}

func TestStatusUnknownTagIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"J1","status":"exploded","progress":0}`)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	if _, err := c.Status(context.Background(), "J1"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("Status() error = %v, want ErrMalformedResponse", err)
	}
}

func TestStatusClampsProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"J1","status":"completo","progress":250,"report_path":"/reports/J1.pdf"}`)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	update, err := c.Status(context.Background(), "J1")
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if update.Progress != 100 {
		t.Fatalf("Progress = %d, want clamped 100", update.Progress)
	}
	if !update.ReportAvailable() {
		t.Fatalf("ReportAvailable() = false with report_path present")
	}
}

func TestFetchReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/report/J1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, "report-bytes")
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	var buf bytes.Buffer
	if err := c.FetchReport(context.Background(), "J1", &buf); err != nil {
		t.Fatalf("FetchReport() error: %v", err)
	}
	if buf.String() != "report-bytes" {
		t.Fatalf("FetchReport() wrote %q", buf.String())
	}
}

package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"valsign/internal/report"
	"valsign/internal/storage"
)

func newManager(t *testing.T, maxAge time.Duration) (*Manager, *storage.FileStore, *storage.FileStore) {
	t.Helper()
	uploads, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("uploads: %v", err)
	}
	reports, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	m := New(Options{
		Uploads:  uploads,
		Reports:  reports,
		MaxAge:   maxAge,
		Interval: time.Millisecond,
		Logger:   zerolog.Nop(),
	})
	return m, uploads, reports
}

func save(t *testing.T, store *storage.FileStore, key, content string) string {
	t.Helper()
	saved, _, err := store.Save(context.Background(), key, strings.NewReader(content))
	if err != nil {
		t.Fatalf("save %s: %v", key, err)
	}
	path, err := store.Resolve(saved)
	if err != nil {
		t.Fatalf("resolve %s: %v", key, err)
	}
	return path
}

func backdate(t *testing.T, path string, age time.Duration) {
	t.Helper()
	old := time.Now().Add(-age)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func TestSweepRemovesOnlyExpiredFiles(t *testing.T) {
	m, uploads, reports := newManager(t, time.Hour)
	oldUpload := save(t, uploads, "job-a/velho.pdf", "conteudo antigo")
	backdate(t, oldUpload, 2*time.Hour)
	freshUpload := save(t, uploads, "job-b/novo.pdf", "conteudo novo")
	oldReport := save(t, reports, report.Key("job-a"), "{}")
	backdate(t, oldReport, 2*time.Hour)

	res := m.Sweep()
	if res.UploadsRemoved != 1 {
		t.Fatalf("uploads removed = %d, want 1", res.UploadsRemoved)
	}
	if res.ReportsRemoved != 1 {
		t.Fatalf("reports removed = %d, want 1", res.ReportsRemoved)
	}
	if res.BytesFreed == 0 {
		t.Fatal("expected freed bytes to be counted")
	}
	if _, err := os.Stat(oldUpload); !os.IsNotExist(err) {
		t.Fatal("expired upload still on disk")
	}
	if _, err := os.Stat(freshUpload); err != nil {
		t.Fatalf("fresh upload should survive: %v", err)
	}
}

func TestSweepPrunesEmptyJobDirectories(t *testing.T) {
	m, uploads, _ := newManager(t, time.Hour)
	path := save(t, uploads, "job-a/unico.pdf", "x")
	backdate(t, path, 2*time.Hour)
	backdate(t, filepath.Dir(path), 2*time.Hour)

	m.Sweep()
	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Fatal("empty job directory should be pruned")
	}
}

func TestPurgeJobRemovesUploadsAndReport(t *testing.T) {
	m, uploads, reports := newManager(t, time.Hour)
	uploadPath := save(t, uploads, "job-a/doc.pdf", "x")
	reportPath := save(t, reports, report.Key("job-a"), "{}")
	otherPath := save(t, uploads, "job-b/doc.pdf", "y")

	if err := m.PurgeJob("job-a"); err != nil {
		t.Fatalf("PurgeJob: %v", err)
	}
	if _, err := os.Stat(uploadPath); !os.IsNotExist(err) {
		t.Fatal("job upload should be gone")
	}
	if _, err := os.Stat(reportPath); !os.IsNotExist(err) {
		t.Fatal("job report should be gone")
	}
	if _, err := os.Stat(otherPath); err != nil {
		t.Fatalf("unrelated job must not be touched: %v", err)
	}
}

func TestStatsCountsBothDirectories(t *testing.T) {
	m, uploads, reports := newManager(t, time.Hour)
	save(t, uploads, "job-a/um.pdf", "12345")
	save(t, uploads, "job-a/dois.pdf", "123")
	save(t, reports, report.Key("job-a"), "{}")

	stats := m.Stats()
	if stats.Uploads.FileCount != 2 {
		t.Fatalf("upload file count = %d, want 2", stats.Uploads.FileCount)
	}
	if stats.Reports.FileCount != 1 {
		t.Fatalf("report file count = %d, want 1", stats.Reports.FileCount)
	}
	if stats.TotalBytes != stats.Uploads.SizeBytes+stats.Reports.SizeBytes {
		t.Fatal("total should be the sum of both directories")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	m, _, _ := newManager(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}

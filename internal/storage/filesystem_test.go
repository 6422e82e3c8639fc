package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	return s
}

func TestNewFileStoreRequiresBasePath(t *testing.T) {
	if _, err := NewFileStore("   "); err == nil {
		t.Fatalf("NewFileStore(blank) error = nil, want error")
	}
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	s := newTestStore(t)

	key, n, err := s.Save(context.Background(), "job-1/doc.pdf", strings.NewReader("%PDF-1.7 conteudo"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if key != "job-1/doc.pdf" {
		t.Fatalf("Save() key = %q, want job-1/doc.pdf", key)
	}
	if n != int64(len("%PDF-1.7 conteudo")) {
		t.Fatalf("Save() bytes = %d, want %d", n, len("%PDF-1.7 conteudo"))
	}

	f, err := s.Open(key)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer f.Close()
	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(got) != "%PDF-1.7 conteudo" {
		t.Fatalf("stored content = %q", got)
	}
}

func TestSaveCanonicalizesKey(t *testing.T) {
	s := newTestStore(t)

	key, _, err := s.Save(context.Background(), "./job-2//a/./b.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if key != "job-2/a/b.pdf" {
		t.Fatalf("canonical key = %q, want job-2/a/b.pdf", key)
	}
	if _, err := os.Stat(filepath.Join(s.BasePath(), "job-2", "a", "b.pdf")); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
}

func TestSaveRespectsContextCancellation(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := s.Save(ctx, "job-3/doc.pdf", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("Save() error = %v, want context.Canceled", err)
	}
}

func TestResolveStaysInsideRoot(t *testing.T) {
	s := newTestStore(t)

	keys := []string{"doc.pdf", "job-1/doc.pdf", "/job-1/doc.pdf", "./job-1/doc.pdf", "a/b/../c.pdf"}
	for _, key := range keys {
		path, err := s.Resolve(key)
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", key, err)
		}
		rel, err := filepath.Rel(s.BasePath(), path)
		if err != nil {
			t.Fatalf("Rel(%q): %v", path, err)
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			t.Fatalf("Resolve(%q) escaped the root: %q", key, path)
		}
	}
}

func TestSanitizeKeyRejectsTraversal(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"dot", "."},
		{"dot dot", ".."},
		{"parent prefix", "../secret"},
		{"climbs past root", "job-1/../../secret"},
		{"backslash parent", `..\secret`},
		{"deep climb", "a/b/../../../etc/passwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := sanitizeKey(tt.key); err == nil {
				t.Fatalf("sanitizeKey(%q) = %q, want error", tt.key, got)
			}
		})
	}
}

func TestSanitizeKeyAcceptsRelativeKeys(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"doc.pdf", "doc.pdf"},
		{"job-1/doc.pdf", "job-1/doc.pdf"},
		{"/job-1/doc.pdf", "job-1/doc.pdf"},
		{"./job-1/doc.pdf", "job-1/doc.pdf"},
		{"job-1/sub/../doc.pdf", "job-1/doc.pdf"},
		{`job-1\doc.pdf`, "job-1/doc.pdf"},
	}
	for _, tt := range tests {
		got, err := sanitizeKey(tt.key)
		if err != nil {
			t.Fatalf("sanitizeKey(%q) error: %v", tt.key, err)
		}
		if got != tt.want {
			t.Fatalf("sanitizeKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestRemoveAllRejectsRootEscape(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileStore(filepath.Join(root, "uploads"))
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	sentinel := filepath.Join(root, "keep.txt")
	if err := os.WriteFile(sentinel, []byte("keep"), 0o644); err != nil {
		t.Fatalf("write sentinel: %v", err)
	}

	if err := s.RemoveAll(".."); err == nil {
		t.Fatalf("RemoveAll(..) error = nil, want error")
	}
	if _, err := os.Stat(sentinel); err != nil {
		t.Fatalf("sibling of the store root was removed: %v", err)
	}
}

func TestRemoveAllDeletesSubtree(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Save(context.Background(), "job-9/a.pdf", strings.NewReader("a")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, _, err := s.Save(context.Background(), "job-9/b.pdf", strings.NewReader("b")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if err := s.RemoveAll("job-9"); err != nil {
		t.Fatalf("RemoveAll() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.BasePath(), "job-9")); !os.IsNotExist(err) {
		t.Fatalf("job directory still present: %v", err)
	}
}

func TestRemoveAllMissingKeyIsNoOp(t *testing.T) {
	s := newTestStore(t)
	if err := s.RemoveAll("never-created"); err != nil {
		t.Fatalf("RemoveAll(missing) error = %v, want nil", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Open("job-1/missing.pdf"); err == nil {
		t.Fatalf("Open(missing) error = nil, want error")
	}
}

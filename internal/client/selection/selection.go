// Package selection holds the ordered, deduplicated set of candidate files a
// user has picked before submitting them for validation.
package selection

import (
	"errors"
	"io"
	"strings"
)

// ErrNoValidFiles is returned by Add when an entire input batch was rejected
// because none of the files declared a PDF media type.
var ErrNoValidFiles = errors.New("selection: no valid pdf files")

const pdfMediaType = "application/pdf"

// Candidate represents one file chosen by the user, not yet submitted. Name
// doubles as the deduplication key. Open yields the binary payload; the
// store itself never reads it.
type Candidate struct {
	Name      string
	SizeBytes int64
	MediaType string
	Open      func() (io.ReadCloser, error)
}

// IsPDF reports whether the candidate declares a PDF media type.
func (c Candidate) IsPDF() bool {
	mt := strings.TrimSpace(strings.ToLower(c.MediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt == pdfMediaType
}

// Store owns the candidate list. Operations are synchronous and perform no
// I/O; callers re-query List after a mutation to refresh their view.
type Store struct {
	items []Candidate
}

// NewStore returns an empty selection.
func NewStore() *Store {
	return &Store{}
}

// Add appends every PDF candidate whose name is not already present,
// preserving input order. A duplicate name is silently dropped, it does not
// replace the earlier entry. Non-PDF candidates are skipped; when the whole
// input batch is non-PDF, Add returns ErrNoValidFiles and the store is left
// untouched.
func (s *Store) Add(files ...Candidate) error {
	if len(files) == 0 {
		return nil
	}
	anyPDF := false
	for _, f := range files {
		if !f.IsPDF() {
			continue
		}
		anyPDF = true
		if s.contains(f.Name) {
			continue
		}
		s.items = append(s.items, f)
	}
	if !anyPDF {
		return ErrNoValidFiles
	}
	return nil
}

// Remove deletes the candidate at the given position. An out-of-range index
// is a documented no-op rather than an error.
func (s *Store) Remove(index int) {
	if index < 0 || index >= len(s.items) {
		return
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
}

// Clear empties the selection unconditionally.
func (s *Store) Clear() {
	s.items = nil
}

// List returns a copy of the current ordered selection.
func (s *Store) List() []Candidate {
	out := make([]Candidate, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of selected candidates.
func (s *Store) Len() int {
	return len(s.items)
}

func (s *Store) contains(name string) bool {
	for _, it := range s.items {
		if it.Name == name {
			return true
		}
	}
	return false
}

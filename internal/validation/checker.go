// Package validation inspects uploaded documents for embedded digital
// signatures. The default checker is structural: it confirms the file is a
// well-formed PDF carrying a signature container. Cryptographic verification
// of the signature and its certificate chain is a separate concern handled
// outside this service.
package validation

import (
	"bytes"
	"context"
	"fmt"
	"os"
)

// Result is the outcome of checking one document.
type Result struct {
	// Valid reports whether a well-formed signature container was found.
	Valid bool
	// SignatureCount is the number of signature dictionaries detected.
	SignatureCount int
	// Reason explains a negative outcome in wire-ready Portuguese.
	Reason string
}

// Checker validates a single stored document.
type Checker interface {
	Check(ctx context.Context, path string) (Result, error)
}

// PDFChecker is the default structural checker.
type PDFChecker struct {
	// MaxBytes caps how much of a document is read into memory. Zero means
	// the package default.
	MaxBytes int64
}

const defaultMaxBytes = 64 << 20

var (
	pdfHeader  = []byte("%PDF-")
	pdfTrailer = []byte("%%EOF")
	sigByteRng = []byte("/ByteRange")
	sigContent = []byte("/Contents")
	sigFilter  = []byte("/Type /Sig")
)

// Check reads the document and reports whether it contains at least one
// signature container. I/O problems are returned as errors; a readable
// document without a signature is a negative Result, not an error.
func (c *PDFChecker) Check(ctx context.Context, path string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	maxBytes := c.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("validation: stat %s: %w", path, err)
	}
	if info.Size() > maxBytes {
		return Result{}, fmt.Errorf("validation: %s exceeds %d byte limit", path, maxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("validation: read %s: %w", path, err)
	}
	return CheckBytes(data), nil
}

// CheckBytes runs the structural checks against an in-memory document.
func CheckBytes(data []byte) Result {
	if !bytes.HasPrefix(data, pdfHeader) {
		return Result{Reason: "documento não é um PDF válido"}
	}
	if !bytes.Contains(data, pdfTrailer) {
		return Result{Reason: "PDF truncado, marcador de fim ausente"}
	}
	count := countSignatures(data)
	if count == 0 {
		return Result{Reason: "documento não contém assinatura digital"}
	}
	return Result{Valid: true, SignatureCount: count}
}

// countSignatures counts signature dictionaries: a /Sig type marker, or the
// /ByteRange + /Contents pair incremental-update signatures use.
func countSignatures(data []byte) int {
	count := bytes.Count(data, sigFilter)
	if count > 0 {
		return count
	}
	ranges := bytes.Count(data, sigByteRng)
	if ranges > 0 && bytes.Contains(data, sigContent) {
		return ranges
	}
	return 0
}

var _ Checker = (*PDFChecker)(nil)

// Package zip streams ad-hoc archives without buffering whole payloads in
// memory.
package zip

import (
	"archive/zip"
	"fmt"
	"io"
)

// Entry names one archive member and lazily opens its content.
type Entry struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Write streams the entries into w as a zip archive. An entry that fails
// to open aborts the archive; partial output may already be written.
func Write(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		src, err := e.Open()
		if err != nil {
			zw.Close()
			return fmt.Errorf("zip: open %s: %w", e.Name, err)
		}
		dst, err := zw.Create(e.Name)
		if err != nil {
			src.Close()
			zw.Close()
			return fmt.Errorf("zip: create %s: %w", e.Name, err)
		}
		if _, err := io.Copy(dst, src); err != nil {
			src.Close()
			zw.Close()
			return fmt.Errorf("zip: write %s: %w", e.Name, err)
		}
		src.Close()
	}
	return zw.Close()
}

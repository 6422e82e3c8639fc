// Package cleanup removes stale uploads and report artifacts so disk usage
// stays bounded on long-running deployments.
package cleanup

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"valsign/internal/infra"
	"valsign/internal/report"
	"valsign/internal/storage"
)

// Manager sweeps the upload and report directories on a fixed interval,
// deleting anything older than the retention window.
type Manager struct {
	uploads  *storage.FileStore
	reports  *storage.FileStore
	maxAge   time.Duration
	interval time.Duration
	logger   infra.Logger
}

// Options configures a Manager.
type Options struct {
	Uploads  *storage.FileStore
	Reports  *storage.FileStore
	MaxAge   time.Duration
	Interval time.Duration
	Logger   infra.Logger
}

// New constructs a Manager with sane defaults for the retention window
// and the sweep interval.
func New(opts Options) *Manager {
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	return &Manager{
		uploads:  opts.Uploads,
		reports:  opts.Reports,
		maxAge:   maxAge,
		interval: interval,
		logger:   opts.Logger,
	}
}

// SweepResult describes what a single sweep removed.
type SweepResult struct {
	UploadsRemoved int   `json:"uploads_removed"`
	ReportsRemoved int   `json:"reports_removed"`
	BytesFreed     int64 `json:"bytes_freed"`
}

// Run sweeps on the configured interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info().Dur("interval", m.interval).Dur("max_age", m.maxAge).Msg("cleanup: started")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			res := m.Sweep()
			if res.UploadsRemoved > 0 || res.ReportsRemoved > 0 {
				m.logger.Info().
					Int("uploads_removed", res.UploadsRemoved).
					Int("reports_removed", res.ReportsRemoved).
					Int64("bytes_freed", res.BytesFreed).
					Msg("cleanup: sweep finished")
			}
		}
	}
}

// Sweep removes files past the retention window from both directories,
// then prunes empty job directories left behind.
func (m *Manager) Sweep() SweepResult {
	cutoff := time.Now().Add(-m.maxAge)
	var res SweepResult
	removed, freed := m.sweepDir(m.uploads.BasePath(), cutoff)
	res.UploadsRemoved = removed
	res.BytesFreed += freed
	removed, freed = m.sweepDir(m.reports.BasePath(), cutoff)
	res.ReportsRemoved = removed
	res.BytesFreed += freed
	return res
}

type dirSeen struct {
	path    string
	modTime time.Time
}

func (m *Manager) sweepDir(root string, cutoff time.Time) (int, int64) {
	var removed int
	var freed int64
	// Directory mtimes are captured before any removal below touches them.
	var dirs []dirSeen
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == root {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, dirSeen{path: path, modTime: info.ModTime()})
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				m.logger.Warn().Err(err).Str("path", path).Msg("cleanup: remove failed")
				return nil
			}
			removed++
			freed += info.Size()
		}
		return nil
	})
	if err != nil {
		m.logger.Warn().Err(err).Str("dir", root).Msg("cleanup: walk failed")
	}
	// Deepest first so nested empties cascade up.
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]
		if !dir.modTime.Before(cutoff) {
			continue
		}
		entries, err := os.ReadDir(dir.path)
		if err != nil || len(entries) > 0 {
			continue
		}
		_ = os.Remove(dir.path)
	}
	return removed, freed
}

// PurgeJob removes a single job's uploads and its report artifact,
// regardless of age.
func (m *Manager) PurgeJob(jobID string) error {
	if err := m.uploads.RemoveAll(jobID); err != nil {
		return err
	}
	if err := m.reports.RemoveAll(report.Key(jobID)); err != nil {
		return err
	}
	m.logger.Info().Str("job_id", jobID).Msg("cleanup: job files purged")
	return nil
}

// DirStats summarise one managed directory.
type DirStats struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	FileCount int    `json:"file_count"`
}

// StorageStats is the payload served by the stats endpoint.
type StorageStats struct {
	Uploads    DirStats `json:"upload_directory"`
	Reports    DirStats `json:"report_directory"`
	TotalBytes int64    `json:"total_size_bytes"`
	MaxAge     string   `json:"max_age"`
}

// Stats computes current disk usage for both directories.
func (m *Manager) Stats() StorageStats {
	up := dirStats(m.uploads.BasePath())
	rp := dirStats(m.reports.BasePath())
	return StorageStats{
		Uploads:    up,
		Reports:    rp,
		TotalBytes: up.SizeBytes + rp.SizeBytes,
		MaxAge:     m.maxAge.String(),
	}
}

func dirStats(root string) DirStats {
	stats := DirStats{Path: root}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if info, err := d.Info(); err == nil {
			stats.FileCount++
			stats.SizeBytes += info.Size()
		}
		return nil
	})
	return stats
}

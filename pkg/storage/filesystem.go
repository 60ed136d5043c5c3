package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReportStore keeps rendered report files in one flat directory. File names
// are flattened to their base name on every operation, so a stored name can
// never address anything outside the directory.
type ReportStore struct {
	dir string
}

// NewReportStore ensures the directory exists and returns a handle.
func NewReportStore(dir string) (*ReportStore, error) {
	if dir == "" {
		dir = "./reports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &ReportStore{dir: dir}, nil
}

// Save writes the rendered bytes under the given name and returns the stored
// name.
func (s *ReportStore) Save(name string, data []byte) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, clean), data, 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return clean, nil
}

// Open returns a read-only handle for a stored report.
func (s *ReportStore) Open(name string) (*os.File, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(s.dir, clean))
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}
	return file, nil
}

// Sweep deletes reports whose modification time is past the TTL and reports
// how many were removed.
func (s *ReportStore) Sweep(ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("scan report directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return removed, fmt.Errorf("stat report file: %w", err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove stale report: %w", err)
		}
		removed++
	}
	return removed, nil
}

func cleanName(name string) (string, error) {
	clean := filepath.Base(strings.TrimSpace(name))
	if clean == "" || clean == "." || clean == ".." || clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid report file name %q", name)
	}
	return clean, nil
}

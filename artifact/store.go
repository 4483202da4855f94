package artifact

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ErrRecordNotFound is returned when no record exists for a run ID.
var ErrRecordNotFound = errors.New("export record not found")

const (
	recordFile = "record.json"

	// DefaultBaseDir is the history directory relative to the project.
	DefaultBaseDir = ".devexport"

	// DefaultCompressAbove is the record size above which records are gzipped.
	DefaultCompressAbove = 10 * 1024
)

// Config configures a Store.
type Config struct {
	BaseDir       string // default ".devexport"
	CompressAbove int64  // default 10KB
}

// Store persists export records on disk.
type Store struct {
	baseDir       string
	compressAbove int64
}

// NewStore creates a store, applying defaults for zero fields.
func NewStore(cfg Config) *Store {
	if cfg.BaseDir == "" {
		cfg.BaseDir = DefaultBaseDir
	}
	if cfg.CompressAbove == 0 {
		cfg.CompressAbove = DefaultCompressAbove
	}
	return &Store{baseDir: cfg.BaseDir, compressAbove: cfg.CompressAbove}
}

// BaseDir returns the history directory.
func (s *Store) BaseDir() string { return s.baseDir }

func (s *Store) runsDir() string { return filepath.Join(s.baseDir, "runs") }

// RunDir returns the directory holding the record for runID.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.runsDir(), runID)
}

// Save writes rec, replacing any earlier version of the same run.
func (s *Store) Save(rec *Record) error {
	if rec.ID == "" {
		return errors.New("save record: empty run id")
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	dir := s.RunDir(rec.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, recordFile)
	if int64(len(data)) >= s.compressAbove {
		os.Remove(path)
		return writeCompressed(path+".gz", data)
	}
	os.Remove(path + ".gz")
	return os.WriteFile(path, data, 0o644)
}

// Load reads the record for runID.
func (s *Store) Load(runID string) (*Record, error) {
	data, err := readRecord(s.RunDir(runID))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", runID, err)
	}
	return &rec, nil
}

// Delete removes the record for runID.
func (s *Store) Delete(runID string) error {
	dir := s.RunDir(runID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return ErrRecordNotFound
	}
	return os.RemoveAll(dir)
}

// List returns every readable record, newest first. Unreadable entries
// are skipped and reported through the returned error slice.
func (s *Store) List() ([]*Record, []error) {
	entries, err := os.ReadDir(s.runsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{err}
	}

	var (
		records []*Record
		errs    []error
	)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := s.Load(entry.Name())
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", entry.Name(), err))
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	return records, errs
}

func readRecord(dir string) ([]byte, error) {
	path := filepath.Join(dir, recordFile)
	if data, err := readCompressed(path + ".gz"); err == nil {
		return data, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrRecordNotFound
	}
	return data, err
}

func writeCompressed(path string, data []byte) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func readCompressed(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	return io.ReadAll(gz)
}

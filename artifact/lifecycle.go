package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// RetentionConfig defines the history retention policy.
type RetentionConfig struct {
	KeepLast int           // newest records kept regardless of age
	MaxAge   time.Duration // older records are pruned; 0 disables age pruning
}

// DefaultRetentionConfig keeps the last 50 runs and 90 days of history.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		KeepLast: 50,
		MaxAge:   90 * 24 * time.Hour,
	}
}

// LifecycleManager applies a RetentionConfig to a Store.
type LifecycleManager struct {
	store  *Store
	config RetentionConfig
	now    func() time.Time
}

// NewLifecycleManager creates a lifecycle manager for store.
func NewLifecycleManager(store *Store, config RetentionConfig) *LifecycleManager {
	return &LifecycleManager{store: store, config: config, now: time.Now}
}

// PruneResult summarizes a prune.
type PruneResult struct {
	Deleted    []string `json:"deleted"`
	Kept       []string `json:"kept"`
	Errors     []string `json:"errors,omitempty"`
	SpaceSaved int64    `json:"spaceSaved"`
}

// Prune deletes records outside the retention policy. With dryRun it
// only reports what would be deleted. Running records are never pruned.
func (m *LifecycleManager) Prune(dryRun bool) (*PruneResult, error) {
	result := &PruneResult{
		Deleted: make([]string, 0),
		Kept:    make([]string, 0),
	}

	records, errs := m.store.List()
	for _, err := range errs {
		result.Errors = append(result.Errors, err.Error())
	}

	// List is newest first; the first KeepLast are protected.
	threshold := m.now().Add(-m.config.MaxAge)
	for i, rec := range records {
		if i < m.config.KeepLast || rec.Status == StatusRunning || m.config.MaxAge == 0 || !rec.StartedAt.Before(threshold) {
			result.Kept = append(result.Kept, rec.ID)
			continue
		}

		dir := m.store.RunDir(rec.ID)
		size := dirSize(dir)
		if !dryRun {
			if err := os.RemoveAll(dir); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("delete %s: %v", rec.ID, err))
				continue
			}
		}
		result.Deleted = append(result.Deleted, rec.ID)
		result.SpaceSaved += size
	}

	sort.Strings(result.Deleted)
	return result, nil
}

// DiskUsageStats describes the space used by the history.
type DiskUsageStats struct {
	RunCount  int   `json:"runCount"`
	TotalSize int64 `json:"totalSize"`
}

// DiskUsage returns how many records exist and their total size.
func (m *LifecycleManager) DiskUsage() (*DiskUsageStats, error) {
	stats := &DiskUsageStats{}

	entries, err := os.ReadDir(m.store.runsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			stats.RunCount++
			stats.TotalSize += dirSize(filepath.Join(m.store.runsDir(), entry.Name()))
		}
	}
	return stats, nil
}

func dirSize(path string) int64 {
	var size int64
	filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}

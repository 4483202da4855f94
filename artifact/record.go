package artifact

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Status is the outcome of an export run.
type Status string

const (
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusBuildFailed Status = "build_failed"
)

// Record describes one export run.
type Record struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	StartedAt   time.Time `json:"startedAt"`
	EndedAt     time.Time `json:"endedAt,omitempty"`
	Mode        string    `json:"mode"`
	Strategy    string    `json:"strategy"`
	Destination string    `json:"destination"`
	Pattern     string    `json:"pattern"`

	Revision string `json:"revision,omitempty"`
	Branch   string `json:"branch,omitempty"`
	Dirty    bool   `json:"dirty,omitempty"`

	BuildCommand  string  `json:"buildCommand,omitempty"`
	BuildSeconds  float64 `json:"buildSeconds,omitempty"`
	BuildExitCode int     `json:"buildExitCode,omitempty"`

	Removed   []string         `json:"removed,omitempty"`
	Transfers []TransferRecord `json:"transfers,omitempty"`
	Failures  []FailureRecord  `json:"failures,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// TransferRecord is one artifact placed in the destination.
type TransferRecord struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
	Bytes  int64  `json:"bytes"`
	SHA256 string `json:"sha256"`
}

// FailureRecord is one artifact that could not be transferred.
type FailureRecord struct {
	Artifact string `json:"artifact"`
	Op       string `json:"op"`
	Error    string `json:"error"`
}

// NewRunID returns "<yyyy-mm-dd>-<nanoid>" using the UTC date of now.
func NewRunID(now time.Time) (string, error) {
	id, err := nanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", 10)
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return now.UTC().Format("2006-01-02") + "-" + id, nil
}

// NewRecord starts a running record for mode and destination.
func NewRecord(mode, destination string) (*Record, error) {
	now := time.Now()
	id, err := NewRunID(now)
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:          id,
		Status:      StatusRunning,
		StartedAt:   now,
		Mode:        mode,
		Destination: destination,
	}, nil
}

// Finish sets the final status and end time.
func (r *Record) Finish(status Status) {
	r.Status = status
	r.EndedAt = time.Now()
}

// Duration returns how long the run took, or 0 while it is running.
func (r *Record) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Bytes returns the total size of every transferred artifact.
func (r *Record) Bytes() int64 {
	var n int64
	for _, t := range r.Transfers {
		n += t.Bytes
	}
	return n
}

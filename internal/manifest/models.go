package manifest

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a stage checkpoint or run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var statusSet = map[Status]struct{}{
	StatusPending:   {},
	StatusRunning:   {},
	StatusCompleted: {},
	StatusFailed:    {},
}

// ParseStatus converts a string into a Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Checkpoint is the persisted state of one pipeline stage.
type Checkpoint struct {
	Stage        string
	Ordinal      int
	Artifact     string
	Status       Status
	SizeBytes    int64
	SHA256       string
	RunID        string
	ErrorMessage string
	StartedAt    time.Time
	UpdatedAt    time.Time
}

// Completed reports whether the checkpoint claims a committed artifact.
func (c *Checkpoint) Completed() bool {
	return c != nil && c.Status == StatusCompleted
}

// Run records one driver invocation.
type Run struct {
	ID           string
	InputPath    string
	Status       Status
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

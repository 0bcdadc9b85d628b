package recorder

import (
	"time"

	"IndexSentinel/internal/report"
)

// Run statuses.
const (
	StatusOK     = "OK"
	StatusFailed = "FAILED"
)

// RunRecord holds everything persisted about one analysis run.
type RunRecord struct {
	ID           string
	StartedAt    time.Time
	Duration     time.Duration
	Index        string
	Source       string // history source name
	Status       string
	Error        string
	QuoteCount   int
	HistoryCount int
	Skipped      int
	Failed       int
	Results      *report.Results // nil for failed runs
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	Close() error
}

package models

import "time"

const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
	StatusRejected  = "rejected"
)

// BatchReport summarizes one conversion request for statistics.
type BatchReport struct {
	BatchID   string
	Format    Format
	Status    string
	Files     int
	Converted int
	Skipped   int
	Duration  time.Duration
}

// BatchEvent is published once a batch finishes, whatever its outcome.
type BatchEvent struct {
	BatchID     string    `json:"batch_id"`
	Format      string    `json:"format"`
	Status      string    `json:"status"`
	Files       int       `json:"files"`
	Converted   int       `json:"converted"`
	Skipped     int       `json:"skipped"`
	DurationMs  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type BatchTrigger string

const (
	BatchTriggerAdmin     BatchTrigger = "admin"
	BatchTriggerScheduler BatchTrigger = "scheduler"
	BatchTriggerCLI       BatchTrigger = "cli"
)

type BatchStatus string

const (
	BatchStatusQueued    BatchStatus = "queued"
	BatchStatusRunning   BatchStatus = "running"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusFailed    BatchStatus = "failed"
)

// MatchBatch records one pass of the matching engine so its progress can be polled.
type MatchBatch struct {
	ID      uuid.UUID    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Trigger BatchTrigger `gorm:"type:varchar(16);not null" json:"trigger"`
	Status  BatchStatus  `gorm:"type:varchar(16);not null;default:'queued';index" json:"status"`

	// Progress tracking
	TotalPhotos     int `gorm:"default:0" json:"total_photos"`
	ProcessedPhotos int `gorm:"default:0" json:"processed_photos"`
	SkippedPhotos   int `gorm:"default:0" json:"skipped_photos"`
	MatchesRecorded int `gorm:"default:0" json:"matches_recorded"`

	LastError string `gorm:"type:text" json:"last_error,omitempty"`

	QueuedAt    time.Time  `gorm:"not null;index" json:"queued_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (MatchBatch) TableName() string {
	return "match_batches"
}

// IsFinished reports whether the batch reached a terminal status.
func (b *MatchBatch) IsFinished() bool {
	return b.Status == BatchStatusCompleted || b.Status == BatchStatusFailed
}

package models

import (
	"time"
)

// Job statuses
const (
	JobPending = "pending"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// Job is a queued unit of deferred work. Payload is a self-contained JSON
// message so any worker process can execute it.
type Job struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Queue       string    `gorm:"size:64;not null;index:idx_jobs_reserve,priority:1"`
	Kind        string    `gorm:"size:128;not null"`
	Payload     JSON      `gorm:"not null"`
	Status      string    `gorm:"size:16;not null;default:pending;index:idx_jobs_reserve,priority:2"`
	Attempts    int       `gorm:"not null;default:0"`
	MaxAttempts int       `gorm:"not null;default:1"`
	AvailableAt time.Time `gorm:"not null;index:idx_jobs_reserve,priority:3"`
	ReservedAt  *time.Time
	LastError   string    `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the table name for Job
func (Job) TableName() string {
	return "jobs"
}

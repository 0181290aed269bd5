package models

import "time"

// Notification job statuses.
const (
	JobQueued = "queued"
	JobSent   = "sent"
	JobFailed = "failed"
)

// NotificationJob is an outbox row drained by cmd/notify-worker. The core
// only ever appends queued jobs; delivery and retries live in the worker.
type NotificationJob struct {
	JobID          int        `gorm:"primaryKey;column:job_id" json:"job_id"`
	JobKey         string     `gorm:"column:job_key;unique" json:"job_key"`
	RecipientEmail string     `gorm:"column:recipient_email" json:"recipient_email"`
	Subject        string     `gorm:"column:subject" json:"subject"`
	Body           string     `gorm:"column:body" json:"body"`
	Metadata       *string    `gorm:"column:metadata" json:"metadata,omitempty"`
	Status         string     `gorm:"column:status" json:"status"`
	Attempts       int        `gorm:"column:attempts" json:"attempts"`
	LastError      *string    `gorm:"column:last_error" json:"last_error,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	SentAt         *time.Time `gorm:"column:sent_at" json:"sent_at,omitempty"`
}

func (NotificationJob) TableName() string {
	return "notification_jobs"
}

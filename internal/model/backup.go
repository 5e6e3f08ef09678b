package model

import "time"

const (
	BackupStatusPending   = "pending"
	BackupStatusUploading = "uploading"
	BackupStatusCompleted = "completed"
	BackupStatusFailed    = "failed"
)

// Backup records one encrypted off-site backup run.
type Backup struct {
	ID           int64      `json:"id"`
	Filename     string     `json:"filename"`
	S3Key        string     `json:"s3_key"`
	SizeBytes    int64      `json:"size_bytes"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

package model

import "time"

// Sync type constants
const (
	SyncTypeFull        = "full"
	SyncTypeIncremental = "incremental"
)

// Sync status constants
const (
	SyncStatusStarted   = "started"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// SyncLog is the audit record for one sync run. It is created when the run
// starts, finalized exactly once when the run ends, and never touched again.
type SyncLog struct {
	ID              uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	AccountID       uint       `json:"account_id" gorm:"not null;index"`
	SyncType        string     `json:"sync_type" gorm:"type:varchar(20);not null"`
	Status          string     `json:"status" gorm:"type:varchar(20);not null;index"`
	MessagesFetched int        `json:"messages_fetched"`
	MessagesCreated int        `json:"messages_created"`
	MessagesSkipped int        `json:"messages_skipped"`
	MessagesFailed  int        `json:"messages_failed"`
	DurationMs      int64      `json:"duration_ms"`
	ErrorMessage    string     `json:"error_message" gorm:"type:text"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TableName specifies the table name for SyncLog
func (SyncLog) TableName() string {
	return "sync_logs"
}

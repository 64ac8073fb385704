package model

import (
	"time"

	"gorm.io/gorm"
)

// EmailAccount represents a connected Gmail mailbox. The refresh token is
// exchanged for short-lived access tokens at the start of every sync.
// LastHistoryID is the provider-supplied incremental sync cursor; it only
// ever advances.
type EmailAccount struct {
	ID            uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        string         `json:"user_id" gorm:"type:varchar(64);not null;index"`
	Email         string         `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	RefreshToken  string         `json:"-" gorm:"type:text;not null"`
	LastHistoryID uint64         `json:"last_history_id" gorm:"not null;default:0"`
	LastSyncedAt  *time.Time     `json:"last_synced_at"`
	Active        bool           `json:"active" gorm:"default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for EmailAccount
func (EmailAccount) TableName() string {
	return "email_accounts"
}

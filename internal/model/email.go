package model

import (
	"time"
)

// Email represents a synced message. A message is stored at most once per
// account, enforced by the composite unique index on (account_id, message_id);
// the sync pipeline relies on that constraint to resolve races between
// concurrent syncs.
type Email struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AccountID      uint      `json:"account_id" gorm:"not null;uniqueIndex:idx_account_message"`
	MessageID      string    `json:"message_id" gorm:"type:varchar(128);not null;uniqueIndex:idx_account_message"`
	ThreadID       string    `json:"thread_id" gorm:"type:varchar(128);not null;index"`
	Subject        string    `json:"subject" gorm:"type:varchar(512)"`
	SenderEmail    string    `json:"sender_email" gorm:"type:varchar(255);not null;index"`
	SenderName     string    `json:"sender_name" gorm:"type:varchar(255)"`
	RecipientEmail string    `json:"recipient_email" gorm:"type:varchar(255)"`
	Date           time.Time `json:"date" gorm:"index"`
	Snippet        string    `json:"snippet" gorm:"type:text"`
	BodyText       string    `json:"body_text" gorm:"type:mediumtext"`
	BodyHTML       string    `json:"body_html" gorm:"type:mediumtext"`
	Labels         []string  `json:"labels" gorm:"serializer:json;type:text"`
	IsRead         bool      `json:"is_read"`
	IsStarred      bool      `json:"is_starred"`

	// Fields derived by post-sync AI analysis
	AICategory string     `json:"ai_category" gorm:"type:varchar(50)"`
	AIUrgency  string     `json:"ai_urgency" gorm:"type:varchar(20)"`
	AISummary  string     `json:"ai_summary" gorm:"type:text"`
	AnalyzedAt *time.Time `json:"analyzed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Email
func (Email) TableName() string {
	return "emails"
}

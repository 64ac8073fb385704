package model

import "time"

// EmailAction is an action item extracted from a message by AI analysis.
type EmailAction struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	EmailID     uint       `json:"email_id" gorm:"not null;index"`
	AccountID   uint       `json:"account_id" gorm:"not null;index"`
	Description string     `json:"description" gorm:"type:varchar(512);not null"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `json:"completed" gorm:"default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for EmailAction
func (EmailAction) TableName() string {
	return "email_actions"
}

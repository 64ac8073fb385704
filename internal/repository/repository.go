// Package repository implements the sync pipeline's persistence boundary on
// gorm/MySQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"ideabox/internal/ai"
	"ideabox/internal/model"
	"ideabox/internal/sync"
)

type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ActiveAccounts returns every account eligible for syncing.
func (r *Repository) ActiveAccounts(ctx context.Context) ([]model.EmailAccount, error) {
	var accounts []model.EmailAccount
	result := r.db.WithContext(ctx).Where("active = ?", true).Find(&accounts)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load active accounts: %w", result.Error)
	}
	return accounts, nil
}

// Account returns one account by ID.
func (r *Repository) Account(ctx context.Context, id uint) (*model.EmailAccount, error) {
	var account model.EmailAccount
	result := r.db.WithContext(ctx).First(&account, id)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load account %d: %w", id, result.Error)
	}
	return &account, nil
}

// ExistingMessageIDs returns the subset of ids already stored for the account.
func (r *Repository) ExistingMessageIDs(ctx context.Context, accountID uint, ids []string) (map[string]struct{}, error) {
	var found []string
	result := r.db.WithContext(ctx).
		Model(&model.Email{}).
		Where("account_id = ? AND message_id IN ?", accountID, ids).
		Pluck("message_id", &found)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query stored message IDs: %w", result.Error)
	}

	existing := make(map[string]struct{}, len(found))
	for _, id := range found {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// InsertEmail persists a new message. A duplicate-key violation (a race with
// a concurrent sync of the same account) is reported as
// sync.ErrDuplicateMessage so the pipeline counts it as skipped.
func (r *Repository) InsertEmail(ctx context.Context, email *model.Email) error {
	result := r.db.WithContext(ctx).Create(email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return sync.ErrDuplicateMessage
		}
		return fmt.Errorf("failed to insert email: %w", result.Error)
	}
	return nil
}

// AdvanceSyncCursor moves the account's history cursor forward, never
// backward, and stamps the last sync time.
func (r *Repository) AdvanceSyncCursor(ctx context.Context, accountID uint, historyID uint64) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.EmailAccount{}).
		Where("id = ? AND last_history_id < ?", accountID, historyID).
		Updates(map[string]interface{}{
			"last_history_id": historyID,
			"last_synced_at":  now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to advance sync cursor: %w", result.Error)
	}
	return nil
}

// CreateSyncLog writes the audit record at sync start.
func (r *Repository) CreateSyncLog(ctx context.Context, log *model.SyncLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create sync log: %w", err)
	}
	return nil
}

// FinalizeSyncLog saves the record's final state at sync end.
func (r *Repository) FinalizeSyncLog(ctx context.Context, log *model.SyncLog) error {
	if err := r.db.WithContext(ctx).Save(log).Error; err != nil {
		return fmt.Errorf("failed to finalize sync log: %w", err)
	}
	return nil
}

// ApplyInsights writes analysis-derived fields to the email and persists
// extracted action items in the same transaction.
func (r *Repository) ApplyInsights(ctx context.Context, email *model.Email, insights *ai.Insights) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"ai_category": insights.Category,
			"ai_urgency":  insights.Urgency,
			"ai_summary":  insights.Summary,
			"analyzed_at": now,
		}
		if err := tx.Model(email).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to store analysis fields: %w", err)
		}

		for _, item := range insights.Actions {
			action := model.EmailAction{
				EmailID:     email.ID,
				AccountID:   email.AccountID,
				Description: item.Description,
				DueDate:     parseDueDate(item.DueDate),
			}
			if err := tx.Create(&action).Error; err != nil {
				return fmt.Errorf("failed to store action item: %w", err)
			}
		}
		return nil
	})
}

// parseDueDate accepts YYYY-MM-DD; anything else becomes a nil due date.
func parseDueDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// RecentEmails returns the newest stored emails for an account, analysis
// fields included.
func (r *Repository) RecentEmails(ctx context.Context, accountID uint, limit int) ([]model.Email, error) {
	var emails []model.Email
	query := r.db.WithContext(ctx).Order("date DESC").Limit(limit)
	if accountID > 0 {
		query = query.Where("account_id = ?", accountID)
	}
	if err := query.Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("failed to load emails: %w", err)
	}
	return emails, nil
}

// SyncLogs returns the newest audit records.
func (r *Repository) SyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error) {
	var logs []model.SyncLog
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to load sync logs: %w", err)
	}
	return logs, nil
}

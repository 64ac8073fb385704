// Package sync implements the per-account Gmail sync pipeline: token
// acquisition, bounded listing, diffing against already-stored message IDs,
// fetch/parse/persist for unseen messages only, monotonic cursor update, and
// an always-written audit record.
package sync

import (
	"context"
	"errors"

	gmail "google.golang.org/api/gmail/v1"

	"ideabox/internal/ai"
	"ideabox/internal/model"
)

// ErrDuplicateMessage is returned by Store.InsertEmail when the
// (account, message) uniqueness constraint fires. The pipeline treats it as
// "already synced", not as a failure; it is the only guard against two
// concurrent syncs of the same account racing between diff and insert.
var ErrDuplicateMessage = errors.New("message already synced")

// MailProvider opens a mailbox session for an account. Open performs token
// acquisition (refreshing the stored credential when expired); its failure
// aborts the whole account sync.
type MailProvider interface {
	Open(ctx context.Context, account *model.EmailAccount) (Mailbox, error)
}

// Mailbox is one authenticated view of a provider mailbox.
type Mailbox interface {
	// ListMessageIDs returns up to maxResults message IDs across All Mail
	// (spam, trash, and drafts excluded), optionally narrowed by query.
	ListMessageIDs(ctx context.Context, maxResults int64, query string) ([]string, error)
	// GetMessage fetches the full message, including the MIME payload.
	GetMessage(ctx context.Context, id string) (*gmail.Message, error)
}

// Store is the persistence boundary of the pipeline.
type Store interface {
	ActiveAccounts(ctx context.Context) ([]model.EmailAccount, error)
	// ExistingMessageIDs returns the subset of ids already stored for the
	// account.
	ExistingMessageIDs(ctx context.Context, accountID uint, ids []string) (map[string]struct{}, error)
	// InsertEmail persists a new message; a uniqueness violation is reported
	// as ErrDuplicateMessage.
	InsertEmail(ctx context.Context, email *model.Email) error
	// AdvanceSyncCursor moves the account's history cursor forward. It never
	// regresses the stored value.
	AdvanceSyncCursor(ctx context.Context, accountID uint, historyID uint64) error
	CreateSyncLog(ctx context.Context, log *model.SyncLog) error
	FinalizeSyncLog(ctx context.Context, log *model.SyncLog) error
	// ApplyInsights writes analysis-derived fields and extracted actions.
	ApplyInsights(ctx context.Context, email *model.Email, insights *ai.Insights) error
}

// Analyzer is the optional post-sync analysis step.
type Analyzer interface {
	AnalyzeEmail(ctx context.Context, email *model.Email) (*ai.Insights, error)
}

// Options controls one sync invocation.
type Options struct {
	MaxResults int64
	// Query is appended to the default spam/trash/draft exclusion filter.
	Query string
	Full  bool
	// Analyze triggers AI analysis for newly created messages, capped at
	// AnalysisLimit.
	Analyze       bool
	AnalysisLimit int
}

// MessageError records one per-message failure without aborting the batch.
type MessageError struct {
	MessageID string `json:"message_id"`
	Reason    string `json:"reason"`
}

// Result aggregates the outcome of one account sync.
type Result struct {
	AccountID       uint           `json:"account_id"`
	SyncType        string         `json:"sync_type"`
	MessagesFetched int            `json:"messages_fetched"`
	MessagesCreated int            `json:"messages_created"`
	MessagesSkipped int            `json:"messages_skipped"`
	MessagesFailed  int            `json:"messages_failed"`
	Errors          []MessageError `json:"errors,omitempty"`
	AnalysisErrors  []MessageError `json:"analysis_errors,omitempty"`
	DurationMs      int64          `json:"duration_ms"`
}

// Totals aggregates results across accounts.
type Totals struct {
	Accounts        int            `json:"accounts"`
	AccountsFailed  int            `json:"accounts_failed"`
	MessagesFetched int            `json:"messages_fetched"`
	MessagesCreated int            `json:"messages_created"`
	MessagesSkipped int            `json:"messages_skipped"`
	MessagesFailed  int            `json:"messages_failed"`
	Results         []*Result      `json:"results"`
	AccountErrors   []AccountError `json:"account_errors,omitempty"`
}

// AccountError records one account whose sync failed outright.
type AccountError struct {
	AccountID uint   `json:"account_id"`
	Reason    string `json:"reason"`
}

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"ideabox/internal/model"
	"ideabox/internal/parser"
)

// Orchestrator drives the sync pipeline. Accounts are synced sequentially
// and independently; a failure in one never prevents the others.
type Orchestrator struct {
	provider     MailProvider
	store        Store
	analyzer     Analyzer // nil disables post-sync analysis
	maxBodyChars int
}

// New creates an orchestrator. analyzer may be nil.
func New(provider MailProvider, store Store, analyzer Analyzer, maxBodyChars int) *Orchestrator {
	return &Orchestrator{
		provider:     provider,
		store:        store,
		analyzer:     analyzer,
		maxBodyChars: maxBodyChars,
	}
}

// SyncAll syncs every active account and sums the counters. The returned
// error is non-nil only when the account list itself cannot be loaded.
func (o *Orchestrator) SyncAll(ctx context.Context, opts Options) (*Totals, error) {
	accounts, err := o.store.ActiveAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	totals := &Totals{Accounts: len(accounts)}
	for i := range accounts {
		account := &accounts[i]
		result, err := o.SyncAccount(ctx, account, opts)
		if err != nil {
			totals.AccountsFailed++
			totals.AccountErrors = append(totals.AccountErrors, AccountError{
				AccountID: account.ID,
				Reason:    err.Error(),
			})
			continue
		}
		totals.MessagesFetched += result.MessagesFetched
		totals.MessagesCreated += result.MessagesCreated
		totals.MessagesSkipped += result.MessagesSkipped
		totals.MessagesFailed += result.MessagesFailed
		totals.Results = append(totals.Results, result)
	}
	return totals, nil
}

// SyncAccount runs the full pipeline for one account. Per-message failures
// are collected into the result; only token acquisition, listing, and diff
// failures abort the run, and even then a failed audit record is written
// before the error is returned.
func (o *Orchestrator) SyncAccount(ctx context.Context, account *model.EmailAccount, opts Options) (*Result, error) {
	start := time.Now()

	syncType := model.SyncTypeIncremental
	if opts.Full || account.LastHistoryID == 0 {
		syncType = model.SyncTypeFull
	}

	log := logrus.WithFields(logrus.Fields{
		"account_id": account.ID,
		"email":      account.Email,
		"sync_type":  syncType,
	})

	auditLog := &model.SyncLog{
		AccountID: account.ID,
		SyncType:  syncType,
		Status:    model.SyncStatusStarted,
		StartedAt: start,
	}
	if err := o.store.CreateSyncLog(ctx, auditLog); err != nil {
		log.WithError(err).Error("failed to create sync log")
	}

	result := &Result{AccountID: account.ID, SyncType: syncType}

	fail := func(err error) (*Result, error) {
		log.WithError(err).Error("account sync failed")
		o.finalizeLog(ctx, auditLog, result, model.SyncStatusFailed, err.Error(), start)
		return nil, err
	}

	// Step 1: token acquisition.
	mailbox, err := o.provider.Open(ctx, account)
	if err != nil {
		return fail(fmt.Errorf("failed to open mailbox: %w", err))
	}

	// Step 2: bounded, filtered listing.
	ids, err := mailbox.ListMessageIDs(ctx, opts.MaxResults, opts.Query)
	if err != nil {
		return fail(fmt.Errorf("failed to list messages: %w", err))
	}
	result.MessagesFetched = len(ids)

	if len(ids) == 0 {
		log.Info("no messages listed, nothing to sync")
		o.finalizeLog(ctx, auditLog, result, model.SyncStatusCompleted, "", start)
		result.DurationMs = time.Since(start).Milliseconds()
		return result, nil
	}

	// Step 3: diff against stored IDs.
	existing, err := o.store.ExistingMessageIDs(ctx, account.ID, ids)
	if err != nil {
		return fail(fmt.Errorf("failed to diff stored messages: %w", err))
	}

	// Step 4: fetch, parse, persist the new set only.
	var created []*model.Email
	var maxHistoryID uint64
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			result.MessagesSkipped++
			continue
		}

		email, historyID, err := o.syncMessage(ctx, mailbox, account, id)
		if historyID > maxHistoryID {
			maxHistoryID = historyID
		}
		if err != nil {
			if errors.Is(err, ErrDuplicateMessage) {
				result.MessagesSkipped++
				continue
			}
			result.MessagesFailed++
			result.Errors = append(result.Errors, MessageError{MessageID: id, Reason: err.Error()})
			log.WithError(err).Warnf("failed to sync message %s", id)
			continue
		}
		result.MessagesCreated++
		created = append(created, email)
	}

	// Step 5: advance the cursor to the maximum marker seen. Failures are
	// logged, not fatal: the next sync re-lists and re-diffs from scratch.
	if maxHistoryID > 0 {
		if err := o.store.AdvanceSyncCursor(ctx, account.ID, maxHistoryID); err != nil {
			log.WithError(err).Error("failed to advance sync cursor")
		}
	}

	// Step 6: audit log.
	o.finalizeLog(ctx, auditLog, result, model.SyncStatusCompleted, "", start)

	log.WithFields(logrus.Fields{
		"fetched": result.MessagesFetched,
		"created": result.MessagesCreated,
		"skipped": result.MessagesSkipped,
		"failed":  result.MessagesFailed,
	}).Info("account sync completed")

	// Optional post-sync analysis; its failures never fail the sync.
	if opts.Analyze && o.analyzer != nil && len(created) > 0 {
		result.AnalysisErrors = o.analyzeCreated(ctx, created, opts.AnalysisLimit)
	}

	result.DurationMs = time.Since(start).Milliseconds()
	return result, nil
}

// syncMessage fetches, parses, and persists one message. The history marker
// is returned even on parse/insert failure so the cursor still advances past
// messages that will never sync.
func (o *Orchestrator) syncMessage(ctx context.Context, mailbox Mailbox, account *model.EmailAccount, id string) (*model.Email, uint64, error) {
	msg, err := mailbox.GetMessage(ctx, id)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch failed: %w", err)
	}

	parsed, err := parser.Parse(msg, o.maxBodyChars)
	if err != nil {
		return nil, msg.HistoryId, err
	}

	email := &model.Email{
		AccountID:      account.ID,
		MessageID:      parsed.ProviderID,
		ThreadID:       parsed.ThreadID,
		Subject:        parsed.Subject,
		SenderEmail:    parsed.SenderEmail,
		SenderName:     parsed.SenderName,
		RecipientEmail: parsed.RecipientEmail,
		Date:           parsed.Date,
		Snippet:        parsed.Snippet,
		BodyText:       parsed.BodyText,
		BodyHTML:       parsed.BodyHTML,
		Labels:         parsed.Labels,
		IsRead:         parsed.IsRead,
		IsStarred:      parsed.IsStarred,
	}

	if err := o.store.InsertEmail(ctx, email); err != nil {
		return nil, parsed.HistoryID, err
	}
	return email, parsed.HistoryID, nil
}

// analyzeCreated runs AI analysis over newly created messages, up to limit.
func (o *Orchestrator) analyzeCreated(ctx context.Context, created []*model.Email, limit int) []MessageError {
	if limit > 0 && len(created) > limit {
		created = created[:limit]
	}

	var errs []MessageError
	for _, email := range created {
		insights, err := o.analyzer.AnalyzeEmail(ctx, email)
		if err == nil {
			err = o.store.ApplyInsights(ctx, email, insights)
		}
		if err != nil {
			errs = append(errs, MessageError{MessageID: email.MessageID, Reason: err.Error()})
			logrus.WithError(err).Warnf("analysis failed for message %s", email.MessageID)
		}
	}
	return errs
}

func (o *Orchestrator) finalizeLog(ctx context.Context, auditLog *model.SyncLog, result *Result, status, errMsg string, start time.Time) {
	now := time.Now()
	auditLog.Status = status
	auditLog.MessagesFetched = result.MessagesFetched
	auditLog.MessagesCreated = result.MessagesCreated
	auditLog.MessagesSkipped = result.MessagesSkipped
	auditLog.MessagesFailed = result.MessagesFailed
	auditLog.ErrorMessage = errMsg
	auditLog.DurationMs = now.Sub(start).Milliseconds()
	auditLog.CompletedAt = &now
	if err := o.store.FinalizeSyncLog(ctx, auditLog); err != nil {
		logrus.WithError(err).Error("failed to finalize sync log")
	}
}

// Package gmail implements the mail provider boundary on top of the Gmail
// API, one authenticated session per connected account.
package gmail

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"ideabox/internal/config"
	"ideabox/internal/model"
	"ideabox/internal/sync"
)

// defaultExclusion keeps the listing on the All Mail view: everything except
// spam, trash, and drafts.
const defaultExclusion = "-in:spam -in:trash -in:drafts"

// Provider opens Gmail mailboxes using the application's OAuth2 client and
// each account's stored refresh token.
type Provider struct {
	oauth *oauth2.Config
}

// NewProvider creates a Gmail provider
func NewProvider(cfg config.GoogleConfig) *Provider {
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       []string{gmail.GmailReadonlyScope},
			Endpoint:     google.Endpoint,
		},
	}
}

// Open exchanges the account's refresh token for a valid access token and
// builds an authenticated Gmail service. The first token fetch is forced
// here so a revoked or expired credential fails the sync up front rather
// than on the first list call.
func (p *Provider) Open(ctx context.Context, account *model.EmailAccount) (sync.Mailbox, error) {
	source := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: account.RefreshToken})
	if _, err := source.Token(); err != nil {
		return nil, fmt.Errorf("failed to obtain access token for %s: %w", account.Email, err)
	}

	service, err := gmail.NewService(ctx, option.WithTokenSource(oauth2.ReuseTokenSource(nil, source)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &mailbox{service: service}, nil
}

type mailbox struct {
	service *gmail.Service
}

// ListMessageIDs lists up to maxResults message IDs across All Mail,
// excluding spam/trash/drafts and applying any caller-supplied query.
func (m *mailbox) ListMessageIDs(ctx context.Context, maxResults int64, query string) ([]string, error) {
	q := defaultExclusion
	if query != "" {
		q += " " + query
	}

	resp, err := m.service.Users.Messages.List("me").
		MaxResults(maxResults).
		Q(q).
		IncludeSpamTrash(false).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, nil
}

// GetMessage fetches one message in full format, MIME payload included.
func (m *mailbox) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	msg, err := m.service.Users.Messages.Get("me", id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return msg, nil
}

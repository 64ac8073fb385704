// Package parser converts raw Gmail API messages into normalized records.
//
// Only three fields are mandatory: the provider message ID, the thread ID,
// and a sender address. Everything else degrades gracefully: malformed
// address headers become absent addresses, undecodable body parts become
// absent bodies, and an unparseable date falls back to the provider
// timestamp and then to the current time.
package parser

import (
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	gmail "google.golang.org/api/gmail/v1"
)

const (
	labelUnread  = "UNREAD"
	labelStarred = "STARRED"

	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"
)

// ParsedMessage is the normalized form of one Gmail message. It is created
// once during sync and handed to the persistence layer; it is never mutated
// afterwards.
type ParsedMessage struct {
	ProviderID     string
	ThreadID       string
	Subject        string
	SenderEmail    string
	SenderName     string
	RecipientEmail string
	Date           time.Time
	Snippet        string
	BodyText       string
	BodyHTML       string
	Labels         []string
	IsRead         bool
	IsStarred      bool
	HistoryID      uint64
}

// ParseError reports a message that cannot be normalized because a mandatory
// field is missing.
type ParseError struct {
	MessageID string
	Field     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse message %q: missing %s", e.MessageID, e.Field)
}

// Parse converts a raw Gmail message into a ParsedMessage. The plain-text
// body is truncated to maxBodyChars; the HTML body is stored in full since it
// is used for display, not for AI cost control.
func Parse(msg *gmail.Message, maxBodyChars int) (*ParsedMessage, error) {
	if msg == nil || msg.Id == "" {
		return nil, &ParseError{Field: "id"}
	}
	if msg.ThreadId == "" {
		return nil, &ParseError{MessageID: msg.Id, Field: "threadId"}
	}

	var headers []*gmail.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	senderEmail, senderName := ParseAddress(headerValue(headers, "From"))
	if senderEmail == "" {
		return nil, &ParseError{MessageID: msg.Id, Field: "from"}
	}
	recipientEmail, _ := ParseAddress(headerValue(headers, "To"))

	var text, html string
	if msg.Payload != nil {
		acc := collectBodies(msg.Payload, bodyAccumulator{messageID: msg.Id})
		text, html = acc.text, acc.html
	}

	return &ParsedMessage{
		ProviderID:     msg.Id,
		ThreadID:       msg.ThreadId,
		Subject:        headerValue(headers, "Subject"),
		SenderEmail:    senderEmail,
		SenderName:     senderName,
		RecipientEmail: recipientEmail,
		Date:           resolveDate(headerValue(headers, "Date"), msg.InternalDate),
		Snippet:        msg.Snippet,
		BodyText:       TruncateBody(text, maxBodyChars),
		BodyHTML:       html,
		Labels:         msg.LabelIds,
		IsRead:         !hasLabel(msg.LabelIds, labelUnread),
		IsStarred:      hasLabel(msg.LabelIds, labelStarred),
		HistoryID:      msg.HistoryId,
	}, nil
}

// headerValue returns the first header matching name, case-insensitively.
func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// resolveDate tries the Date header first, then the provider's epoch
// milliseconds, then the current time. It always succeeds.
func resolveDate(header string, internalDate int64) time.Time {
	if header != "" {
		if t, err := mail.ParseDate(header); err == nil {
			return t
		}
		logrus.Warnf("unparseable Date header %q, falling back to internal date", header)
	}
	if internalDate > 0 {
		return time.UnixMilli(internalDate)
	}
	return time.Now()
}

func hasLabel(labels []string, want string) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}

// bodyAccumulator carries the first text/plain and text/html leaves found
// during the MIME walk. A "found" flag is set even when decoding fails, so a
// broken first leaf yields an absent body rather than a later leaf's content.
type bodyAccumulator struct {
	messageID string
	text      string
	html      string
	hasText   bool
	hasHTML   bool
}

func (a bodyAccumulator) done() bool {
	return a.hasText && a.hasHTML
}

// collectBodies walks the MIME tree recursively, taking the first leaf of
// each type and stopping early once both are found.
func collectBodies(part *gmail.MessagePart, acc bodyAccumulator) bodyAccumulator {
	if part == nil || acc.done() {
		return acc
	}

	if part.Body != nil && part.Body.Data != "" {
		switch part.MimeType {
		case mimeTextPlain:
			if !acc.hasText {
				acc.hasText = true
				acc.text = decodePart(acc.messageID, part)
			}
		case mimeTextHTML:
			if !acc.hasHTML {
				acc.hasHTML = true
				acc.html = decodePart(acc.messageID, part)
			}
		}
	}

	for _, sub := range part.Parts {
		if acc.done() {
			break
		}
		acc = collectBodies(sub, acc)
	}
	return acc
}

func decodePart(messageID string, part *gmail.MessagePart) string {
	decoded, err := decodeBase64URL(part.Body.Data)
	if err != nil {
		logrus.WithError(err).Warnf("failed to decode %s part of message %s", part.MimeType, messageID)
		return ""
	}
	return decoded
}

// decodeBase64URL decodes Gmail's base64url body encoding: the URL-safe
// alphabet is mapped back to the standard one before decoding, and missing
// padding is restored.
func decodeBase64URL(data string) (string, error) {
	s := strings.ReplaceAll(data, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("failed to decode body data: %w", err)
	}
	return string(decoded), nil
}

// TruncateBody caps a plain-text body at max characters, keeping the first
// floor(max/2) and the trailing max-floor(max/2) characters around an elision
// marker. Long threads and newsletters keep context from both ends.
func TruncateBody(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	head := max / 2
	tail := max - head
	elided := len(s) - max
	return s[:head] + TruncationMarker(elided) + s[len(s)-tail:]
}

// TruncationMarker is the text inserted between the kept head and tail of a
// truncated body.
func TruncationMarker(elided int) string {
	return fmt.Sprintf("\n[... %d characters elided ...]\n", elided)
}

package parser

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func encodeBody(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func simpleMessage() *gmail.Message {
	return &gmail.Message{
		Id:           "msg-1",
		ThreadId:     "thread-1",
		Snippet:      "hello there",
		InternalDate: 1700000000000,
		HistoryId:    42,
		LabelIds:     []string{"INBOX", "UNREAD"},
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: `"Jane Doe" <jane@x.com>`},
				{Name: "To", Value: "bob@y.com"},
				{Name: "Subject", Value: "Quarterly plan"},
				{Name: "Date", Value: "Tue, 14 Nov 2023 22:13:20 +0000"},
			},
			Body: &gmail.MessagePartBody{Data: encodeBody("hello there, full body")},
		},
	}
}

func TestParseSimpleMessage(t *testing.T) {
	parsed, err := Parse(simpleMessage(), 1000)
	require.NoError(t, err)

	assert.Equal(t, "msg-1", parsed.ProviderID)
	assert.Equal(t, "thread-1", parsed.ThreadID)
	assert.Equal(t, "Quarterly plan", parsed.Subject)
	assert.Equal(t, "jane@x.com", parsed.SenderEmail)
	assert.Equal(t, "Jane Doe", parsed.SenderName)
	assert.Equal(t, "bob@y.com", parsed.RecipientEmail)
	assert.Equal(t, "hello there", parsed.Snippet)
	assert.Equal(t, "hello there, full body", parsed.BodyText)
	assert.Empty(t, parsed.BodyHTML)
	assert.Equal(t, uint64(42), parsed.HistoryID)
	assert.False(t, parsed.IsRead)
	assert.False(t, parsed.IsStarred)

	expected := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	assert.True(t, parsed.Date.Equal(expected))
}

func TestParseMandatoryFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*gmail.Message)
		wantField string
	}{
		{"missing id", func(m *gmail.Message) { m.Id = "" }, "id"},
		{"missing thread id", func(m *gmail.Message) { m.ThreadId = "" }, "threadId"},
		{"missing from header", func(m *gmail.Message) {
			m.Payload.Headers = m.Payload.Headers[1:]
		}, "from"},
		{"unusable from header", func(m *gmail.Message) {
			m.Payload.Headers[0].Value = "not an address"
		}, "from"},
		{"nil payload", func(m *gmail.Message) { m.Payload = nil }, "from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := simpleMessage()
			tt.mutate(msg)

			_, err := Parse(msg, 1000)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.wantField, parseErr.Field)
		})
	}
}

func TestHeaderLookupCaseInsensitive(t *testing.T) {
	msg := simpleMessage()
	msg.Payload.Headers = []*gmail.MessagePartHeader{
		{Name: "FROM", Value: "jane@x.com"},
		{Name: "subject", Value: "lower case header"},
		{Name: "Subject", Value: "second subject ignored"},
	}

	parsed, err := Parse(msg, 1000)
	require.NoError(t, err)
	assert.Equal(t, "jane@x.com", parsed.SenderEmail)
	assert.Equal(t, "lower case header", parsed.Subject)
}

func TestDateFallbackChain(t *testing.T) {
	t.Run("header wins", func(t *testing.T) {
		msg := simpleMessage()
		parsed, err := Parse(msg, 1000)
		require.NoError(t, err)
		assert.Equal(t, 2023, parsed.Date.Year())
	})

	t.Run("invalid header falls back to internal date", func(t *testing.T) {
		msg := simpleMessage()
		msg.Payload.Headers[3].Value = "not a date"
		parsed, err := Parse(msg, 1000)
		require.NoError(t, err)
		assert.True(t, parsed.Date.Equal(time.UnixMilli(1700000000000)))
	})

	t.Run("both invalid falls back to now", func(t *testing.T) {
		msg := simpleMessage()
		msg.Payload.Headers[3].Value = "not a date"
		msg.InternalDate = 0
		before := time.Now()
		parsed, err := Parse(msg, 1000)
		require.NoError(t, err)
		assert.False(t, parsed.Date.Before(before))
		assert.False(t, parsed.Date.After(time.Now()))
	})
}

func TestReadAndStarredFlags(t *testing.T) {
	msg := simpleMessage()
	msg.LabelIds = []string{"INBOX", "STARRED"}

	parsed, err := Parse(msg, 1000)
	require.NoError(t, err)
	assert.True(t, parsed.IsRead, "no UNREAD label means read")
	assert.True(t, parsed.IsStarred)
}

func TestBodyExtractionNestedMultipart(t *testing.T) {
	msg := simpleMessage()
	msg.Payload = &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Headers:  msg.Payload.Headers,
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encodeBody("first plain")}},
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encodeBody("<p>first html</p>")}},
				},
			},
			// Already found both leaves; these must be ignored.
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encodeBody("second plain")}},
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encodeBody("<p>second html</p>")}},
		},
	}

	parsed, err := Parse(msg, 1000)
	require.NoError(t, err)
	assert.Equal(t, "first plain", parsed.BodyText)
	assert.Equal(t, "<p>first html</p>", parsed.BodyHTML)
}

func TestBodyDecodingURLSafeAlphabet(t *testing.T) {
	// Content chosen so the standard encoding would contain '+' and '/'.
	content := "\xfb\xff\xfe subject???>>>"
	msg := simpleMessage()
	msg.Payload.Body = &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte(content))}

	parsed, err := Parse(msg, 1000)
	require.NoError(t, err)
	assert.Equal(t, content, parsed.BodyText)
}

func TestBodyDecodeFailureTolerated(t *testing.T) {
	msg := simpleMessage()
	msg.Payload = &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Headers:  msg.Payload.Headers,
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: "!!!not base64!!!"}},
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encodeBody("<p>ok</p>")}},
		},
	}

	parsed, err := Parse(msg, 1000)
	require.NoError(t, err, "decode failure must not fail the parse")
	assert.Empty(t, parsed.BodyText)
	assert.Equal(t, "<p>ok</p>", parsed.BodyHTML)
}

func TestTruncationLaw(t *testing.T) {
	body := strings.Repeat("a", 300) + strings.Repeat("z", 300)
	max := 100

	out := TruncateBody(body, max)

	elided := len(body) - max
	marker := TruncationMarker(elided)
	assert.Len(t, out, max+len(marker))
	assert.True(t, strings.HasPrefix(out, strings.Repeat("a", 50)))
	assert.True(t, strings.HasSuffix(out, strings.Repeat("z", 50)))
	assert.Contains(t, out, marker)
}

func TestTruncationOddBudget(t *testing.T) {
	body := "abcdefghij" // 10 chars
	out := TruncateBody(body, 7)

	// floor(7/2)=3 head, 4 tail
	marker := TruncationMarker(3)
	assert.Equal(t, "abc"+marker+"ghij", out)
}

func TestTruncationShortBodyUntouched(t *testing.T) {
	assert.Equal(t, "short", TruncateBody("short", 100))
	assert.Equal(t, "exact", TruncateBody("exact", 5))
}

func TestHTMLBodyNeverTruncated(t *testing.T) {
	longHTML := "<p>" + strings.Repeat("x", 5000) + "</p>"
	msg := simpleMessage()
	msg.Payload = &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Headers:  msg.Payload.Headers,
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encodeBody(strings.Repeat("t", 5000))}},
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encodeBody(longHTML)}},
		},
	}

	parsed, err := Parse(msg, 100)
	require.NoError(t, err)
	assert.Equal(t, longHTML, parsed.BodyHTML)
	assert.Less(t, len(parsed.BodyText), 5000)
}

package ai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/sirupsen/logrus"

	"ideabox/internal/metrics"
	"ideabox/internal/model"
)

const insightsSystemPrompt = `You are an email intelligence assistant. ` +
	`Classify the email, judge its urgency, summarize it in one or two sentences, ` +
	`and extract concrete action items (with due dates in YYYY-MM-DD form when the ` +
	`email states or clearly implies one) and any ideas worth capturing. ` +
	`Record your analysis by calling the provided function.`

// Insights is the structured output of one email analysis.
type Insights struct {
	Category string       `json:"category"`
	Urgency  string       `json:"urgency"`
	Summary  string       `json:"summary"`
	Actions  []ActionItem `json:"actions,omitempty"`
	Ideas    []string     `json:"ideas,omitempty"`
}

// ActionItem is one extracted task. DueDate is YYYY-MM-DD or empty.
type ActionItem struct {
	Description string `json:"description"`
	DueDate     string `json:"due_date,omitempty"`
}

// Analyzer extracts insights from synced emails.
type Analyzer struct {
	client  *Client
	metrics *metrics.Metrics
}

// NewAnalyzer creates an analyzer. metrics may be nil.
func NewAnalyzer(client *Client, m *metrics.Metrics) *Analyzer {
	return &Analyzer{client: client, metrics: m}
}

// AnalyzeEmail runs structured analysis over one message.
func (a *Analyzer) AnalyzeEmail(ctx context.Context, email *model.Email) (*Insights, error) {
	fn := insightsFunction()

	var insights Insights
	result, err := a.client.Analyze(ctx, insightsSystemPrompt, emailContent(email), fn, &insights)

	if a.metrics != nil {
		a.metrics.AIRequests.Inc()
		if err != nil {
			a.metrics.AIFailures.Inc()
		} else {
			a.metrics.AITokens.Add(float64(result.TotalTokens))
			a.metrics.AICost.Add(result.EstimatedCost)
		}
	}
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"message_id": email.MessageID,
		"category":   insights.Category,
		"tokens":     result.TotalTokens,
		"cost_usd":   result.EstimatedCost,
		"duration":   result.Duration,
	}).Debug("email analyzed")

	return &insights, nil
}

// emailContent formats the fields the model needs. Only the already-truncated
// text body is sent; HTML never reaches the model.
func emailContent(email *model.Email) string {
	return fmt.Sprintf("From: %s <%s>\nSubject: %s\nDate: %s\n\n%s",
		email.SenderName, email.SenderEmail, email.Subject,
		email.Date.Format(time.RFC1123Z), email.BodyText)
}

func insightsFunction() *openai.FunctionDefinition {
	return &openai.FunctionDefinition{
		Name:        "record_email_insights",
		Description: "Record the category, urgency, summary, action items, and ideas extracted from an email.",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"category": {
					Type: jsonschema.String,
					Enum: []string{"action_required", "idea", "newsletter", "personal", "notification", "promotional", "other"},
				},
				"urgency": {
					Type: jsonschema.String,
					Enum: []string{"high", "medium", "low"},
				},
				"summary": {
					Type:        jsonschema.String,
					Description: "One or two sentence summary of the email.",
				},
				"actions": {
					Type: jsonschema.Array,
					Items: &jsonschema.Definition{
						Type: jsonschema.Object,
						Properties: map[string]jsonschema.Definition{
							"description": {Type: jsonschema.String},
							"due_date": {
								Type:        jsonschema.String,
								Description: "Due date in YYYY-MM-DD form, omitted when unknown.",
							},
						},
						Required: []string{"description"},
					},
				},
				"ideas": {
					Type:  jsonschema.Array,
					Items: &jsonschema.Definition{Type: jsonschema.String},
				},
			},
			Required: []string{"category", "urgency", "summary"},
		},
	}
}

package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/ticketai/triage-service/internal/config"
)

const systemPrompt = `You triage customer support tickets.
Given a ticket title and description, judge:
- priority: one of "low", "medium", "high", "critical"
- helpfulNotes: a short note for the assignee on how to approach the ticket
- relatedSkills: a list of skill tags relevant to resolving it (e.g. "auth", "billing", "networking")

Respond with JSON only (no markdown):
{"priority": "high", "helpfulNotes": "...", "relatedSkills": ["auth"]}`

// AnthropicClassifier calls the Anthropic Messages API for triage judgements.
type AnthropicClassifier struct {
	client anthropic.Client
	cfg    config.ClassifierConfig
	logger *zap.Logger
}

// NewAnthropicClassifier builds the classifier from config.
func NewAnthropicClassifier(cfg config.ClassifierConfig, logger *zap.Logger) *AnthropicClassifier {
	return &AnthropicClassifier{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:    cfg,
		logger: logger,
	}
}

// Classify runs one bounded model call and parses its JSON response.
func (c *AnthropicClassifier) Classify(ctx context.Context, title, description string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	maxTokens := int64(c.cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	userPrompt := fmt.Sprintf("Title: %s\n\nDescription:\n%s", title, description)
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic call: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			c.logger.Debug("classifier response",
				zap.Int("size", len(block.Text)),
				zap.Int64("tokens_in", message.Usage.InputTokens),
				zap.Int64("tokens_out", message.Usage.OutputTokens))
			return ParseResult(block.Text)
		}
	}
	return nil, fmt.Errorf("no text content in classifier response")
}

// ParseResult decodes the model's JSON reply, tolerating markdown fences.
func ParseResult(responseText string) (*Result, error) {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var result Result
	if err := json.Unmarshal([]byte(responseText), &result); err != nil {
		return nil, fmt.Errorf("parsing classifier response: %w", err)
	}
	return &result, nil
}

package classify

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClassifier asks an Anthropic model whether a reply requests more
// input. Behaves like OpenAIClassifier: the explicit tag short-circuits the
// call and provider failures fall back to the keyword heuristic.
type AnthropicClassifier struct {
	client   *anthropic.Client
	fallback *KeywordClassifier
}

// NewAnthropicClassifier creates an Anthropic-backed classifier.
func NewAnthropicClassifier(apiKey string) (*AnthropicClassifier, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	return &AnthropicClassifier{
		client:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		fallback: NewKeywordClassifier(),
	}, nil
}

// Name returns the strategy name.
func (c *AnthropicClassifier) Name() string {
	return string(KindAnthropic)
}

// NeedsClarification classifies the response output text.
func (c *AnthropicClassifier) NeedsClarification(ctx context.Context, typeTag, output string) (bool, error) {
	if strings.EqualFold(typeTag, TypeClarification) {
		return true, nil
	}
	if output == "" {
		return false, nil
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F("claude-3-5-haiku-20241022"),
		MaxTokens: anthropic.F(int64(4)),
		Messages: anthropic.F([]anthropic.MessageParam{
			{
				Role: anthropic.F(anthropic.MessageParamRoleUser),
				Content: anthropic.F([]anthropic.ContentBlockParamUnion{
					anthropic.TextBlockParam{
						Type: anthropic.F(anthropic.TextBlockParamTypeText),
						Text: anthropic.F(classifierPrompt + output),
					},
				}),
			},
		}),
	})
	if err != nil {
		return c.fallback.NeedsClarification(ctx, typeTag, output)
	}

	var answer string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			answer += block.Text
		}
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(answer)), "YES"), nil
}

package classify

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const classifierPrompt = "You label automation replies. Answer with the single word " +
	"YES if the reply is asking the user for more information before it can " +
	"proceed, otherwise answer NO.\n\nReply:\n"

// OpenAIClassifier asks an OpenAI model whether a reply requests more input.
// The explicit clarification tag short-circuits the model call, and any
// provider failure falls back to the keyword heuristic so classification
// never hard-fails a dispatch.
type OpenAIClassifier struct {
	client   *openai.Client
	fallback *KeywordClassifier
}

// NewOpenAIClassifier creates an OpenAI-backed classifier.
func NewOpenAIClassifier(apiKey string) (*OpenAIClassifier, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	return &OpenAIClassifier{
		client:   openai.NewClient(apiKey),
		fallback: NewKeywordClassifier(),
	}, nil
}

// Name returns the strategy name.
func (c *OpenAIClassifier) Name() string {
	return string(KindOpenAI)
}

// NeedsClarification classifies the response output text.
func (c *OpenAIClassifier) NeedsClarification(ctx context.Context, typeTag, output string) (bool, error) {
	if strings.EqualFold(typeTag, TypeClarification) {
		return true, nil
	}
	if output == "" {
		return false, nil
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: "gpt-4o-mini",
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: classifierPrompt + output},
		},
		MaxTokens:   4,
		Temperature: 0,
	})
	if err != nil {
		return c.fallback.NeedsClarification(ctx, typeTag, output)
	}

	var answer string
	if len(resp.Choices) > 0 {
		answer = resp.Choices[0].Message.Content
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(answer)), "YES"), nil
}

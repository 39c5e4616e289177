// Package classify decides whether an automation response is asking the user
// for more input. The decision is a pluggable strategy so the default keyword
// heuristic can be swapped for an LLM-backed classifier without touching the
// dispatch control flow.
package classify

import (
	"context"
	"fmt"
)

// TypeClarification is the explicit response tag that marks a clarification.
const TypeClarification = "clarification"

// Classifier decides whether a response needs a clarification turn.
type Classifier interface {
	// NeedsClarification inspects the explicit type tag and the extracted
	// output text of an automation response.
	NeedsClarification(ctx context.Context, typeTag, output string) (bool, error)

	// Name returns the strategy name.
	Name() string
}

// Kind is the type of classifier strategy.
type Kind string

const (
	KindKeyword   Kind = "keyword"
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
)

// New creates a classifier for the given kind. The keyword heuristic is the
// default and needs no credentials.
func New(kind Kind, apiKey string) (Classifier, error) {
	switch kind {
	case KindKeyword, "":
		return NewKeywordClassifier(), nil
	case KindOpenAI:
		return NewOpenAIClassifier(apiKey)
	case KindAnthropic:
		return NewAnthropicClassifier(apiKey)
	default:
		return nil, fmt.Errorf("unknown classifier kind %q", kind)
	}
}

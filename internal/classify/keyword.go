package classify

import (
	"context"
	"strings"
)

// triggerPhrases are the case-insensitive fragments that mark an automation
// reply as a clarification question. The heuristic substitutes for a
// structured "needs more input" signal from the upstream workflow and
// tolerates false positives as harmless extra clarification turns.
var triggerPhrases = []string{
	"country code",
	"which country",
	"please specify",
	"need more information",
	"clarify",
}

// KeywordClassifier classifies by explicit type tag or trigger phrase.
type KeywordClassifier struct {
	phrases []string
}

// NewKeywordClassifier creates the default keyword classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{phrases: triggerPhrases}
}

// Name returns the strategy name.
func (c *KeywordClassifier) Name() string {
	return string(KindKeyword)
}

// NeedsClarification reports whether the response carries the explicit
// clarification tag or its output text contains a trigger phrase.
func (c *KeywordClassifier) NeedsClarification(ctx context.Context, typeTag, output string) (bool, error) {
	if strings.EqualFold(typeTag, TypeClarification) {
		return true, nil
	}
	lower := strings.ToLower(output)
	for _, phrase := range c.phrases {
		if strings.Contains(lower, phrase) {
			return true, nil
		}
	}
	return false, nil
}

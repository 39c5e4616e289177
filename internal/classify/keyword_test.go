package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		name    string
		typeTag string
		output  string
		want    bool
	}{
		{
			name:    "explicit tag without trigger text",
			typeTag: "clarification",
			output:  "Tell me more",
			want:    true,
		},
		{
			name:    "explicit tag is case-insensitive",
			typeTag: "Clarification",
			want:    true,
		},
		{
			name:   "please specify any case",
			output: "PLEASE SPECIFY the city you are interested in",
			want:   true,
		},
		{
			name:   "which country",
			output: "Which country should I search in?",
			want:   true,
		},
		{
			name:   "country code",
			output: "I need the country code for the phone search.",
			want:   true,
		},
		{
			name:   "need more information",
			output: "I need more information before continuing",
			want:   true,
		},
		{
			name:   "results notice is not a clarification",
			output: "Here are your 12 leads",
			want:   false,
		},
		{
			name: "empty response",
			want: false,
		},
	}

	c := NewKeywordClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.NeedsClarification(context.Background(), tt.typeTag, tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDefaultsToKeyword(t *testing.T) {
	c, err := New("", "")
	require.NoError(t, err)
	assert.Equal(t, "keyword", c.Name())

	_, err = New("bogus", "")
	assert.Error(t, err)
}

package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeepakChander/leadmaster-ai-web/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func TestSendCarriesBothNamingConventions(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"output":"Searching now"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL}, testLogger(t))
	res, err := c.Send(context.Background(), "tok-123", "coffee shops in Austin")
	require.NoError(t, err)

	assert.Equal(t, "coffee shops in Austin", got["chatInput"])
	assert.Equal(t, "coffee shops in Austin", got["message"])
	assert.Equal(t, "sendMessage", got["action"])
	assert.Equal(t, "tok-123", got["sessionId"])
	assert.Equal(t, "tok-123", got["session_id"])
	assert.NotContains(t, got, "is_follow_up")

	ts, ok := got["timestamp"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)

	assert.Equal(t, "Searching now", res.Output)
}

func TestSendFollowUpTagged(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL}, testLogger(t))
	_, err := c.SendFollowUp(context.Background(), "tok-123", "USA")
	require.NoError(t, err)

	assert.Equal(t, true, got["is_follow_up"])
}

func TestSendTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Timeout: 20 * time.Millisecond}, testLogger(t))
	_, err := c.Send(context.Background(), "tok", "query")

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSendNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL}, testLogger(t))
	_, err := c.Send(context.Background(), "tok", "query")

	assert.ErrorIs(t, err, ErrTransport)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestSendToleratesMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL}, testLogger(t))
	res, err := c.Send(context.Background(), "tok", "query")

	require.NoError(t, err)
	assert.Empty(t, res.Output)
	assert.Empty(t, res.Records)
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantType    string
		wantOutput  string
		wantRecords int
	}{
		{
			name:       "output key",
			body:       `{"output":"Which country?","type":"clarification"}`,
			wantType:   "clarification",
			wantOutput: "Which country?",
		},
		{
			name:       "message fallback",
			body:       `{"message":"hello"}`,
			wantOutput: "hello",
		},
		{
			name:       "text fallback",
			body:       `{"text":"hi"}`,
			wantOutput: "hi",
		},
		{
			name:        "records under leads",
			body:        `{"leads":[{"name":"A"},{"name":"B"}]}`,
			wantRecords: 2,
		},
		{
			name:        "records under items",
			body:        `{"items":[{"name":"A"}]}`,
			wantRecords: 1,
		},
		{
			name:        "top-level array",
			body:        `[{"name":"A"},{"name":"B"},{"name":"C"}]`,
			wantRecords: 3,
		},
		{
			name:        "non-object array entries skipped",
			body:        `{"data":[{"name":"A"},"junk",42]}`,
			wantRecords: 1,
		},
		{
			name: "empty body",
			body: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseResult([]byte(tt.body))
			assert.Equal(t, tt.wantType, res.Type)
			assert.Equal(t, tt.wantOutput, res.Output)
			assert.Len(t, res.Records, tt.wantRecords)
		})
	}
}

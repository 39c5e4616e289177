// Package webhook is the HTTP client for the external workflow automation
// endpoint. The automation is a black box: only its request/response contract
// matters here, and response bodies are parsed best-effort.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/DeepakChander/leadmaster-ai-web/pkg/logger"
)

// Dispatch errors surfaced to the user as notices.
var (
	// ErrTimeout marks a top-level dispatch that exceeded the client-side
	// deadline.
	ErrTimeout = errors.New("automation request timed out")

	// ErrTransport marks a network failure or non-success status.
	ErrTransport = errors.New("automation request failed")
)

// DefaultTimeout bounds top-level dispatch requests. Follow-up turns carry no
// explicit timeout.
const DefaultTimeout = 60 * time.Second

// Config holds webhook client configuration.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client sends queries and follow-up turns to the automation endpoint.
type Client struct {
	url      string
	dispatch *http.Client
	followUp *http.Client
	logger   *logger.Logger
}

// NewClient creates a webhook client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		url:      cfg.URL,
		dispatch: &http.Client{Timeout: timeout},
		followUp: &http.Client{},
		logger:   log,
	}
}

// request is the outbound payload. The user text and session token are each
// duplicated under a current and a legacy key for backward compatibility with
// the receiving workflow.
type request struct {
	ChatInput       string `json:"chatInput"`
	Message         string `json:"message"`
	Action          string `json:"action"`
	SessionID       string `json:"sessionId"`
	SessionIDLegacy string `json:"session_id"`
	Timestamp       string `json:"timestamp"`
	IsFollowUp      bool   `json:"is_follow_up,omitempty"`
}

// Send dispatches a top-level query, bounded by the configured timeout.
func (c *Client) Send(ctx context.Context, sessionToken, text string) (*Result, error) {
	return c.post(ctx, c.dispatch, sessionToken, text, false)
}

// SendFollowUp dispatches a clarification follow-up turn. No explicit timeout
// is applied beyond the caller's context.
func (c *Client) SendFollowUp(ctx context.Context, sessionToken, text string) (*Result, error) {
	return c.post(ctx, c.followUp, sessionToken, text, true)
}

func (c *Client) post(ctx context.Context, client *http.Client, sessionToken, text string, followUp bool) (*Result, error) {
	payload := request{
		ChatInput:       text,
		Message:         text,
		Action:          "sendMessage",
		SessionID:       sessionToken,
		SessionIDLegacy: sessionToken,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		IsFollowUp:      followUp,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal automation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build automation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("dispatching automation request",
		zap.String("session_id", sessionToken),
		zap.Bool("is_follow_up", followUp),
	)

	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		// The request succeeded; treat an unreadable body as absent.
		raw = nil
	}

	result := parseResult(raw)
	return &result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}

package model

import (
	"time"
)

// LeadEvent is a live lead delivered over the SSE stream.
type LeadEvent struct {
	Lead       Lead      `json:"lead"`
	SessionID  string    `json:"session_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// ErrorEvent represents an error surfaced on the SSE stream.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HeartbeatEvent represents a keep-alive event.
type HeartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

package model

import (
	"time"
)

// State represents the lifecycle state of the current query session.
type State string

const (
	StateIdle                  State = "idle"
	StateDispatching           State = "dispatching"
	StateStreaming             State = "streaming"
	StateAwaitingClarification State = "awaiting_clarification"
)

// Role represents the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one entry in the clarification transcript. Turns are
// append-only within a session; the transcript is reset when a new
// top-level query starts.
type ChatTurn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionView is a read-only snapshot of the current session.
type SessionView struct {
	Token      string     `json:"session_id,omitempty"`
	State      State      `json:"state"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	Transcript []ChatTurn `json:"transcript,omitempty"`
	Typing     bool       `json:"typing"`
	LeadCount  int        `json:"lead_count"`
}

// SubmitQueryRequest is the request to submit a new top-level query.
type SubmitQueryRequest struct {
	Query string `json:"query"`
}

// FollowUpRequest is the request to answer an open clarification question.
type FollowUpRequest struct {
	Message string `json:"message"`
}

// DispatchResponse is the response after a query or follow-up dispatch.
type DispatchResponse struct {
	SessionID string `json:"session_id"`
	Status    State  `json:"status"`
	Reply     string `json:"reply,omitempty"`
	Notice    string `json:"notice,omitempty"`
}

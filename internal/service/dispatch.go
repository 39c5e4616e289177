// Package service provides the query dispatch and clarification dialogue
// state machine.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DeepakChander/leadmaster-ai-web/internal/classify"
	leadpkg "github.com/DeepakChander/leadmaster-ai-web/internal/lead"
	"github.com/DeepakChander/leadmaster-ai-web/internal/model"
	"github.com/DeepakChander/leadmaster-ai-web/internal/webhook"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/logger"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/metrics"
)

// Dispatch errors surfaced as user-visible notices.
var (
	// ErrEmptyQuery marks an empty or whitespace-only query. No session is
	// created and no subscription is opened.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrNoDialogue marks a follow-up sent while no clarification dialogue
	// is active.
	ErrNoDialogue = errors.New("no clarification dialogue is active")

	// ErrSuperseded marks an in-flight request whose session was replaced
	// by a newer query before it resolved. Its result is discarded.
	ErrSuperseded = errors.New("session superseded by a newer query")
)

const (
	defaultClarificationPrompt = "Could you share a bit more detail so I can continue the search?"
	apologyTurn                = "Sorry, something went wrong on my end. Please try sending that again."
	streamingNotice            = "Query accepted. Leads will stream in as they are found."
)

// Automation is the outbound contract to the external workflow endpoint.
type Automation interface {
	Send(ctx context.Context, sessionToken, text string) (*webhook.Result, error)
	SendFollowUp(ctx context.Context, sessionToken, text string) (*webhook.Result, error)
}

// Ingestor is the session-scoped realtime lead subscription.
type Ingestor interface {
	Start(ctx context.Context, token string, start time.Time) error
	Stop()
	Add(token string, leads []model.Lead)
	Leads() []model.Lead
	Count() int
}

// sessionState is the explicitly owned state of the current query session.
// Exactly one session is current at a time; a new Submit replaces it.
type sessionState struct {
	token      string
	startedAt  time.Time
	state      model.State
	transcript []model.ChatTurn
	typing     bool
}

// Dispatcher drives the life of one top-level query:
// Idle → Dispatching → {Streaming | AwaitingClarification} → Idle.
type Dispatcher struct {
	automation Automation
	classifier classify.Classifier
	ingest     Ingestor
	logger     *logger.Logger

	mu   sync.Mutex
	sess *sessionState
}

// NewDispatcher creates a query dispatcher.
func NewDispatcher(automation Automation, classifier classify.Classifier, ingest Ingestor, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		automation: automation,
		classifier: classifier,
		ingest:     ingest,
		logger:     log,
	}
}

// Submit starts a new query session and dispatches it to the automation
// endpoint. The previous session's subscription is torn down and its
// in-memory state discarded before the new one opens.
func (d *Dispatcher) Submit(ctx context.Context, query string) (*model.DispatchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	token := uuid.Must(uuid.NewV7()).String()
	now := time.Now()

	d.mu.Lock()
	d.sess = &sessionState{token: token, startedAt: now, state: model.StateDispatching}
	d.mu.Unlock()

	if err := d.ingest.Start(ctx, token, now); err != nil {
		d.settle(token, model.StateIdle)
		return nil, err
	}

	begin := time.Now()
	res, err := d.automation.Send(ctx, token, query)
	elapsed := time.Since(begin).Seconds()

	if err != nil {
		outcome := metrics.OutcomeTransport
		if errors.Is(err, webhook.ErrTimeout) {
			outcome = metrics.OutcomeTimeout
		}
		if !d.settle(token, model.StateIdle) {
			metrics.RecordDispatch("query", metrics.OutcomeSuperseded, elapsed)
			return nil, ErrSuperseded
		}
		metrics.RecordDispatch("query", outcome, elapsed)
		d.logger.Warn("query dispatch failed", zap.String("session_id", token), zap.Error(err))
		return nil, err
	}

	// Lead records carried directly in the response body join the session
	// list immediately; nameless records are dropped. Add is token-scoped,
	// so a superseded response cannot pollute a newer session.
	if leads := leadpkg.NormalizeAll(res.Records); len(leads) > 0 {
		d.ingest.Add(token, leads)
	}

	needs := d.classify(ctx, res)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess == nil || d.sess.token != token {
		metrics.RecordDispatch("query", metrics.OutcomeSuperseded, elapsed)
		return nil, ErrSuperseded
	}

	if needs {
		reply := res.Output
		if reply == "" {
			reply = defaultClarificationPrompt
		}
		d.appendTurnLocked(model.RoleAssistant, reply)
		d.sess.state = model.StateAwaitingClarification
		metrics.RecordDispatch("query", metrics.OutcomeClarification, elapsed)
		return &model.DispatchResponse{
			SessionID: token,
			Status:    model.StateAwaitingClarification,
			Reply:     reply,
		}, nil
	}

	d.sess.state = model.StateStreaming
	metrics.RecordDispatch("query", metrics.OutcomeStreaming, elapsed)
	return &model.DispatchResponse{
		SessionID: token,
		Status:    model.StateStreaming,
		Reply:     res.Output,
		Notice:    streamingNotice,
	}, nil
}

// FollowUp answers an open clarification question. The user turn is appended
// optimistically before the network call and the typing flag is cleared on
// every exit path. A failed follow-up surfaces as an apology turn without
// changing session state; the user may retry manually.
func (d *Dispatcher) FollowUp(ctx context.Context, message string) (*model.DispatchResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyQuery
	}

	d.mu.Lock()
	if d.sess == nil || d.sess.state != model.StateAwaitingClarification {
		d.mu.Unlock()
		return nil, ErrNoDialogue
	}
	token := d.sess.token
	d.appendTurnLocked(model.RoleUser, message)
	d.sess.typing = true
	d.mu.Unlock()

	begin := time.Now()
	res, err := d.automation.SendFollowUp(ctx, token, message)
	elapsed := time.Since(begin).Seconds()

	var needs bool
	if err == nil {
		needs = d.classify(ctx, res)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess == nil || d.sess.token != token {
		metrics.RecordDispatch("follow_up", metrics.OutcomeSuperseded, elapsed)
		return nil, ErrSuperseded
	}
	d.sess.typing = false

	if err != nil {
		d.appendTurnLocked(model.RoleAssistant, apologyTurn)
		metrics.RecordDispatch("follow_up", metrics.OutcomeTransport, elapsed)
		d.logger.Warn("follow-up dispatch failed", zap.String("session_id", token), zap.Error(err))
		return &model.DispatchResponse{
			SessionID: token,
			Status:    model.StateAwaitingClarification,
			Reply:     apologyTurn,
		}, nil
	}

	if needs {
		reply := res.Output
		if reply == "" {
			reply = defaultClarificationPrompt
		}
		d.appendTurnLocked(model.RoleAssistant, reply)
		metrics.RecordDispatch("follow_up", metrics.OutcomeClarification, elapsed)
		return &model.DispatchResponse{
			SessionID: token,
			Status:    model.StateAwaitingClarification,
			Reply:     reply,
		}, nil
	}

	d.sess.state = model.StateStreaming
	if res.Output != "" {
		d.appendTurnLocked(model.RoleAssistant, res.Output)
	}
	metrics.RecordDispatch("follow_up", metrics.OutcomeStreaming, elapsed)
	return &model.DispatchResponse{
		SessionID: token,
		Status:    model.StateStreaming,
		Reply:     res.Output,
		Notice:    streamingNotice,
	}, nil
}

// Session returns a read-only snapshot of the current session.
func (d *Dispatcher) Session() model.SessionView {
	d.mu.Lock()
	defer d.mu.Unlock()

	view := model.SessionView{State: model.StateIdle, LeadCount: d.ingest.Count()}
	if d.sess == nil {
		return view
	}

	view.Token = d.sess.token
	view.State = d.sess.state
	started := d.sess.startedAt
	view.StartedAt = &started
	view.Typing = d.sess.typing
	view.Transcript = make([]model.ChatTurn, len(d.sess.transcript))
	copy(view.Transcript, d.sess.transcript)
	return view
}

// Close releases the ingestion subscription on final teardown.
func (d *Dispatcher) Close() {
	d.ingest.Stop()
}

func (d *Dispatcher) classify(ctx context.Context, res *webhook.Result) bool {
	needs, err := d.classifier.NeedsClarification(ctx, res.Type, res.Output)
	if err != nil {
		// A broken classifier must not fail the dispatch; treat the
		// response as accepted.
		d.logger.Warn("classification failed", zap.Error(err))
		return false
	}
	return needs
}

// settle moves the session identified by token to the given state. Returns
// false when that session is no longer current, in which case nothing is
// changed and the caller must discard its result.
func (d *Dispatcher) settle(token string, state model.State) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess == nil || d.sess.token != token {
		return false
	}
	d.sess.state = state
	return true
}

func (d *Dispatcher) appendTurnLocked(role model.Role, text string) {
	d.sess.transcript = append(d.sess.transcript, model.ChatTurn{
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	})
	metrics.ClarificationTurnsTotal.WithLabelValues(string(role)).Inc()
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeepakChander/leadmaster-ai-web/internal/classify"
	"github.com/DeepakChander/leadmaster-ai-web/internal/model"
	"github.com/DeepakChander/leadmaster-ai-web/internal/webhook"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/logger"
)

// scripted is one canned automation exchange.
type scripted struct {
	result *webhook.Result
	err    error
	block  chan struct{} // when set, Send blocks until closed
}

// fakeAutomation replays scripted exchanges in order.
type fakeAutomation struct {
	mu      sync.Mutex
	script  []scripted
	calls   int
	started chan struct{}
}

func (f *fakeAutomation) next() scripted {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()
	if i >= len(f.script) {
		return scripted{result: &webhook.Result{}}
	}
	return f.script[i]
}

func (f *fakeAutomation) Send(ctx context.Context, token, text string) (*webhook.Result, error) {
	s := f.next()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	return s.result, s.err
}

func (f *fakeAutomation) SendFollowUp(ctx context.Context, token, text string) (*webhook.Result, error) {
	return f.Send(ctx, token, text)
}

// fakeIngest records lifecycle calls.
type fakeIngest struct {
	mu     sync.Mutex
	starts []string
	stops  int
	added  map[string][]model.Lead
}

func (f *fakeIngest) Start(ctx context.Context, token string, start time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, token)
	return nil
}

func (f *fakeIngest) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeIngest) Add(token string, leads []model.Lead) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.added == nil {
		f.added = map[string][]model.Lead{}
	}
	f.added[token] = append(f.added[token], leads...)
}

func (f *fakeIngest) Leads() []model.Lead { return nil }
func (f *fakeIngest) Count() int          { return 0 }

func newTestDispatcher(t *testing.T, auto *fakeAutomation) (*Dispatcher, *fakeIngest) {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	ing := &fakeIngest{}
	return NewDispatcher(auto, classify.NewKeywordClassifier(), ing, log), ing
}

func TestSubmitEmptyQuery(t *testing.T) {
	d, ing := newTestDispatcher(t, &fakeAutomation{})

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := d.Submit(context.Background(), q)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}

	// No session was created and no subscription opened.
	assert.Empty(t, ing.starts)
	assert.Equal(t, model.StateIdle, d.Session().State)
}

func TestSubmitClarificationThenClose(t *testing.T) {
	auto := &fakeAutomation{script: []scripted{
		{result: &webhook.Result{Type: "clarification", Output: "Which country?"}},
		{result: &webhook.Result{Output: "Searching now"}},
	}}
	d, _ := newTestDispatcher(t, auto)

	resp, err := d.Submit(context.Background(), "coffee shops in Austin")
	require.NoError(t, err)
	assert.Equal(t, model.StateAwaitingClarification, resp.Status)
	assert.Equal(t, "Which country?", resp.Reply)

	view := d.Session()
	require.Len(t, view.Transcript, 1)
	assert.Equal(t, model.RoleAssistant, view.Transcript[0].Role)
	assert.Equal(t, "Which country?", view.Transcript[0].Text)
	assert.False(t, view.Typing)

	resp, err = d.FollowUp(context.Background(), "USA")
	require.NoError(t, err)
	assert.Equal(t, model.StateStreaming, resp.Status)

	view = d.Session()
	require.Len(t, view.Transcript, 3)
	assert.Equal(t, model.RoleUser, view.Transcript[1].Role)
	assert.Equal(t, "USA", view.Transcript[1].Text)
	assert.Equal(t, "Searching now", view.Transcript[2].Text)
	assert.False(t, view.Typing)
}

func TestSubmitTriggerPhraseWithoutTag(t *testing.T) {
	auto := &fakeAutomation{script: []scripted{
		{result: &webhook.Result{Output: "Please specify the city."}},
	}}
	d, _ := newTestDispatcher(t, auto)

	resp, err := d.Submit(context.Background(), "restaurants")
	require.NoError(t, err)
	assert.Equal(t, model.StateAwaitingClarification, resp.Status)
}

func TestSubmitEmptyResponseIsAccepted(t *testing.T) {
	auto := &fakeAutomation{script: []scripted{
		{result: &webhook.Result{}},
	}}
	d, _ := newTestDispatcher(t, auto)

	resp, err := d.Submit(context.Background(), "coffee shops in Austin")
	require.NoError(t, err)
	assert.Equal(t, model.StateStreaming, resp.Status)
	assert.Equal(t, streamingNotice, resp.Notice)
	assert.Empty(t, d.Session().Transcript)
}

func TestSubmitTimeout(t *testing.T) {
	auto := &fakeAutomation{script: []scripted{
		{err: webhook.ErrTimeout},
	}}
	d, _ := newTestDispatcher(t, auto)

	_, err := d.Submit(context.Background(), "slow query")
	assert.ErrorIs(t, err, webhook.ErrTimeout)
	assert.Equal(t, model.StateIdle, d.Session().State)
}

func TestSubmitTransportError(t *testing.T) {
	auto := &fakeAutomation{script: []scripted{
		{err: webhook.ErrTransport},
	}}
	d, _ := newTestDispatcher(t, auto)

	_, err := d.Submit(context.Background(), "query")
	assert.ErrorIs(t, err, webhook.ErrTransport)
	assert.Equal(t, model.StateIdle, d.Session().State)
}

func TestSubmitAddsResponseLeads(t *testing.T) {
	auto := &fakeAutomation{script: []scripted{
		{result: &webhook.Result{Records: []map[string]any{
			{"name": "Named Cafe"},
			{"address": "nameless, dropped"},
		}}},
	}}
	d, ing := newTestDispatcher(t, auto)

	resp, err := d.Submit(context.Background(), "cafes")
	require.NoError(t, err)

	added := ing.added[resp.SessionID]
	require.Len(t, added, 1)
	assert.Equal(t, "Named Cafe", added[0].Name)
}

func TestNewQueryResetsTranscriptAndReopensSubscription(t *testing.T) {
	auto := &fakeAutomation{script: []scripted{
		{result: &webhook.Result{Type: "clarification", Output: "Which country?"}},
		{result: &webhook.Result{}},
	}}
	d, ing := newTestDispatcher(t, auto)

	_, err := d.Submit(context.Background(), "first query")
	require.NoError(t, err)
	require.Len(t, d.Session().Transcript, 1)

	resp, err := d.Submit(context.Background(), "second query")
	require.NoError(t, err)

	assert.Empty(t, d.Session().Transcript)
	assert.Equal(t, model.StateStreaming, d.Session().State)
	require.Len(t, ing.starts, 2)
	assert.Equal(t, resp.SessionID, ing.starts[1])
}

func TestFollowUpWithoutDialogue(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeAutomation{})

	_, err := d.FollowUp(context.Background(), "USA")
	assert.ErrorIs(t, err, ErrNoDialogue)
}

func TestFollowUpFailureAppendsApology(t *testing.T) {
	auto := &fakeAutomation{script: []scripted{
		{result: &webhook.Result{Type: "clarification", Output: "Which country?"}},
		{err: webhook.ErrTransport},
	}}
	d, _ := newTestDispatcher(t, auto)

	_, err := d.Submit(context.Background(), "query")
	require.NoError(t, err)

	resp, err := d.FollowUp(context.Background(), "USA")
	require.NoError(t, err)
	assert.Equal(t, model.StateAwaitingClarification, resp.Status)

	view := d.Session()
	// Assistant question, optimistic user turn, apology turn.
	require.Len(t, view.Transcript, 3)
	assert.Equal(t, apologyTurn, view.Transcript[2].Text)
	assert.Equal(t, model.StateAwaitingClarification, view.State)
	assert.False(t, view.Typing)
}

func TestFollowUpStaysOpenOnRepeatedClarification(t *testing.T) {
	auto := &fakeAutomation{script: []scripted{
		{result: &webhook.Result{Type: "clarification", Output: "Which country?"}},
		{result: &webhook.Result{Output: "Could you clarify the region?"}},
	}}
	d, _ := newTestDispatcher(t, auto)

	_, err := d.Submit(context.Background(), "query")
	require.NoError(t, err)

	resp, err := d.FollowUp(context.Background(), "somewhere")
	require.NoError(t, err)
	assert.Equal(t, model.StateAwaitingClarification, resp.Status)
	assert.Len(t, d.Session().Transcript, 3)
	assert.False(t, d.Session().Typing)
}

func TestStaleSubmitDiscardedAfterNewerSession(t *testing.T) {
	release := make(chan struct{})
	auto := &fakeAutomation{
		started: make(chan struct{}, 2),
		script: []scripted{
			{result: &webhook.Result{Output: "late reply"}, block: release},
			{result: &webhook.Result{}},
		},
	}
	d, _ := newTestDispatcher(t, auto)

	errs := make(chan error, 1)
	go func() {
		_, err := d.Submit(context.Background(), "first query")
		errs <- err
	}()
	<-auto.started // first request is in flight

	resp, err := d.Submit(context.Background(), "second query")
	require.NoError(t, err)
	<-auto.started

	close(release) // let the stale request resolve

	assert.ErrorIs(t, <-errs, ErrSuperseded)

	// The newer session's state was not disturbed by the stale response.
	view := d.Session()
	assert.Equal(t, resp.SessionID, view.Token)
	assert.Equal(t, model.StateStreaming, view.State)
	assert.Empty(t, view.Transcript)
}

func TestCloseStopsIngestion(t *testing.T) {
	d, ing := newTestDispatcher(t, &fakeAutomation{})
	d.Close()
	assert.Equal(t, 1, ing.stops)
}

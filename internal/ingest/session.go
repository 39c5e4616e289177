// Package ingest owns the session-scoped realtime lead subscription. One
// session binds an outbound query to the inbound stream of asynchronously
// arriving lead rows; starting a new session tears the previous subscription
// down so stale rows can never leak into the new session's list.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	leadpkg "github.com/DeepakChander/leadmaster-ai-web/internal/lead"
	"github.com/DeepakChander/leadmaster-ai-web/internal/model"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/logger"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/metrics"
)

// InsertSource delivers lead row insert events from a start time onward.
// Satisfied by the JetStream StreamManager.
type InsertSource interface {
	SubscribeInserts(ctx context.Context, start time.Time, handler func(row map[string]any)) (stop func(), err error)
}

// Manager owns the current ingestion session and fans accepted leads out to
// watchers. At most one session is live at a time.
type Manager struct {
	source InsertSource
	logger *logger.Logger

	mu          sync.Mutex
	current     *session
	watchers    map[uint64]chan model.Lead
	nextWatcher uint64
}

// session is the state bound to one query session.
type session struct {
	token     string
	startedAt time.Time
	stop      func()

	mu    sync.Mutex
	leads []model.Lead
}

// NewManager creates an ingestion manager.
func NewManager(source InsertSource, log *logger.Logger) *Manager {
	return &Manager{
		source:   source,
		logger:   log,
		watchers: make(map[uint64]chan model.Lead),
	}
}

// Start tears down any previous subscription, clears the lead list, and opens
// a new subscription scoped to the given session.
func (m *Manager) Start(ctx context.Context, token string, start time.Time) error {
	m.mu.Lock()
	if prev := m.current; prev != nil && prev.stop != nil {
		prev.stop()
	}
	s := &session{token: token, startedAt: start}
	m.current = s
	m.mu.Unlock()

	stop, err := m.source.SubscribeInserts(ctx, start, func(row map[string]any) {
		m.deliver(s, row)
	})
	if err != nil {
		return fmt.Errorf("failed to open lead subscription: %w", err)
	}

	m.mu.Lock()
	if m.current == s {
		s.stop = stop
	} else {
		// A newer session raced us; release the freshly opened subscription.
		stop()
	}
	m.mu.Unlock()

	m.logger.Info("ingestion session started",
		zap.String("session_id", token),
		zap.Time("session_start", start),
	)
	return nil
}

// Stop releases the current subscription. Called on final teardown.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.stop != nil {
		m.current.stop()
		m.current.stop = nil
	}
}

// deliver normalizes an insert event and accepts it into the session's list
// when the row's own creation timestamp is unavailable or not older than the
// session start. The timestamp guard covers the teardown/setup race where a
// stale-session insert is delivered after the new session opened.
func (m *Manager) deliver(s *session, row map[string]any) {
	if createdAt, ok := rowCreatedAt(row); ok && createdAt.Before(s.startedAt) {
		metrics.LeadsDroppedTotal.Inc()
		return
	}

	l := leadpkg.Normalize(row)

	s.mu.Lock()
	s.leads = append([]model.Lead{l}, s.leads...)
	s.mu.Unlock()

	metrics.LeadsIngestedTotal.WithLabelValues("realtime").Inc()
	m.broadcast(s, l)
}

// Add inserts leads that arrived directly in an automation response, newest
// first, preserving the batch's internal order at the top of the list.
func (m *Manager) Add(token string, leads []model.Lead) {
	m.mu.Lock()
	s := m.current
	m.mu.Unlock()
	if s == nil || s.token != token || len(leads) == 0 {
		return
	}

	s.mu.Lock()
	merged := make([]model.Lead, 0, len(leads)+len(s.leads))
	merged = append(merged, leads...)
	merged = append(merged, s.leads...)
	s.leads = merged
	s.mu.Unlock()

	metrics.LeadsIngestedTotal.WithLabelValues("response").Add(float64(len(leads)))
	for _, l := range leads {
		m.broadcast(s, l)
	}
}

// Leads returns a snapshot of the current session's list, newest first.
func (m *Manager) Leads() []model.Lead {
	m.mu.Lock()
	s := m.current
	m.mu.Unlock()
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

// Count returns the current session's lead count.
func (m *Manager) Count() int {
	m.mu.Lock()
	s := m.current
	m.mu.Unlock()
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

// Watch registers a live lead feed. Watchers outlive session replacement; the
// cancel function must be called when the consumer goes away.
func (m *Manager) Watch() (<-chan model.Lead, func()) {
	ch := make(chan model.Lead, 16)

	m.mu.Lock()
	id := m.nextWatcher
	m.nextWatcher++
	m.watchers[id] = ch
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		delete(m.watchers, id)
		m.mu.Unlock()
	}
	return ch, cancel
}

// broadcast sends an accepted lead to all watchers of the current session.
// Slow watchers are skipped rather than blocked on.
func (m *Manager) broadcast(s *session, l model.Lead) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != s {
		return
	}
	for _, ch := range m.watchers {
		select {
		case ch <- l:
		default:
		}
	}
}

// rowCreatedAt extracts the row's own creation timestamp.
func rowCreatedAt(row map[string]any) (time.Time, bool) {
	v, ok := row["created_at"].(string)
	if !ok || v == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999-07", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

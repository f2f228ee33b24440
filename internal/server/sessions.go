package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khanglvm/duriancare/internal/capture"
)

type session struct {
	pipeline *capture.Pipeline
	lastUsed time.Time
}

// sessionTable holds in-progress capture sessions by id.
type sessionTable struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]*session
}

func newSessionTable(ttl time.Duration) *sessionTable {
	return &sessionTable{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]*session),
	}
}

func (t *sessionTable) add(p *capture.Pipeline) string {
	id := uuid.NewString()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[id] = &session{pipeline: p, lastUsed: t.now()}
	return id
}

func (t *sessionTable) get(id string) (*capture.Pipeline, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.items[id]
	if !ok {
		return nil, false
	}
	s.lastUsed = t.now()
	return s.pipeline, true
}

// remove drops the session without touching its pipeline.
func (t *sessionTable) remove(id string) (*capture.Pipeline, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.items[id]
	if !ok {
		return nil, false
	}
	delete(t.items, id)
	return s.pipeline, true
}

// sweep resets and drops sessions idle for longer than the ttl.
func (t *sessionTable) sweep() int {
	t.mu.Lock()
	var expired []*capture.Pipeline
	cutoff := t.now().Add(-t.ttl)
	for id, s := range t.items {
		if s.lastUsed.Before(cutoff) {
			expired = append(expired, s.pipeline)
			delete(t.items, id)
		}
	}
	t.mu.Unlock()

	for _, p := range expired {
		p.Reset()
	}
	return len(expired)
}

// clear resets and drops every session.
func (t *sessionTable) clear() {
	t.mu.Lock()
	items := t.items
	t.items = make(map[string]*session)
	t.mu.Unlock()

	for _, s := range items {
		s.pipeline.Reset()
	}
}

func (t *sessionTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

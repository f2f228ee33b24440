/*
Package history browses and prunes the stored assessments.

A Manager lists records newest first, filters them by a free-text query,
keeps an in-memory multi-selection and deletes records after the user
confirms. Deletes go through the store's Remove so the read, filter and
write happen under the store's lock.
*/
package history

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/khanglvm/duriancare/internal/ripeness"
	"github.com/khanglvm/duriancare/internal/search"
	"github.com/khanglvm/duriancare/internal/storage"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrDeclined is returned when the user declines a delete. Nothing is
	// changed.
	ErrDeclined = errors.New("deletion declined")
)

// Prompts shown before a delete.
const (
	DeleteOnePrompt      = "Permanently delete this assessment?"
	deleteSelectedPrompt = "Delete %d selected scans?"
)

// DeleteSelectedPrompt returns the prompt for deleting n records.
func DeleteSelectedPrompt(n int) string {
	return fmt.Sprintf(deleteSelectedPrompt, n)
}

// Store is the part of the record store history needs.
type Store interface {
	Load() []storage.Record

	// Remove deletes the records with the given ids in one write and
	// returns how many were removed.
	Remove(ids ...int64) (int, error)

	// Available reports whether the store can be read.
	Available() bool
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })

// Manager serves the history views.
type Manager struct {
	store Store
	index *search.Index

	mu       sync.Mutex
	selected map[int64]struct{}
}

// NewManager creates a manager. index may be nil, in which case queries
// are matched by a linear scan.
func NewManager(store Store, index *search.Index) *Manager {
	return &Manager{
		store:    store,
		index:    index,
		selected: make(map[int64]struct{}),
	}
}

// List returns the records whose result, date or variety contain query,
// ignoring case, ordered newest first. An empty query returns everything.
// The query is matched as typed, surrounding spaces included.
func (m *Manager) List(query string) []storage.Record {
	records := m.store.Load()

	var out []storage.Record
	if query == "" {
		out = records
	} else if matched, ok := m.searchIndex(records, query); ok {
		out = matched
	} else {
		for _, r := range records {
			if matches(r, query) {
				out = append(out, r)
			}
		}
	}

	sortNewestFirst(out)
	if out == nil {
		out = []storage.Record{}
	}
	return out
}

// searchIndex resolves query through the bleve index. It reports false
// when the index is missing or cannot answer the query.
func (m *Manager) searchIndex(records []storage.Record, query string) ([]storage.Record, bool) {
	if m.index == nil {
		return nil, false
	}

	if err := m.index.Sync(records); err != nil {
		log.Printf("Warning: failed to sync history index: %v", err)
		return nil, false
	}

	ids, err := m.index.Match(query)
	if err != nil {
		if !errors.Is(err, search.ErrUnsupportedQuery) {
			log.Printf("Warning: history search failed, scanning instead: %v", err)
		}
		return nil, false
	}

	hit := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		hit[id] = struct{}{}
	}

	var out []storage.Record
	for _, r := range records {
		if _, ok := hit[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out, true
}

func matches(r storage.Record, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(string(r.Result)), q) ||
		strings.Contains(strings.ToLower(r.Date), q) ||
		strings.Contains(strings.ToLower(r.Variety), q)
}

func sortNewestFirst(records []storage.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ID > records[j].ID
	})
}

// Get returns the record with the given id.
func (m *Manager) Get(id int64) (storage.Record, error) {
	for _, r := range m.store.Load() {
		if r.ID == id {
			return r, nil
		}
	}
	return storage.Record{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// ToggleSelect adds id to the selection or removes it, and reports whether
// it is selected afterwards.
func (m *Manager) ToggleSelect(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
		return false
	}
	m.selected[id] = struct{}{}
	return true
}

// IsSelected reports whether id is selected.
func (m *Manager) IsSelected(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.selected[id]
	return ok
}

// Selected returns the selected ids, largest first.
func (m *Manager) Selected() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(m.selected))
	for id := range m.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids
}

// ClearSelection empties the selection.
func (m *Manager) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = make(map[int64]struct{})
}

// DeleteOne removes a single record once c confirms.
func (m *Manager) DeleteOne(id int64, c Confirmer) error {
	if !m.stored(id) {
		if !m.store.Available() {
			return fmt.Errorf("delete record %d: %w", id, storage.ErrStorageUnavailable)
		}
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	if !confirm(c, DeleteOnePrompt) {
		return ErrDeclined
	}

	n, err := m.store.Remove(id)
	if err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}

	m.mu.Lock()
	delete(m.selected, id)
	m.mu.Unlock()

	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

func (m *Manager) stored(id int64) bool {
	for _, r := range m.store.Load() {
		if r.ID == id {
			return true
		}
	}
	return false
}

// DeleteSelected removes every record in ids with one write once c
// confirms, then clears the selection. Ids that are not stored are
// ignored; if none are stored nothing is written. It returns the number
// of records removed.
func (m *Manager) DeleteSelected(ids []int64, c Confirmer) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	if !confirm(c, DeleteSelectedPrompt(len(ids))) {
		return 0, ErrDeclined
	}

	removed, err := m.store.Remove(ids...)
	if err != nil {
		return 0, fmt.Errorf("delete %d records: %w", len(ids), err)
	}

	m.ClearSelection()
	return removed, nil
}

// DeleteSelection deletes the current selection.
func (m *Manager) DeleteSelection(c Confirmer) (int, error) {
	return m.DeleteSelected(m.Selected(), c)
}

func confirm(c Confirmer, prompt string) bool {
	if c == nil {
		return false
	}
	return c.Confirm(prompt)
}

// Summary is the dashboard view of the history.
type Summary struct {
	Total  int                     `json:"total"`
	Counts map[ripeness.Status]int `json:"counts"`
	Recent []storage.Record        `json:"recent"`
}

// Summary counts records per status and returns up to recent of the
// newest records.
func (m *Manager) Summary(recent int) Summary {
	records := m.List("")

	s := Summary{
		Total:  len(records),
		Counts: make(map[ripeness.Status]int, len(ripeness.Statuses)),
	}
	for _, st := range ripeness.Statuses {
		s.Counts[st] = 0
	}
	for _, r := range records {
		s.Counts[r.Result]++
	}

	if recent < 0 {
		recent = 0
	}
	if recent > len(records) {
		recent = len(records)
	}
	s.Recent = records[:recent]
	return s
}

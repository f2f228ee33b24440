package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
)

const (
	// HistoryKey holds the JSON array of records.
	HistoryKey = "durian_history"

	// OnboardedKey is present once onboarding has completed.
	OnboardedKey = "durian_onboarded"
)

// RecordStore owns every read and write of assessment records.
//
// Each mutation loads the whole collection, changes it in memory and writes
// the complete serialized collection back. The mutex serializes writers in
// one process; separate processes sharing a database can still race.
type RecordStore struct {
	kv Substrate
	mu sync.Mutex
}

// NewRecordStore creates a record store on top of a substrate.
func NewRecordStore(kv Substrate) *RecordStore {
	return &RecordStore{kv: kv}
}

// Load returns every valid persisted record in storage order.
//
// Missing, unreadable or unparseable data yields an empty slice. Entries that
// fail to parse or validate, and repeated ids, are skipped.
func (s *RecordStore) Load() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *RecordStore) load() []Record {
	records, err := s.read()
	if err != nil {
		log.Printf("Warning: failed to read history: %v", err)
		return []Record{}
	}
	return records
}

// read is load for mutations: a substrate failure is returned instead of
// being treated as an empty history. Callers hold s.mu.
func (s *RecordStore) read() ([]Record, error) {
	raw, ok, err := s.kv.Get(HistoryKey)
	if err != nil {
		if errors.Is(err, ErrStorageUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read history: %v", ErrStorageUnavailable, err)
	}
	if !ok || raw == "" {
		return []Record{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Printf("Warning: history is not a JSON array, treating as empty: %v", err)
		return []Record{}, nil
	}

	records := make([]Record, 0, len(entries))
	seen := make(map[int64]struct{}, len(entries))
	for i, entry := range entries {
		var rec Record
		if err := json.Unmarshal(entry, &rec); err != nil {
			log.Printf("Warning: skipping history entry %d: %v: %v", i, ErrMalformedRecord, err)
			continue
		}
		if err := rec.Validate(); err != nil {
			log.Printf("Warning: skipping history entry %d: %v", i, err)
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			log.Printf("Warning: skipping history entry %d: %v %d", i, ErrDuplicateID, rec.ID)
			continue
		}
		seen[rec.ID] = struct{}{}
		records = append(records, rec)
	}

	return records, nil
}

// Available reports whether the substrate can currently be read.
func (s *RecordStore) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.read()
	return err == nil
}

// Append adds a new record in front of the existing ones.
func (s *RecordStore) Append(rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read()
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	for _, r := range existing {
		if r.ID == rec.ID {
			return fmt.Errorf("%w: %d", ErrDuplicateID, rec.ID)
		}
	}

	return s.write(append([]Record{rec}, existing...))
}

// Insert adds rec in front of the existing records, moving its id past the
// newest stored id when needed so ids stay unique and increasing. It
// returns the record as stored.
func (s *RecordStore) Insert(rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read()
	if err != nil {
		return Record{}, fmt.Errorf("insert record: %w", err)
	}
	for _, r := range existing {
		if r.ID >= rec.ID {
			rec.ID = r.ID + 1
		}
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}

	if err := s.write(append([]Record{rec}, existing...)); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Remove deletes the records with the given ids and returns how many were
// removed. The load, filter and whole-collection replace happen under one
// lock so a concurrent Append or Insert is never overwritten. Ids that are not stored are ignored; when none
// match nothing is written.
func (s *RecordStore) Remove(ids ...int64) (int, error) {
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return 0, fmt.Errorf("remove records: %w", err)
	}

	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if _, ok := drop[r.ID]; !ok {
			kept = append(kept, r)
		}
	}

	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.write(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Replace overwrites the whole persisted collection.
func (s *RecordStore) Replace(records []Record) error {
	seen := make(map[int64]struct{}, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateID, r.ID)
		}
		seen[r.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(records)
}

// Clear removes all records.
func (s *RecordStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(HistoryKey); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Onboarded reports whether onboarding has completed.
func (s *RecordStore) Onboarded() bool {
	_, ok, err := s.kv.Get(OnboardedKey)
	if err != nil {
		log.Printf("Warning: failed to read onboarding flag: %v", err)
		return false
	}
	return ok
}

// SetOnboarded records that onboarding has completed.
func (s *RecordStore) SetOnboarded() error {
	if err := s.kv.Set(OnboardedKey, "true"); err != nil {
		return fmt.Errorf("save onboarding flag: %w", err)
	}
	return nil
}

// ResetPrompt is the confirmation shown before Reset.
const ResetPrompt = "This will delete all your scan history. Continue?"

// Reset clears every persisted key: records, onboarding and anything else.
func (s *RecordStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Clear(); err != nil {
		return fmt.Errorf("factory reset: %w", err)
	}
	return nil
}

// write serializes records and stores them. Callers hold s.mu.
func (s *RecordStore) write(records []Record) error {
	if records == nil {
		records = []Record{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if err := s.kv.Set(HistoryKey, string(data)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

package storage

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/khanglvm/duriancare/internal/ripeness"
)

// memKV is an in-memory substrate for record store tests.
type memKV struct {
	data    map[string]string
	failSet bool
	failGet bool
	sets    int
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(key string) (string, bool, error) {
	if m.failGet {
		return "", false, ErrStorageUnavailable
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	if m.failSet {
		return ErrStorageUnavailable
	}
	m.sets++
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func (m *memKV) Clear() error {
	m.data = make(map[string]string)
	return nil
}

func validRecord(id int64) Record {
	return Record{
		ID:         id,
		Date:       "10/15/2026",
		Time:       "9:41 AM",
		Result:     ripeness.Ripe,
		Confidence: 93.4,
		Image:      "data:image/jpeg;base64,/9j/",
		Variety:    DefaultVariety,
	}
}

func ids(records []Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestLoadEmpty(t *testing.T) {
	store := NewRecordStore(newMemKV())

	records := store.Load()
	if records == nil || len(records) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", records)
	}
}

func TestAppendAndLoad(t *testing.T) {
	store := NewRecordStore(newTestKV(t))

	for _, id := range []int64{3, 1, 2} {
		if err := store.Append(validRecord(id)); err != nil {
			t.Fatalf("Append(%d) failed: %v", id, err)
		}
	}

	got := ids(store.Load())
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Record %d: expected id %d, got %d", i, want[i], got[i])
		}
	}
}

func TestAppendRejectsDuplicateID(t *testing.T) {
	store := NewRecordStore(newMemKV())

	if err := store.Append(validRecord(5)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(validRecord(5)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}
	if n := len(store.Load()); n != 1 {
		t.Errorf("Expected 1 record, got %d", n)
	}
}

func TestAppendRejectsInvalidRecord(t *testing.T) {
	store := NewRecordStore(newMemKV())

	bad := validRecord(1)
	bad.Result = "Rotten"

	if err := store.Append(bad); !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("Expected ErrMalformedRecord, got %v", err)
	}
}

func TestAppendSurfacesWriteFailure(t *testing.T) {
	kv := newMemKV()
	kv.failSet = true
	store := NewRecordStore(kv)

	if err := store.Append(validRecord(1)); !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("Expected ErrStorageUnavailable, got %v", err)
	}
}

func TestLoadSkipsMalformedEntries(t *testing.T) {
	kv := newMemKV()
	kv.data[HistoryKey] = `[
		{"id": 1, "date": "1/1/2026", "confidence": 90, "image": "x", "variety": "Puyat"},
		{"id": 2, "date": "1/2/2026", "result": "Unripe", "confidence": 91.5, "image": "x", "variety": "Puyat"},
		{"id": "three", "date": "1/3/2026", "result": "Ripe"},
		"garbage",
		{"id": 2, "date": "1/2/2026", "result": "Ripe", "confidence": 90, "image": "x", "variety": "Puyat"}
	]`

	records := NewRecordStore(kv).Load()
	if len(records) != 1 {
		t.Fatalf("Expected 1 valid record, got %d: %+v", len(records), records)
	}
	if records[0].ID != 2 || records[0].Result != ripeness.Unripe {
		t.Errorf("Unexpected record: %+v", records[0])
	}
}

func TestLoadUnparseableHistory(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{not json"},
		{"object", `{"id": 1}`},
		{"empty string", ""},
		{"null", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMemKV()
			kv.data[HistoryKey] = tt.raw

			if records := NewRecordStore(kv).Load(); len(records) != 0 {
				t.Errorf("Expected empty load, got %d records", len(records))
			}
		})
	}
}

func TestReplace(t *testing.T) {
	store := NewRecordStore(newMemKV())
	for _, id := range []int64{1, 2, 3} {
		if err := store.Append(validRecord(id)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	if err := store.Replace([]Record{validRecord(2)}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	got := ids(store.Load())
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("Expected only record 2, got %v", got)
	}

	if err := store.Replace([]Record{validRecord(4), validRecord(4)}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID for duplicate replace, got %v", err)
	}
}

func TestReplaceWithNilWritesEmptyArray(t *testing.T) {
	kv := newMemKV()
	store := NewRecordStore(kv)

	if err := store.Replace(nil); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	var decoded []Record
	if err := json.Unmarshal([]byte(kv.data[HistoryKey]), &decoded); err != nil {
		t.Fatalf("Stored history is not valid JSON: %v", err)
	}
	if decoded == nil || len(decoded) != 0 {
		t.Errorf("Expected empty array, got %q", kv.data[HistoryKey])
	}
}

func TestRemoveAllWritesEmptyArray(t *testing.T) {
	kv := newMemKV()
	store := NewRecordStore(kv)
	for _, id := range []int64{1, 2} {
		if err := store.Append(validRecord(id)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	if _, err := store.Remove(1, 2); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	var decoded []Record
	if err := json.Unmarshal([]byte(kv.data[HistoryKey]), &decoded); err != nil {
		t.Fatalf("Stored history is not valid JSON: %v", err)
	}
	if decoded == nil || len(decoded) != 0 {
		t.Errorf("Expected empty array, got %q", kv.data[HistoryKey])
	}
}

func TestClear(t *testing.T) {
	store := NewRecordStore(newMemKV())
	if err := store.Append(validRecord(1)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.SetOnboarded(); err != nil {
		t.Fatalf("SetOnboarded failed: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if n := len(store.Load()); n != 0 {
		t.Errorf("Expected no records after Clear, got %d", n)
	}
	if !store.Onboarded() {
		t.Error("Clear should not touch the onboarding flag")
	}
}

func TestResetClearsEverything(t *testing.T) {
	store := NewRecordStore(newTestKV(t))

	if store.Onboarded() {
		t.Error("Fresh store should not be onboarded")
	}
	if err := store.SetOnboarded(); err != nil {
		t.Fatalf("SetOnboarded failed: %v", err)
	}
	if err := store.Append(validRecord(1)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if store.Onboarded() {
		t.Error("Reset should clear the onboarding flag")
	}
	if n := len(store.Load()); n != 0 {
		t.Errorf("Expected no records after Reset, got %d", n)
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"zero id", func(r *Record) { r.ID = 0 }},
		{"missing date", func(r *Record) { r.Date = "" }},
		{"missing result", func(r *Record) { r.Result = "" }},
		{"confidence too high", func(r *Record) { r.Confidence = 100.1 }},
		{"negative confidence", func(r *Record) { r.Confidence = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord(1)
			tt.mutate(&rec)
			if err := rec.Validate(); !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("Expected ErrMalformedRecord, got %v", err)
			}
		})
	}

	if err := validRecord(1).Validate(); err != nil {
		t.Errorf("Valid record failed validation: %v", err)
	}
}

func TestInsertMovesIDPastNewest(t *testing.T) {
	store := NewRecordStore(newMemKV())

	if err := store.Append(validRecord(100)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	tests := []struct {
		name string
		id   int64
		want int64
	}{
		{"older timestamp", 50, 101},
		{"same timestamp", 101, 102},
		{"newer timestamp", 500, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Insert(validRecord(tt.id))
			if err != nil {
				t.Fatalf("Insert failed: %v", err)
			}
			if got.ID != tt.want {
				t.Errorf("Insert(%d) stored id %d, want %d", tt.id, got.ID, tt.want)
			}
		})
	}

	if got := ids(store.Load()); got[0] != 500 {
		t.Errorf("Expected newest record first, got %v", got)
	}
}

func TestInsertConcurrentSameTimestamp(t *testing.T) {
	store := NewRecordStore(newTestKV(t))

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Insert(validRecord(1760520060000)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Insert failed: %v", err)
	}
	if got := len(store.Load()); got != n {
		t.Errorf("Expected %d records, got %d", n, got)
	}
}

func TestInsertSurfacesUnavailableStorage(t *testing.T) {
	kv := newMemKV()
	kv.failGet = true
	store := NewRecordStore(kv)

	if _, err := store.Insert(validRecord(1)); !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("Expected ErrStorageUnavailable, got %v", err)
	}
	if kv.sets != 0 {
		t.Errorf("Expected no writes, got %d", kv.sets)
	}
}

func TestRemove(t *testing.T) {
	kv := newMemKV()
	store := NewRecordStore(kv)
	for _, id := range []int64{1, 2, 3} {
		if err := store.Append(validRecord(id)); err != nil {
			t.Fatalf("Append(%d) failed: %v", id, err)
		}
	}

	n, err := store.Remove(1, 3, 42)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 removed, got %d", n)
	}
	if got := ids(store.Load()); len(got) != 1 || got[0] != 2 {
		t.Errorf("Expected [2] to remain, got %v", got)
	}

	writes := kv.sets
	n, err = store.Remove(42)
	if err != nil || n != 0 {
		t.Errorf("Remove(absent) = %d, %v; want 0, nil", n, err)
	}
	if kv.sets != writes {
		t.Error("Remove of absent ids should not write")
	}
}

func TestRemoveSurfacesUnavailableStorage(t *testing.T) {
	kv := newMemKV()
	kv.failGet = true
	store := NewRecordStore(kv)

	if _, err := store.Remove(1); !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("Expected ErrStorageUnavailable, got %v", err)
	}
	if store.Available() {
		t.Error("Available should be false when reads fail")
	}
}

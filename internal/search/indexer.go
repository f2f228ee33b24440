package search

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/khanglvm/duriancare/internal/storage"
)

// keywordLowerAnalyzer keeps the whole field as one lowercased term.
const keywordLowerAnalyzer = "keyword_lower"

// Index is an in-memory search index over assessment records.
type Index struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex

	// ids tracks which records are indexed; records are immutable so the
	// id alone decides whether a document is current.
	ids map[int64]struct{}
}

// NewIndex creates an empty in-memory index.
func NewIndex() (*Index, error) {
	indexMapping, err := buildIndexMapping()
	if err != nil {
		return nil, err
	}

	index, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	return &Index{
		bleveIndex: index,
		ids:        make(map[int64]struct{}),
	}, nil
}

// buildIndexMapping creates the Bleve index mapping.
func buildIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(keywordLowerAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register analyzer: %w", err)
	}

	recordMapping := bleve.NewDocumentStaticMapping()
	for _, field := range []string{FieldResult, FieldDate, FieldVariety} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keywordLowerAnalyzer
		fm.Store = false
		fm.IncludeInAll = false
		fm.IncludeTermVectors = false
		recordMapping.AddFieldMappingsAt(field, fm)
	}

	indexMapping.DefaultMapping = recordMapping
	indexMapping.DefaultAnalyzer = keywordLowerAnalyzer

	return indexMapping, nil
}

// Sync brings the index in line with records: new records are indexed and
// records no longer present are removed.
func (i *Index) Sync(records []storage.Record) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	current := make(map[int64]struct{}, len(records))
	batch := i.bleveIndex.NewBatch()
	var added []int64

	for _, r := range records {
		current[r.ID] = struct{}{}
		if _, ok := i.ids[r.ID]; ok {
			continue
		}
		if err := batch.Index(docID(r.ID), newRecordDocument(r)); err != nil {
			log.Printf("Warning: failed to index record %d: %v", r.ID, err)
			continue
		}
		added = append(added, r.ID)
	}

	var removed []int64
	for id := range i.ids {
		if _, ok := current[id]; !ok {
			batch.Delete(docID(id))
			removed = append(removed, id)
		}
	}

	if batch.Size() == 0 {
		return nil
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index records: %w", err)
	}

	for _, id := range added {
		i.ids[id] = struct{}{}
	}
	for _, id := range removed {
		delete(i.ids, id)
	}

	return nil
}

// Match returns the ids of indexed records whose result, date or variety
// contains text, ignoring case. Empty text matches every record.
func (i *Index) Match(text string) ([]int64, error) {
	if strings.ContainsAny(text, "*?") {
		return nil, ErrUnsupportedQuery
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	size := len(i.ids)
	if size == 0 {
		return []int64{}, nil
	}

	var q query.Query
	if text == "" {
		q = bleve.NewMatchAllQuery()
	} else {
		q = buildSubstringQuery(strings.ToLower(text))
	}

	searchRequest := bleve.NewSearchRequestOptions(q, size, 0, false)

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	matched := make([]int64, 0, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			log.Printf("Warning: unexpected document id %q: %v", hit.ID, err)
			continue
		}
		matched = append(matched, id)
	}

	return matched, nil
}

// Count returns the number of indexed records.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}

	return docCount, nil
}

// Close closes the index and releases resources.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}

	return nil
}

// buildSubstringQuery matches lowercased text anywhere in any searchable field.
func buildSubstringQuery(lowered string) query.Query {
	fields := []string{FieldResult, FieldDate, FieldVariety}
	disjuncts := make([]query.Query, 0, len(fields))

	for _, field := range fields {
		wq := bleve.NewWildcardQuery("*" + lowered + "*")
		wq.SetField(field)
		disjuncts = append(disjuncts, wq)
	}

	return bleve.NewDisjunctionQuery(disjuncts...)
}

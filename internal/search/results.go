/*
Package search implements the history search index.

Records are indexed by result, date and variety with a keyword analyzer that
lowercases the whole field value, so a wildcard query around the lowercased
search text gives case-insensitive substring matching.
*/
package search

import (
	"errors"
	"strconv"

	"github.com/khanglvm/duriancare/internal/storage"
)

// ErrUnsupportedQuery is returned for text that cannot be expressed as a
// literal substring wildcard (it contains '*' or '?').
var ErrUnsupportedQuery = errors.New("query contains wildcard characters")

// Searchable fields of a record.
const (
	FieldResult  = "result"
	FieldDate    = "date"
	FieldVariety = "variety"
)

// newRecordDocument builds the indexed form of a record.
func newRecordDocument(r storage.Record) map[string]interface{} {
	return map[string]interface{}{
		FieldResult:  string(r.Result),
		FieldDate:    r.Date,
		FieldVariety: r.Variety,
	}
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

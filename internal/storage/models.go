/*
Package storage provides the assessment record model.

Records are created once by the capture pipeline and never mutated; they
are removed only by explicit deletes or a factory reset.
*/
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/khanglvm/duriancare/internal/ripeness"
)

var (
	// ErrStorageUnavailable is returned when the substrate cannot be read or written.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrMalformedRecord is returned for a record that fails validation.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrDuplicateID is returned when appending a record whose id already exists.
	ErrDuplicateID = errors.New("duplicate record id")
)

// DefaultVariety is the only cultivar the classifier is calibrated for.
const DefaultVariety = "Puyat"

// Record is one persisted capture-and-classification outcome.
type Record struct {
	// ID is the creation timestamp in milliseconds; unique and increasing.
	ID int64 `json:"id"`

	// Date is the human-readable creation date.
	Date string `json:"date"`

	// Time is the human-readable creation time (optional).
	Time string `json:"time,omitempty"`

	// Result is the classification outcome.
	Result ripeness.Status `json:"result"`

	// Confidence is the classifier score in percent, one decimal place.
	Confidence float64 `json:"confidence"`

	// Image is the encoded still image as a data URL.
	Image string `json:"image"`

	// Variety is the durian cultivar.
	Variety string `json:"variety"`
}

// Validate reports why a record cannot be stored or loaded.
func (r Record) Validate() error {
	switch {
	case r.ID <= 0:
		return fmt.Errorf("%w: id must be positive", ErrMalformedRecord)
	case r.Date == "":
		return fmt.Errorf("%w: record %d: missing date", ErrMalformedRecord, r.ID)
	case !r.Result.Valid():
		return fmt.Errorf("%w: record %d: invalid result %q", ErrMalformedRecord, r.ID, r.Result)
	case r.Confidence < 0 || r.Confidence > 100:
		return fmt.Errorf("%w: record %d: confidence %.1f out of range", ErrMalformedRecord, r.ID, r.Confidence)
	}
	return nil
}

// CreatedAt returns the creation instant encoded in the id.
func (r Record) CreatedAt() time.Time {
	return time.UnixMilli(r.ID)
}

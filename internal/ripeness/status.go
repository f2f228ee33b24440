/*
Package ripeness defines the ripeness classification contract.

A Classifier takes an encoded still image and returns a Result. The only
implementation shipped here is Placeholder, which draws a random status and
score; a real model plugs in behind the same interface.
*/
package ripeness

import (
	"fmt"
	"strings"
)

// Status is a ripeness classification outcome.
type Status string

const (
	Ripe     Status = "Ripe"
	Unripe   Status = "Unripe"
	Overripe Status = "Overripe"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{Ripe, Unripe, Overripe}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case Ripe, Unripe, Overripe:
		return true
	}
	return false
}

// ParseStatus converts a case-insensitive status name.
func ParseStatus(s string) (Status, error) {
	for _, status := range Statuses {
		if strings.EqualFold(strings.TrimSpace(s), string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown ripeness status %q", s)
}

// Result is the output of a classification.
type Result struct {
	// Status is the predicted ripeness.
	Status Status `json:"status"`

	// Score is the confidence in percent, one decimal place.
	Score float64 `json:"score"`
}

// Validate checks that a result honors the classifier contract.
func (r Result) Validate() error {
	if !r.Status.Valid() {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("score %.1f out of range", r.Score)
	}
	return nil
}

// Factor is one line of the ripeness breakdown shown next to a result.
type Factor struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
}

// Factors returns the breakdown displayed for a status.
func Factors(status Status) []Factor {
	if status == Ripe {
		return []Factor{
			{Name: "Spine Flexibility", Percent: 88},
			{Name: "Shell Coloration", Percent: 92},
		}
	}
	return []Factor{
		{Name: "Spine Flexibility", Percent: 42},
		{Name: "Shell Coloration", Percent: 65},
	}
}

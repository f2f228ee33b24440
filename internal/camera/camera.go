/*
Package camera models best-effort control of a capture device.

Device access itself belongs to the host platform; this package wraps it in
a Session that acquires one stream at a time and applies torch, zoom and
facing changes only when the device reports support for them. Unsupported
requests are no-ops, never failures.
*/
package camera

import (
	"context"
	"errors"
	"image"
)

// ErrUnavailable is returned when no camera can be opened, either because
// permission was denied or because no device is present.
var ErrUnavailable = errors.New("camera unavailable")

// Facing selects the front or rear camera.
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// Flip returns the opposite facing mode.
func (f Facing) Flip() Facing {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

// Range is a numeric capability range.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step,omitempty"`
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Capabilities describes what a track supports.
type Capabilities struct {
	Torch bool   `json:"torch"`
	Zoom  *Range `json:"zoom,omitempty"`
}

// Constraints is a set of changes to apply to a track. Nil fields are left alone.
type Constraints struct {
	Torch *bool
	Zoom  *float64
}

// Track is an open video stream.
type Track interface {
	// Capabilities reports the adjustable settings of the track.
	Capabilities() Capabilities

	// ApplyConstraints changes track settings.
	ApplyConstraints(ctx context.Context, c Constraints) error

	// Frame returns the current video frame.
	Frame(ctx context.Context) (image.Image, error)

	// Stop releases the stream.
	Stop()
}

// Device opens video streams.
type Device interface {
	Open(ctx context.Context, facing Facing) (Track, error)
}

// Unavailable is a Device with no camera behind it.
type Unavailable struct{}

// Open always fails with ErrUnavailable.
func (Unavailable) Open(ctx context.Context, facing Facing) (Track, error) {
	return nil, ErrUnavailable
}

package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
)

// Session owns at most one open stream of a device.
type Session struct {
	device Device

	mu     sync.Mutex
	track  Track
	facing Facing
	torch  bool
	zoom   float64
}

// NewSession creates a session that will open the rear camera first.
func NewSession(device Device) *Session {
	if device == nil {
		device = Unavailable{}
	}
	return &Session{
		device: device,
		facing: FacingEnvironment,
		zoom:   1,
	}
}

// Start opens a stream with the current facing mode, stopping any previous
// stream first so the device is never held twice.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.startLocked(ctx)
}

func (s *Session) startLocked(ctx context.Context) error {
	s.stopLocked()

	track, err := s.device.Open(ctx, s.facing)
	if err != nil {
		log.Printf("Warning: camera access failed: %v", err)
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.track = track
	s.torch = false
	s.zoom = 1
	return nil
}

// Stop releases the current stream, if any.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.track != nil {
		s.track.Stop()
		s.track = nil
	}
}

// Active reports whether a stream is open.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track != nil
}

// Facing returns the current facing mode.
func (s *Session) Facing() Facing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facing
}

// Torch reports whether the torch is on.
func (s *Session) Torch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.torch
}

// Zoom returns the current zoom level.
func (s *Session) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// Frame reads the current frame of the open stream.
func (s *Session) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	track := s.track
	s.mu.Unlock()

	if track == nil {
		return nil, ErrUnavailable
	}
	return track.Frame(ctx)
}

// ToggleTorch flips the torch if the track supports it and reports the
// resulting torch state.
func (s *Session) ToggleTorch(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.track == nil || !s.track.Capabilities().Torch {
		return s.torch
	}

	want := !s.torch
	if err := s.track.ApplyConstraints(ctx, Constraints{Torch: &want}); err != nil {
		log.Printf("Warning: torch change ignored: %v", err)
		return s.torch
	}

	s.torch = want
	return s.torch
}

// SetZoom sets the zoom level, clamped to the supported range, and returns
// the resulting level. Without zoom support the level is unchanged.
func (s *Session) SetZoom(ctx context.Context, level float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.track == nil {
		return s.zoom
	}
	zr := s.track.Capabilities().Zoom
	if zr == nil {
		return s.zoom
	}

	clamped := zr.Clamp(level)
	if err := s.track.ApplyConstraints(ctx, Constraints{Zoom: &clamped}); err != nil {
		log.Printf("Warning: zoom change ignored: %v", err)
		return s.zoom
	}

	s.zoom = clamped
	return s.zoom
}

// FlipFacing switches between the front and rear camera and reopens the
// stream. If the new camera cannot be opened the session is left without a
// stream and the error is returned.
func (s *Session) FlipFacing(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.facing = s.facing.Flip()
	return s.startLocked(ctx)
}

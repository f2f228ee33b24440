/*
Package capture runs one assessment from still image to stored record.

A Pipeline moves through Idle → Captured → Scanning → Resulted. Only a
Resulted pipeline can commit, and committing is the single point where an
assessment becomes durable; anything discarded before that leaves no trace.
*/
package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/khanglvm/duriancare/internal/camera"
	"github.com/khanglvm/duriancare/internal/imaging"
	"github.com/khanglvm/duriancare/internal/ripeness"
	"github.com/khanglvm/duriancare/internal/storage"
)

var (
	// ErrCaptureFailed is returned when a frame or file cannot be read or encoded.
	ErrCaptureFailed = errors.New("capture failed")

	// ErrBusy is returned when a classification is already in flight.
	ErrBusy = errors.New("classification in progress")

	// ErrInvalidState is returned for an operation not allowed in the current state.
	ErrInvalidState = errors.New("invalid pipeline state")

	// ErrDiscarded is returned by Classify when the run was reset before the
	// result arrived.
	ErrDiscarded = errors.New("assessment discarded")
)

// Default display layouts for record dates and times.
const (
	DefaultDateLayout = "1/2/2006"
	DefaultTimeLayout = "3:04 PM"
)

// State is the pipeline state.
type State int

const (
	Idle State = iota
	Captured
	Scanning
	Resulted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Captured:
		return "captured"
	case Scanning:
		return "scanning"
	case Resulted:
		return "resulted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RecordStore is the part of the record store a pipeline writes to.
type RecordStore interface {
	// Insert stores rec, moving its id past any stored id, and returns
	// the record as stored.
	Insert(rec storage.Record) (storage.Record, error)
}

// Options configures a Pipeline.
type Options struct {
	// Quality is the JPEG quality of captured stills.
	Quality int

	// Variety is stamped on every record.
	Variety string

	// DateLayout and TimeLayout format the record's date and time fields.
	DateLayout string
	TimeLayout string

	// Camera is the live feed, if any.
	Camera *camera.Session

	// Now returns the current time.
	Now func() time.Time
}

// Pipeline holds one in-progress assessment.
type Pipeline struct {
	store      RecordStore
	classifier ripeness.Classifier
	opts       Options

	mu     sync.Mutex
	state  State
	image  imaging.Still
	result ripeness.Result
	cancel context.CancelFunc

	// run is bumped on every reset so a late classification can tell it
	// no longer belongs to the current assessment.
	run uint64
}

// New creates an idle pipeline.
func New(store RecordStore, classifier ripeness.Classifier, opts Options) *Pipeline {
	if opts.Quality == 0 {
		opts.Quality = imaging.DefaultQuality
	}
	if opts.Variety == "" {
		opts.Variety = storage.DefaultVariety
	}
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultDateLayout
	}
	if opts.TimeLayout == "" {
		opts.TimeLayout = DefaultTimeLayout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Pipeline{
		store:      store,
		classifier: classifier,
		opts:       opts,
	}
}

// State returns the current state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Image returns the captured still, if any.
func (p *Pipeline) Image() (imaging.Still, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.image, p.state != Idle
}

// Result returns the classification result once Resulted.
func (p *Pipeline) Result() (ripeness.Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result, p.state == Resulted
}

// Camera returns the live camera session, or nil.
func (p *Pipeline) Camera() *camera.Session {
	return p.opts.Camera
}

// CaptureStill reads a frame from src and encodes it. It is only allowed
// while Idle; on failure the pipeline stays Idle.
func (p *Pipeline) CaptureStill(ctx context.Context, src FrameSource) (imaging.Still, error) {
	p.mu.Lock()
	if p.state != Idle {
		state := p.state
		p.mu.Unlock()
		return imaging.Still{}, fmt.Errorf("%w: capture while %s", ErrInvalidState, state)
	}
	p.mu.Unlock()

	frame, err := src.Frame(ctx)
	if err != nil {
		if errors.Is(err, camera.ErrUnavailable) {
			return imaging.Still{}, err
		}
		return imaging.Still{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	still, err := imaging.Encode(frame, p.opts.Quality)
	if err != nil {
		return imaging.Still{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another capture may have landed while the frame was being read.
	if p.state != Idle {
		return imaging.Still{}, fmt.Errorf("%w: capture while %s", ErrInvalidState, p.state)
	}

	p.image = still
	p.state = Captured
	return still, nil
}

// CaptureFromCamera captures the current frame of the live camera.
func (p *Pipeline) CaptureFromCamera(ctx context.Context) (imaging.Still, error) {
	if p.opts.Camera == nil {
		return imaging.Still{}, camera.ErrUnavailable
	}
	return p.CaptureStill(ctx, p.opts.Camera)
}

// Classify runs the classifier on the captured still. It blocks until the
// classifier returns, ctx is cancelled, or the pipeline is reset.
//
// Only one classification may be in flight; a concurrent call gets ErrBusy.
// If the classifier fails the pipeline returns to Captured so the user can
// retry.
func (p *Pipeline) Classify(ctx context.Context) (ripeness.Result, error) {
	p.mu.Lock()
	switch p.state {
	case Captured:
	case Scanning:
		p.mu.Unlock()
		return ripeness.Result{}, ErrBusy
	default:
		state := p.state
		p.mu.Unlock()
		return ripeness.Result{}, fmt.Errorf("%w: classify while %s", ErrInvalidState, state)
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.state = Scanning
	p.cancel = cancel
	run := p.run
	img := p.image
	p.mu.Unlock()

	res, err := p.classifier.Classify(runCtx, img)
	if err == nil {
		err = res.Validate()
	}
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.run != run {
		return ripeness.Result{}, ErrDiscarded
	}
	p.cancel = nil

	if err != nil {
		p.state = Captured
		return ripeness.Result{}, fmt.Errorf("classify: %w", err)
	}

	p.result = res
	p.state = Resulted
	return res, nil
}

// Process captures a still from src and classifies it.
func (p *Pipeline) Process(ctx context.Context, src FrameSource) (ripeness.Result, error) {
	if _, err := p.CaptureStill(ctx, src); err != nil {
		return ripeness.Result{}, err
	}
	return p.Classify(ctx)
}

// Commit stores the classified assessment as a new record and returns the
// pipeline to Idle. If the store rejects the record the pipeline stays
// Resulted so the commit can be retried.
func (p *Pipeline) Commit() (storage.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Resulted {
		return storage.Record{}, fmt.Errorf("%w: commit while %s", ErrInvalidState, p.state)
	}

	now := p.opts.Now()
	rec := storage.Record{
		ID:         now.UnixMilli(),
		Date:       now.Format(p.opts.DateLayout),
		Time:       now.Format(p.opts.TimeLayout),
		Result:     p.result.Status,
		Confidence: p.result.Score,
		Image:      p.image.DataURL(),
		Variety:    p.opts.Variety,
	}

	rec, err := p.store.Insert(rec)
	if err != nil {
		return storage.Record{}, fmt.Errorf("commit assessment: %w", err)
	}

	log.Printf("Logged assessment %d: %s (%.1f%%)", rec.ID, rec.Result, rec.Confidence)
	p.resetLocked()
	return rec, nil
}

// Reset discards the in-progress assessment and returns to Idle. An
// in-flight classification is cancelled and its result dropped.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetLocked()
}

func (p *Pipeline) resetLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.run++
	p.state = Idle
	p.image = imaging.Still{}
	p.result = ripeness.Result{}
}

// ToggleTorch flips the camera torch and reports the torch state.
// Disabled while scanning.
func (p *Pipeline) ToggleTorch(ctx context.Context) bool {
	cam, enabled := p.cameraControls()
	if cam == nil {
		return false
	}
	if !enabled {
		return cam.Torch()
	}
	return cam.ToggleTorch(ctx)
}

// SetZoom changes the camera zoom and reports the resulting level.
// Disabled while scanning.
func (p *Pipeline) SetZoom(ctx context.Context, level float64) float64 {
	cam, enabled := p.cameraControls()
	if cam == nil {
		return 1
	}
	if !enabled {
		return cam.Zoom()
	}
	return cam.SetZoom(ctx, level)
}

// FlipCamera switches between front and rear cameras. Disabled while
// scanning; a camera that fails to open leaves the pipeline Idle with
// file upload still available.
func (p *Pipeline) FlipCamera(ctx context.Context) error {
	cam, enabled := p.cameraControls()
	if cam == nil || !enabled {
		return nil
	}
	return cam.FlipFacing(ctx)
}

// cameraControls returns the camera and whether controls are enabled.
func (p *Pipeline) cameraControls() (*camera.Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.opts.Camera, p.state != Scanning
}

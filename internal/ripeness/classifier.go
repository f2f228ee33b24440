package ripeness

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/khanglvm/duriancare/internal/imaging"
)

const (
	// DefaultMinScore is the lower bound of the placeholder score band.
	DefaultMinScore = 88.0

	// DefaultMaxScore is the upper bound of the placeholder score band.
	DefaultMaxScore = 99.0

	// DefaultLatency stands in for model inference time.
	DefaultLatency = 2200 * time.Millisecond
)

// Classifier predicts the ripeness of a durian from a still image.
type Classifier interface {
	Classify(ctx context.Context, img imaging.Still) (Result, error)
}

// Options configures a Placeholder.
type Options struct {
	// MinScore and MaxScore bound the generated score (inclusive).
	MinScore float64
	MaxScore float64

	// Latency is the artificial delay before a result is returned.
	Latency time.Duration

	// Seed makes the output reproducible. Zero seeds from the clock.
	Seed int64
}

// Placeholder is a stand-in classifier producing uniformly random results.
type Placeholder struct {
	min     float64
	max     float64
	latency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlaceholder creates a placeholder classifier.
// Zero-valued options fall back to the defaults.
func NewPlaceholder(opts Options) (*Placeholder, error) {
	if opts.MinScore == 0 && opts.MaxScore == 0 {
		opts.MinScore = DefaultMinScore
		opts.MaxScore = DefaultMaxScore
	}
	if opts.MinScore < 0 || opts.MaxScore > 100 || opts.MinScore > opts.MaxScore {
		return nil, fmt.Errorf("invalid score band [%.1f, %.1f]", opts.MinScore, opts.MaxScore)
	}
	if opts.Latency < 0 {
		return nil, fmt.Errorf("negative latency %v", opts.Latency)
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	return &Placeholder{
		min:     opts.MinScore,
		max:     opts.MaxScore,
		latency: opts.Latency,
		rng:     rand.New(rand.NewSource(opts.Seed)),
	}, nil
}

// Band returns the configured score band.
func (p *Placeholder) Band() (min, max float64) {
	return p.min, p.max
}

// Classify waits for the configured latency and returns a random result.
// It returns early with the context error if ctx is cancelled.
func (p *Placeholder) Classify(ctx context.Context, img imaging.Still) (Result, error) {
	if img.Empty() {
		return Result{}, fmt.Errorf("classify: empty image")
	}

	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	p.mu.Lock()
	status := Statuses[p.rng.Intn(len(Statuses))]
	raw := p.rng.Float64()*(p.max-p.min) + p.min
	p.mu.Unlock()

	// One decimal place, kept inside the band after rounding.
	score := math.Round(raw*10) / 10
	score = math.Max(p.min, math.Min(p.max, score))

	return Result{Status: status, Score: score}, nil
}

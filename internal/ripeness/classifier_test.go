package ripeness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/duriancare/internal/imaging"
)

var sample = imaging.Still{MIME: imaging.MIMEJPEG, Data: []byte{0xFF, 0xD8, 0xFF}}

func TestPlaceholderScoreWithinBand(t *testing.T) {
	p, err := NewPlaceholder(Options{MinScore: 85, MaxScore: 99, Seed: 42})
	require.NoError(t, err)

	seen := map[Status]bool{}
	for i := 0; i < 500; i++ {
		res, err := p.Classify(context.Background(), sample)
		require.NoError(t, err)

		assert.True(t, res.Status.Valid(), "status %q", res.Status)
		assert.GreaterOrEqual(t, res.Score, 85.0)
		assert.LessOrEqual(t, res.Score, 99.0)
		assert.InDelta(t, res.Score, float64(int(res.Score*10+0.5))/10, 1e-9, "score has more than one decimal")
		assert.NoError(t, res.Validate())
		seen[res.Status] = true
	}

	assert.Len(t, seen, 3, "all statuses should be drawn")
}

func TestPlaceholderDefaults(t *testing.T) {
	p, err := NewPlaceholder(Options{})
	require.NoError(t, err)

	min, max := p.Band()
	assert.Equal(t, DefaultMinScore, min)
	assert.Equal(t, DefaultMaxScore, max)
}

func TestPlaceholderInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"inverted band", Options{MinScore: 99, MaxScore: 85}},
		{"above 100", Options{MinScore: 90, MaxScore: 101}},
		{"negative", Options{MinScore: -1, MaxScore: 50}},
		{"negative latency", Options{MinScore: 85, MaxScore: 99, Latency: -time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlaceholder(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestPlaceholderHonorsLatencyAndCancellation(t *testing.T) {
	p, err := NewPlaceholder(Options{Latency: 50 * time.Millisecond, Seed: 1})
	require.NoError(t, err)

	start := time.Now()
	_, err = p.Classify(context.Background(), sample)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	slow, err := NewPlaceholder(Options{Latency: time.Hour, Seed: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = slow.Classify(ctx, sample)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestPlaceholderRejectsEmptyImage(t *testing.T) {
	p, err := NewPlaceholder(Options{Seed: 1})
	require.NoError(t, err)

	_, err = p.Classify(context.Background(), imaging.Still{})
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	for _, input := range []string{"ripe", "RIPE", " Ripe "} {
		s, err := ParseStatus(input)
		require.NoError(t, err)
		assert.Equal(t, Ripe, s)
	}

	_, err := ParseStatus("rotten")
	assert.Error(t, err)
}

func TestFactors(t *testing.T) {
	ripe := Factors(Ripe)
	require.Len(t, ripe, 2)
	assert.Equal(t, 88, ripe[0].Percent)
	assert.Equal(t, 92, ripe[1].Percent)

	for _, s := range []Status{Unripe, Overripe} {
		f := Factors(s)
		require.Len(t, f, 2)
		assert.Equal(t, 42, f[0].Percent)
		assert.Equal(t, 65, f[1].Percent)
	}
}

func TestResultValidate(t *testing.T) {
	assert.NoError(t, Result{Status: Overripe, Score: 91.2}.Validate())
	assert.Error(t, Result{Status: "Rotten", Score: 91.2}.Validate())
	assert.Error(t, Result{Status: Ripe, Score: 120}.Validate())
}

package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failing(context.Context) error { return errBoom }
func passing(context.Context) error { return nil }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New(Config{Name: "test_consec", MaxConsecFailures: 2, OpenFor: time.Minute}, nil)

	assert.ErrorIs(t, b.Do(context.Background(), failing, nil), errBoom)
	assert.Equal(t, Closed, b.State())
	assert.ErrorIs(t, b.Do(context.Background(), failing, nil), errBoom)
	assert.Equal(t, Open, b.State())

	called := false
	err := b.Do(context.Background(), func(context.Context) error { called = true; return nil }, nil)
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called, "op must not run while open")
}

func TestBreakerFallbackReceivesCause(t *testing.T) {
	b := New(Config{Name: "test_fallback", MaxConsecFailures: 1, OpenFor: time.Minute}, nil)

	var causes []error
	fb := func(_ context.Context, cause error) error {
		causes = append(causes, cause)
		return nil
	}
	require.NoError(t, b.Do(context.Background(), failing, fb))
	require.NoError(t, b.Do(context.Background(), passing, fb))

	require.Len(t, causes, 2)
	assert.ErrorIs(t, causes[0], errBoom)
	assert.ErrorIs(t, causes[1], ErrOpen)
}

func TestBreakerHalfOpenTrial(t *testing.T) {
	now := time.Now()
	b := New(Config{Name: "test_half_open", MaxConsecFailures: 1, OpenFor: time.Second}, nil)
	b.now = func() time.Time { return now }

	_ = b.Do(context.Background(), failing, nil)
	require.Equal(t, Open, b.State())

	now = now.Add(2 * time.Second)
	require.NoError(t, b.Do(context.Background(), passing, nil))
	assert.Equal(t, Closed, b.State())

	// a failed trial call reopens
	_ = b.Do(context.Background(), failing, nil)
	require.Equal(t, Open, b.State())
	now = now.Add(2 * time.Second)
	_ = b.Do(context.Background(), failing, nil)
	assert.Equal(t, Open, b.State())
}

func TestBreakerFailureRateNeedsMinSamples(t *testing.T) {
	b := New(Config{Name: "test_rate", WindowSize: 4, MinSamples: 4, FailureRate: 0.5, OpenFor: time.Minute}, nil)

	_ = b.Do(context.Background(), passing, nil)
	_ = b.Do(context.Background(), failing, nil)
	_ = b.Do(context.Background(), passing, nil)
	assert.Equal(t, Closed, b.State())
	_ = b.Do(context.Background(), failing, nil)
	assert.Equal(t, Open, b.State())
}

func TestBreakerTimeout(t *testing.T) {
	b := New(Config{Name: "test_timeout", OperationTimeout: 10 * time.Millisecond}, nil)
	err := b.Do(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

package monitoring

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowSnapshot(t *testing.T) {
	w := NewWindow(100)
	assert.Equal(t, Summary{}, w.Snapshot())

	for i := 1; i <= 100; i++ {
		w.Observe(float64(i))
	}
	s := w.Snapshot()
	assert.Equal(t, int64(100), s.Count)
	assert.InDelta(t, 50.5, s.Avg, 1e-9)
	assert.Equal(t, 51.0, s.P50)
	assert.Equal(t, 96.0, s.P95)
	assert.Equal(t, 100.0, s.Max)
}

func TestWindowWrapsAround(t *testing.T) {
	w := NewWindow(2)
	w.Observe(100)
	w.Observe(1)
	w.ObserveDuration(3 * time.Millisecond)

	s := w.Snapshot()
	assert.Equal(t, int64(3), s.Count)
	assert.InDelta(t, 2, s.Avg, 1e-9)
	assert.Equal(t, 3.0, s.Max)
}

func TestReadRuntime(t *testing.T) {
	rs := ReadRuntime()
	assert.Positive(t, rs.Goroutines)
	assert.Positive(t, rs.MemAllocBytes)
}

func TestStartCPUProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.pprof")
	stop, err := StartCPUProfile(path)
	require.NoError(t, err)
	require.NoError(t, stop())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

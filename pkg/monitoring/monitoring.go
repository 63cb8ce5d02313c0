// Package monitoring keeps recent latency samples and runtime figures for
// benchmark runs, and wraps CPU profiling.
package monitoring

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"
	"sync"
	"time"
)

// Window keeps the last N latency samples (milliseconds) for quantiles.
type Window struct {
	mu      sync.Mutex
	samples []float64
	idx     int
	count   int64
	n       int
}

func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 256
	}
	return &Window{samples: make([]float64, capacity), n: capacity}
}

// Observe adds a sample in milliseconds.
func (w *Window) Observe(ms float64) {
	w.mu.Lock()
	w.samples[w.idx] = ms
	w.idx = (w.idx + 1) % w.n
	w.count++
	w.mu.Unlock()
}

// ObserveDuration adds d as milliseconds.
func (w *Window) ObserveDuration(d time.Duration) {
	w.Observe(float64(d) / float64(time.Millisecond))
}

// Summary describes the retained samples; Count is every sample ever observed.
type Summary struct {
	Count int64   `json:"count"`
	Avg   float64 `json:"avg_ms"`
	P50   float64 `json:"p50_ms"`
	P95   float64 `json:"p95_ms"`
	Max   float64 `json:"max_ms"`
}

// Snapshot computes the summary of the samples currently retained.
func (w *Window) Snapshot() Summary {
	w.mu.Lock()
	var cp []float64
	if w.count < int64(w.n) {
		cp = append(cp, w.samples[:w.idx]...)
	} else {
		cp = append(cp, w.samples...)
	}
	s := Summary{Count: w.count}
	w.mu.Unlock()

	if len(cp) == 0 {
		return s
	}
	sum := 0.0
	for _, v := range cp {
		sum += v
	}
	sort.Float64s(cp)
	s.Avg = sum / float64(len(cp))
	s.P50 = cp[(len(cp)*50)/100]
	s.P95 = cp[(len(cp)*95)/100]
	s.Max = cp[len(cp)-1]
	return s
}

// RuntimeStats is a point-in-time view of the Go runtime.
type RuntimeStats struct {
	Goroutines     int    `json:"goroutines"`
	MemAllocBytes  uint64 `json:"mem_alloc_bytes"`
	HeapInuseBytes uint64 `json:"heap_inuse_bytes"`
	NumGC          uint32 `json:"gc_num"`
}

func ReadRuntime() RuntimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return RuntimeStats{
		Goroutines:     runtime.NumGoroutine(),
		MemAllocBytes:  ms.Alloc,
		HeapInuseBytes: ms.HeapInuse,
		NumGC:          ms.NumGC,
	}
}

// StartCPUProfile writes a CPU profile to path until the returned stop func
// is called.
func StartCPUProfile(path string) (stop func() error, err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("start cpu profile: %w", err)
	}
	return func() error {
		pprof.StopCPUProfile()
		return f.Close()
	}, nil
}

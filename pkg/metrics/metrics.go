package metrics

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Dependency-free metrics rendered in the Prometheus text format.
// Atomic values, mutex-protected registries.

// Counter is a monotonically increasing number.
type Counter struct {
	name string
	help string
	val  int64
}

func (c *Counter) Inc(delta int64) { atomic.AddInt64(&c.val, delta) }
func (c *Counter) Get() int64      { return atomic.LoadInt64(&c.val) }

// Gauge is an arbitrary number that can go up and down.
type Gauge struct {
	name string
	help string
	f64  uint64 // float64 bits
}

func (g *Gauge) SetFloat64(v float64) { atomic.StoreUint64(&g.f64, math.Float64bits(v)) }
func (g *Gauge) GetFloat64() float64 { return math.Float64frombits(atomic.LoadUint64(&g.f64)) }

// Histogram with fixed buckets (per-bucket counts, cumulated on output) and sum/count.
type Histogram struct {
	name    string
	help    string
	buckets []float64 // sorted ascending, last is +Inf
	counts  []uint64
	sum     uint64 // float64 bits
	count   uint64
}

func (h *Histogram) Observe(v float64) {
	i := sort.SearchFloat64s(h.buckets, v)
	if i >= len(h.counts) {
		i = len(h.counts) - 1
	}
	atomic.AddUint64(&h.counts[i], 1)
	atomic.AddUint64(&h.count, 1)
	addFloat(&h.sum, v)
}

// Count returns the number of observations so far.
func (h *Histogram) Count() uint64 { return atomic.LoadUint64(&h.count) }

// Sum returns the total of all observations.
func (h *Histogram) Sum() float64 { return math.Float64frombits(atomic.LoadUint64(&h.sum)) }

func addFloat(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		nv := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(addr, old, math.Float64bits(nv)) {
			return
		}
	}
}

// Registry holds all metrics.
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
}

func NewRegistry() *Registry {
	return &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}
}

var Default = NewRegistry()

// LatencyBucketsMs suits in-process scorers (sub-millisecond) up to remote calls.
var LatencyBucketsMs = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 25, 100, 500, 2000, 10000}

func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := &Counter{name: sanitize(name), help: help}
	r.counters[name] = c
	return c
}

func (r *Registry) Gauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := &Gauge{name: sanitize(name), help: help}
	r.gauges[name] = g
	return g
}

func (r *Registry) Histogram(name, help string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	sorted := append([]float64{}, buckets...)
	sort.Float64s(sorted)
	if len(sorted) == 0 || !math.IsInf(sorted[len(sorted)-1], 1) {
		sorted = append(sorted, math.Inf(1))
	}
	h := &Histogram{name: sanitize(name), help: help, buckets: sorted, counts: make([]uint64, len(sorted))}
	r.histograms[name] = h
	return h
}

// WriteText writes every metric in Prometheus text exposition format,
// sorted by name so dumps are diffable.
func (r *Registry) WriteText(w io.Writer) error {
	r.mu.RLock()
	counters := sortedValues(r.counters)
	gauges := sortedValues(r.gauges)
	histograms := sortedValues(r.histograms)
	r.mu.RUnlock()

	ew := &errWriter{w: w}
	for _, c := range counters {
		ew.printf("# HELP %s %s\n", c.name, escapeHelp(c.help))
		ew.printf("# TYPE %s counter\n", c.name)
		ew.printf("%s %d\n", c.name, c.Get())
	}
	for _, g := range gauges {
		ew.printf("# HELP %s %s\n", g.name, escapeHelp(g.help))
		ew.printf("# TYPE %s gauge\n", g.name)
		ew.printf("%s %g\n", g.name, g.GetFloat64())
	}
	for _, h := range histograms {
		ew.printf("# HELP %s %s\n", h.name, escapeHelp(h.help))
		ew.printf("# TYPE %s histogram\n", h.name)
		var cum uint64
		for i, ub := range h.buckets {
			cum += atomic.LoadUint64(&h.counts[i])
			if math.IsInf(ub, 1) {
				ew.printf("%s_bucket{le=\"+Inf\"} %d\n", h.name, cum)
			} else {
				ew.printf("%s_bucket{le=\"%g\"} %d\n", h.name, ub, cum)
			}
		}
		ew.printf("%s_sum %g\n", h.name, h.Sum())
		ew.printf("%s_count %d\n", h.name, h.Count())
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func sanitize(s string) string {
	return strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(s)
}

func escapeHelp(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

type named interface {
	*Counter | *Gauge | *Histogram
}

func sortedValues[T named](m map[string]T) []T {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	out := make([]T, 0, len(ks))
	for _, k := range ks {
		out = append(out, m[k])
	}
	return out
}

// Timer observes elapsed milliseconds into a histogram.
type Timer struct {
	h     *Histogram
	start time.Time
}

func (h *Histogram) Start() Timer { return Timer{h: h, start: time.Now()} }

// Observe records the elapsed time and returns it.
func (t Timer) Observe() time.Duration {
	d := time.Since(t.start)
	if t.h != nil {
		t.h.Observe(float64(d) / float64(time.Millisecond))
	}
	return d
}

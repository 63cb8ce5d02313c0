package circuit

import (
	"context"
	"errors"
	"sync"
	"time"

	"address-similarity/pkg/logging"
	"address-similarity/pkg/metrics"
)

// State represents the circuit breaker state.
// Closed: normal operation; HalfOpen: probing; Open: fail fast.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config tunes a circuit breaker instance.
type Config struct {
	Name string

	OperationTimeout    time.Duration // per-call timeout
	OpenFor             time.Duration // how long to stay open before probing
	MaxConsecFailures   int           // consecutive failures to open
	WindowSize          int           // sliding window of recent calls
	MinSamples          int           // window samples needed before rates apply
	FailureRate         float64       // 0..1 fraction in window to open
	SlowCallThreshold   time.Duration // duration over which a call is considered slow
	SlowCallRate        float64       // 0..1 fraction in window to open
	HalfOpenMaxInFlight int           // usually 1
}

// ErrOpen indicates the breaker is open and calls are short-circuited.
var ErrOpen = errors.New("circuit open")

type sample struct {
	success bool
	slow    bool
}

// Breaker guards calls to a flaky dependency (the oracle endpoint).
type Breaker struct {
	cfg        Config
	mu         sync.Mutex
	st         State
	nextTrial  time.Time
	consecFail int
	inFlight   int // half-open trial calls

	win  []sample
	idx  int
	used int

	now func() time.Time
	log *logging.ComponentLogger

	mState   *metrics.Gauge
	mOpen    *metrics.Counter
	mSuccess *metrics.Counter
	mFailure *metrics.Counter
	mTimeout *metrics.Counter
	mReject  *metrics.Counter
	mLatency *metrics.Histogram
}

func New(cfg Config, log *logging.Logger) *Breaker {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 20
	}
	if cfg.HalfOpenMaxInFlight <= 0 {
		cfg.HalfOpenMaxInFlight = 1
	}
	prefix := "cb_" + cfg.Name
	b := &Breaker{
		cfg:      cfg,
		st:       Closed,
		win:      make([]sample, cfg.WindowSize),
		now:      time.Now,
		log:      log.WithComponent("circuit"),
		mState:   metrics.Default.Gauge(prefix+"_state", "Circuit breaker state (0=closed,1=open,2=half-open)"),
		mOpen:    metrics.Default.Counter(prefix+"_opens_total", "Circuit opened events"),
		mSuccess: metrics.Default.Counter(prefix+"_success_total", "Successful calls through circuit"),
		mFailure: metrics.Default.Counter(prefix+"_failure_total", "Failed calls through circuit"),
		mTimeout: metrics.Default.Counter(prefix+"_timeout_total", "Timed out calls"),
		mReject:  metrics.Default.Counter(prefix+"_rejected_total", "Calls short-circuited while open"),
		mLatency: metrics.Default.Histogram(prefix+"_latency_ms", "Latency of calls (ms)", metrics.LatencyBucketsMs),
	}
	b.mState.SetFloat64(0)
	return b
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.st
}

func (b *Breaker) setStateLocked(st State) {
	if b.st == st {
		return
	}
	b.st = st
	switch st {
	case Open:
		b.mOpen.Inc(1)
		b.nextTrial = b.now().Add(b.cfg.OpenFor)
	case Closed:
		// start a fresh window so old failures can't reopen immediately
		b.idx, b.used, b.consecFail = 0, 0, 0
	}
	b.mState.SetFloat64(float64(st))
	b.log.Info("breaker state change", logging.String("name", b.cfg.Name), logging.String("state", st.String()))
}

// record adds a sample into the ring and opens the circuit when a threshold trips.
func (b *Breaker) record(success, slow bool) {
	b.win[b.idx] = sample{success: success, slow: slow}
	if b.used < len(b.win) {
		b.used++
	}
	b.idx = (b.idx + 1) % len(b.win)

	if b.st != Closed {
		return
	}
	if b.cfg.MaxConsecFailures > 0 && b.consecFail >= b.cfg.MaxConsecFailures {
		b.setStateLocked(Open)
		return
	}
	if b.used < b.cfg.MinSamples {
		return
	}

	fail, slowN := 0, 0
	for i := 0; i < b.used; i++ {
		if !b.win[i].success {
			fail++
		}
		if b.win[i].slow {
			slowN++
		}
	}
	failRate := float64(fail) / float64(b.used)
	slowRate := float64(slowN) / float64(b.used)

	if (b.cfg.FailureRate > 0 && failRate >= b.cfg.FailureRate) ||
		(b.cfg.SlowCallRate > 0 && slowRate >= b.cfg.SlowCallRate) {
		b.setStateLocked(Open)
	}
}

// admit decides whether a call may proceed.
func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.st == Open {
		if b.now().Before(b.nextTrial) {
			return false
		}
		b.setStateLocked(HalfOpen)
	}
	if b.st == HalfOpen {
		if b.inFlight >= b.cfg.HalfOpenMaxInFlight {
			return false
		}
		b.inFlight++
	}
	return true
}

// Do runs op under the breaker. When the circuit is open or op fails,
// fallback (if any) decides the returned error; otherwise ErrOpen or op's
// error is returned. Outputs of op are captured through closure vars.
func (b *Breaker) Do(ctx context.Context, op func(ctx context.Context) error, fallback func(ctx context.Context, cause error) error) error {
	if !b.admit() {
		b.mReject.Inc(1)
		if fallback != nil {
			return fallback(ctx, ErrOpen)
		}
		return ErrOpen
	}

	callCtx := ctx
	if b.cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.cfg.OperationTimeout)
		defer cancel()
	}

	start := b.now()
	err := op(callCtx)
	dur := b.now().Sub(start)
	b.mLatency.Observe(float64(dur) / float64(time.Millisecond))
	slow := b.cfg.SlowCallThreshold > 0 && dur > b.cfg.SlowCallThreshold

	if errors.Is(err, context.DeadlineExceeded) {
		b.mTimeout.Inc(1)
	}

	b.mu.Lock()
	wasTrial := b.st == HalfOpen
	if wasTrial {
		b.inFlight--
	}
	if err != nil {
		b.consecFail++
		b.mFailure.Inc(1)
		b.record(false, slow)
		if wasTrial {
			b.setStateLocked(Open)
		}
	} else {
		b.consecFail = 0
		b.mSuccess.Inc(1)
		b.record(true, slow)
		if wasTrial {
			b.setStateLocked(Closed)
		}
	}
	b.mu.Unlock()

	if err != nil && fallback != nil {
		return fallback(ctx, err)
	}
	return err
}

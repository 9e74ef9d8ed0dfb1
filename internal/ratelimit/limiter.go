// Package ratelimit implements per-client sliding-window admission control.
package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultLimit          = 100
	DefaultWindow         = time.Minute
	DefaultSweepThreshold = 1000
)

// Config tunes a Limiter.
type Config struct {
	Limit          int
	Window         time.Duration
	SweepThreshold int
}

// Decision is the outcome of one admission attempt.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// clientState is the trailing window of one client. mu guards stamps and
// evicted only; it is never held across I/O.
type clientState struct {
	mu      sync.Mutex
	stamps  []time.Time
	evicted bool
}

// Limiter tracks clients independently. There is no lock shared between
// clients: the registry is a sync.Map and each client carries its own mutex.
type Limiter struct {
	limit     int
	window    time.Duration
	threshold int
	now       func() time.Time
	log       *zap.Logger

	clients  sync.Map // key -> *clientState
	size     atomic.Int64
	sweeping atomic.Bool
	sweeps   sync.WaitGroup
}

// New builds a Limiter, replacing non-positive settings with defaults.
func New(cfg Config, log *zap.Logger) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.SweepThreshold <= 0 {
		cfg.SweepThreshold = DefaultSweepThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Limiter{
		limit:     cfg.Limit,
		window:    cfg.Window,
		threshold: cfg.SweepThreshold,
		now:       time.Now,
		log:       log,
	}
}

// Limit returns the configured number of requests per window.
func (l *Limiter) Limit() int { return l.limit }

// Allow records a request for key if the trailing window has room.
func (l *Limiter) Allow(key string) Decision {
	for {
		d, ok := l.tryAdmit(l.state(key))
		if !ok {
			// Swept between lookup and lock; resolve a fresh state.
			continue
		}
		if l.size.Load() > int64(l.threshold) {
			l.maybeSweep()
		}
		return d
	}
}

func (l *Limiter) tryAdmit(st *clientState) (Decision, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.evicted {
		return Decision{}, false
	}
	return l.admit(st, l.now()), true
}

func (l *Limiter) state(key string) *clientState {
	if v, ok := l.clients.Load(key); ok {
		return v.(*clientState)
	}
	v, loaded := l.clients.LoadOrStore(key, &clientState{})
	if !loaded {
		l.size.Add(1)
	}
	return v.(*clientState)
}

func (l *Limiter) admit(st *clientState, now time.Time) Decision {
	st.stamps = trim(st.stamps, now.Add(-l.window))
	if len(st.stamps) >= l.limit {
		retry := l.window - now.Sub(st.stamps[0])
		if retry <= 0 {
			retry = time.Nanosecond
		}
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retry}
	}
	st.stamps = append(st.stamps, now)
	return Decision{Allowed: true, Remaining: l.limit - len(st.stamps)}
}

// trim drops timestamps at or before cutoff. stamps is sorted ascending.
func trim(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return stamps
	}
	return append(stamps[:0], stamps[i:]...)
}

func (l *Limiter) maybeSweep() {
	if !l.sweeping.CompareAndSwap(false, true) {
		return
	}
	l.sweeps.Add(1)
	go func() {
		defer l.sweeps.Done()
		defer l.sweeping.Store(false)
		l.Sweep()
	}()
}

// Sweep evicts every client whose window has fully aged out and returns the
// number evicted.
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.window)
	evicted := 0
	l.clients.Range(func(k, v any) bool {
		if l.evictIfIdle(k, v.(*clientState), cutoff) {
			evicted++
		}
		return true
	})
	if evicted > 0 {
		l.log.Debug("rate limiter sweep", zap.Int("evicted", evicted), zap.Int64("tracked", l.size.Load()))
	}
	return evicted
}

func (l *Limiter) evictIfIdle(key any, st *clientState, cutoff time.Time) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.stamps = trim(st.stamps, cutoff)
	if len(st.stamps) > 0 || st.evicted {
		return false
	}
	st.evicted = true
	l.clients.Delete(key)
	l.size.Add(-1)
	return true
}

// Tracked reports how many clients currently hold state.
func (l *Limiter) Tracked() int { return int(l.size.Load()) }

// Wait blocks until any background sweep has finished.
func (l *Limiter) Wait() { l.sweeps.Wait() }

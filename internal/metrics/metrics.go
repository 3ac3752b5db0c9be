package metrics

import (
	"sync"
	"time"

	"dupr-sync-service/internal/domain"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type batchStats struct {
	runs        int
	errors      int
	lastLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about provider calls and
// sync runs. It is intentionally simple so it can be swapped for a real
// backend later.
type Recorder struct {
	mu       sync.Mutex
	stats    map[string]*providerStats
	outcomes map[domain.RowStatus]int
	batch    batchStats
	otel     *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats:    make(map[string]*providerStats),
		outcomes: make(map[domain.RowStatus]int),
		otel:     otel,
	}
}

// RecordProviderAttempt increments counters for a provider call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(provider)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordRateLimit tracks that a provider response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(provider string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(provider)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(provider, retryAfter)
	}
}

// RecordRowOutcome counts one roster row ending a run in the given status.
func (r *Recorder) RecordRowOutcome(status domain.RowStatus) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.outcomes[status]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRowOutcome(status)
	}
}

// RecordBatch tracks one full synchronization run.
func (r *Recorder) RecordBatch(duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.batch.runs++
	r.batch.lastLatency = duration
	if err != nil {
		r.batch.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordBatch(duration, err)
	}
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stats[provider]; ok {
		return s.calls
	}
	return 0
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stats[provider]; ok {
		return s.errors
	}
	return 0
}

// RateLimitHits returns the number of rate limit events seen for a provider.
func (r *Recorder) RateLimitHits(provider string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stats[provider]; ok {
		return s.rateLimitHits
	}
	return 0
}

// RowOutcomes returns how many rows finished with the given status.
func (r *Recorder) RowOutcomes(status domain.RowStatus) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcomes[status]
}

// BatchRuns returns the number of completed synchronization runs.
func (r *Recorder) BatchRuns() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batch.runs
}

// BatchErrors returns the number of runs that ended with an error.
func (r *Recorder) BatchErrors() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batch.errors
}

// RecordHTTPRequest forwards request telemetry to the otel instruments.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

func (r *Recorder) ensureStats(provider string) *providerStats {
	s, ok := r.stats[provider]
	if !ok {
		s = &providerStats{}
		r.stats[provider] = s
	}
	return s
}

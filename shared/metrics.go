package shared

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Custom counters recorded by the cache layer
const (
	MetricCacheHits          = "cache_hits"
	MetricCacheMisses        = "cache_misses"
	MetricCacheReadFailures  = "cache_read_failures"
	MetricCacheWriteFailures = "cache_write_failures"
)

const latencyWindowSize = 1000

// latencyWindow keeps the most recent samples in a ring for percentile estimates.
// Not safe for concurrent use; owners guard it.
type latencyWindow struct {
	samples []time.Duration
	next    int
	min     time.Duration
	max     time.Duration
	total   time.Duration
	count   int64
}

func (w *latencyWindow) add(d time.Duration) {
	if w.count == 0 || d < w.min {
		w.min = d
	}
	if d > w.max {
		w.max = d
	}
	w.total += d
	w.count++

	if len(w.samples) < latencyWindowSize {
		w.samples = append(w.samples, d)
		return
	}
	w.samples[w.next] = d
	w.next = (w.next + 1) % latencyWindowSize
}

// LatencySummary describes recorded latencies. Percentiles cover the recent window only.
type LatencySummary struct {
	Min     time.Duration
	Max     time.Duration
	Average time.Duration
	P95     time.Duration
	P99     time.Duration
}

func (w *latencyWindow) summary() LatencySummary {
	if w.count == 0 {
		return LatencySummary{}
	}

	sorted := append([]time.Duration(nil), w.samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return LatencySummary{
		Min:     w.min,
		Max:     w.max,
		Average: w.total / time.Duration(w.count),
		P95:     sorted[percentileIndex(len(sorted), 0.95)],
		P99:     sorted[percentileIndex(len(sorted), 0.99)],
	}
}

func percentileIndex(n int, p float64) int {
	i := int(float64(n) * p)
	if i >= n {
		i = n - 1
	}
	return i
}

func successRate(total, failed int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(total-failed) / float64(total) * 100
}

// ServiceMetrics counts requests, failures and named counters for one route or component.
type ServiceMetrics struct {
	name     string
	mutex    sync.RWMutex
	requests int64
	failures int64
	latency  latencyWindow
	counters map[string]int64
	updated  time.Time
}

func NewServiceMetrics(name string) *ServiceMetrics {
	return &ServiceMetrics{
		name:     name,
		counters: make(map[string]int64),
		updated:  time.Now(),
	}
}

func (m *ServiceMetrics) RecordRequest(success bool, elapsed time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.requests++
	if !success {
		m.failures++
	}
	m.latency.add(elapsed)
	m.updated = time.Now()
}

func (m *ServiceMetrics) IncrementCustomCounter(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.counters[key]++
	m.updated = time.Now()
}

// Counter returns a custom counter value, zero when it was never incremented
func (m *ServiceMetrics) Counter(key string) int64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.counters[key]
}

// ServiceSnapshot is a point-in-time copy of ServiceMetrics
type ServiceSnapshot struct {
	Name        string
	Requests    int64
	Failures    int64
	SuccessRate float64
	Latency     LatencySummary
	Counters    map[string]int64
	Updated     time.Time
}

func (m *ServiceMetrics) Snapshot() ServiceSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}

	return ServiceSnapshot{
		Name:        m.name,
		Requests:    m.requests,
		Failures:    m.failures,
		SuccessRate: successRate(m.requests, m.failures),
		Latency:     m.latency.summary(),
		Counters:    counters,
		Updated:     m.updated,
	}
}

func (m *ServiceMetrics) LogSummary() {
	s := m.Snapshot()
	logrus.WithFields(logrus.Fields{
		"component":    "Metrics",
		"name":         s.Name,
		"requests":     s.Requests,
		"failures":     s.Failures,
		"success_rate": s.SuccessRate,
		"latency_avg":  s.Latency.Average,
		"latency_min":  s.Latency.Min,
		"latency_max":  s.Latency.Max,
		"latency_p95":  s.Latency.P95,
		"latency_p99":  s.Latency.P99,
		"counters":     s.Counters,
		"updated":      s.Updated,
	}).Info("Service metrics")
}

// HTTPMetrics tracks outbound calls to one upstream API
type HTTPMetrics struct {
	mutex    sync.RWMutex
	requests int64
	failures int64
	timeouts int64
	latency  latencyWindow
	statuses map[int]int64
	errors   map[string]int64
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		statuses: make(map[int]int64),
		errors:   make(map[string]int64),
	}
}

// RecordHTTPRequest records one call. statusCode is 0 when no response arrived.
func (hm *HTTPMetrics) RecordHTTPRequest(success bool, statusCode int, elapsed time.Duration, errorType string, isTimeout bool) {
	hm.mutex.Lock()
	defer hm.mutex.Unlock()

	hm.requests++
	if !success {
		hm.failures++
	}
	if isTimeout {
		hm.timeouts++
	}
	if statusCode != 0 {
		hm.statuses[statusCode]++
	}
	if errorType != "" {
		hm.errors[errorType]++
	}
	hm.latency.add(elapsed)
}

func (hm *HTTPMetrics) Requests() int64 {
	hm.mutex.RLock()
	defer hm.mutex.RUnlock()
	return hm.requests
}

// HTTPSnapshot is a point-in-time copy of HTTPMetrics
type HTTPSnapshot struct {
	Requests    int64
	Failures    int64
	Timeouts    int64
	SuccessRate float64
	Latency     LatencySummary
	Statuses    map[int]int64
	Errors      map[string]int64
}

func (hm *HTTPMetrics) Snapshot() HTTPSnapshot {
	hm.mutex.RLock()
	defer hm.mutex.RUnlock()

	statuses := make(map[int]int64, len(hm.statuses))
	for k, v := range hm.statuses {
		statuses[k] = v
	}
	errs := make(map[string]int64, len(hm.errors))
	for k, v := range hm.errors {
		errs[k] = v
	}

	return HTTPSnapshot{
		Requests:    hm.requests,
		Failures:    hm.failures,
		Timeouts:    hm.timeouts,
		SuccessRate: successRate(hm.requests, hm.failures),
		Latency:     hm.latency.summary(),
		Statuses:    statuses,
		Errors:      errs,
	}
}

func (hm *HTTPMetrics) LogHTTPSummary(upstream string) {
	s := hm.Snapshot()
	logrus.WithFields(logrus.Fields{
		"component":    "Metrics",
		"upstream":     upstream,
		"requests":     s.Requests,
		"failures":     s.Failures,
		"timeouts":     s.Timeouts,
		"success_rate": s.SuccessRate,
		"latency_avg":  s.Latency.Average,
		"latency_p95":  s.Latency.P95,
		"statuses":     s.Statuses,
		"errors":       s.Errors,
	}).Info("Upstream metrics")
}

// MetricsRegistry hands out named service and upstream trackers.
type MetricsRegistry struct {
	mutex     sync.Mutex
	services  map[string]*ServiceMetrics
	upstreams map[string]*HTTPMetrics
}

// NewMetricsRegistry creates an empty registry
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		services:  make(map[string]*ServiceMetrics),
		upstreams: make(map[string]*HTTPMetrics),
	}
}

// Service returns the tracker for name, creating it on first use
func (r *MetricsRegistry) Service(name string) *ServiceMetrics {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	m, ok := r.services[name]
	if !ok {
		m = NewServiceMetrics(name)
		r.services[name] = m
	}
	return m
}

// Upstream returns the HTTP tracker for name, creating it on first use
func (r *MetricsRegistry) Upstream(name string) *HTTPMetrics {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	m, ok := r.upstreams[name]
	if !ok {
		m = NewHTTPMetrics()
		r.upstreams[name] = m
	}
	return m
}

// LogAll logs every tracker in name order
func (r *MetricsRegistry) LogAll() {
	r.mutex.Lock()
	serviceNames := make([]string, 0, len(r.services))
	for name := range r.services {
		serviceNames = append(serviceNames, name)
	}
	upstreamNames := make([]string, 0, len(r.upstreams))
	for name := range r.upstreams {
		upstreamNames = append(upstreamNames, name)
	}
	r.mutex.Unlock()

	sort.Strings(serviceNames)
	sort.Strings(upstreamNames)

	for _, name := range serviceNames {
		r.Service(name).LogSummary()
	}
	for _, name := range upstreamNames {
		r.Upstream(name).LogHTTPSummary(name)
	}
}

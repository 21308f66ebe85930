package metricstest

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zalando/storefront/metrics"
)

// MockMetrics records the metrics in memory, keyed the same way as the
// CodaHale format.
type MockMetrics struct {
	Prefix string

	mu sync.Mutex

	// Metrics gathering
	counters map[string]int64
	gauges   map[string]float64
	measures map[string][]time.Duration
	Now      time.Time
}

var _ metrics.Metrics = &MockMetrics{}

//
// Public thread safe access to metrics
//

func (m *MockMetrics) WithCounters(f func(counters map[string]int64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	f(m.counters)
}

func (m *MockMetrics) WithMeasures(f func(measures map[string][]time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.measures == nil {
		m.measures = make(map[string][]time.Duration)
	}
	f(m.measures)
}

func (m *MockMetrics) WithGauges(f func(map[string]float64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gauges == nil {
		m.gauges = make(map[string]float64)
	}

	f(m.gauges)
}

// Counter returns the current value of a counter.
func (m *MockMetrics) Counter(key string) (v int64) {
	m.WithCounters(func(c map[string]int64) { v = c[m.Prefix+key] })
	return
}

// Gauge returns the current value of a gauge.
func (m *MockMetrics) Gauge(key string) (v float64) {
	m.WithGauges(func(g map[string]float64) { v = g[m.Prefix+key] })
	return
}

// Measures returns the number of measurements recorded for a key.
func (m *MockMetrics) Measures(key string) (n int) {
	m.WithMeasures(func(ms map[string][]time.Duration) { n = len(ms[m.Prefix+key]) })
	return
}

func (m *MockMetrics) measureSince(key string, start time.Time) {
	now := m.Now
	if now.IsZero() {
		now = time.Now()
	}

	key = m.Prefix + key
	m.WithMeasures(func(measures map[string][]time.Duration) {
		measures[key] = append(measures[key], now.Sub(start))
	})
}

func (m *MockMetrics) incCounter(key string) {
	key = m.Prefix + key
	m.WithCounters(func(counters map[string]int64) {
		counters[key]++
	})
}

//
// Interface Metrics
//

func (m *MockMetrics) MeasureLookup(match string, start time.Time) {
	m.measureSince(fmt.Sprintf(metrics.KeyLookup, match), start)
}

func (m *MockMetrics) IncRebuilds(result string) {
	m.incCounter(fmt.Sprintf(metrics.KeyRebuilds, result))
}

func (m *MockMetrics) SetRegistrations(structure string, n int) {
	key := m.Prefix + fmt.Sprintf(metrics.KeyRegistrations, structure)
	m.WithGauges(func(gauges map[string]float64) {
		gauges[key] = float64(n)
	})
}

func (m *MockMetrics) IncContentCache(tier, result string) {
	m.incCounter(fmt.Sprintf(metrics.KeyContentCache, tier, result))
}

func (m *MockMetrics) MeasureContentFetch(outcome string, start time.Time) {
	m.measureSince(fmt.Sprintf(metrics.KeyContentFetch, outcome), start)
}

func (m *MockMetrics) IncSourceErrors(source string) {
	m.incCounter(fmt.Sprintf(metrics.KeySourceErrors, source))
}

func (*MockMetrics) RegisterHandler(string, *http.ServeMux) {}

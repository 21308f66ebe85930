package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rcrowley/go-metrics"
)

const (
	statsRefreshDuration        = 5 * time.Second
	defaultUniformReservoirSize = 1024
)

// CodaHale is the CodaHale format backend, implements Metrics interface
// in DropWizard's CodaHale metrics format.
type CodaHale struct {
	reg     metrics.Registry
	prefix  string
	options Options
}

// NewCodaHale returns a new CodaHale backend of metrics.
func NewCodaHale(o Options) *CodaHale {
	c := &CodaHale{
		reg:     metrics.NewRegistry(),
		prefix:  o.Prefix,
		options: o,
	}

	if o.EnableRuntimeMetrics {
		metrics.RegisterRuntimeMemStats(c.reg)
		go metrics.CaptureRuntimeMemStats(c.reg, statsRefreshDuration)
	}

	return c
}

func newTimer() metrics.Timer {
	return metrics.NewCustomTimer(
		metrics.NewHistogram(metrics.NewUniformSample(defaultUniformReservoirSize)),
		metrics.NewMeter(),
	)
}

func (c *CodaHale) key(format string, args ...any) string {
	return c.prefix + fmt.Sprintf(format, args...)
}

func (c *CodaHale) measureSince(key string, start time.Time) {
	c.reg.GetOrRegister(key, newTimer).(metrics.Timer).UpdateSince(start)
}

func (c *CodaHale) incCounter(key string) {
	c.reg.GetOrRegister(key, metrics.NewCounter).(metrics.Counter).Inc(1)
}

func (c *CodaHale) MeasureLookup(match string, start time.Time) {
	c.measureSince(c.key(KeyLookup, match), start)
}

func (c *CodaHale) IncRebuilds(result string) {
	c.incCounter(c.key(KeyRebuilds, result))
}

func (c *CodaHale) SetRegistrations(structure string, n int) {
	key := c.key(KeyRegistrations, structure)
	c.reg.GetOrRegister(key, metrics.NewGauge).(metrics.Gauge).Update(int64(n))
}

func (c *CodaHale) IncContentCache(tier, result string) {
	c.incCounter(c.key(KeyContentCache, tier, result))
}

func (c *CodaHale) MeasureContentFetch(outcome string, start time.Time) {
	c.measureSince(c.key(KeyContentFetch, outcome), start)
}

func (c *CodaHale) IncSourceErrors(source string) {
	c.incCounter(c.key(KeySourceErrors, source))
}

func (c *CodaHale) RegisterHandler(path string, mux *http.ServeMux) {
	mux.Handle(path, c)
}

func (c *CodaHale) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(c.reg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

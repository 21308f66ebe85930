package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	promRoutingSubsystem = "routing"
	promContentSubsystem = "content"
	promSourceSubsystem  = "source"
)

// Prometheus implements the prometheus metrics backend.
type Prometheus struct {
	lookupM        *prometheus.HistogramVec
	rebuildsM      *prometheus.CounterVec
	registrationsM *prometheus.GaugeVec
	contentCacheM  *prometheus.CounterVec
	contentFetchM  *prometheus.HistogramVec
	sourceErrorsM  *prometheus.CounterVec

	opts     Options
	registry *prometheus.Registry
	handler  http.Handler
}

// NewPrometheus returns a new Prometheus metric backend.
func NewPrometheus(opts Options) *Prometheus {
	namespace := defaultNamespace
	if opts.Prefix != "" {
		namespace = strings.TrimSuffix(opts.Prefix, ".")
	}

	buckets := opts.HistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	p := &Prometheus{
		opts:     opts,
		registry: prometheus.NewRegistry(),
	}

	p.lookupM = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: promRoutingSubsystem,
		Name:      "lookup_duration_seconds",
		Help:      "Duration in seconds of a registration lookup.",
		Buckets:   buckets,
	}, []string{"match"})

	p.rebuildsM = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: promRoutingSubsystem,
		Name:      "rebuilds_total",
		Help:      "The total of routing updates, by result.",
	}, []string{"result"})

	p.registrationsM = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: promRoutingSubsystem,
		Name:      "registrations",
		Help:      "The number of registrations in the current generation, by structure.",
	}, []string{"structure"})

	p.contentCacheM = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: promContentSubsystem,
		Name:      "cache_total",
		Help:      "The total of content cache lookups, by tier and result.",
	}, []string{"tier", "result"})

	p.contentFetchM = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: promContentSubsystem,
		Name:      "fetch_duration_seconds",
		Help:      "Duration in seconds of the external content fetches, by outcome.",
		Buckets:   buckets,
	}, []string{"outcome"})

	p.sourceErrorsM = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: promSourceSubsystem,
		Name:      "errors_total",
		Help:      "The total of failed registration source loads.",
	}, []string{"source"})

	p.registry.MustRegister(
		p.lookupM,
		p.rebuildsM,
		p.registrationsM,
		p.contentCacheM,
		p.contentFetchM,
		p.sourceErrorsM,
	)

	if opts.EnableRuntimeMetrics {
		p.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		p.registry.MustRegister(collectors.NewGoCollector())
	}

	p.handler = promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
	return p
}

// Registry returns the prometheus registry holding the collectors.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

func (p *Prometheus) MeasureLookup(match string, start time.Time) {
	p.lookupM.WithLabelValues(match).Observe(time.Since(start).Seconds())
}

func (p *Prometheus) IncRebuilds(result string) {
	p.rebuildsM.WithLabelValues(result).Inc()
}

func (p *Prometheus) SetRegistrations(structure string, n int) {
	p.registrationsM.WithLabelValues(structure).Set(float64(n))
}

func (p *Prometheus) IncContentCache(tier, result string) {
	p.contentCacheM.WithLabelValues(tier, result).Inc()
}

func (p *Prometheus) MeasureContentFetch(outcome string, start time.Time) {
	p.contentFetchM.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

func (p *Prometheus) IncSourceErrors(source string) {
	p.sourceErrorsM.WithLabelValues(source).Inc()
}

func (p *Prometheus) RegisterHandler(path string, mux *http.ServeMux) {
	mux.Handle(path, p.handler)
}

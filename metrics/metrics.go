package metrics

import (
	"net/http"
	"time"
)

// Kind is the format of the exposed metrics.
type Kind int

const (
	UnknownKind    Kind = 0
	CodaHaleKind   Kind = 1
	PrometheusKind Kind = 2
	AllKind        Kind = CodaHaleKind | PrometheusKind
)

const (
	defaultNamespace = "storefront"

	KeyLookup        = "routing.lookup.%s"
	KeyRebuilds      = "routing.rebuilds.%s"
	KeyRegistrations = "routing.registrations.%s"
	KeyContentCache  = "content.cache.%s.%s"
	KeyContentFetch  = "content.fetch.%s"
	KeySourceErrors  = "source.errors.%s"
)

// Metrics is the interface of the metrics collectors.
type Metrics interface {
	// MeasureLookup records the duration of a path lookup, by the
	// type of the match.
	MeasureLookup(match string, start time.Time)

	// IncRebuilds counts the routing updates, by result: rebuilt or
	// unchanged.
	IncRebuilds(result string)

	// SetRegistrations sets the number of registrations in a routing
	// structure: literal, wildcard or default.
	SetRegistrations(structure string, n int)

	// IncContentCache counts content lookups per cache tier and
	// result: hit, miss or error.
	IncContentCache(tier, result string)

	// MeasureContentFetch records the duration of an external
	// content fetch, by outcome.
	MeasureContentFetch(outcome string, start time.Time)

	// IncSourceErrors counts the failed loads of a registration
	// source.
	IncSourceErrors(source string)

	// RegisterHandler registers the metrics endpoint on the mux.
	RegisterHandler(path string, mux *http.ServeMux)
}

// Options for initializing metrics collection.
type Options struct {

	// the metrics exposing format.
	Format Kind

	// Common prefix for the keys of the different collected
	// metrics. In Prometheus format, it is used as the namespace.
	Prefix string

	// If set, Go runtime metrics are collected in addition to the
	// storefront metrics.
	EnableRuntimeMetrics bool

	// HistogramBuckets defines buckets into which the observations
	// are counted for histogram metrics. Only applies to the
	// Prometheus format.
	HistogramBuckets []float64
}

// ParseKind returns the kind of the metrics format for its name.
func ParseKind(s string) Kind {
	switch s {
	case "codahale":
		return CodaHaleKind
	case "prometheus":
		return PrometheusKind
	case "all":
		return AllKind
	default:
		return UnknownKind
	}
}

// New creates the collector according to the format in the options.
// It defaults to Prometheus.
func New(o Options) Metrics {
	switch o.Format {
	case CodaHaleKind:
		return NewCodaHale(o)
	case AllKind:
		return NewAll(o)
	default:
		return NewPrometheus(o)
	}
}

type void struct{}

// Void is a collector that drops every measurement.
var Void Metrics = void{}

func (void) MeasureLookup(string, time.Time)        {}
func (void) IncRebuilds(string)                     {}
func (void) SetRegistrations(string, int)           {}
func (void) IncContentCache(string, string)         {}
func (void) MeasureContentFetch(string, time.Time)  {}
func (void) IncSourceErrors(string)                 {}
func (void) RegisterHandler(string, *http.ServeMux) {}

package metrics

import (
	"net/http"
	"strings"
	"time"
)

// All collects both the Prometheus and the CodaHale format. The
// CodaHale metrics are served under the codahale subpath of the
// metrics path.
type All struct {
	prometheus *Prometheus
	codaHale   *CodaHale
}

func NewAll(o Options) *All {
	return &All{
		prometheus: NewPrometheus(o),
		codaHale:   NewCodaHale(o),
	}
}

func (a *All) MeasureLookup(match string, start time.Time) {
	a.prometheus.MeasureLookup(match, start)
	a.codaHale.MeasureLookup(match, start)
}

func (a *All) IncRebuilds(result string) {
	a.prometheus.IncRebuilds(result)
	a.codaHale.IncRebuilds(result)
}

func (a *All) SetRegistrations(structure string, n int) {
	a.prometheus.SetRegistrations(structure, n)
	a.codaHale.SetRegistrations(structure, n)
}

func (a *All) IncContentCache(tier, result string) {
	a.prometheus.IncContentCache(tier, result)
	a.codaHale.IncContentCache(tier, result)
}

func (a *All) MeasureContentFetch(outcome string, start time.Time) {
	a.prometheus.MeasureContentFetch(outcome, start)
	a.codaHale.MeasureContentFetch(outcome, start)
}

func (a *All) IncSourceErrors(source string) {
	a.prometheus.IncSourceErrors(source)
	a.codaHale.IncSourceErrors(source)
}

func (a *All) RegisterHandler(path string, mux *http.ServeMux) {
	a.prometheus.RegisterHandler(path, mux)
	a.codaHale.RegisterHandler(strings.TrimSuffix(path, "/")+"/codahale", mux)
}

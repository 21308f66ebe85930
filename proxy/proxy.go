package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dimfeld/httppath"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/zalando/storefront/content"
	"github.com/zalando/storefront/logging"
	"github.com/zalando/storefront/metrics"
	"github.com/zalando/storefront/routing"
)

// Routing provides the current generation of the routing.
type Routing interface {
	Get() *routing.Generation
}

// Store provides the content records.
type Store interface {
	Get(ctx context.Context, id string) (*content.Record, error)
}

// Options for initializing the handler.
type Options struct {

	// Routing is required.
	Routing Routing

	// Store is required.
	Store Store

	// DefaultHTTPStatus is the status of the response when no
	// registration accepts the path, and there is no default
	// registration either. Defaults to 404.
	DefaultHTTPStatus int

	// Metrics collector, defaults to a no-op implementation.
	Metrics metrics.Metrics

	// Tracer defaults to the global tracer provider.
	Tracer trace.Tracer

	// Log defaults to the application log.
	Log logging.Logger
}

// Proxy is the HTTP handler resolving the paths to content.
type Proxy struct {
	routing       Routing
	store         Store
	defaultStatus int
	metrics       metrics.Metrics
	tracer        trace.Tracer
	log           logging.Logger
}

type response struct {
	Path         string          `json:"path"`
	Registration string          `json:"registration"`
	ContentId    string          `json:"contentId"`
	Match        string          `json:"match"`
	Content      *content.Record `json:"content"`
}

// New creates the handler.
func New(o Options) *Proxy {
	if o.DefaultHTTPStatus == 0 {
		o.DefaultHTTPStatus = http.StatusNotFound
	}

	if o.Metrics == nil {
		o.Metrics = metrics.Void
	}

	if o.Tracer == nil {
		o.Tracer = otel.Tracer(tracerName)
	}

	if o.Log == nil {
		o.Log = logging.Default()
	}

	return &Proxy{
		routing:       o.Routing,
		store:         o.Store,
		defaultStatus: o.DefaultHTTPStatus,
		metrics:       o.Metrics,
		tracer:        o.Tracer,
		log:           o.Log,
	}
}

func flowID(r *http.Request) string {
	id := r.Header.Get(logging.FlowIdHeader)
	if id == "" {
		id = uuid.NewString()
		r.Header.Set(logging.FlowIdHeader, id)
	}

	return id
}

// resolve looks up the path in a single generation, and falls back to
// its default registration.
func (p *Proxy) resolve(path string) routing.Match {
	start := time.Now()
	g := p.routing.Get()
	m := g.Match(path)
	p.metrics.MeasureLookup(m.Type.String(), start)
	if m.Type != routing.MatchNone {
		return m
	}

	if d, ok := g.Default(); ok {
		return routing.Match{Registration: d, Type: routing.MatchDefault}
	}

	return m
}

func (p *Proxy) sendError(w http.ResponseWriter, span trace.Span, code int) {
	span.SetAttributes(attribute.Int(HTTPStatusCodeTag, code))
	http.Error(w, http.StatusText(code), code)
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fid := flowID(r)
	w.Header().Set(logging.FlowIdHeader, fid)

	path := httppath.Clean(r.URL.Path)
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := p.tracer.Start(
		ctx,
		resolveSpanName,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String(HTTPMethodTag, r.Method),
			attribute.String(HTTPPathTag, path),
			attribute.String(FlowIDTag, fid),
		),
	)
	defer span.End()

	if r.Method != "GET" && r.Method != "HEAD" {
		w.Header().Set("Allow", "GET, HEAD")
		p.sendError(w, span, http.StatusMethodNotAllowed)
		return
	}

	m := p.resolve(path)
	span.SetAttributes(attribute.String(MatchTag, m.Type.String()))
	if m.Type == routing.MatchNone {
		p.log.Debugf("no registration for %s, flow id: %s", path, fid)
		p.sendError(w, span, p.defaultStatus)
		return
	}

	reg := m.Registration
	span.SetAttributes(
		attribute.String(RegistrationTag, reg.String()),
		attribute.String(ContentIDTag, reg.ContentId),
	)

	c, err := p.store.Get(ctx, reg.ContentId)
	if err != nil {
		span.SetAttributes(attribute.Bool(ErrorTag, true))
		span.RecordError(err)
		if errors.Is(err, content.ErrNotFound) {
			p.log.Warnf("content %s of %s not found, flow id: %s", reg.ContentId, reg.Pattern, fid)
			p.sendError(w, span, http.StatusNotFound)
			return
		}

		span.SetStatus(codes.Error, err.Error())
		p.log.Errorf("failed to get content %s of %s, flow id: %s: %v", reg.ContentId, reg.Pattern, fid, err)
		p.sendError(w, span, http.StatusBadGateway)
		return
	}

	span.SetAttributes(attribute.Int(HTTPStatusCodeTag, http.StatusOK))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == "HEAD" {
		return
	}

	if err := json.NewEncoder(w).Encode(response{
		Path:         path,
		Registration: reg.Pattern,
		ContentId:    reg.ContentId,
		Match:        m.Type.String(),
		Content:      c,
	}); err != nil {
		p.log.Errorf("failed to write response, flow id: %s: %v", fid, err)
	}
}

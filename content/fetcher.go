package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/zalando/storefront/metrics"
)

const (
	DefaultTimeout = 2 * time.Second
	DefaultRetries = 3

	maxRecordSize = 1 << 22
	tracerName    = "github.com/zalando/storefront/content"
)

var errBackendStatus = errors.New("unexpected backend status")

// FetcherOptions configure the HTTP fetcher.
type FetcherOptions struct {

	// BaseURL of the content API. The records are requested from
	// {BaseURL}/{id}.
	BaseURL string

	// Timeout of a single request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Retries is the maximum number of attempts of a fetch, including
	// the first one. Defaults to DefaultRetries.
	Retries int

	// BreakerFailures is the number of consecutive failed fetches
	// that open the circuit breaker.
	BreakerFailures int

	// BreakerTimeout is the time that the breaker stays open.
	BreakerTimeout time.Duration

	// RetryInterval is the initial interval between two attempts.
	RetryInterval time.Duration

	// Client is used for the requests when set.
	Client *http.Client

	Metrics metrics.Metrics

	// Tracer defaults to the global tracer provider.
	Tracer trace.Tracer
}

// HTTPFetcher fetches content records from a JSON API.
type HTTPFetcher struct {
	base     string
	client   *http.Client
	retries  int
	interval time.Duration
	breaker  *breaker
	metrics  metrics.Metrics
	tracer   trace.Tracer
}

var _ Fetcher = &HTTPFetcher{}

// NewHTTPFetcher creates a fetcher for the content API at
// o.BaseURL.
func NewHTTPFetcher(o FetcherOptions) (*HTTPFetcher, error) {
	u, err := url.Parse(o.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid content backend url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid content backend url: %q", o.BaseURL)
	}

	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}

	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}

	if o.RetryInterval <= 0 {
		o.RetryInterval = o.Timeout / 20
	}

	if o.Client == nil {
		o.Client = &http.Client{Timeout: o.Timeout}
	}

	if o.Metrics == nil {
		o.Metrics = metrics.Void
	}

	if o.Tracer == nil {
		o.Tracer = otel.Tracer(tracerName)
	}

	return &HTTPFetcher{
		base:     strings.TrimSuffix(o.BaseURL, "/"),
		client:   o.Client,
		retries:  o.Retries,
		interval: o.RetryInterval,
		breaker:  newBreaker(u.Host, o.BreakerFailures, o.BreakerTimeout),
		metrics:  o.Metrics,
		tracer:   o.Tracer,
	}, nil
}

// Fetch requests the record with the id from the backend.
func (f *HTTPFetcher) Fetch(ctx context.Context, id string) (*Record, error) {
	ctx, span := f.tracer.Start(
		ctx,
		"fetch_content",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("content.id", id)),
	)
	defer span.End()

	start := time.Now()
	done, ok := f.breaker.allow()
	if !ok {
		f.metrics.MeasureContentFetch("unavailable", start)
		span.SetStatus(codes.Error, ErrUnavailable.Error())
		return nil, ErrUnavailable
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.interval
	r, err := backoff.Retry(
		ctx,
		func() (*Record, error) { return f.fetchOnce(ctx, id) },
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(f.retries)),
	)

	done(err == nil || errors.Is(err, ErrNotFound))

	switch {
	case err == nil:
		f.metrics.MeasureContentFetch("success", start)
		return r, nil
	case errors.Is(err, ErrNotFound):
		f.metrics.MeasureContentFetch("notfound", start)
		span.SetAttributes(attribute.Bool("content.notfound", true))
		return nil, err
	default:
		f.metrics.MeasureContentFetch("error", start)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to fetch content %s: %w", id, err)
	}
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, id string) (*Record, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", f.base+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	rsp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}

		return nil, err
	}

	defer rsp.Body.Close()

	switch {
	case rsp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(ErrNotFound)
	case rsp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %d", errBackendStatus, rsp.StatusCode)
	case rsp.StatusCode < 200 || rsp.StatusCode >= 300:
		return nil, backoff.Permanent(fmt.Errorf("%w: %d", errBackendStatus, rsp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(rsp.Body, maxRecordSize+1))
	if err != nil {
		return nil, err
	}

	if len(body) > maxRecordSize {
		return nil, backoff.Permanent(fmt.Errorf("%w: too large", ErrInvalidRecord))
	}

	r, err := parseRecord(id, body)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	return r, nil
}

func parseRecord(id string, body []byte) (*Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidRecord)
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidRecord)
	}

	if got := doc.Get("id").String(); got != id {
		return nil, fmt.Errorf("%w: expected id %q, got %q", ErrInvalidRecord, id, got)
	}

	r := &Record{
		ID:    id,
		Type:  doc.Get("type").String(),
		Title: doc.Get("title").String(),
	}

	if b := doc.Get("body"); b.Exists() {
		r.Body = json.RawMessage(b.Raw)
	}

	return r, nil
}

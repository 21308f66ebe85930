package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/zalando/storefront/content"
	"github.com/zalando/storefront/logging"
	"github.com/zalando/storefront/metrics"
	"github.com/zalando/storefront/otel"
	"github.com/zalando/storefront/proxy"
	"github.com/zalando/storefront/regfile"
	"github.com/zalando/storefront/routing"
)

const (
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 60 * time.Second
)

// Options to start the storefront.
type Options struct {

	// Network address that the storefront should listen on.
	Address string

	// Network address of the support endpoints, /metrics, /routes
	// and /healthz. When empty, no support listener is started.
	SupportListener string

	// The status of the responses when no registration accepts the
	// path, and there is no default registration.
	DefaultHTTPStatus int

	// When set, the listener is started only after every
	// registration source was loaded once.
	WaitFirstLoad bool

	// Time to wait for the in-flight requests on shutdown.
	ShutdownTimeout time.Duration

	// Files containing the registrations in YAML format.
	RegistrationsFiles []string

	// Registrations in YAML format.
	InlineRegistrations string

	// When set, the registration files are reloaded whenever they
	// change.
	WatchRegistrations bool

	// Custom registration sources, appended after the files and the
	// inline registrations.
	CustomDataClients []routing.DataClient

	// Polling interval of the registration sources.
	SourcePollTimeout time.Duration

	// Don't log the successful routing updates.
	SuppressRouteUpdateLogs bool

	// Base URL of the content API.
	ContentBackendURL string

	// Timeout of a single content request.
	ContentTimeout time.Duration

	// TTL of the in-process content cache.
	ContentCacheTTL time.Duration

	// Maximum number of attempts of a content fetch.
	ContentRetries int

	// Number of consecutive failed fetches that open the circuit
	// breaker of the content backend.
	BreakerFailures int

	// Time that the circuit breaker stays open.
	BreakerTimeout time.Duration

	// CustomContentFetcher replaces the HTTP fetcher when set.
	CustomContentFetcher content.Fetcher

	// Redis shards of the shared content cache. When empty, the
	// shared cache is disabled.
	RedisAddresses []string

	// TTL of the shared content cache.
	RedisTTL time.Duration

	// Output file for the application log. Default: stderr.
	ApplicationLogOutput string

	// Prefix of the application log entries.
	ApplicationLogPrefix string

	// Minimum level of the application log entries.
	ApplicationLogLevel log.Level

	// Enables the JSON format of the application log.
	ApplicationLogJSONEnabled bool

	// Output file for the access log. Default: stderr.
	AccessLogOutput string

	// Disables the access log.
	AccessLogDisabled bool

	// Enables the JSON format of the access log.
	AccessLogJSONEnabled bool

	// Strips the query strings from the access log.
	AccessLogStripQuery bool

	// Format of the exposed metrics.
	MetricsFlavour metrics.Kind

	// Prefix of the metrics keys, and the Prometheus namespace.
	MetricsPrefix string

	// Enables the Go runtime metrics.
	EnableRuntimeMetrics bool

	// Buckets of the Prometheus histograms.
	HistogramMetricBuckets []float64

	// OpenTelemetry configures the tracing pipeline. When nil,
	// the tracing is not initialized and the global tracer provider
	// is used.
	OpenTelemetry *otel.Options
}

// io.Closer returned for the sources that need to be stopped
type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

func createDataClients(o Options) ([]routing.DataClient, []io.Closer, error) {
	var (
		clients []routing.DataClient
		closers []io.Closer
	)

	for _, name := range o.RegistrationsFiles {
		if o.WatchRegistrations {
			w := regfile.Watch(name)
			clients = append(clients, w)
			closers = append(closers, closerFunc(w.Close))
			continue
		}

		f, err := regfile.Open(name)
		if err != nil {
			return nil, closers, err
		}

		clients = append(clients, f)
	}

	if o.InlineRegistrations != "" {
		ir, err := regfile.Inline(o.InlineRegistrations)
		if err != nil {
			return nil, closers, fmt.Errorf("invalid inline registrations: %w", err)
		}

		clients = append(clients, ir)
	}

	clients = append(clients, o.CustomDataClients...)
	return clients, closers, nil
}

func createStore(o Options, m metrics.Metrics) (*content.Store, error) {
	fetcher := o.CustomContentFetcher
	if fetcher == nil {
		f, err := content.NewHTTPFetcher(content.FetcherOptions{
			BaseURL:         o.ContentBackendURL,
			Timeout:         o.ContentTimeout,
			Retries:         o.ContentRetries,
			BreakerFailures: o.BreakerFailures,
			BreakerTimeout:  o.BreakerTimeout,
			Metrics:         m,
		})
		if err != nil {
			return nil, err
		}

		fetcher = f
	}

	so := content.StoreOptions{
		Fetcher:  fetcher,
		CacheTTL: o.ContentCacheTTL,
		Metrics:  m,
	}

	if len(o.RedisAddresses) > 0 {
		so.Redis = &content.RedisOptions{
			Addrs: o.RedisAddresses,
			TTL:   o.RedisTTL,
		}
	}

	return content.NewStore(so), nil
}

func openLogOutput(name string) (io.Writer, error) {
	if name == "" {
		return nil, nil
	}

	return os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

func initLog(o Options) error {
	appOut, err := openLogOutput(o.ApplicationLogOutput)
	if err != nil {
		return err
	}

	accessOut, err := openLogOutput(o.AccessLogOutput)
	if err != nil {
		return err
	}

	logging.Init(logging.Options{
		ApplicationLogPrefix:      o.ApplicationLogPrefix,
		ApplicationLogOutput:      appOut,
		ApplicationLogLevel:       o.ApplicationLogLevel,
		ApplicationLogJSONEnabled: o.ApplicationLogJSONEnabled,
		AccessLogOutput:           accessOut,
		AccessLogDisabled:         o.AccessLogDisabled,
		AccessLogJSONEnabled:      o.AccessLogJSONEnabled,
		AccessLogStripQuery:       o.AccessLogStripQuery,
	})

	return nil
}

// serve runs the servers until a signal is received, or one of them
// fails, then shuts them down gracefully.
func serve(o Options, sigs <-chan os.Signal, servers ...*http.Server) error {
	g, ctx := errgroup.WithContext(context.Background())
	for _, s := range servers {
		g.Go(func() error {
			log.Infof("listening on %v", s.Addr)
			if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to serve %s: %w", s.Addr, err)
			}

			return nil
		})
	}

	g.Go(func() error {
		select {
		case sig := <-sigs:
			log.Infof("got shutdown signal %v", sig)
		case <-ctx.Done():
		}

		timeout := o.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}

		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var errs []error
		for _, s := range servers {
			if err := s.Shutdown(sctx); err != nil {
				errs = append(errs, fmt.Errorf("failed to shut down %s: %w", s.Addr, err))
			}
		}

		return errors.Join(errs...)
	})

	return g.Wait()
}

// Run the storefront until it receives SIGTERM or an interrupt.
func Run(o Options) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, os.Interrupt)
	defer signal.Stop(sigs)
	return RunWithShutdown(o, sigs)
}

// RunWithShutdown runs the storefront until a signal is received on
// sigs.
func RunWithShutdown(o Options, sigs <-chan os.Signal) error {
	if err := initLog(o); err != nil {
		return err
	}

	if o.OpenTelemetry != nil {
		shutdown, err := otel.Init(context.Background(), o.OpenTelemetry)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}

		defer shutdown(context.Background())
	}

	m := metrics.New(metrics.Options{
		Format:               o.MetricsFlavour,
		Prefix:               o.MetricsPrefix,
		EnableRuntimeMetrics: o.EnableRuntimeMetrics,
		HistogramBuckets:     o.HistogramMetricBuckets,
	})

	dataClients, closers, err := createDataClients(o)
	for _, c := range closers {
		defer c.Close()
	}

	if err != nil {
		return err
	}

	if len(dataClients) == 0 {
		log.Warn("no registration source specified")
	}

	store, err := createStore(o, m)
	if err != nil {
		return err
	}

	defer store.Close()

	rt := routing.New(routing.Options{
		DataClients:  dataClients,
		PollTimeout:  o.SourcePollTimeout,
		Metrics:      m,
		SuppressLogs: o.SuppressRouteUpdateLogs,
	})
	defer rt.Close()

	if o.WaitFirstLoad {
		log.Info("waiting for the first load of the registrations")
		<-rt.FirstLoad()
		log.Info("registrations loaded")
	}

	p := proxy.New(proxy.Options{
		Routing:           rt,
		Store:             store,
		DefaultHTTPStatus: o.DefaultHTTPStatus,
		Metrics:           m,
	})

	servers := []*http.Server{{
		Addr:              o.Address,
		Handler:           logging.NewHandler(p),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}}

	if o.SupportListener != "" {
		servers = append(servers, &http.Server{
			Addr:              o.SupportListener,
			Handler:           proxy.NewSupport(rt, m),
			ReadHeaderTimeout: defaultReadHeaderTimeout,
		})
	}

	return serve(o, sigs, servers...)
}

package config

import (
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/zalando/storefront"
	"github.com/zalando/storefront/content"
	"github.com/zalando/storefront/metrics"
	"github.com/zalando/storefront/otel"
	"github.com/zalando/storefront/routing"
)

type Config struct {
	ConfigFile string
	Flags      *flag.FlagSet

	// generic:
	Address           string `yaml:"address"`
	SupportListener   string `yaml:"support-listener"`
	DefaultHTTPStatus int    `yaml:"default-http-status"`
	WaitFirstLoad     bool   `yaml:"wait-first-load"`

	// registrations:
	RegistrationsFiles      *multiFlag    `yaml:"registrations-file"`
	InlineRegistrations     string        `yaml:"inline-registrations"`
	WatchRegistrations      bool          `yaml:"watch-registrations"`
	SourcePollTimeout       time.Duration `yaml:"source-poll-timeout"`
	SuppressRouteUpdateLogs bool          `yaml:"suppress-route-update-logs"`

	// content:
	ContentBackendURL string        `yaml:"content-backend-url"`
	ContentTimeout    time.Duration `yaml:"content-timeout"`
	ContentCacheTTL   time.Duration `yaml:"content-cache-ttl"`
	ContentRetries    int           `yaml:"content-retries"`
	BreakerFailures   int           `yaml:"breaker-failures"`
	BreakerTimeout    time.Duration `yaml:"breaker-timeout"`
	RedisAddresses    *listFlag     `yaml:"redis-address"`
	RedisTTL          time.Duration `yaml:"redis-ttl"`

	// logging:
	ApplicationLog            string    `yaml:"application-log"`
	ApplicationLogLevel       log.Level `yaml:"-"`
	ApplicationLogLevelString string    `yaml:"application-log-level"`
	ApplicationLogPrefix      string    `yaml:"application-log-prefix"`
	ApplicationLogJSONEnabled bool      `yaml:"application-log-json-enabled"`
	AccessLog                 string    `yaml:"access-log"`
	AccessLogDisabled         bool      `yaml:"access-log-disabled"`
	AccessLogJSONEnabled      bool      `yaml:"access-log-json-enabled"`
	AccessLogStripQuery       bool      `yaml:"access-log-strip-query"`

	// metrics:
	MetricsFlavour               *listFlag `yaml:"metrics-flavour"`
	MetricsPrefix                string    `yaml:"metrics-prefix"`
	EnableRuntimeMetrics         bool      `yaml:"runtime-metrics"`
	HistogramMetricBucketsString string    `yaml:"histogram-metric-buckets"`
	HistogramMetricBuckets       []float64 `yaml:"-"`

	// tracing:
	OpenTelemetryServiceName string `yaml:"otel-service-name"`
}

func NewConfig() *Config {
	cfg := new(Config)
	cfg.RegistrationsFiles = &multiFlag{}
	cfg.RedisAddresses = commaListFlag()
	cfg.MetricsFlavour = commaListFlag("codahale", "prometheus")

	flag := flag.NewFlagSet("", flag.ExitOnError)
	flag.StringVar(&cfg.ConfigFile, "config-file", "", "if provided the flags will be loaded/overwritten by the values on the file (yaml)")

	// generic:
	flag.StringVar(&cfg.Address, "address", ":9090", "network address that the storefront should listen on")
	flag.StringVar(&cfg.SupportListener, "support-listener", ":9911", "network address used for exposing the /metrics, /routes and /healthz endpoints. An empty value disables the support endpoint.")
	flag.IntVar(&cfg.DefaultHTTPStatus, "default-http-status", http.StatusNotFound, "HTTP status used when no registration accepts a path and there is no default registration")
	flag.BoolVar(&cfg.WaitFirstLoad, "wait-first-load", false, "wait until every registration source was loaded before starting the listener")

	// registrations:
	flag.Var(cfg.RegistrationsFiles, "registrations-file", "file containing the registrations in YAML format, can be repeated")
	flag.StringVar(&cfg.InlineRegistrations, "inline-registrations", "", "registrations in YAML format")
	flag.BoolVar(&cfg.WatchRegistrations, "watch-registrations", false, "reload the registration files when they change")
	flag.DurationVar(&cfg.SourcePollTimeout, "source-poll-timeout", routing.DefaultPollTimeout, "polling interval of the registration sources")
	flag.BoolVar(&cfg.SuppressRouteUpdateLogs, "suppress-route-update-logs", false, "don't log the successful routing updates")

	// content:
	flag.StringVar(&cfg.ContentBackendURL, "content-backend-url", "", "base URL of the content API, the records are fetched from {url}/{id}")
	flag.DurationVar(&cfg.ContentTimeout, "content-timeout", content.DefaultTimeout, "timeout of a single content request")
	flag.DurationVar(&cfg.ContentCacheTTL, "content-cache-ttl", content.DefaultCacheTTL, "time to keep the content records in the in-process cache")
	flag.IntVar(&cfg.ContentRetries, "content-retries", content.DefaultRetries, "maximum number of attempts to fetch a content record")
	flag.IntVar(&cfg.BreakerFailures, "breaker-failures", content.DefaultBreakerFailures, "number of consecutive failed content fetches that open the circuit breaker")
	flag.DurationVar(&cfg.BreakerTimeout, "breaker-timeout", content.DefaultBreakerTimeout, "time that the circuit breaker stays open")
	flag.Var(cfg.RedisAddresses, "redis-address", "comma separated list of redis shards used as shared content cache")
	flag.DurationVar(&cfg.RedisTTL, "redis-ttl", content.DefaultRedisTTL, "time to keep the content records in the shared cache")

	// logging:
	flag.StringVar(&cfg.ApplicationLog, "application-log", "", "output file for the application log. When not set, /dev/stderr is used")
	flag.StringVar(&cfg.ApplicationLogLevelString, "application-log-level", "INFO", "log level for application logs, possible values: PANIC, FATAL, ERROR, WARN, INFO, DEBUG")
	flag.StringVar(&cfg.ApplicationLogPrefix, "application-log-prefix", "[APP]", "prefix for each log entry")
	flag.BoolVar(&cfg.ApplicationLogJSONEnabled, "application-log-json-enabled", false, "when this flag is set, log in JSON format is used")
	flag.StringVar(&cfg.AccessLog, "access-log", "", "output file for the access log, When not set, /dev/stderr is used")
	flag.BoolVar(&cfg.AccessLogDisabled, "access-log-disabled", false, "when this flag is set, no access log is printed")
	flag.BoolVar(&cfg.AccessLogJSONEnabled, "access-log-json-enabled", false, "when this flag is set, log in JSON format is used")
	flag.BoolVar(&cfg.AccessLogStripQuery, "access-log-strip-query", false, "when this flag is set, the access log strips the query strings from the access log")

	// metrics:
	flag.Var(cfg.MetricsFlavour, "metrics-flavour", "metrics flavour is used to change the exposed metrics format. Supported metric formats: 'codahale' and 'prometheus', you can select both of them")
	flag.StringVar(&cfg.MetricsPrefix, "metrics-prefix", "storefront.", "allows setting a custom path prefix for metrics export")
	flag.BoolVar(&cfg.EnableRuntimeMetrics, "runtime-metrics", true, "enables reporting of the Go runtime statistics")
	flag.StringVar(&cfg.HistogramMetricBucketsString, "histogram-metric-buckets", "", "use custom buckets for prometheus histograms, must be a comma-separated list of numbers")

	// tracing:
	flag.StringVar(&cfg.OpenTelemetryServiceName, "otel-service-name", otel.DefaultServiceName, "service name of the OpenTelemetry spans, unless OTEL_RESOURCE_ATTRIBUTES sets one")

	cfg.Flags = flag
	return cfg
}

func validateContentBackendURL(s string) error {
	if s == "" {
		return fmt.Errorf("missing content backend url")
	}

	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid content backend url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid content backend url: %q", s)
	}

	return nil
}

func validate(c *Config) error {
	_, err := log.ParseLevel(c.ApplicationLogLevelString)
	if err != nil {
		return err
	}

	if len(*c.RegistrationsFiles) == 0 && c.InlineRegistrations == "" {
		return fmt.Errorf("no registration source, set registrations-file or inline-registrations")
	}

	if err := validateContentBackendURL(c.ContentBackendURL); err != nil {
		return err
	}

	if c.DefaultHTTPStatus < 100 || c.DefaultHTTPStatus > 599 {
		return fmt.Errorf("invalid default-http-status: %d", c.DefaultHTTPStatus)
	}

	_, err = c.parseHistogramBuckets(c.HistogramMetricBucketsString, prometheus.DefBuckets)
	return err
}

func (c *Config) Parse() error {
	return c.ParseArgs(os.Args[0], os.Args[1:])
}

func (c *Config) ParseArgs(progname string, args []string) error {
	c.Flags.Init(progname, flag.ExitOnError)
	err := c.Flags.Parse(args)
	if err != nil {
		return err
	}

	// check if arguments were correctly parsed.
	if len(c.Flags.Args()) != 0 {
		return fmt.Errorf("invalid arguments: %s", c.Flags.Args())
	}

	if c.ConfigFile != "" {
		yamlFile, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			return fmt.Errorf("invalid config file: %w", err)
		}

		err = yaml.Unmarshal(yamlFile, c)
		if err != nil {
			return fmt.Errorf("unmarshalling config file error: %w", err)
		}

		// explicit flags override the config file
		fileFiles := *c.RegistrationsFiles
		*c.RegistrationsFiles = nil
		err = c.Flags.Parse(args)
		if err != nil {
			return err
		}

		if len(*c.RegistrationsFiles) == 0 {
			*c.RegistrationsFiles = fileFiles
		}
	}

	if err := validate(c); err != nil {
		return err
	}

	c.ApplicationLogLevel, _ = log.ParseLevel(c.ApplicationLogLevelString)
	c.HistogramMetricBuckets, _ = c.parseHistogramBuckets(c.HistogramMetricBucketsString, prometheus.DefBuckets)
	return nil
}

func (c *Config) metricsFormat() metrics.Kind {
	var kind metrics.Kind
	for _, f := range c.MetricsFlavour.values {
		kind |= metrics.ParseKind(f)
	}

	if kind == metrics.UnknownKind {
		return metrics.PrometheusKind
	}

	return kind
}

func (c *Config) ToOptions() storefront.Options {
	return storefront.Options{
		// generic:
		Address:           c.Address,
		SupportListener:   c.SupportListener,
		DefaultHTTPStatus: c.DefaultHTTPStatus,
		WaitFirstLoad:     c.WaitFirstLoad,

		// registrations:
		RegistrationsFiles:      []string(*c.RegistrationsFiles),
		InlineRegistrations:     c.InlineRegistrations,
		WatchRegistrations:      c.WatchRegistrations,
		SourcePollTimeout:       c.SourcePollTimeout,
		SuppressRouteUpdateLogs: c.SuppressRouteUpdateLogs,

		// content:
		ContentBackendURL: c.ContentBackendURL,
		ContentTimeout:    c.ContentTimeout,
		ContentCacheTTL:   c.ContentCacheTTL,
		ContentRetries:    c.ContentRetries,
		BreakerFailures:   c.BreakerFailures,
		BreakerTimeout:    c.BreakerTimeout,
		RedisAddresses:    c.RedisAddresses.values,
		RedisTTL:          c.RedisTTL,

		// logging:
		ApplicationLogOutput:      c.ApplicationLog,
		ApplicationLogLevel:       c.ApplicationLogLevel,
		ApplicationLogPrefix:      c.ApplicationLogPrefix,
		ApplicationLogJSONEnabled: c.ApplicationLogJSONEnabled,
		AccessLogOutput:           c.AccessLog,
		AccessLogDisabled:         c.AccessLogDisabled,
		AccessLogJSONEnabled:      c.AccessLogJSONEnabled,
		AccessLogStripQuery:       c.AccessLogStripQuery,

		// metrics:
		MetricsFlavour:         c.metricsFormat(),
		MetricsPrefix:          c.MetricsPrefix,
		EnableRuntimeMetrics:   c.EnableRuntimeMetrics,
		HistogramMetricBuckets: c.HistogramMetricBuckets,

		// tracing:
		OpenTelemetry: &otel.Options{ServiceName: c.OpenTelemetryServiceName},
	}
}

func (c *Config) parseHistogramBuckets(bucketString string, defaultBuckets []float64) ([]float64, error) {
	if bucketString == "" {
		return defaultBuckets, nil
	}

	var result []float64
	thresholds := strings.Split(bucketString, ",")
	for _, v := range thresholds {
		bucket, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse histogram-metric-buckets: %w", err)
		}

		result = append(result, bucket)
	}

	sort.Float64s(result)
	return result, nil
}

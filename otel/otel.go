// Package otel sets up the [OpenTelemetry] tracing pipeline of the
// storefront.
//
// [OpenTelemetry]: https://opentelemetry.io/
package otel

import (
	"context"
	"errors"
	"os"

	"github.com/bombsimon/logrusr/v4"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/exporters/autoexport"
	"go.opentelemetry.io/contrib/propagators/autoprop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

const (
	DefaultServiceName = "storefront"

	// debugExporter writes the spans into the debug log, select it
	// with OTEL_TRACES_EXPORTER=storefront-debug.
	debugExporter = "storefront-debug"
)

var log = logrus.WithField("package", "otel")

func init() {
	autoexport.RegisterSpanExporter(debugExporter, func(context.Context) (trace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithWriter(writerFunc(func(p []byte) (int, error) {
			log.Debugf("Span: %s", p)
			return len(p), nil
		})))
	})
}

// Options configure the tracing pipeline.
type Options struct {
	// Initialized indicates whether the pipeline has been set up by the
	// embedding application. If true, Init returns immediately.
	Initialized bool

	// ServiceName is set as the service.name resource attribute, unless
	// OTEL_RESOURCE_ATTRIBUTES defines it.
	ServiceName string
}

// Init sets up the global tracer provider and propagator from the
// standard environment variables, e.g. OTEL_TRACES_EXPORTER,
// OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_RESOURCE_ATTRIBUTES and
// OTEL_PROPAGATORS. Call shutdown to flush the spans when err is nil.
//
// See:
//   - [go.opentelemetry.io/contrib/exporters/autoexport]
//   - [go.opentelemetry.io/contrib/propagators/autoprop]
func Init(ctx context.Context, o *Options) (shutdown func(context.Context) error, err error) {
	if o.Initialized {
		log.Debug("OpenTelemetry pipeline initialized externally")
		return func(context.Context) error { return nil }, nil
	}

	for _, name := range []string{
		"OTEL_TRACES_EXPORTER",
		"OTEL_EXPORTER_OTLP_PROTOCOL",
		"OTEL_EXPORTER_OTLP_ENDPOINT",
		"OTEL_RESOURCE_ATTRIBUTES",
		"OTEL_PROPAGATORS",
	} {
		log.Debugf("%s: %s", name, os.Getenv(name))
	}

	spanExporter, err := autoexport.NewSpanExporter(ctx)
	if err != nil {
		return nil, err
	}

	serviceName := o.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	res, err := resource.Merge(
		resource.NewSchemaless(attribute.String("service.name", serviceName)),
		resource.Environment(),
	)
	if err != nil {
		return nil, errors.Join(err, spanExporter.Shutdown(ctx))
	}

	tracerProvider := trace.NewTracerProvider(trace.WithBatcher(spanExporter), trace.WithResource(res))

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(autoprop.NewTextMapPropagator())
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) { log.Error(err) }))
	otel.SetLogger(logrusr.New(log))

	return tracerProvider.Shutdown, nil
}

type writerFunc func([]byte) (int, error)

func (wf writerFunc) Write(p []byte) (n int, err error) {
	return wf(p)
}

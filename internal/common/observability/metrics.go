// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the OpenTelemetry meter and tracer used by the
// submission workflow. The zero value records nothing.
type Observability struct {
	meterProvider      *metric.MeterProvider
	tracer             trace.Tracer
	submissionCounter  otelmetric.Int64Counter
	submissionDuration otelmetric.Float64Histogram
	stepDuration       otelmetric.Float64Histogram
}

// New registers a Prometheus-backed meter provider globally. Failures fall
// back to a no-op meter so the service still starts.
func New(serviceName string) (*Observability, error) {
	o := &Observability{tracer: otel.Tracer(serviceName)}

	exporter, err := prometheus.New()
	if err != nil {
		o.initInstruments(noop.NewMeterProvider().Meter(serviceName))
		return o, err
	}

	o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(o.meterProvider)
	o.initInstruments(o.meterProvider.Meter(serviceName))
	return o, nil
}

// NewNoop is used in tests and when metrics are disabled.
func NewNoop() *Observability {
	o := &Observability{tracer: otel.Tracer("noop")}
	o.initInstruments(noop.NewMeterProvider().Meter("noop"))
	return o
}

func (o *Observability) initInstruments(meter otelmetric.Meter) {
	o.submissionCounter, _ = meter.Int64Counter(
		"intake.submissions",
		otelmetric.WithDescription("Number of submissions by outcome"),
	)
	o.submissionDuration, _ = meter.Float64Histogram(
		"intake.submission.duration",
		otelmetric.WithDescription("Submission processing duration"),
		otelmetric.WithUnit("ms"),
	)
	o.stepDuration, _ = meter.Float64Histogram(
		"intake.step.duration",
		otelmetric.WithDescription("Duration of each workflow step"),
		otelmetric.WithUnit("ms"),
	)
}

// StartSpan starts a span for one workflow step.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordSubmission(ctx context.Context, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("outcome", outcome))
	if o.submissionCounter != nil {
		o.submissionCounter.Add(ctx, 1, attrs)
	}
	if o.submissionDuration != nil {
		o.submissionDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordStep(ctx context.Context, step, status string, duration time.Duration) {
	if o == nil || o.stepDuration == nil {
		return
	}
	o.stepDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}

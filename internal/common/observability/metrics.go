package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/prometheus/client_golang/prometheus"
)

// Observability records prediction telemetry through OpenTelemetry and
// exposes it via a Prometheus reader.
type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	jobCounter      otelmetric.Int64Counter
	jobDuration     otelmetric.Float64Histogram
	probabilityHist otelmetric.Float64Histogram
	quickScoreHist  otelmetric.Float64Histogram
	warningCounter  otelmetric.Int64Counter
}

// New registers the exporter with the default Prometheus registry and sets
// the global meter provider.
func New(serviceName string) *Observability {
	exporter, err := otelprom.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}
	o := build(serviceName, exporter)
	otel.SetMeterProvider(o.meterProvider)
	return o
}

// NewWithRegisterer is New against a caller-owned registry.
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) (*Observability, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}
	return build(serviceName, exporter), nil
}

func build(serviceName string, exporter *otelprom.Exporter) *Observability {
	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	probabilityHist, _ := meter.Float64Histogram(
		"prediction.probability",
		otelmetric.WithDescription("Distribution of per-school admission probabilities"),
		otelmetric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.4, 0.5, 0.65, 0.8, 0.9),
	)

	quickScoreHist, _ := meter.Float64Histogram(
		"prediction.quick_score",
		otelmetric.WithDescription("Distribution of quick prediction scores"),
		otelmetric.WithExplicitBucketBoundaries(20, 35, 50, 65, 80, 95),
	)

	warningCounter, _ := meter.Int64Counter(
		"normalization.warnings",
		otelmetric.WithDescription("Normalization warnings emitted by code"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		jobCounter:      jobCounter,
		jobDuration:     jobDuration,
		probabilityHist: probabilityHist,
		quickScoreHist:  quickScoreHist,
		warningCounter:  warningCounter,
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, status string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) RecordProbability(ctx context.Context, schoolID, category string, p float64) {
	if o == nil || o.probabilityHist == nil {
		return
	}
	o.probabilityHist.Record(ctx, p, otelmetric.WithAttributes(
		attribute.String("school_id", schoolID),
		attribute.String("category", category),
	))
}

func (o *Observability) RecordQuickScore(ctx context.Context, tier string, score float64) {
	if o == nil || o.quickScoreHist == nil {
		return
	}
	o.quickScoreHist.Record(ctx, score, otelmetric.WithAttributes(
		attribute.String("tier", tier),
	))
}

func (o *Observability) RecordWarning(ctx context.Context, code string) {
	if o == nil || o.warningCounter == nil {
		return
	}
	o.warningCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("code", code),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}

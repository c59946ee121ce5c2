package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rshade/adminboard/pkg/version"
)

const (
	serviceName = "adminboard"

	// FetchErrorsMetric is the counter incremented for every reported failure.
	FetchErrorsMetric = "adminboard_fetch_errors_total"
)

// ErrExporterDisabled is returned when the OTLP exporter is not configured.
var ErrExporterDisabled = errors.New("OTEL exporter is disabled or endpoint not configured")

// Config holds OTLP exporter settings.
type Config struct {
	Enabled  bool
	Endpoint string
	Insecure bool
}

// OTelReporter counts fetch failures in an OTLP metric.
type OTelReporter struct {
	provider    *sdkmetric.MeterProvider
	fetchErrors metric.Int64Counter
}

// NewOTelReporter creates a reporter exporting over OTLP gRPC.
func NewOTelReporter(ctx context.Context, cfg Config) (*OTelReporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, ErrExporterDisabled
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			otlpmetricgrpc.WithInsecure(),
		)
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	return NewOTelReporterWithReader(ctx, sdkmetric.NewPeriodicReader(exp))
}

// NewOTelReporterWithReader creates a reporter on top of an arbitrary metric
// reader. Tests pass a manual reader.
func NewOTelReporterWithReader(ctx context.Context, reader sdkmetric.Reader) (*OTelReporter, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version.GetVersion()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	fetchErrors, err := meter.Int64Counter(
		FetchErrorsMetric,
		metric.WithDescription("Dashboard data fetch failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch error counter: %w", err)
	}

	return &OTelReporter{provider: provider, fetchErrors: fetchErrors}, nil
}

// Report implements Reporter.
func (r *OTelReporter) Report(ctx context.Context, err error, rc ReportContext) {
	r.fetchErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("line", rc.Line),
		attribute.String("operation", rc.Operation),
		attribute.String("kind", ErrorKind(err)),
	))
}

// Close shuts down the provider and flushes pending metrics.
func (r *OTelReporter) Close(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// OTelProvider owns the process-wide trace and metric providers: it
// registers them as the otel globals so telemetry.StartSpan and
// telemetry.NewInstruments pick them up, and closes the OTLP exporters
// on Shutdown.
//
// Grounded on the teacher's telemetry.NewOTelProvider: batched OTLP/HTTP
// span export plus a periodic metric reader, both tagged with a
// resource identifying this service.
type OTelProvider struct {
	traceProvider  *sdktrace.TracerProvider
	metricProvider *sdkmetric.MeterProvider
	shutdownOnce   sync.Once
}

// NewOTelProvider dials endpoint (an OTLP/HTTP collector address, e.g.
// "localhost:4318") and installs global trace and metric providers for
// serviceName/serviceVersion. Callers must defer Shutdown.
func NewOTelProvider(ctx context.Context, serviceName, serviceVersion, endpoint string) (*OTelProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	traceExporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("telemetry: dial trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	metricExporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(endpoint), otlpmetrichttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("telemetry: dial metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &OTelProvider{traceProvider: tp, metricProvider: mp}, nil
}

// Shutdown flushes and closes both providers. Safe to call more than
// once.
func (p *OTelProvider) Shutdown(ctx context.Context) error {
	var err error
	p.shutdownOnce.Do(func() {
		if shutdownErr := p.traceProvider.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("telemetry: shutdown trace provider: %w", shutdownErr)
			return
		}
		if shutdownErr := p.metricProvider.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("telemetry: shutdown metric provider: %w", shutdownErr)
		}
	})
	return err
}

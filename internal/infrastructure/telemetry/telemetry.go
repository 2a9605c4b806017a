// Package telemetry настраивает OpenTelemetry: трассировку и метрики с экспортом по OTLP/HTTP.
package telemetry

import (
	"context"
	"errors"

	"github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/DRSN-tech/inventory-backend"

// Providers хранит провайдеры трассировки и метрик приложения.
type Providers struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	shutdown       []func(context.Context) error
}

// Setup создаёт провайдеры. Без OTLP_ENDPOINT возвращаются noop-провайдеры.
func Setup(ctx context.Context, c *cfg.TelemetryCfg, log logger.Logger) (*Providers, error) {
	const op = "telemetry.Setup"

	if c.OTLPEndpoint == "" {
		log.Infof("telemetry export disabled")
		return &Providers{
			tracerProvider: tracenoop.NewTracerProvider(),
			meterProvider:  metricnoop.NewMeterProvider(),
		}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(c.ServiceName),
		),
	)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(c.OTLPEndpoint)}
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(c.OTLPEndpoint)}
	if c.Insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}

	traceExporter, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	metricExporter, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		return nil, e.Wrap(op, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Infof("telemetry exported to %s", c.OTLPEndpoint)

	return &Providers{
		tracerProvider: tp,
		meterProvider:  mp,
		shutdown:       []func(context.Context) error{mp.Shutdown, tp.Shutdown},
	}, nil
}

func (p *Providers) Tracer() trace.Tracer {
	return p.tracerProvider.Tracer(instrumentationName)
}

func (p *Providers) Meter() metric.Meter {
	return p.meterProvider.Meter(instrumentationName)
}

// Shutdown сбрасывает накопленные данные и останавливает экспортёры.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

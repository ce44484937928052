package telemetry

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/detectors/aws/ecs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/IliaW/bots-checker/config"
	"github.com/IliaW/bots-checker/internal/model"
	"github.com/google/uuid"
)

var meter metric.Meter

type MetricsProvider struct {
	ApiMetrics   *ApiMetrics
	CheckMetrics *CheckMetrics
	Close        func()
}

type ApiMetrics struct {
	SuccessResponseCounter func(count int64)
	ErrorResponseCounter   func(count int64)
}

type CheckMetrics struct {
	ResultCounter        func(access model.Access)
	RobotsResolveCounter func(found bool)
}

func SetupMetrics(ctx context.Context, cfg *config.Config) *MetricsProvider {
	metricsProvider := new(MetricsProvider)
	var meterProvider *sdkmetric.MeterProvider
	enabled := cfg.TelemetrySettings != nil && cfg.TelemetrySettings.Enabled

	if enabled {
		r, err := newResource(cfg)
		if err != nil {
			slog.Error("failed to get resource.", slog.String("err", err.Error()))
			os.Exit(1)
		}
		exporter, err := newMetricExporter(ctx, cfg.TelemetrySettings)
		if err != nil {
			slog.Error("failed to get metric exporter.", slog.String("err", err.Error()))
			os.Exit(1)
		}
		meterProvider = newMeterProvider(exporter, *r)
		otel.SetMeterProvider(meterProvider)
	}

	meter = otel.Meter(cfg.ServiceName)
	metricsProvider.Close = func() {
		if meterProvider != nil {
			err := meterProvider.Shutdown(ctx)
			if err != nil {
				slog.Error("failed to shutdown metrics provider.", slog.String("err", err.Error()))
			}
		}
	}

	successResponseCounter, err := meter.Int64Counter("bots-checker.response.success",
		metric.WithDescription("The number of success responses from [get] /check."),
		metric.WithUnit("{messages}"))
	if err != nil {
		slog.Error("failed to create telemetry counters for the api.", slog.String("err", err.Error()))
		os.Exit(1)
	}
	errorResponseCounter, err := meter.Int64Counter("bots-checker.response.error",
		metric.WithDescription("The number of error responses from [get] /check."),
		metric.WithUnit("{messages}"))
	if err != nil {
		slog.Error("failed to create telemetry counters for the api.", slog.String("err", err.Error()))
		os.Exit(1)
	}
	checkResultCounter, err := meter.Int64Counter("bots-checker.check.result",
		metric.WithDescription("The number of checked agents by access verdict."),
		metric.WithUnit("{agents}"))
	if err != nil {
		slog.Error("failed to create telemetry counters for the checker.", slog.String("err", err.Error()))
		os.Exit(1)
	}
	robotsResolveCounter, err := meter.Int64Counter("bots-checker.robots.resolve",
		metric.WithDescription("The number of robots.txt resolutions by outcome."),
		metric.WithUnit("{requests}"))
	if err != nil {
		slog.Error("failed to create telemetry counters for the checker.", slog.String("err", err.Error()))
		os.Exit(1)
	}

	metricsProvider.ApiMetrics = &ApiMetrics{
		SuccessResponseCounter: func(count int64) {
			if enabled {
				successResponseCounter.Add(ctx, count)
			}
		},
		ErrorResponseCounter: func(count int64) {
			if enabled {
				errorResponseCounter.Add(ctx, count)
			}
		},
	}
	metricsProvider.CheckMetrics = &CheckMetrics{
		ResultCounter: func(access model.Access) {
			if enabled {
				checkResultCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("access", string(access))))
			}
		},
		RobotsResolveCounter: func(found bool) {
			if enabled {
				robotsResolveCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("found", found)))
			}
		},
	}

	return metricsProvider
}

func newResource(cfg *config.Config) (*resource.Resource, error) {
	ecsResourceDetector := ecs.NewResourceDetector()
	ecsResource, err := ecsResourceDetector.Detect(context.Background())
	if err != nil {
		slog.Error("ecs detection failed", slog.String("err", err.Error()))
	}
	mergedResource, err := resource.Merge(ecsResource, resource.Default())
	if err != nil {
		slog.Error("failed to merge resources", slog.String("err", err.Error()))
	}
	keyValue, found := ecsResource.Set().Value("container.id")
	var serviceId string
	if found {
		serviceId = keyValue.AsString()
	} else {
		serviceId = uuid.New().String()
	}
	return resource.Merge(mergedResource,
		resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Env),
			semconv.ServiceInstanceID(serviceId),
		))
}

func newMetricExporter(ctx context.Context, cfg *config.TelemetryConfig) (sdkmetric.Exporter, error) {
	return otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(cfg.CollectorUrl),
		otlpmetrichttp.WithInsecure())
}

func newMeterProvider(meterExporter sdkmetric.Exporter, resource resource.Resource) *sdkmetric.MeterProvider {
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(meterExporter)),
		sdkmetric.WithResource(&resource),
	)
	return meterProvider
}

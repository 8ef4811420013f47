package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/libplan"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Resolution metrics
	ResolutionsTotal      metric.Int64Counter
	ResolutionErrorsTotal metric.Int64Counter

	// Bundler metrics
	BuildsTotal      metric.Int64Counter
	BuildErrorsTotal metric.Int64Counter
	BuildDuration    metric.Float64Histogram
	ArtifactsEmitted metric.Int64Counter
	ArtifactBytes    metric.Int64Counter
	ManifestsWritten metric.Int64Counter

	// Preview server metrics
	PreviewRequestsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.ResolutionsTotal, _ = meter.Int64Counter(
		"libplan.resolutions.total",
		metric.WithDescription("Total number of build option resolutions"),
		metric.WithUnit("{resolution}"),
	)

	m.ResolutionErrorsTotal, _ = meter.Int64Counter(
		"libplan.resolutions.errors.total",
		metric.WithDescription("Total number of failed resolutions by error kind"),
		metric.WithUnit("{error}"),
	)

	m.BuildsTotal, _ = meter.Int64Counter(
		"libplan.builds.total",
		metric.WithDescription("Total number of bundler runs"),
		metric.WithUnit("{build}"),
	)

	m.BuildErrorsTotal, _ = meter.Int64Counter(
		"libplan.builds.errors.total",
		metric.WithDescription("Total number of failed bundler runs"),
		metric.WithUnit("{error}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"libplan.builds.duration",
		metric.WithDescription("Duration of bundler runs"),
		metric.WithUnit("ms"),
	)

	m.ArtifactsEmitted, _ = meter.Int64Counter(
		"libplan.artifacts.emitted.total",
		metric.WithDescription("Total number of artifacts written"),
		metric.WithUnit("{artifact}"),
	)

	m.ArtifactBytes, _ = meter.Int64Counter(
		"libplan.artifacts.bytes.total",
		metric.WithDescription("Total bytes of artifacts written"),
		metric.WithUnit("By"),
	)

	m.ManifestsWritten, _ = meter.Int64Counter(
		"libplan.manifests.written.total",
		metric.WithDescription("Total number of asset manifests written"),
		metric.WithUnit("{manifest}"),
	)

	m.PreviewRequestsTotal, _ = meter.Int64Counter(
		"libplan.preview.requests.total",
		metric.WithDescription("Total number of preview server requests"),
		metric.WithUnit("{request}"),
	)

	return m
}

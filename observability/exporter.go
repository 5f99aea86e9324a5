package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/multierr"
)

type MetricsExporterType string

const (
	NoneExporter       MetricsExporterType = "none"
	ConsoleExporter    MetricsExporterType = "console"
	PrometheusExporter MetricsExporterType = "prometheus"
)

func ParseMetricsExporter(typ string) (MetricsExporterType, error) {
	switch t := MetricsExporterType(strings.ToLower(strings.TrimSpace(typ))); t {
	case "", NoneExporter:
		return NoneExporter, nil
	case ConsoleExporter, PrometheusExporter:
		return t, nil
	default:
	}
	return NoneExporter, fmt.Errorf("unknown metrics exporter %q", typ)
}

// NewMeterProvider installs the global meter provider exporting into w.
// The returned shutdown flushes the last collection into w.
// NoneExporter returns a nil provider and a no-op shutdown.
func NewMeterProvider(typ MetricsExporterType, w io.Writer, interval time.Duration) (*metric.MeterProvider, func(ctx context.Context) error, error) {
	switch typ {
	case ConsoleExporter:
		return newConsoleMetricsExporter(w, interval, interval)
	case PrometheusExporter:
		return newPrometheusMetricsExporter(w)
	case NoneExporter:
		return nil, func(context.Context) error { return nil }, nil
	default:
	}
	return nil, nil, fmt.Errorf("unknown metrics exporter %q", typ)
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(w io.Writer, interval, timeout time.Duration) (*metric.MeterProvider, func(ctx context.Context) error, error) {
	if interval <= 0 {
		interval = 10 * time.Second
		timeout = interval
	}
	exporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(w),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return nil, nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp, mp.Shutdown, nil
}

// Serves for the product environment, the stats are pulled instead of
// pushed. The process is short-lived, so the exposition is written once
// at shutdown in the text format.
func newPrometheusMetricsExporter(w io.Writer) (*metric.MeterProvider, func(ctx context.Context) error, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutScopeInfo(),
	)
	if err != nil {
		return nil, nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	callback := func(ctx context.Context) error {
		families, err := registry.Gather()
		for _, mf := range families {
			if _, _err := expfmt.MetricFamilyToText(w, mf); _err != nil {
				err = multierr.Append(err, _err)
				break
			}
		}
		return multierr.Append(err, mp.Shutdown(ctx))
	}
	return mp, callback, nil
}

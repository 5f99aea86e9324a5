package observability

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func meterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("llrb/app")
	builder.Write([]byte("/"))
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the process level stats and the Go runtime
// metrics on mp.
func InitAppStats(ctx context.Context, mp metric.MeterProvider, name string) error {
	meter := mp.Meter(
		meterName(name),
		metric.WithInstrumentationVersion(otelruntime.Version()),
	)
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return err
	}
	lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
		"app.core.goroutines",
		metric.WithDescription(`The application goroutines' info.`),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(int64(runtime.NumGoroutine()))
			return nil
		}),
	))
	lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
		"app.core.processes",
		metric.WithDescription(`The application processes' info.`),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(int64(runtime.GOMAXPROCS(0)))
			return nil
		}),
	))
	lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
		"app.process.rss",
		metric.WithDescription(`The resident set size of the process.`),
		metric.WithUnit("By"),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			mem, err := proc.MemoryInfoWithContext(ctx)
			if err != nil {
				return err
			}
			ob.Observe(int64(mem.RSS))
			return nil
		}),
	))
	return otelruntime.Start(otelruntime.WithMeterProvider(mp))
}

// TreeSizer is the part of a tree the stats observe.
type TreeSizer interface {
	Len() int64
}

// TreeStats observes the sizes of named trees and counts the
// replacements and removals done on them.
type TreeStats struct {
	size     metric.Int64ObservableGauge
	replaced metric.Int64Counter
	removed  metric.Int64Counter
}

func NewTreeStats(mp metric.MeterProvider, name string, trees map[string]TreeSizer) *TreeStats {
	meter := mp.Meter(meterName(name))
	names := lo.Keys(trees)
	return &TreeStats{
		size: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"llrb.tree.len",
			metric.WithDescription(`The number of nodes linked in the tree.`),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				for _, name := range names {
					ob.Observe(trees[name].Len(), metric.WithAttributes(attribute.String("tree", name)))
				}
				return nil
			}),
		)),
		replaced: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"llrb.tree.replaced",
			metric.WithDescription(`The nodes evicted by an equal insertion.`),
		)),
		removed: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"llrb.tree.removed",
			metric.WithDescription(`The nodes deleted or popped.`),
		)),
	}
}

func (stats *TreeStats) Replaced(ctx context.Context, tree string, n int64) {
	if stats == nil || n == 0 {
		return
	}
	stats.replaced.Add(ctx, n, metric.WithAttributes(attribute.String("tree", tree)))
}

func (stats *TreeStats) Removed(ctx context.Context, tree string, n int64) {
	if stats == nil || n == 0 {
		return
	}
	stats.removed.Add(ctx, n, metric.WithAttributes(attribute.String("tree", tree)))
}

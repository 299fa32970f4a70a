package symtab

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricInternsTotal   = "symtab.interns.total"
	metricEntries        = "symtab.entries"
	metricInternDuration = "symtab.intern.duration.seconds"

	attrOutcome = "outcome"

	outcomeHit  = "hit"
	outcomeMiss = "miss"
)

// internDurationBoundaries covers sub-microsecond index hits through
// millisecond-scale arena growth.
var internDurationBoundaries = []float64{1e-7, 5e-7, 1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 1e-3, 1e-2}

// Metrics holds the OTel instruments for interner activity. Construction
// needs only the metric API; exporter wiring stays with the host
// application.
type Metrics struct {
	internsTotal   metric.Int64Counter
	entries        metric.Int64UpDownCounter
	internDuration metric.Float64Histogram
}

// NewMetrics creates interner instruments from the given meter.
func NewMetrics(mt metric.Meter) (*Metrics, error) {
	b := newMetricBuilder(mt)

	m := &Metrics{
		internsTotal:   b.counter(metricInternsTotal, "Total number of intern requests", "{request}"),
		entries:        b.upDownCounter(metricEntries, "Number of distinct interned strings", "{string}"),
		internDuration: b.histogram(metricInternDuration, "Intern request duration in seconds", "s", internDurationBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return m, nil
}

// recordIntern records one completed intern request with its dedup outcome.
func (m *Metrics) recordIntern(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrOutcome, outcome))

	m.internsTotal.Add(ctx, 1, attrs)
	m.internDuration.Record(ctx, duration.Seconds(), attrs)

	if outcome == outcomeMiss {
		m.entries.Add(ctx, 1)
	}
}

// InstrumentedInterner wraps an Interner with OTel measurements on the
// mutating path. The embedded interner remains available for
// measurement-free reads.
type InstrumentedInterner struct {
	*Interner

	metrics *Metrics
}

// NewInstrumented wraps in with the given instruments.
func NewInstrumented(in *Interner, m *Metrics) *InstrumentedInterner {
	return &InstrumentedInterner{Interner: in, metrics: m}
}

// GetOrIntern interns s, recording the dedup outcome and duration.
func (ii *InstrumentedInterner) GetOrIntern(ctx context.Context, s string) (Symbol, error) {
	before := ii.Interner.Len()
	start := time.Now()

	sym, err := ii.Interner.GetOrIntern(s)
	if err != nil {
		return InvalidSymbol, err
	}

	outcome := outcomeHit
	if ii.Interner.Len() > before {
		outcome = outcomeMiss
	}

	ii.metrics.recordIntern(ctx, outcome, time.Since(start))

	return sym, nil
}

// Reset clears the wrapped interner and winds the entry gauge back down.
func (ii *InstrumentedInterner) Reset(ctx context.Context) {
	ii.metrics.entries.Add(ctx, -int64(ii.Interner.Len()))
	ii.Interner.Reset()
}

// metricBuilder accumulates OTel instrument creation errors, enabling batch
// construction with a single error check.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

// newMetricBuilder creates a builder for the given meter.
func newMetricBuilder(mt metric.Meter) *metricBuilder {
	return &metricBuilder{meter: mt}
}

// counter creates an Int64Counter instrument.
func (b *metricBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

// upDownCounter creates an Int64UpDownCounter instrument.
func (b *metricBuilder) upDownCounter(name, desc, unit string) metric.Int64UpDownCounter {
	c, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

// histogram creates a Float64Histogram instrument with optional explicit
// bucket boundaries.
func (b *metricBuilder) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{
		metric.WithDescription(desc),
		metric.WithUnit(unit),
	}

	if len(bounds) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(bounds...))
	}

	h, err := b.meter.Float64Histogram(name, opts...)
	b.setErr(name, err)

	return h
}

// setErr records the first instrument creation error.
func (b *metricBuilder) setErr(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create %s: %w", name, err)
	}
}

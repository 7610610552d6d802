package observe

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestNewMetricsCreatesAllInstruments(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m.BuildDuration == nil || m.SynthesisDuration == nil || m.MixDuration == nil ||
		m.ScriptGenDuration == nil || m.Segments == nil || m.AmbienceCacheHits == nil ||
		m.ProviderErrors == nil || m.ActiveBuilds == nil {
		t.Error("NewMetrics() left instruments nil")
	}
}

func TestRecordSegment(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSegment(ctx, "edge", "ok")
	m.RecordSegment(ctx, "edge", "ok")
	m.RecordSegment(ctx, "edge", "failed")

	rm := collect(t, reader)
	metric, ok := findMetric(rm, "polyvox.segments")
	if !ok {
		t.Fatal("polyvox.segments not collected")
	}
	sum, ok := metric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", metric.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Errorf("total segments = %d, want 3", total)
	}
	if len(sum.DataPoints) != 2 {
		t.Errorf("attribute sets = %d, want 2 (ok and failed)", len(sum.DataPoints))
	}
}

func TestBuildDurationHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.BuildDuration.Record(context.Background(), 1.5)

	rm := collect(t, reader)
	metric, ok := findMetric(rm, "polyvox.build.duration")
	if !ok {
		t.Fatal("polyvox.build.duration not collected")
	}
	hist, ok := metric.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", metric.Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Errorf("histogram datapoints = %+v", hist.DataPoints)
	}
}

func TestActiveBuildsUpDown(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.ActiveBuilds.Add(ctx, 1)
	m.ActiveBuilds.Add(ctx, 1)
	m.ActiveBuilds.Add(ctx, -1)

	rm := collect(t, reader)
	metric, ok := findMetric(rm, "polyvox.active_builds")
	if !ok {
		t.Fatal("polyvox.active_builds not collected")
	}
	sum, ok := metric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", metric.Data)
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("active builds = %+v, want 1", sum.DataPoints)
	}
}

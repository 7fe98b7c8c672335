package health

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// PrometheusSource is a performance Source backed by real prometheus
// collectors rather than hand-counted fields. The skills server feeds it
// dispatch outcomes; the health collector reads it back every beat by
// gathering the registry and flattening each metric family into the
// performance section of a Snapshot.
type PrometheusSource struct {
	registry *prometheus.Registry

	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

// NewPrometheusSource builds a PrometheusSource registered against its own
// private registry, so collection here never competes with (or is polluted
// by) process-wide default-registry collectors.
func NewPrometheusSource() *PrometheusSource {
	reg := prometheus.NewRegistry()
	s := &PrometheusSource{
		registry: reg,
		dispatchTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "veyra",
			Name:      "dispatch_requests_total",
			Help:      "Total number of skill dispatch requests by outcome.",
		}, []string{"outcome"}),
		dispatchDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "veyra",
			Name:      "dispatch_duration_seconds",
			Help:      "Skill dispatch handling duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
	}
	return s
}

// RecordDispatch records one /handle outcome. outcome is "success" or
// "error"; durationSeconds is wall-clock time spent inside the registry's
// HandleRequest.
func (s *PrometheusSource) RecordDispatch(intent, outcome string, durationSeconds float64) {
	s.dispatchTotal.WithLabelValues(outcome).Inc()
	s.dispatchDuration.WithLabelValues(intent).Observe(durationSeconds)
}

// Collect gathers every registered metric family and flattens it into a
// plain map so it can sit in a Snapshot's "performance" section alongside
// whatever other sources produce.
func (s *PrometheusSource) Collect(ctx context.Context) (map[string]any, error) {
	families, err := s.registry.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(families))
	for _, mf := range families {
		out[mf.GetName()] = flattenFamily(mf)
	}
	return out, nil
}

func flattenFamily(mf *dto.MetricFamily) any {
	metrics := mf.GetMetric()
	if len(metrics) == 1 && len(metrics[0].GetLabel()) == 0 {
		return metricValue(metrics[0])
	}
	byLabels := make(map[string]any, len(metrics))
	for _, m := range metrics {
		key := labelKey(m)
		byLabels[key] = metricValue(m)
	}
	return byLabels
}

func labelKey(m *dto.Metric) string {
	key := ""
	for _, lp := range m.GetLabel() {
		if key != "" {
			key += ","
		}
		key += lp.GetName() + "=" + lp.GetValue()
	}
	if key == "" {
		return "_"
	}
	return key
}

func metricValue(m *dto.Metric) any {
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	case m.Histogram != nil:
		return map[string]any{
			"sample_count": m.Histogram.GetSampleCount(),
			"sample_sum":   m.Histogram.GetSampleSum(),
		}
	default:
		return nil
	}
}

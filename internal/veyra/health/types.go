// Package health collects a metrics snapshot, analyzes it for anomalies
// against a rolling baseline, and runs a bounded catalogue of in-process
// self-healing actions.
package health

import (
	"fmt"
	"sort"
	"time"
)

// Severity is the closed set of anomaly severities.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Anomaly is one flagged deviation of a single metric leaf from its
// historical baseline.
type Anomaly struct {
	MetricPath  string
	Current     float64
	Mean        float64
	Stddev      float64
	Z           float64
	Severity    Severity
	Description string
}

// Snapshot is one immutable collection of the five metric categories plus
// whatever anomalies were derived against a baseline at analysis time.
type Snapshot struct {
	Timestamp         time.Time
	Metrics           map[string]any
	Anomalies         map[string]Anomaly
	CollectionTimeMs  float64
}

// ToMapping renders Snapshot as a JSON-ready map.
func (s Snapshot) ToMapping() map[string]any {
	anomalies := make(map[string]any, len(s.Anomalies))
	for path, a := range s.Anomalies {
		anomalies[path] = map[string]any{
			"metric_path": a.MetricPath,
			"current":     a.Current,
			"mean":        a.Mean,
			"stddev":      a.Stddev,
			"z":           a.Z,
			"severity":    string(a.Severity),
			"description": a.Description,
		}
	}
	return map[string]any{
		"timestamp": s.Timestamp.Truncate(time.Second),
		"metrics":   s.Metrics,
		"anomalies": anomalies,
	}
}

// Percentile95 returns the p95 of samples using the spec's fixed formula:
// the index floor(n*0.95), clamped to n-1, of the ascending-sorted samples.
func Percentile95(samples []float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	idx := int(float64(n) * 0.95)
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

// Flatten walks a nested tree of maps and numeric leaves, producing a flat
// set of dotted paths to float64 values. Non-numeric leaves are ignored.
func Flatten(tree map[string]any) map[string]float64 {
	out := make(map[string]float64)
	flattenInto(tree, "", out)
	return out
}

func flattenInto(node any, prefix string, out map[string]float64) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			flattenInto(child, path, out)
		}
	case float64:
		out[prefix] = v
	case int:
		out[prefix] = float64(v)
	case int64:
		out[prefix] = float64(v)
	default:
		// non-numeric leaf; ignored.
	}
}

// sortedKeys returns the keys of m in ascending order, giving deterministic
// iteration order over an otherwise unordered map.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HealingAction is one audit row for a self-healer attempt.
type HealingAction struct {
	Timestamp  time.Time
	ActionType string
	Trigger    string
	Result     Result
	Details    map[string]any
}

// Result is the closed set of healing-action outcomes.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailed  Result = "failed"
	ResultSkipped Result = "skipped"
)

func (a HealingAction) String() string {
	return fmt.Sprintf("%s(%s)=%s", a.ActionType, a.Trigger, a.Result)
}

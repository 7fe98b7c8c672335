package health

import (
	"math"
	"strings"
)

// minBaselineSnapshots is the smallest baseline the analyzer will reason
// about; below it, every path is too sparse to compute a trustworthy mean.
const minBaselineSnapshots = 5

// AnalysisResult is the analyzer's verdict for one current snapshot against
// a rolling baseline.
type AnalysisResult struct {
	Anomalies          map[string]Anomaly
	HasCritical        bool
	RecommendedActions []string
}

// recommendationRules is the fixed path→action map (§4.G), checked in
// declaration order so that first-match order is deterministic.
var recommendationRules = []struct {
	match  func(path string, z float64) bool
	action string
}{
	{match: func(path string, z float64) bool { return strings.Contains(path, "error_rate") }, action: "restart_skill"},
	{match: func(path string, z float64) bool { return strings.Contains(path, "rate_limit") }, action: "adjust_rate_limits"},
	{match: func(path string, z float64) bool { return strings.Contains(path, "memory") && z > 0 }, action: "clear_stale_connections"},
	{match: func(path string, z float64) bool {
		return strings.Contains(path, "skill_failure") || strings.Contains(path, "skill_error")
	}, action: "restart_skill"},
	{match: func(path string, z float64) bool { return strings.Contains(path, "latency") && z > 0 }, action: "warm_llm_models"},
}

// AnalyzeSnapshot flattens current and each baseline tree to dotted paths,
// computes a z-score per leaf against its own historical series, and derives
// a deduplicated, order-preserving list of recommended healing actions.
func AnalyzeSnapshot(current map[string]any, baseline []map[string]any) AnalysisResult {
	if len(baseline) < minBaselineSnapshots {
		return AnalysisResult{Anomalies: map[string]Anomaly{}}
	}

	currentFlat := Flatten(current)
	baselineFlat := make([]map[string]float64, len(baseline))
	for i, snap := range baseline {
		baselineFlat[i] = Flatten(snap)
	}

	anomalies := make(map[string]Anomaly)
	hasCritical := false
	var recommended []string
	seen := make(map[string]bool)

	for _, path := range sortedKeys(currentFlat) {
		currentValue := currentFlat[path]

		var history []float64
		for _, snap := range baselineFlat {
			if v, ok := snap[path]; ok {
				history = append(history, v)
			}
		}
		if len(history) < minBaselineSnapshots {
			continue
		}

		mean := average(history)
		stddev := pstdev(history, mean)

		var z float64
		var anomaly *Anomaly
		switch {
		case stddev == 0:
			if currentValue != mean {
				z = math.Inf(1)
				anomaly = &Anomaly{
					MetricPath: path, Current: currentValue, Mean: mean, Stddev: 0, Z: z,
					Severity:    SeverityWarning,
					Description: describeAnomaly(path, currentValue, mean, z),
				}
			}
		default:
			z = (currentValue - mean) / stddev
			switch {
			case math.Abs(z) >= 3:
				anomaly = &Anomaly{
					MetricPath: path, Current: currentValue, Mean: mean, Stddev: stddev, Z: z,
					Severity:    SeverityCritical,
					Description: describeAnomaly(path, currentValue, mean, z),
				}
			case math.Abs(z) >= 2:
				anomaly = &Anomaly{
					MetricPath: path, Current: currentValue, Mean: mean, Stddev: stddev, Z: z,
					Severity:    SeverityWarning,
					Description: describeAnomaly(path, currentValue, mean, z),
				}
			}
		}

		if anomaly == nil {
			continue
		}
		anomalies[path] = *anomaly
		if anomaly.Severity == SeverityCritical {
			hasCritical = true
		}

		for _, rule := range recommendationRules {
			if rule.match(path, z) && !seen[rule.action] {
				seen[rule.action] = true
				recommended = append(recommended, rule.action)
			}
		}
	}

	return AnalysisResult{Anomalies: anomalies, HasCritical: hasCritical, RecommendedActions: recommended}
}

func describeAnomaly(path string, current, mean, z float64) string {
	return path + " deviated from baseline"
}

func average(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func pstdev(xs []float64, mean float64) float64 {
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

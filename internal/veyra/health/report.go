package health

import (
	"math"
	"time"
)

// DailyReport is the health score computed once per day from that day's
// snapshots.
type DailyReport struct {
	Date          time.Time
	Score         float64
	Deductions    map[string]float64
	SnapshotCount int
}

// GenerateDailyReport scores a day's worth of snapshots starting at 100 and
// subtracting fixed, capped penalties per category.
func GenerateDailyReport(date time.Time, snapshots []Snapshot) DailyReport {
	deductions := map[string]float64{}
	score := 100.0

	var errorRates []float64
	missingErrorData := false
	var rateLimitEvents float64
	var maxSkillErrors float64
	var maxMemMB float64

	for _, snap := range snapshots {
		reliability, _ := snap.Metrics["reliability"].(map[string]any)
		if reliability == nil {
			missingErrorData = true
		} else {
			if byProvider, ok := reliability["error_rate_by_provider"].(map[string]any); ok && len(byProvider) > 0 {
				var sum float64
				for _, v := range byProvider {
					if f, ok := toFloat(v); ok {
						sum += f
					}
				}
				errorRates = append(errorRates, sum/float64(len(byProvider)))
			} else {
				missingErrorData = true
			}
			if v, ok := toFloat(reliability["rate_limit_count"]); ok {
				rateLimitEvents += v
			}
		}

		skills, _ := snap.Metrics["skills"].(map[string]any)
		if skills != nil {
			if v, ok := toFloat(skills["error_count"]); ok && v > maxSkillErrors {
				maxSkillErrors = v
			}
		}

		system, _ := snap.Metrics["system"].(map[string]any)
		if system != nil {
			if v, ok := toFloat(system["memory_rss_mb"]); ok && v > maxMemMB {
				maxMemMB = v
			}
		}
	}

	if len(errorRates) > 0 {
		avgErrorRate := average(errorRates)
		deduction := math.Min(avgErrorRate*300, 30)
		deductions["error_rate"] = deduction
		score -= deduction
	}
	if missingErrorData {
		deductions["missing_data"] = 5
		score -= 5
	}
	if rateLimitEvents > 0 {
		deduction := math.Min(rateLimitEvents*2, 20)
		deductions["rate_limit"] = deduction
		score -= deduction
	}
	if maxSkillErrors > 0 {
		deduction := math.Min(maxSkillErrors*5, 20)
		deductions["skill_errors"] = deduction
		score -= deduction
	}
	if maxMemMB > 1024 {
		deduction := math.Min((maxMemMB-1024)/100, 10)
		deductions["memory"] = deduction
		score -= deduction
	}

	score = math.Round(score*10) / 10
	score = math.Max(0, math.Min(100, score))

	return DailyReport{Date: date, Score: score, Deductions: deductions, SnapshotCount: len(snapshots)}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

package core

import "math"

// PatternSummary reports the completion-variance statistics for one plant and
// care category, plus the interval adjustment they justify.
type PatternSummary struct {
	// AverageVariance is the mean signed variance in days; positive means
	// chronically late, negative chronically early.
	AverageVariance float64 `json:"average_variance"`
	// Consistency scores how tightly variances cluster, in [0,1].
	Consistency float64 `json:"consistency"`
	// RecommendedAdjustment is the damped, bounded interval delta in days.
	// Zero whenever the data is sparse, noisy, or the bias is under a day.
	RecommendedAdjustment int `json:"recommended_adjustment"`
	// SampleSize is the number of completion records considered.
	SampleSize int `json:"sample_size"`
}

// AnalyzePattern computes variance statistics over the supplied completion
// records. Below cfg.MinSamples the result is neutral regardless of variance:
// sparse data must never force a schedule change. An adjustment is recommended
// only when the mean bias exceeds cfg.MinMeanVarianceDays and consistency
// clears cfg.ConfidenceThreshold; it is damped by cfg.DampingFactor and
// clamped to ±cfg.MaxAdjustmentDays.
func AnalyzePattern(records []CompletionRecord, cfg Config) PatternSummary {
	summary := PatternSummary{SampleSize: len(records)}
	if len(records) < cfg.MinSamples {
		return summary
	}

	var sum float64
	for _, r := range records {
		sum += float64(r.VarianceDays)
	}
	mean := sum / float64(len(records))

	var sq float64
	for _, r := range records {
		d := float64(r.VarianceDays) - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(records)))

	consistency := 1 - stddev/cfg.ConsistencyWindowDays
	if consistency < 0 {
		consistency = 0
	}
	if consistency > 1 {
		consistency = 1
	}

	summary.AverageVariance = mean
	summary.Consistency = consistency

	if math.Abs(mean) <= cfg.MinMeanVarianceDays || consistency <= cfg.ConfidenceThreshold {
		return summary
	}
	adjustment := int(math.Round(mean * cfg.DampingFactor))
	if adjustment > cfg.MaxAdjustmentDays {
		adjustment = cfg.MaxAdjustmentDays
	}
	if adjustment < -cfg.MaxAdjustmentDays {
		adjustment = -cfg.MaxAdjustmentDays
	}
	summary.RecommendedAdjustment = adjustment
	return summary
}

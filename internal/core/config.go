package core

// Config holds the scheduling constants consulted by the analyzer, the
// due-date calculator, and the catch-up scan. Defaults match the behaviour
// the rest of the engine is tested against; callers override via WithConfig.
type Config struct {
	// LookbackDays bounds the completion-history window fed to the analyzer.
	LookbackDays int
	// MinSamples is the completion count below which the analyzer stays
	// neutral. Sparse data must never force a schedule change.
	MinSamples int
	// DampingFactor scales the average variance before it becomes an
	// adjustment, so a short run of outliers cannot swing scheduling.
	DampingFactor float64
	// ConsistencyWindowDays is the stddev (in days) at which the consistency
	// score reaches zero.
	ConsistencyWindowDays float64
	// ConfidenceThreshold is the minimum consistency score that permits a
	// non-zero adjustment.
	ConfidenceThreshold float64
	// MinMeanVarianceDays is the |average variance| below which no adjustment
	// is recommended.
	MinMeanVarianceDays float64
	// MaxAdjustmentDays clamps the recommended adjustment to ±N days.
	MaxAdjustmentDays int
	// MinIntervalDays and MaxIntervalDays bound the effective care interval
	// after adjustment.
	MinIntervalDays int
	MaxIntervalDays int
	// FallbackIntervals supplies the per-category base interval used when a
	// task type has no protocol-derived schedule.
	FallbackIntervals map[CareCategory]int
	// FertilizerWateringCreditML, when positive, counts a feeding activity
	// whose dilution volume meets the threshold as the watering base date.
	// Zero disables the heuristic.
	FertilizerWateringCreditML int
	// CatchUpLookbackDays bounds how far back the missed-opportunity scan
	// reaches.
	CatchUpLookbackDays int
	// HorizonDays bounds how far ahead the upcoming list reaches.
	HorizonDays int
}

// DefaultConfig returns the standard scheduling constants.
func DefaultConfig() Config {
	return Config{
		LookbackDays:          90,
		MinSamples:            3,
		DampingFactor:         0.7,
		ConsistencyWindowDays: 7,
		ConfidenceThreshold:   0.6,
		MinMeanVarianceDays:   1,
		MaxAdjustmentDays:     7,
		MinIntervalDays:       1,
		MaxIntervalDays:       30,
		FallbackIntervals: map[CareCategory]int{
			CareWatering:   3,
			CareFeeding:    14,
			CareInspection: 7,
		},
		FertilizerWateringCreditML: 0,
		CatchUpLookbackDays:        30,
		HorizonDays:                14,
	}
}

// FallbackInterval returns the base interval for a category, defaulting to
// the watering interval when the category has no entry.
func (c Config) FallbackInterval(category CareCategory) int {
	if days, ok := c.FallbackIntervals[category]; ok && days > 0 {
		return days
	}
	return c.FallbackIntervals[CareWatering]
}

package core

import (
	"time"

	"plantcore/pkg/domain"
)

// NextDueDate computes when care of the given category is next due for a
// plant, reading history from the transaction view. The base date is the most
// recent matching activity, or the planting date when none exists; the base
// interval is the per-category fallback, shifted by the analyzer's
// recommended adjustment and clamped to the configured interval bounds.
//
// When no activity exists and the planting date predates the interval, the
// result is now rather than a stale past date. When the fertilizer watering
// credit is enabled, a feeding activity whose dilution volume meets the
// threshold counts toward the watering base date.
func NextDueDate(view TransactionView, plant Plant, category CareCategory, summary PatternSummary, cfg Config, now time.Time) time.Time {
	base := plant.PlantedAt
	hasActivity := false
	if latest, ok := view.LatestActivity(plant.ID, category); ok {
		base = latest.PerformedAt
		hasActivity = true
	}
	if category == CareWatering && cfg.FertilizerWateringCreditML > 0 {
		if feed, ok := view.LatestActivity(plant.ID, CareFeeding); ok {
			if details, ok := feed.Details.(domain.FeedingDetails); ok &&
				details.DilutionML >= cfg.FertilizerWateringCreditML &&
				feed.PerformedAt.After(base) {
				base = feed.PerformedAt
				hasActivity = true
			}
		}
	}

	interval := cfg.FallbackInterval(category)
	if summary.RecommendedAdjustment != 0 {
		interval += summary.RecommendedAdjustment
	}
	if interval < cfg.MinIntervalDays {
		interval = cfg.MinIntervalDays
	}
	if interval > cfg.MaxIntervalDays {
		interval = cfg.MaxIntervalDays
	}

	due := base.AddDate(0, 0, interval)
	if !hasActivity && due.Before(now) {
		return now
	}
	return due
}

package core

import "time"

// ResolveStage derives a plant's growth stage at asOf from the variety
// timeline. A confirmed stage anchors the walk at that stage from the
// confirmation date; otherwise the walk starts at the first timeline stage
// from the planted date. The terminal stage absorbs all remaining time.
// Pure and deterministic: identical inputs always yield identical output.
//
// A missing or empty timeline resolves to StageUnknown; callers log the
// anomaly rather than failing, since reminders must stay available despite
// incomplete reference data.
func ResolveStage(plant Plant, variety Variety, asOf time.Time) StageName {
	if len(variety.Timeline) == 0 {
		return StageUnknown
	}

	start := 0
	origin := plant.PlantedAt
	if plant.ConfirmedStage != nil && plant.ConfirmedAt != nil {
		idx := variety.StageIndex(*plant.ConfirmedStage)
		if idx < 0 {
			// Confirmed stage absent from the timeline: trust the
			// confirmation as-is rather than guessing a position.
			return *plant.ConfirmedStage
		}
		start = idx
		origin = *plant.ConfirmedAt
	}

	remaining := daysBetween(origin, asOf)
	i := start
	for i < len(variety.Timeline)-1 {
		duration := variety.Timeline[i].DurationDays
		if remaining < duration {
			break
		}
		remaining -= duration
		i++
	}
	return variety.Timeline[i].Name
}

// daysBetween returns whole elapsed days from from to to, never negative.
func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from) / (24 * time.Hour))
}

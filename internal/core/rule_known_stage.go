package core

import (
	"context"
	"fmt"

	"plantcore/pkg/domain"
)

// NewKnownStageRule returns the rule warning when a plant's confirmed stage
// does not appear in its variety timeline. The severity is warn, not block:
// reminder availability outweighs strict validation, and the resolver already
// degrades gracefully for unknown stages.
func NewKnownStageRule(lookup VarietyLookup) domain.Rule {
	return knownStageRule{lookup: lookup}
}

type knownStageRule struct {
	lookup VarietyLookup
}

func (knownStageRule) Name() string { return "known_stage_confirmation" }

func (r knownStageRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	if r.lookup == nil {
		return res, nil
	}
	for _, change := range changes {
		if change.Entity != domain.EntityPlant {
			continue
		}
		plant, ok := change.After.(domain.Plant)
		if !ok || plant.ConfirmedStage == nil {
			continue
		}
		variety, ok := r.lookup.LookupByID(plant.VarietyID)
		if !ok {
			continue
		}
		if variety.StageIndex(*plant.ConfirmedStage) < 0 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "known_stage_confirmation",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("plant %s confirmed stage %q is not in the %s timeline", plant.ID, *plant.ConfirmedStage, variety.Name),
				Entity:   domain.EntityPlant,
				EntityID: plant.ID,
			})
		}
	}
	return res, nil
}

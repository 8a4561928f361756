package core

import (
	"context"
	"fmt"

	"plantcore/pkg/domain"
)

// NewPlantReferenceRule returns the rule blocking creation of activities and
// scheduled tasks that reference a plant absent from the transaction state.
func NewPlantReferenceRule() domain.Rule {
	return plantReferenceRule{}
}

type plantReferenceRule struct{}

func (plantReferenceRule) Name() string { return "plant_reference" }

func (plantReferenceRule) Evaluate(_ context.Context, view domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Action != domain.ActionCreate {
			continue
		}
		var plantID, entityID string
		switch change.Entity {
		case domain.EntityCareActivity:
			activity, ok := change.After.(domain.CareActivity)
			if !ok {
				continue
			}
			plantID, entityID = activity.PlantID, activity.ID
		case domain.EntityScheduledTask:
			task, ok := change.After.(domain.ScheduledTask)
			if !ok {
				continue
			}
			plantID, entityID = task.PlantID, task.ID
		default:
			continue
		}
		if _, ok := view.FindPlant(plantID); !ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "plant_reference",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s %s references missing plant %s", change.Entity, entityID, plantID),
				Entity:   change.Entity,
				EntityID: entityID,
			})
		}
	}
	return res, nil
}

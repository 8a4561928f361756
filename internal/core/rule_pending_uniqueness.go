package core

import (
	"context"
	"fmt"

	"plantcore/pkg/domain"
)

// NewPendingTaskUniquenessRule returns the in-transaction rule enforcing the
// scheduling invariant: a plant holds at most one pending task per template
// occurrence (category, name, source stage, repetition).
func NewPendingTaskUniquenessRule() domain.Rule {
	return pendingTaskUniquenessRule{}
}

type pendingTaskUniquenessRule struct{}

func (pendingTaskUniquenessRule) Name() string { return "pending_task_uniqueness" }

func (pendingTaskUniquenessRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	type occurrence struct {
		plantID    string
		category   CareCategory
		name       string
		stage      StageName
		repetition int
	}
	seen := make(map[occurrence]string)
	res := domain.Result{}
	for _, task := range view.ListScheduledTasks() {
		if task.Status != TaskStatusPending {
			continue
		}
		key := occurrence{
			plantID:    task.PlantID,
			category:   task.Category,
			name:       task.Name,
			stage:      task.Provenance.Stage,
			repetition: task.Provenance.Repetition,
		}
		if firstID, dup := seen[key]; dup {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "pending_task_uniqueness",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("plant %s has duplicate pending task %q (%s, stage %s, repetition %d): %s and %s", task.PlantID, task.Name, task.Category, task.Provenance.Stage, task.Provenance.Repetition, firstID, task.ID),
				Entity:   domain.EntityScheduledTask,
				EntityID: task.ID,
			})
			continue
		}
		seen[key] = task.ID
	}
	return res, nil
}

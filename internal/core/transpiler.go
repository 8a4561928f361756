package core

import "plantcore/pkg/domain"

// Transpile expands the variety's declarative protocol at fromStage into
// concrete scheduled tasks with absolute due dates. The anchor is the plant's
// stage-entry date (the later of planted and confirmation dates) offset by
// each template's start days; templates with a repeat count fan out one task
// per repetition spaced by the template frequency, identical except for due
// date and the repetition index recorded in provenance.
//
// A variety without a protocol, or without templates at fromStage, yields an
// empty slice: success, not failure. Callers must delete the plant's pending
// tasks for fromStage before re-invoking; the stage-confirmation workflow
// enforces this to keep the one-pending-task-per-template invariant.
//
// Pure and deterministic: tasks come out in category order (watering,
// feeding, inspection), then template order, then repetition order.
func Transpile(plant Plant, variety Variety, fromStage StageName) []ScheduledTask {
	anchor := domain.StageEntryDate(plant)
	var out []ScheduledTask
	for _, category := range careCategories {
		for _, tmpl := range variety.TemplatesFor(category, fromStage) {
			repeats := tmpl.RepeatCount
			if repeats < 1 {
				repeats = 1
			}
			for i := 0; i < repeats; i++ {
				due := anchor.AddDate(0, 0, tmpl.StartDays+i*tmpl.FrequencyDays)
				out = append(out, ScheduledTask{
					PlantID:  plant.ID,
					Name:     tmpl.Name,
					Category: category,
					Details:  tmpl.Details,
					DueAt:    due,
					Status:   TaskStatusPending,
					Provenance: Provenance{
						Stage:             fromStage,
						OriginalStartDays: tmpl.StartDays,
						Repetition:        i,
						Dynamic:           true,
					},
				})
			}
		}
	}
	return out
}

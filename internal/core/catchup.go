package core

import "time"

// MissedOpportunity describes a past-due task with no corresponding completed
// activity, carrying enough detail to pre-populate a retroactive log entry.
type MissedOpportunity struct {
	TaskID   string       `json:"task_id"`
	PlantID  string       `json:"plant_id"`
	Name     string       `json:"name"`
	Category CareCategory `json:"category"`
	DueAt    time.Time    `json:"due_at"`
	Stage    StageName    `json:"stage"`
	Details  CareDetails  `json:"-"`
}

// FindMissedOpportunities scans the plant's pending tasks for ones due
// strictly before now with no matching-category activity between the due date
// and now. Each missed task yields its own entry; entries are never collapsed
// by type. Tasks older than the lookback window are out of scope for
// retroactive logging.
func FindMissedOpportunities(view TransactionView, plantID string, lookbackDays int, now time.Time) []MissedOpportunity {
	horizon := now.AddDate(0, 0, -lookbackDays)
	var out []MissedOpportunity
	for _, task := range view.ListPendingTasks(plantID) {
		if !task.DueAt.Before(now) {
			continue
		}
		if task.DueAt.Before(horizon) {
			continue
		}
		if activityCovers(view, plantID, task.Category, task.DueAt, now) {
			continue
		}
		out = append(out, MissedOpportunity{
			TaskID:   task.ID,
			PlantID:  plantID,
			Name:     task.Name,
			Category: task.Category,
			DueAt:    task.DueAt,
			Stage:    task.Provenance.Stage,
			Details:  task.Details,
		})
	}
	return out
}

// activityCovers reports whether any activity of the category falls in
// [from, to).
func activityCovers(view TransactionView, plantID string, category CareCategory, from, to time.Time) bool {
	for _, a := range view.ListCareActivities(plantID, category) {
		if a.PerformedAt.Before(from) {
			// Activities arrive most recent first; everything after this is older.
			return false
		}
		if a.PerformedAt.Before(to) {
			return true
		}
	}
	return false
}

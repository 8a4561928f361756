package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// groupNamespace seeds the deterministic group identifiers so a group keeps
// the same ID across reads as long as its key fields match.
var groupNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("plantcore://grouped-task"))

// groupKey identifies plants eligible for bulk completion. Membership
// requires exact equality on every key field. When a plant carries a bed
// section the refined structured-position key applies instead of the loose
// location/soil key.
type groupKey struct {
	varietyName string
	container   string
	plantedDay  string
	location    string
	soilMix     string
	bedSection  string
	refined     bool
}

func keyForPlant(p Plant) groupKey {
	day := p.PlantedAt.UTC().Format("2006-01-02")
	if p.BedSection != nil {
		return groupKey{
			varietyName: p.VarietyName,
			container:   p.Container,
			plantedDay:  day,
			bedSection:  *p.BedSection,
			refined:     true,
		}
	}
	return groupKey{
		varietyName: p.VarietyName,
		container:   p.Container,
		plantedDay:  day,
		location:    p.Location,
		soilMix:     p.SoilMix,
	}
}

// taskKey matches equivalent tasks across members of a group. Identical key
// fields imply identical protocol schedules, so (category, name, stage,
// repetition) is sufficient to pair them.
type taskKey struct {
	category   CareCategory
	name       string
	stage      StageName
	repetition int
}

func keyForTask(t ScheduledTask) taskKey {
	return taskKey{category: t.Category, name: t.Name, stage: t.Provenance.Stage, repetition: t.Provenance.Repetition}
}

// GroupUpcoming consolidates pending tasks for plants sharing a grouping key
// into one logical task per distinct template occurrence. Fields come from a
// representative member's task; PlantIDs and TaskIDs list only members that
// still hold a matching pending task, so partial bulk completion shrinks the
// group on the next read without any in-place mutation.
//
// The result is recomputed from current state on every call and ordered by
// due date, then name, then group ID.
func GroupUpcoming(plants []Plant, tasksByPlant map[string][]ScheduledTask) []GroupedTask {
	members := make(map[groupKey][]Plant)
	keys := make([]groupKey, 0)
	for _, p := range plants {
		if !p.Active {
			continue
		}
		k := keyForPlant(p)
		if _, seen := members[k]; !seen {
			keys = append(keys, k)
		}
		members[k] = append(members[k], p)
	}

	var out []GroupedTask
	for _, k := range keys {
		group := members[k]
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })

		// Union of task occurrences across members; the first member holding
		// an occurrence is its representative.
		occurrences := make(map[taskKey]*GroupedTask)
		var order []taskKey
		for _, p := range group {
			for _, task := range tasksByPlant[p.ID] {
				if task.Status != TaskStatusPending {
					continue
				}
				tk := keyForTask(task)
				entry, ok := occurrences[tk]
				if !ok {
					entry = &GroupedTask{
						GroupID:     groupID(k, tk),
						Name:        task.Name,
						Category:    task.Category,
						Stage:       task.Provenance.Stage,
						Details:     task.Details,
						DueAt:       task.DueAt,
						VarietyName: k.varietyName,
						Container:   k.container,
						Location:    k.location,
						SoilMix:     k.soilMix,
						PlantedOn:   k.plantedDay,
					}
					if k.refined {
						section := k.bedSection
						entry.BedSection = &section
					}
					occurrences[tk] = entry
					order = append(order, tk)
				}
				entry.PlantIDs = append(entry.PlantIDs, p.ID)
				entry.TaskIDs = append(entry.TaskIDs, task.ID)
			}
		}
		for _, tk := range order {
			entry := occurrences[tk]
			entry.PlantCount = len(entry.PlantIDs)
			out = append(out, *entry)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].DueAt.Before(out[j].DueAt)
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].GroupID < out[j].GroupID
	})
	return out
}

// PrioritizeGroups orders grouped tasks for presentation: overdue first (most
// overdue leading), then by due date, then name.
func PrioritizeGroups(groups []GroupedTask, now time.Time) []GroupedTask {
	out := append([]GroupedTask(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		iOverdue := out[i].DueAt.Before(now)
		jOverdue := out[j].DueAt.Before(now)
		if iOverdue != jOverdue {
			return iOverdue
		}
		if !out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].DueAt.Before(out[j].DueAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func groupID(k groupKey, tk taskKey) string {
	seed := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%t|%s|%s|%s|%d",
		k.varietyName, k.container, k.plantedDay, k.location, k.soilMix, k.bedSection, k.refined,
		tk.category, tk.name, tk.stage, tk.repetition)
	return uuid.NewSHA1(groupNamespace, []byte(seed)).String()
}

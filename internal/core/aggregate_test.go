package core

import (
	"fmt"
	"testing"
	"time"
)

func makeBed(count int, mutate func(i int, p *Plant)) ([]Plant, map[string][]ScheduledTask) {
	planted := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	due := planted.AddDate(0, 0, 3)
	plants := make([]Plant, 0, count)
	tasks := make(map[string][]ScheduledTask, count)
	for i := 0; i < count; i++ {
		p := Plant{
			Base:        Base{ID: fmt.Sprintf("plant-%02d", i)},
			VarietyName: "Test Basil",
			PlantedAt:   planted,
			Location:    "windowsill",
			Container:   "10cm pot",
			SoilMix:     "seed mix",
			Active:      true,
		}
		if mutate != nil {
			mutate(i, &p)
		}
		plants = append(plants, p)
		tasks[p.ID] = []ScheduledTask{{
			Base:       Base{ID: fmt.Sprintf("task-%02d", i)},
			PlantID:    p.ID,
			Name:       "Light watering",
			Category:   CareWatering,
			DueAt:      due,
			Status:     TaskStatusPending,
			Provenance: Provenance{Stage: "seedling", Repetition: 0, Dynamic: true},
		}}
	}
	return plants, tasks
}

func TestGroupUpcomingCollapsesIdenticalPlants(t *testing.T) {
	plants, tasks := makeBed(10, nil)
	groups := GroupUpcoming(plants, tasks)
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}
	g := groups[0]
	if g.PlantCount != 10 || len(g.PlantIDs) != 10 || len(g.TaskIDs) != 10 {
		t.Errorf("group should cover all plants: count=%d plants=%d tasks=%d", g.PlantCount, len(g.PlantIDs), len(g.TaskIDs))
	}
	if g.Name != "Light watering" || g.Category != CareWatering || g.Stage != "seedling" {
		t.Errorf("representative fields wrong: %+v", g)
	}
}

func TestGroupUpcomingSplitsOnKeyFieldChange(t *testing.T) {
	plants, tasks := makeBed(10, func(i int, p *Plant) {
		if i == 7 {
			p.Location = "greenhouse"
		}
	})
	groups := GroupUpcoming(plants, tasks)
	if len(groups) != 2 {
		t.Fatalf("expected two groups after location change, got %d", len(groups))
	}
	counts := []int{groups[0].PlantCount, groups[1].PlantCount}
	if !(counts[0] == 9 && counts[1] == 1 || counts[0] == 1 && counts[1] == 9) {
		t.Errorf("expected a 9/1 split, got %v", counts)
	}
}

func TestGroupUpcomingBedSectionRefinesKey(t *testing.T) {
	sectionA, sectionB := "A3", "B1"
	plants, tasks := makeBed(4, func(i int, p *Plant) {
		if i < 2 {
			p.BedSection = &sectionA
		} else {
			p.BedSection = &sectionB
		}
		// Different loose fields must not matter once a section is present.
		p.Location = fmt.Sprintf("shelf-%d", i)
	})
	groups := GroupUpcoming(plants, tasks)
	if len(groups) != 2 {
		t.Fatalf("expected two section groups, got %d", len(groups))
	}
	for _, g := range groups {
		if g.PlantCount != 2 {
			t.Errorf("section group count %d, want 2", g.PlantCount)
		}
		if g.BedSection == nil {
			t.Error("refined group should carry its bed section")
		}
	}
}

func TestGroupUpcomingShrinksAfterPartialCompletion(t *testing.T) {
	plants, tasks := makeBed(4, nil)
	before := GroupUpcoming(plants, tasks)
	if len(before) != 1 || before[0].PlantCount != 4 {
		t.Fatalf("setup: expected one group of 4, got %+v", before)
	}

	// Complete the tasks of two members; the group is re-derived smaller and
	// keeps the same identity.
	for _, id := range []string{"plant-00", "plant-01"} {
		list := tasks[id]
		list[0].Status = TaskStatusCompleted
		tasks[id] = list
	}
	after := GroupUpcoming(plants, tasks)
	if len(after) != 1 {
		t.Fatalf("expected one group after partial completion, got %d", len(after))
	}
	if after[0].PlantCount != 2 {
		t.Errorf("group should shrink to 2 members, got %d", after[0].PlantCount)
	}
	if after[0].GroupID != before[0].GroupID {
		t.Errorf("group identity changed across reads: %s then %s", before[0].GroupID, after[0].GroupID)
	}
}

func TestGroupUpcomingSkipsInactivePlants(t *testing.T) {
	plants, tasks := makeBed(3, func(i int, p *Plant) {
		if i == 0 {
			p.Active = false
		}
	})
	groups := GroupUpcoming(plants, tasks)
	if len(groups) != 1 || groups[0].PlantCount != 2 {
		t.Fatalf("inactive plants must be excluded, got %+v", groups)
	}
}

func TestGroupIDsAreStableAcrossCalls(t *testing.T) {
	plants, tasks := makeBed(5, nil)
	a := GroupUpcoming(plants, tasks)
	b := GroupUpcoming(plants, tasks)
	if len(a) != 1 || len(b) != 1 || a[0].GroupID != b[0].GroupID {
		t.Fatalf("group IDs must be deterministic: %+v vs %+v", a, b)
	}
}

func TestPrioritizeGroupsOverdueFirst(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	groups := []GroupedTask{
		{GroupID: "g-future", Name: "Feed", DueAt: now.AddDate(0, 0, 2)},
		{GroupID: "g-overdue", Name: "Water", DueAt: now.AddDate(0, 0, -3)},
		{GroupID: "g-today", Name: "Inspect", DueAt: now.Add(time.Hour)},
	}
	ordered := PrioritizeGroups(groups, now)
	if ordered[0].GroupID != "g-overdue" {
		t.Errorf("overdue group should lead, got %s", ordered[0].GroupID)
	}
	if ordered[1].GroupID != "g-today" || ordered[2].GroupID != "g-future" {
		t.Errorf("remaining groups should order by due date: %s, %s", ordered[1].GroupID, ordered[2].GroupID)
	}
	// Input order untouched.
	if groups[0].GroupID != "g-future" {
		t.Error("PrioritizeGroups must not mutate its input")
	}
}

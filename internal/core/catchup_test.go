package core

import (
	"context"
	"testing"
	"time"

	"plantcore/internal/infra/persistence/memory"
	"plantcore/pkg/domain"
)

func seedMissedTaskStore(t *testing.T, now time.Time) (*memory.Store, string) {
	t.Helper()
	store := memory.NewStore(nil)
	var plantID string
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		plant, err := tx.CreatePlant(Plant{
			VarietyName: "Test Chili",
			PlantedAt:   now.AddDate(0, 0, -30),
			Active:      true,
		})
		if err != nil {
			return err
		}
		plantID = plant.ID
		tasks := []ScheduledTask{
			{PlantID: plant.ID, Name: "Deep watering", Category: CareWatering, DueAt: now.AddDate(0, 0, -5), Status: TaskStatusPending, Provenance: Provenance{Stage: "vegetative"}},
			{PlantID: plant.ID, Name: "Weekly feed", Category: CareFeeding, DueAt: now.AddDate(0, 0, -2), Status: TaskStatusPending, Provenance: Provenance{Stage: "vegetative"}},
			{PlantID: plant.ID, Name: "Pest check", Category: CareInspection, DueAt: now.AddDate(0, 0, 3), Status: TaskStatusPending, Provenance: Provenance{Stage: "vegetative"}},
			{PlantID: plant.ID, Name: "Ancient watering", Category: CareWatering, DueAt: now.AddDate(0, 0, -40), Status: TaskStatusPending, Provenance: Provenance{Stage: "seedling"}},
		}
		_, err = tx.CreateScheduledTasks(tasks)
		return err
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store, plantID
}

func TestFindMissedOpportunitiesDetectsUncoveredOverdue(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	store, plantID := seedMissedTaskStore(t, now)

	var missed []MissedOpportunity
	_ = store.View(context.Background(), func(view TransactionView) error {
		missed = FindMissedOpportunities(view, plantID, 30, now)
		return nil
	})
	if len(missed) != 2 {
		t.Fatalf("expected 2 missed opportunities (overdue watering and feeding), got %d: %+v", len(missed), missed)
	}
	names := map[string]bool{}
	for _, m := range missed {
		names[m.Name] = true
		if m.PlantID != plantID {
			t.Errorf("missed entry has wrong plant: %s", m.PlantID)
		}
	}
	if !names["Deep watering"] || !names["Weekly feed"] {
		t.Errorf("unexpected entries: %v", names)
	}
}

func TestFindMissedOpportunitiesExcludesFutureAndAncient(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	store, plantID := seedMissedTaskStore(t, now)

	var missed []MissedOpportunity
	_ = store.View(context.Background(), func(view TransactionView) error {
		missed = FindMissedOpportunities(view, plantID, 30, now)
		return nil
	})
	for _, m := range missed {
		if m.Name == "Pest check" {
			t.Error("future task must not appear")
		}
		if m.Name == "Ancient watering" {
			t.Error("task beyond the lookback window must not appear")
		}
	}
}

func TestFindMissedOpportunitiesCoveredByActivity(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	store, plantID := seedMissedTaskStore(t, now)

	// A watering logged after the task's due date covers it.
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateCareActivity(CareActivity{
			PlantID:     plantID,
			Category:    CareWatering,
			PerformedAt: now.AddDate(0, 0, -4),
			Details:     domain.WateringDetails{VolumeML: 400},
		})
		return err
	})
	if err != nil {
		t.Fatalf("log activity: %v", err)
	}

	var missed []MissedOpportunity
	_ = store.View(context.Background(), func(view TransactionView) error {
		missed = FindMissedOpportunities(view, plantID, 30, now)
		return nil
	})
	if len(missed) != 1 || missed[0].Name != "Weekly feed" {
		t.Fatalf("watering should be covered, leaving only the feed: %+v", missed)
	}
}

package core

import (
	"context"
	"testing"
	"time"

	"plantcore/internal/infra/persistence/memory"
	"plantcore/pkg/domain"
)

func seedPlantWithActivities(t *testing.T, activities ...CareActivity) (*memory.Store, Plant) {
	t.Helper()
	store := memory.NewStore(nil)
	plant := Plant{
		Base:        Base{ID: "plant-1"},
		VarietyName: "Test Tomato",
		PlantedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Active:      true,
	}
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		created, err := tx.CreatePlant(plant)
		if err != nil {
			return err
		}
		plant = created
		for _, a := range activities {
			a.PlantID = created.ID
			if _, err := tx.CreateCareActivity(a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store, plant
}

func TestNextDueDateFromLatestActivity(t *testing.T) {
	watered := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	store, plant := seedPlantWithActivities(t, CareActivity{
		Category:    CareWatering,
		PerformedAt: watered,
		Details:     domain.WateringDetails{VolumeML: 300},
	})
	cfg := DefaultConfig()
	now := watered.AddDate(0, 0, 1)

	var due time.Time
	_ = store.View(context.Background(), func(view TransactionView) error {
		due = NextDueDate(view, plant, CareWatering, PatternSummary{}, cfg, now)
		return nil
	})
	if want := watered.AddDate(0, 0, 3); !due.Equal(want) {
		t.Errorf("due %s, want watering fallback %s", due, want)
	}
}

func TestNextDueDateNoActivityClampsToNow(t *testing.T) {
	store, plant := seedPlantWithActivities(t)
	cfg := DefaultConfig()
	// Long after planting; planted+interval is deep in the past.
	now := plant.PlantedAt.AddDate(0, 0, 60)

	var due time.Time
	_ = store.View(context.Background(), func(view TransactionView) error {
		due = NextDueDate(view, plant, CareWatering, PatternSummary{}, cfg, now)
		return nil
	})
	if !due.Equal(now) {
		t.Errorf("stale no-activity due date should clamp to now, got %s", due)
	}
}

func TestNextDueDateAppliesAdjustmentWithinBounds(t *testing.T) {
	watered := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	store, plant := seedPlantWithActivities(t, CareActivity{
		Category:    CareWatering,
		PerformedAt: watered,
		Details:     domain.WateringDetails{VolumeML: 300},
	})
	cfg := DefaultConfig()
	now := watered.Add(time.Hour)

	var due time.Time
	_ = store.View(context.Background(), func(view TransactionView) error {
		due = NextDueDate(view, plant, CareWatering, PatternSummary{RecommendedAdjustment: 4}, cfg, now)
		return nil
	})
	if want := watered.AddDate(0, 0, 7); !due.Equal(want) {
		t.Errorf("due %s, want fallback+adjustment %s", due, want)
	}

	// A negative adjustment larger than the interval floors at the minimum.
	_ = store.View(context.Background(), func(view TransactionView) error {
		due = NextDueDate(view, plant, CareWatering, PatternSummary{RecommendedAdjustment: -7}, cfg, now)
		return nil
	})
	if want := watered.AddDate(0, 0, cfg.MinIntervalDays); !due.Equal(want) {
		t.Errorf("due %s, want floored interval %s", due, want)
	}
}

func TestNextDueDateFertilizerWateringCredit(t *testing.T) {
	watered := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	fed := watered.AddDate(0, 0, 2)
	activities := []CareActivity{
		{Category: CareWatering, PerformedAt: watered, Details: domain.WateringDetails{VolumeML: 300}},
		{Category: CareFeeding, PerformedAt: fed, Details: domain.FeedingDetails{Product: "FishMix", DilutionML: 500}},
	}

	cfg := DefaultConfig()
	now := fed.Add(time.Hour)

	// Disabled by default: the feeding does not move the watering base.
	store, plant := seedPlantWithActivities(t, activities...)
	var due time.Time
	_ = store.View(context.Background(), func(view TransactionView) error {
		due = NextDueDate(view, plant, CareWatering, PatternSummary{}, cfg, now)
		return nil
	})
	if want := watered.AddDate(0, 0, 3); !due.Equal(want) {
		t.Errorf("credit disabled: due %s, want %s", due, want)
	}

	// Enabled with a met threshold: the feeding becomes the base date.
	cfg.FertilizerWateringCreditML = 400
	_ = store.View(context.Background(), func(view TransactionView) error {
		due = NextDueDate(view, plant, CareWatering, PatternSummary{}, cfg, now)
		return nil
	})
	if want := fed.AddDate(0, 0, 3); !due.Equal(want) {
		t.Errorf("credit enabled: due %s, want %s", due, want)
	}

	// Below the threshold the feeding is ignored.
	cfg.FertilizerWateringCreditML = 600
	_ = store.View(context.Background(), func(view TransactionView) error {
		due = NextDueDate(view, plant, CareWatering, PatternSummary{}, cfg, now)
		return nil
	})
	if want := watered.AddDate(0, 0, 3); !due.Equal(want) {
		t.Errorf("credit below threshold: due %s, want %s", due, want)
	}
}

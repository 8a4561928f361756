package core

import (
	"context"
	"sync"
	"testing"
)

func TestPlannerRecomputesOnlyAfterCommit(t *testing.T) {
	svc, _, clock, _ := newTestService(t)
	planner := NewPlanner(svc)
	defer planner.Close()

	createTestPlant(t, svc, func(p *Plant) {
		p.PlantedAt = clock.Now().AddDate(0, 0, -10)
	})

	first, err := planner.Tasks(context.Background())
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected grouped tasks after plant creation")
	}

	// No commit in between: the second read serves the cache.
	second, err := planner.Tasks(context.Background())
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("cached read diverged: %d vs %d", len(second), len(first))
	}

	// A commit dirties the cache; the next read reflects the new plant.
	createTestPlant(t, svc, func(p *Plant) {
		p.PlantedAt = clock.Now().AddDate(0, 0, -10)
		p.Location = "greenhouse"
	})
	third, err := planner.Tasks(context.Background())
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(third) <= len(first) {
		t.Fatalf("expected more groups after second plant, got %d vs %d", len(third), len(first))
	}
}

func TestPlannerReturnsCopies(t *testing.T) {
	svc, _, clock, _ := newTestService(t)
	planner := NewPlanner(svc)
	defer planner.Close()

	createTestPlant(t, svc, func(p *Plant) {
		p.PlantedAt = clock.Now().AddDate(0, 0, -10)
	})

	got, err := planner.Tasks(context.Background())
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected tasks")
	}
	got[0].Name = "tampered"

	again, err := planner.Tasks(context.Background())
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if again[0].Name == "tampered" {
		t.Error("caller mutation leaked into the cache")
	}
}

func TestPlannerInvalidateForcesRecompute(t *testing.T) {
	svc, store, clock, _ := newTestService(t)
	planner := NewPlanner(svc)

	createTestPlant(t, svc, func(p *Plant) {
		p.PlantedAt = clock.Now().AddDate(0, 0, -10)
	})
	if _, err := planner.Tasks(context.Background()); err != nil {
		t.Fatalf("tasks: %v", err)
	}

	// Closed planner no longer observes commits; Invalidate still works.
	planner.Close()
	createTestPlant(t, svc, func(p *Plant) {
		p.PlantedAt = clock.Now().AddDate(0, 0, -10)
		p.Location = "greenhouse"
	})

	stale, err := planner.Tasks(context.Background())
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	fresh := len(store.ListPlants())
	if fresh != 2 {
		t.Fatalf("setup: expected 2 plants, got %d", fresh)
	}

	planner.Invalidate()
	after, err := planner.Tasks(context.Background())
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(after) <= len(stale) {
		t.Fatalf("invalidate did not force recompute: %d vs %d", len(after), len(stale))
	}
}

func TestPlannerCloseIsConcurrencySafe(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	planner := NewPlanner(svc)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			planner.Close()
		}()
	}
	wg.Wait()

	// Still serves reads after the subscription is gone.
	if _, err := planner.Tasks(context.Background()); err != nil {
		t.Fatalf("tasks after close: %v", err)
	}
}

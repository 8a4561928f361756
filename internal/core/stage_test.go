package core

import (
	"testing"
	"time"

	"plantcore/pkg/domain"
)

func tomatoVariety() Variety {
	return Variety{
		ID:   "var-tomato",
		Name: "Test Tomato",
		Timeline: []StagePhase{
			{Name: "germination", DurationDays: 7},
			{Name: "seedling", DurationDays: 14},
			{Name: "vegetative", DurationDays: 21},
		},
		Protocol: CareProtocol{
			CareWatering: {
				"seedling": {
					{Name: "Light watering", StartDays: 0, RepeatCount: 2, FrequencyDays: 14, Details: WateringDetailsFixture()},
				},
				"germination": {
					{Name: "Misting", StartDays: 1},
				},
			},
			CareInspection: {
				"seedling": {
					{Name: "Damping-off check", StartDays: 3},
				},
			},
		},
	}
}

// WateringDetailsFixture keeps test templates consistent across files.
func WateringDetailsFixture() CareDetails {
	return domain.WateringDetails{VolumeML: 100, Method: "top"}
}

func TestResolveStageWalksTimeline(t *testing.T) {
	planted := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	plant := Plant{PlantedAt: planted}
	variety := tomatoVariety()

	cases := []struct {
		days int
		want StageName
	}{
		{0, "germination"},
		{6, "germination"},
		{7, "seedling"},
		{10, "seedling"},
		{20, "seedling"},
		{21, "vegetative"},
		{40, "vegetative"},
		{400, "vegetative"}, // terminal stage absorbs all remaining time
	}
	for _, tc := range cases {
		got := ResolveStage(plant, variety, planted.AddDate(0, 0, tc.days))
		if got != tc.want {
			t.Errorf("day %d: got %s, want %s", tc.days, got, tc.want)
		}
	}
}

func TestResolveStageIsDeterministic(t *testing.T) {
	planted := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	plant := Plant{PlantedAt: planted}
	variety := tomatoVariety()
	asOf := planted.AddDate(0, 0, 10)

	first := ResolveStage(plant, variety, asOf)
	for i := 0; i < 5; i++ {
		if got := ResolveStage(plant, variety, asOf); got != first {
			t.Fatalf("resolution changed between calls: %s then %s", first, got)
		}
	}
}

func TestResolveStageAnchorsAtConfirmation(t *testing.T) {
	planted := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	confirmed := planted.AddDate(0, 0, 30)
	stage := StageName("germination")
	plant := Plant{PlantedAt: planted, ConfirmedStage: &stage, ConfirmedAt: &confirmed}
	variety := tomatoVariety()

	// Two days after a germination confirmation the plant is still
	// germinating even though 32 days elapsed since planting.
	if got := ResolveStage(plant, variety, confirmed.AddDate(0, 0, 2)); got != "germination" {
		t.Errorf("expected germination shortly after confirmation, got %s", got)
	}
	// Eight days in, the walk has moved one stage onward.
	if got := ResolveStage(plant, variety, confirmed.AddDate(0, 0, 8)); got != "seedling" {
		t.Errorf("expected seedling 8 days after confirmation, got %s", got)
	}
}

func TestResolveStageKeepsForeignConfirmedStage(t *testing.T) {
	planted := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	confirmed := planted.AddDate(0, 0, 5)
	stage := StageName("bolting")
	plant := Plant{PlantedAt: planted, ConfirmedStage: &stage, ConfirmedAt: &confirmed}

	if got := ResolveStage(plant, tomatoVariety(), planted.AddDate(0, 0, 50)); got != "bolting" {
		t.Errorf("confirmed stage outside the timeline should be kept as-is, got %s", got)
	}
}

func TestResolveStageEmptyTimeline(t *testing.T) {
	plant := Plant{PlantedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	if got := ResolveStage(plant, Variety{}, plant.PlantedAt.AddDate(0, 0, 10)); got != StageUnknown {
		t.Errorf("empty timeline should resolve to %s, got %s", StageUnknown, got)
	}
}

package catalog

import "plantcore/pkg/domain"

// BuiltinSeed returns a catalog preloaded with a few common varieties. It
// backs the demo CLI and tests; production deployments load their own seed
// via LoadSeed.
func BuiltinSeed() *Catalog {
	c := New()
	for _, v := range builtinVarieties() {
		// Built-in entries are statically unique.
		_ = c.Add(v)
	}
	return c
}

func builtinVarieties() []domain.Variety {
	return []domain.Variety{
		{
			ID:       "var-tomato-roma",
			Name:     "Roma Tomato",
			Category: "vegetable",
			Timeline: []domain.StagePhase{
				{Name: "germination", DurationDays: 7},
				{Name: "seedling", DurationDays: 21},
				{Name: "vegetative", DurationDays: 28},
				{Name: "flowering", DurationDays: 21},
				{Name: "fruiting", DurationDays: 45},
			},
			Protocol: domain.CareProtocol{
				domain.CareWatering: {
					"seedling": {
						{Name: "Light watering", StartDays: 0, RepeatCount: 10, FrequencyDays: 2,
							Details: domain.WateringDetails{VolumeML: 150, Method: "top"}},
					},
					"vegetative": {
						{Name: "Deep watering", StartDays: 0, RepeatCount: 9, FrequencyDays: 3,
							Details: domain.WateringDetails{VolumeML: 500, Method: "base"}},
					},
					"fruiting": {
						{Name: "Deep watering", StartDays: 0, RepeatCount: 22, FrequencyDays: 2,
							Details: domain.WateringDetails{VolumeML: 750, Method: "base"}},
					},
				},
				domain.CareFeeding: {
					"vegetative": {
						{Name: "Nitrogen feed", StartDays: 0, RepeatCount: 2, FrequencyDays: 14,
							Details: domain.FeedingDetails{Product: "balanced liquid", NPK: "10-10-10", DilutionML: 1000}},
					},
					"fruiting": {
						{Name: "Bloom feed", StartDays: 7, RepeatCount: 3, FrequencyDays: 14,
							Details: domain.FeedingDetails{Product: "tomato feed", NPK: "5-10-10", DilutionML: 1000}},
					},
				},
				domain.CareInspection: {
					"vegetative": {
						{Name: "Pest check", StartDays: 3, RepeatCount: 4, FrequencyDays: 7,
							Details: domain.InspectionDetails{Focus: "underside of leaves"}},
					},
				},
			},
		},
		{
			ID:       "var-basil-genovese",
			Name:     "Genovese Basil",
			Category: "herb",
			Timeline: []domain.StagePhase{
				{Name: "germination", DurationDays: 7},
				{Name: "seedling", DurationDays: 14},
				{Name: "vegetative", DurationDays: 60},
			},
			Protocol: domain.CareProtocol{
				domain.CareWatering: {
					"seedling": {
						{Name: "Misting", StartDays: 0, RepeatCount: 14, FrequencyDays: 1,
							Details: domain.WateringDetails{VolumeML: 50, Method: "mist"}},
					},
					"vegetative": {
						{Name: "Watering", StartDays: 0, RepeatCount: 20, FrequencyDays: 3,
							Details: domain.WateringDetails{VolumeML: 250, Method: "base"}},
					},
				},
				domain.CareInspection: {
					"vegetative": {
						{Name: "Pinch check", StartDays: 7, RepeatCount: 8, FrequencyDays: 7,
							Details: domain.InspectionDetails{Focus: "flower spikes"}},
					},
				},
			},
		},
		{
			ID:       "var-chili-cayenne",
			Name:     "Cayenne Chili",
			Category: "vegetable",
			Timeline: []domain.StagePhase{
				{Name: "germination", DurationDays: 14},
				{Name: "seedling", DurationDays: 28},
				{Name: "vegetative", DurationDays: 35},
				{Name: "fruiting", DurationDays: 60},
			},
			Protocol: domain.CareProtocol{
				domain.CareWatering: {
					"vegetative": {
						{Name: "Watering", StartDays: 0, RepeatCount: 12, FrequencyDays: 3,
							Details: domain.WateringDetails{VolumeML: 400, Method: "base"}},
					},
				},
				domain.CareFeeding: {
					"fruiting": {
						{Name: "Potash feed", StartDays: 0, RepeatCount: 4, FrequencyDays: 14,
							Details: domain.FeedingDetails{Product: "high-K liquid", NPK: "4-3-8", DilutionML: 500}},
					},
				},
			},
		},
	}
}

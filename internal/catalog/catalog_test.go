package catalog

import (
	"strings"
	"testing"

	"plantcore/pkg/domain"
)

func sampleVariety(id, name string) domain.Variety {
	return domain.Variety{
		ID:   id,
		Name: name,
		Timeline: []domain.StagePhase{
			{Name: "germination", DurationDays: 7},
			{Name: "vegetative", DurationDays: 30},
		},
		Protocol: domain.CareProtocol{
			domain.CareWatering: {
				"vegetative": {
					{Name: "Watering", StartDays: 0, RepeatCount: 5, FrequencyDays: 3,
						Details: domain.WateringDetails{VolumeML: 200}},
				},
			},
		},
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	c := New()
	if err := c.Add(sampleVariety("var-1", "Mint")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add(sampleVariety("var-1", "Other")); err == nil {
		t.Error("duplicate id accepted")
	}
	if err := c.Add(sampleVariety("var-2", "mint")); err == nil {
		t.Error("case-insensitive duplicate name accepted")
	}
	if err := c.Add(domain.Variety{Name: "No ID"}); err == nil {
		t.Error("variety without id accepted")
	}
}

func TestLookupByNameIsCaseInsensitive(t *testing.T) {
	c := New()
	if err := c.Add(sampleVariety("var-1", "Genovese Basil")); err != nil {
		t.Fatalf("add: %v", err)
	}
	for _, name := range []string{"genovese basil", "GENOVESE BASIL", "  Genovese Basil  "} {
		if _, ok := c.LookupByName(name); !ok {
			t.Errorf("lookup %q missed", name)
		}
	}
	if _, ok := c.LookupByName("Genovese"); ok {
		t.Error("partial name matched")
	}
}

func TestLookupsReturnClones(t *testing.T) {
	c := New()
	if err := c.Add(sampleVariety("var-1", "Mint")); err != nil {
		t.Fatalf("add: %v", err)
	}
	v, ok := c.LookupByID("var-1")
	if !ok {
		t.Fatal("lookup missed")
	}
	v.Timeline[0].DurationDays = 999
	v.Protocol[domain.CareWatering]["vegetative"][0].Name = "tampered"

	again, _ := c.LookupByID("var-1")
	if again.Timeline[0].DurationDays != 7 {
		t.Error("timeline mutation leaked into the catalog")
	}
	if again.Protocol[domain.CareWatering]["vegetative"][0].Name != "Watering" {
		t.Error("protocol mutation leaked into the catalog")
	}
}

func TestListOrderedByName(t *testing.T) {
	c := New()
	for _, v := range []domain.Variety{
		sampleVariety("var-1", "Zucchini"),
		sampleVariety("var-2", "Basil"),
		sampleVariety("var-3", "Mint"),
	} {
		if err := c.Add(v); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	got := c.List()
	if len(got) != 3 {
		t.Fatalf("list %d entries", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Name < got[i-1].Name {
			t.Fatalf("unsorted: %q before %q", got[i-1].Name, got[i].Name)
		}
	}
}

func TestLoadSeed(t *testing.T) {
	seed := `[
		{"id":"var-1","name":"Mint","timeline":[{"name":"vegetative","duration_days":60}]},
		{"id":"var-2","name":"Thyme","timeline":[{"name":"vegetative","duration_days":90}]}
	]`
	c, err := LoadSeed(strings.NewReader(seed))
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if _, ok := c.LookupByName("thyme"); !ok {
		t.Error("seeded variety missing")
	}

	if _, err := LoadSeed(strings.NewReader(`{"not":"an array"}`)); err == nil {
		t.Error("malformed seed accepted")
	}
	dup := `[{"id":"var-1","name":"Mint"},{"id":"var-1","name":"Mint"}]`
	if _, err := LoadSeed(strings.NewReader(dup)); err == nil {
		t.Error("duplicate seed entries accepted")
	}
}

func TestBuiltinSeedIsWellFormed(t *testing.T) {
	c := BuiltinSeed()
	varieties := c.List()
	if len(varieties) == 0 {
		t.Fatal("builtin seed empty")
	}
	for _, v := range varieties {
		if len(v.Timeline) == 0 {
			t.Errorf("%s has no timeline", v.Name)
		}
		for category, stages := range v.Protocol {
			for stage, templates := range stages {
				if v.StageIndex(stage) < 0 {
					t.Errorf("%s: protocol stage %q not in timeline", v.Name, stage)
				}
				for _, tpl := range templates {
					if tpl.Details != nil && tpl.Details.DetailCategory() != category {
						t.Errorf("%s: template %q details category mismatch", v.Name, tpl.Name)
					}
				}
			}
		}
	}
	if _, ok := c.LookupByName("roma tomato"); !ok {
		t.Error("roma tomato missing from builtin seed")
	}
}

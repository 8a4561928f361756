// Package catalog serves read-only variety reference data: growth timelines
// and care protocols looked up by ID or name. Catalog misses are reported via
// the boolean, never as errors; scheduling degrades gracefully without
// reference data.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"plantcore/pkg/domain"
)

// Catalog is an in-memory variety lookup. Entries are immutable once added;
// lookups return deep clones so callers cannot corrupt shared protocol maps.
type Catalog struct {
	mu     sync.RWMutex
	byID   map[string]domain.Variety
	byName map[string]domain.Variety
}

// New constructs an empty catalog.
func New() *Catalog {
	return &Catalog{
		byID:   make(map[string]domain.Variety),
		byName: make(map[string]domain.Variety),
	}
}

// Add registers a variety. IDs and names must be unique.
func (c *Catalog) Add(v domain.Variety) error {
	if v.ID == "" || v.Name == "" {
		return fmt.Errorf("variety requires id and name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byID[v.ID]; exists {
		return fmt.Errorf("variety id %q already registered", v.ID)
	}
	key := nameKey(v.Name)
	if _, exists := c.byName[key]; exists {
		return fmt.Errorf("variety name %q already registered", v.Name)
	}
	cloned := cloneVariety(v)
	c.byID[v.ID] = cloned
	c.byName[key] = cloned
	return nil
}

// LookupByID returns the variety registered under the ID.
func (c *Catalog) LookupByID(id string) (domain.Variety, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.byID[id]
	if !ok {
		return domain.Variety{}, false
	}
	return cloneVariety(v), true
}

// LookupByName returns the variety registered under the case-insensitive name.
func (c *Catalog) LookupByName(name string) (domain.Variety, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.byName[nameKey(name)]
	if !ok {
		return domain.Variety{}, false
	}
	return cloneVariety(v), true
}

// List returns all varieties ordered by name.
func (c *Catalog) List() []domain.Variety {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Variety, 0, len(c.byID))
	for _, v := range c.byID {
		out = append(out, cloneVariety(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LoadSeed reads a JSON array of varieties into a new catalog.
func LoadSeed(r io.Reader) (*Catalog, error) {
	var varieties []domain.Variety
	dec := json.NewDecoder(r)
	if err := dec.Decode(&varieties); err != nil {
		return nil, fmt.Errorf("decode variety seed: %w", err)
	}
	c := New()
	for _, v := range varieties {
		if err := c.Add(v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func cloneVariety(v domain.Variety) domain.Variety {
	cp := v
	cp.Timeline = append([]domain.StagePhase(nil), v.Timeline...)
	if v.Protocol != nil {
		cp.Protocol = make(domain.CareProtocol, len(v.Protocol))
		for category, stages := range v.Protocol {
			cloned := make(map[domain.StageName][]domain.TaskTemplate, len(stages))
			for stage, templates := range stages {
				cloned[stage] = append([]domain.TaskTemplate(nil), templates...)
			}
			cp.Protocol[category] = cloned
		}
	}
	return cp
}

package core

import (
	"context"
	"sync"
)

// Planner maintains a cached grouped-task list that is invalidated by store
// change notifications and recomputed lazily on the next read. This replaces
// recomputing the full plan on every display refresh: commits mark the cache
// dirty, reads pay for recomputation only when something actually changed.
type Planner struct {
	service *Service

	mu     sync.Mutex
	cached []GroupedTask
	dirty  bool
	cancel func()
}

// NewPlanner subscribes to the service's store and returns a planner whose
// cache starts dirty. The subscription callback only flips a flag; it never
// touches the store, per the subscription contract.
func NewPlanner(service *Service) *Planner {
	p := &Planner{service: service, dirty: true}
	p.cancel = service.Store().Subscribe(func([]Change) {
		p.mu.Lock()
		p.dirty = true
		p.mu.Unlock()
	})
	return p
}

// Tasks returns the prioritized grouped task list, recomputing it only when a
// commit has occurred since the last call.
func (p *Planner) Tasks(ctx context.Context) ([]GroupedTask, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dirty {
		groups, err := p.service.UpcomingTasks(ctx, 0)
		if err != nil {
			return nil, err
		}
		p.cached = groups
		p.dirty = false
	}
	out := make([]GroupedTask, len(p.cached))
	copy(out, p.cached)
	return out, nil
}

// Invalidate forces the next Tasks call to recompute. Useful when the
// variety catalog changes out of band.
func (p *Planner) Invalidate() {
	p.mu.Lock()
	p.dirty = true
	p.mu.Unlock()
}

// Close cancels the store subscription. The planner remains usable; it just
// stops observing commits.
func (p *Planner) Close() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

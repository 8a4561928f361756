// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"plantcore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Plant aliases domain.Plant for in-memory persistence operations.
	Plant = domain.Plant
	// CareActivity aliases domain.CareActivity.
	CareActivity = domain.CareActivity
	// ScheduledTask aliases domain.ScheduledTask.
	ScheduledTask = domain.ScheduledTask
	// CompletionRecord aliases domain.CompletionRecord.
	CompletionRecord = domain.CompletionRecord
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	plants      map[string]Plant
	activities  map[string]CareActivity
	tasks       map[string]ScheduledTask
	completions map[string]CompletionRecord
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Plants      map[string]Plant            `json:"plants"`
	Activities  map[string]CareActivity     `json:"activities"`
	Tasks       map[string]ScheduledTask    `json:"tasks"`
	Completions map[string]CompletionRecord `json:"completions"`
}

func newMemoryState() memoryState {
	return memoryState{
		plants:      make(map[string]Plant),
		activities:  make(map[string]CareActivity),
		tasks:       make(map[string]ScheduledTask),
		completions: make(map[string]CompletionRecord),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.plants {
		cloned.plants[k] = clonePlant(v)
	}
	for k, v := range s.activities {
		cloned.activities[k] = cloneActivity(v)
	}
	for k, v := range s.tasks {
		cloned.tasks[k] = cloneTask(v)
	}
	for k, v := range s.completions {
		cloned.completions[k] = v
	}
	return cloned
}

func clonePlant(p Plant) Plant {
	cp := p
	if p.BedSection != nil {
		section := *p.BedSection
		cp.BedSection = &section
	}
	if p.ConfirmedStage != nil {
		stage := *p.ConfirmedStage
		cp.ConfirmedStage = &stage
	}
	if p.ConfirmedAt != nil {
		at := *p.ConfirmedAt
		cp.ConfirmedAt = &at
	}
	return cp
}

func cloneActivity(a CareActivity) CareActivity {
	cp := a
	if a.BatchID != nil {
		batch := *a.BatchID
		cp.BatchID = &batch
	}
	if a.Note != nil {
		note := *a.Note
		cp.Note = &note
	}
	return cp
}

// Detail values are value-typed structs from the closed union, safe to copy.
func cloneTask(t ScheduledTask) ScheduledTask { return t }

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu          sync.RWMutex
	state       memoryState
	engine      *RulesEngine
	nowFn       func() time.Time
	subMu       sync.Mutex
	subscribers map[int]func([]Change)
	subSeq      int
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:       newMemoryState(),
		engine:      engine,
		nowFn:       func() time.Time { return time.Now().UTC() },
		subscribers: make(map[int]func([]Change)),
	}
}

// SetNow overrides the transaction clock; intended for tests.
func (s *Store) SetNow(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// Subscribe registers a change callback invoked after each committed
// transaction. The returned cancel func removes the subscription.
func (s *Store) Subscribe(fn func([]Change)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subSeq++
	id := s.subSeq
	s.subscribers[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) notify(changes []Change) {
	if len(changes) == 0 {
		return
	}
	s.subMu.Lock()
	fns := make([]func([]Change), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(changes)
	}
}

// transaction implements domain.Transaction over a cloned state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

var _ Transaction = (*transaction)(nil)

type view struct {
	state *memoryState
}

var _ TransactionView = view{}

// RunInTransaction executes fn within a transactional copy of the store state.
// Rules are evaluated against the mutated snapshot before commit; blocking
// violations abort the commit with RuleViolationError. Subscribers observe the
// changes after the state swap.
func (s *Store) RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error) {
	s.mu.Lock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		s.mu.Unlock()
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &tx.state}, tx.changes)
		if err != nil {
			s.mu.Unlock()
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			s.mu.Unlock()
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	changes := tx.changes
	s.mu.Unlock()

	s.notify(changes)
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	_ = ctx
	return fn(view{state: &snapshot})
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// CreatePlant stores a new plant within the transaction.
func (tx *transaction) CreatePlant(p Plant) (Plant, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.plants[p.ID]; exists {
		return Plant{}, fmt.Errorf("plant %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.plants[p.ID] = clonePlant(p)
	tx.recordChange(Change{Entity: domain.EntityPlant, Action: domain.ActionCreate, After: clonePlant(p)})
	return clonePlant(p), nil
}

// UpdatePlant mutates a plant using the provided mutator function.
func (tx *transaction) UpdatePlant(id string, mutator func(*Plant) error) (Plant, error) {
	current, ok := tx.state.plants[id]
	if !ok {
		return Plant{}, fmt.Errorf("plant %q not found", id)
	}
	before := clonePlant(current)
	if err := mutator(&current); err != nil {
		return Plant{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.plants[id] = clonePlant(current)
	tx.recordChange(Change{Entity: domain.EntityPlant, Action: domain.ActionUpdate, Before: before, After: clonePlant(current)})
	return clonePlant(current), nil
}

// DeletePlant removes a plant from the transaction state. Callers normally
// soft-delete via UpdatePlant (clearing Active); hard deletion exists for
// plants with no surviving history.
func (tx *transaction) DeletePlant(id string) error {
	current, ok := tx.state.plants[id]
	if !ok {
		return fmt.Errorf("plant %q not found", id)
	}
	delete(tx.state.plants, id)
	tx.recordChange(Change{Entity: domain.EntityPlant, Action: domain.ActionDelete, Before: clonePlant(current)})
	return nil
}

// CreateCareActivity appends an immutable care activity.
func (tx *transaction) CreateCareActivity(a CareActivity) (CareActivity, error) {
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	if _, exists := tx.state.activities[a.ID]; exists {
		return CareActivity{}, fmt.Errorf("care activity %q already exists", a.ID)
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.activities[a.ID] = cloneActivity(a)
	tx.recordChange(Change{Entity: domain.EntityCareActivity, Action: domain.ActionCreate, After: cloneActivity(a)})
	return cloneActivity(a), nil
}

// CreateScheduledTask stores a single scheduled task.
func (tx *transaction) CreateScheduledTask(t ScheduledTask) (ScheduledTask, error) {
	if t.ID == "" {
		t.ID = tx.store.newID()
	}
	if _, exists := tx.state.tasks[t.ID]; exists {
		return ScheduledTask{}, fmt.Errorf("scheduled task %q already exists", t.ID)
	}
	if t.Status == "" {
		t.Status = domain.TaskStatusPending
	}
	t.CreatedAt = tx.now
	t.UpdatedAt = tx.now
	tx.state.tasks[t.ID] = cloneTask(t)
	tx.recordChange(Change{Entity: domain.EntityScheduledTask, Action: domain.ActionCreate, After: cloneTask(t)})
	return cloneTask(t), nil
}

// CreateScheduledTasks stores a batch of scheduled tasks in order.
func (tx *transaction) CreateScheduledTasks(tasks []ScheduledTask) ([]ScheduledTask, error) {
	out := make([]ScheduledTask, 0, len(tasks))
	for _, t := range tasks {
		created, err := tx.CreateScheduledTask(t)
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}

// UpdateScheduledTask mutates a scheduled task, typically a status transition.
func (tx *transaction) UpdateScheduledTask(id string, mutator func(*ScheduledTask) error) (ScheduledTask, error) {
	current, ok := tx.state.tasks[id]
	if !ok {
		return ScheduledTask{}, fmt.Errorf("scheduled task %q not found", id)
	}
	before := cloneTask(current)
	if err := mutator(&current); err != nil {
		return ScheduledTask{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.tasks[id] = cloneTask(current)
	tx.recordChange(Change{Entity: domain.EntityScheduledTask, Action: domain.ActionUpdate, Before: before, After: cloneTask(current)})
	return cloneTask(current), nil
}

// DeletePendingTasks removes every pending task for the plant.
func (tx *transaction) DeletePendingTasks(plantID string) (int, error) {
	removed := 0
	for id, task := range tx.state.tasks {
		if task.PlantID != plantID || task.Status != domain.TaskStatusPending {
			continue
		}
		delete(tx.state.tasks, id)
		tx.recordChange(Change{Entity: domain.EntityScheduledTask, Action: domain.ActionDelete, Before: cloneTask(task)})
		removed++
	}
	return removed, nil
}

// CreateCompletionRecord appends an immutable completion fact.
func (tx *transaction) CreateCompletionRecord(r CompletionRecord) (CompletionRecord, error) {
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.completions[r.ID]; exists {
		return CompletionRecord{}, fmt.Errorf("completion record %q already exists", r.ID)
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.completions[r.ID] = r
	tx.recordChange(Change{Entity: domain.EntityCompletionRecord, Action: domain.ActionCreate, After: r})
	return r, nil
}

// FindPlant retrieves a plant by ID from the transaction state.
func (tx *transaction) FindPlant(id string) (Plant, bool) {
	p, ok := tx.state.plants[id]
	if !ok {
		return Plant{}, false
	}
	return clonePlant(p), true
}

// FindScheduledTask retrieves a scheduled task by ID from the transaction state.
func (tx *transaction) FindScheduledTask(id string) (ScheduledTask, bool) {
	t, ok := tx.state.tasks[id]
	if !ok {
		return ScheduledTask{}, false
	}
	return cloneTask(t), true
}

// ListPendingTasks returns the plant's pending tasks ordered by due date.
func (tx *transaction) ListPendingTasks(plantID string) []ScheduledTask {
	return pendingTasks(&tx.state, plantID)
}

// View implementations ------------------------------------------------------

// ListPlants returns all plants ordered by ID for determinism.
func (v view) ListPlants() []Plant {
	out := make([]Plant, 0, len(v.state.plants))
	for _, p := range v.state.plants {
		out = append(out, clonePlant(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindPlant retrieves a plant by ID from the snapshot.
func (v view) FindPlant(id string) (Plant, bool) {
	p, ok := v.state.plants[id]
	if !ok {
		return Plant{}, false
	}
	return clonePlant(p), true
}

// ListCareActivities returns the plant's activities for a category, most
// recent first. An empty category matches all categories.
func (v view) ListCareActivities(plantID string, category domain.CareCategory) []CareActivity {
	return listActivities(v.state, plantID, category)
}

// LatestActivity returns the plant's most recent activity for a category.
func (v view) LatestActivity(plantID string, category domain.CareCategory) (CareActivity, bool) {
	activities := listActivities(v.state, plantID, category)
	if len(activities) == 0 {
		return CareActivity{}, false
	}
	return activities[0], true
}

// ListScheduledTasks returns every task ordered by due date then ID.
func (v view) ListScheduledTasks() []ScheduledTask {
	out := make([]ScheduledTask, 0, len(v.state.tasks))
	for _, t := range v.state.tasks {
		out = append(out, cloneTask(t))
	}
	sortTasks(out)
	return out
}

// ListPendingTasks returns the plant's pending tasks ordered by due date.
func (v view) ListPendingTasks(plantID string) []ScheduledTask {
	return pendingTasks(v.state, plantID)
}

// FindScheduledTask retrieves a task by ID from the snapshot.
func (v view) FindScheduledTask(id string) (ScheduledTask, bool) {
	t, ok := v.state.tasks[id]
	if !ok {
		return ScheduledTask{}, false
	}
	return cloneTask(t), true
}

// ListCompletionRecords returns completion facts for the plant and category
// completed at or after since, oldest first.
func (v view) ListCompletionRecords(plantID string, category domain.CareCategory, since time.Time) []CompletionRecord {
	out := make([]CompletionRecord, 0)
	for _, r := range v.state.completions {
		if r.PlantID != plantID {
			continue
		}
		if category != "" && r.Category != category {
			continue
		}
		if r.CompletedAt.Before(since) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out
}

func listActivities(state *memoryState, plantID string, category domain.CareCategory) []CareActivity {
	out := make([]CareActivity, 0)
	for _, a := range state.activities {
		if a.PlantID != plantID {
			continue
		}
		if category != "" && a.Category != category {
			continue
		}
		out = append(out, cloneActivity(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PerformedAt.Equal(out[j].PerformedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].PerformedAt.After(out[j].PerformedAt)
	})
	return out
}

func pendingTasks(state *memoryState, plantID string) []ScheduledTask {
	out := make([]ScheduledTask, 0)
	for _, t := range state.tasks {
		if t.PlantID != plantID || t.Status != domain.TaskStatusPending {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sortTasks(out)
	return out
}

func sortTasks(tasks []ScheduledTask) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].DueAt.Equal(tasks[j].DueAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].DueAt.Before(tasks[j].DueAt)
	})
}

// Committed-state read helpers ----------------------------------------------

// GetPlant retrieves a plant by ID from committed state.
func (s *Store) GetPlant(id string) (Plant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.plants[id]
	if !ok {
		return Plant{}, false
	}
	return clonePlant(p), true
}

// ListPlants returns all plants from committed state.
func (s *Store) ListPlants() []Plant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.ListPlants()
}

// ListScheduledTasks returns all tasks from committed state.
func (s *Store) ListScheduledTasks() []ScheduledTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.ListScheduledTasks()
}

// ListPendingTasks returns the plant's pending tasks from committed state.
func (s *Store) ListPendingTasks(plantID string) []ScheduledTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pendingTasks(&s.state, plantID)
}

// ListCareActivities returns the plant's activities from committed state.
func (s *Store) ListCareActivities(plantID string, category domain.CareCategory) []CareActivity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listActivities(&s.state, plantID, category)
}

// ListCompletionRecords returns completion facts from committed state.
func (s *Store) ListCompletionRecords(plantID string, category domain.CareCategory, since time.Time) []CompletionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.ListCompletionRecords(plantID, category, since)
}

// ExportState returns a deep snapshot of committed state for persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Plants:      make(map[string]Plant, len(s.state.plants)),
		Activities:  make(map[string]CareActivity, len(s.state.activities)),
		Tasks:       make(map[string]ScheduledTask, len(s.state.tasks)),
		Completions: make(map[string]CompletionRecord, len(s.state.completions)),
	}
	for k, v := range s.state.plants {
		snap.Plants[k] = clonePlant(v)
	}
	for k, v := range s.state.activities {
		snap.Activities[k] = cloneActivity(v)
	}
	for k, v := range s.state.tasks {
		snap.Tasks[k] = cloneTask(v)
	}
	for k, v := range s.state.completions {
		snap.Completions[k] = v
	}
	return snap
}

// ImportState replaces committed state with the snapshot contents.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := newMemoryState()
	for k, v := range snap.Plants {
		state.plants[k] = clonePlant(v)
	}
	for k, v := range snap.Activities {
		state.activities[k] = cloneActivity(v)
	}
	for k, v := range snap.Tasks {
		state.tasks[k] = cloneTask(v)
	}
	for k, v := range snap.Completions {
		state.completions[k] = v
	}
	s.state = state
}

package domain

import (
	"context"
	"time"
)

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Care activities and completion records
// are append-only: the contract deliberately exposes no update or delete for
// them.
type Transaction interface {
	CreatePlant(Plant) (Plant, error)
	UpdatePlant(id string, mutator func(*Plant) error) (Plant, error)
	DeletePlant(id string) error
	CreateCareActivity(CareActivity) (CareActivity, error)
	CreateScheduledTask(ScheduledTask) (ScheduledTask, error)
	CreateScheduledTasks([]ScheduledTask) ([]ScheduledTask, error)
	UpdateScheduledTask(id string, mutator func(*ScheduledTask) error) (ScheduledTask, error)
	// DeletePendingTasks removes every pending task for the plant and returns
	// the number removed. Stage re-confirmation calls this before
	// re-transpiling so regenerated tasks cannot duplicate displaced ones.
	DeletePendingTasks(plantID string) (int, error)
	CreateCompletionRecord(CompletionRecord) (CompletionRecord, error)
	FindPlant(id string) (Plant, bool)
	FindScheduledTask(id string) (ScheduledTask, bool)
	ListPendingTasks(plantID string) []ScheduledTask
}

// TransactionView provides read-only access to snapshot data for rules and
// read-time computation.
type TransactionView interface {
	ListPlants() []Plant
	FindPlant(id string) (Plant, bool)
	ListCareActivities(plantID string, category CareCategory) []CareActivity
	LatestActivity(plantID string, category CareCategory) (CareActivity, bool)
	ListScheduledTasks() []ScheduledTask
	ListPendingTasks(plantID string) []ScheduledTask
	FindScheduledTask(id string) (ScheduledTask, bool)
	ListCompletionRecords(plantID string, category CareCategory, since time.Time) []CompletionRecord
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers, plus the
// change subscription that drives explicit schedule invalidation.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetPlant(id string) (Plant, bool)
	ListPlants() []Plant
	ListScheduledTasks() []ScheduledTask
	ListPendingTasks(plantID string) []ScheduledTask
	ListCareActivities(plantID string, category CareCategory) []CareActivity
	ListCompletionRecords(plantID string, category CareCategory, since time.Time) []CompletionRecord
	// Subscribe registers a callback invoked after every committed transaction
	// with the changes it applied. The returned cancel func removes the
	// subscription. Callbacks run synchronously after commit; subscribers must
	// not call back into the store from the callback.
	Subscribe(fn func([]Change)) (cancel func())
}

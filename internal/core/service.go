package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VarietyLookup resolves read-only variety reference data. Misses are
// reported via the boolean; the engine degrades to defaults rather than
// failing when reference data is incomplete.
type VarietyLookup interface {
	LookupByID(id string) (Variety, bool)
	LookupByName(name string) (Variety, bool)
}

// Service exposes the care-scheduling operations consumed by the presentation
// layer. All state lives in the injected store; the service itself carries
// only configuration and observability hooks, so instances are safe to share.
type Service struct {
	store     PersistentStore
	varieties VarietyLookup
	cfg       Config
	nowFn     func() time.Time
	metrics   MetricsRecorder
	tracer    Tracer
	anomalies AnomalyLog
}

// ServiceOption customises service construction.
type ServiceOption func(*Service)

// WithMetricsRecorder wires a metrics sink into every boundary operation.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = rec }
}

// WithTracer wires a tracer into every boundary operation.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) { s.tracer = tracer }
}

// WithClock overrides the service clock; intended for tests.
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.nowFn = fn
		}
	}
}

// WithConfig replaces the default scheduling constants.
func WithConfig(cfg Config) ServiceOption {
	return func(s *Service) { s.cfg = cfg }
}

// WithAnomalyLog replaces the default stderr anomaly sink.
func WithAnomalyLog(l AnomalyLog) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.anomalies = l
		}
	}
}

// NewService constructs a service backed by the supplied store and variety
// catalog.
func NewService(store PersistentStore, varieties VarietyLookup, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		varieties: varieties,
		cfg:       DefaultConfig(),
		nowFn:     func() time.Time { return time.Now().UTC() },
		anomalies: stderrAnomalyLog{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// Config returns the active scheduling constants.
func (s *Service) Config() Config { return s.cfg }

// ErrNotFound is returned when an operation explicitly requires an entity
// that does not exist.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// lookupVariety resolves a plant's variety by ID, then by name. A miss is
// logged as an anomaly, not an error.
func (s *Service) lookupVariety(ctx context.Context, plant Plant) (Variety, bool) {
	if plant.VarietyID != "" {
		if v, ok := s.varieties.LookupByID(plant.VarietyID); ok {
			return v, true
		}
	}
	if plant.VarietyName != "" {
		if v, ok := s.varieties.LookupByName(plant.VarietyName); ok {
			return v, true
		}
	}
	s.anomalies.Anomaly(ctx, "variety", "plant %s references unknown variety %q/%q", plant.ID, plant.VarietyID, plant.VarietyName)
	return Variety{}, false
}

// CreatePlant persists a new plant and transpiles the protocol for its
// resolved stage in the same transaction. An unknown variety is logged and
// the plant is created without tasks.
func (s *Service) CreatePlant(ctx context.Context, plant Plant) (Plant, Result, error) {
	var created Plant
	var res Result
	err := s.instrument(ctx, "create_plant", func(ctx context.Context) error {
		plant.Active = true
		if plant.PlantedAt.IsZero() {
			plant.PlantedAt = s.nowFn()
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreatePlant(plant)
			if txErr != nil {
				return txErr
			}
			variety, ok := s.lookupVariety(ctx, created)
			if !ok {
				return nil
			}
			stage := ResolveStage(created, variety, s.nowFn())
			if stage == StageUnknown {
				s.anomalies.Anomaly(ctx, "timeline", "variety %s has no timeline; plant %s created without tasks", variety.ID, created.ID)
				return nil
			}
			if _, txErr = tx.CreateScheduledTasks(Transpile(created, variety, stage)); txErr != nil {
				return txErr
			}
			return nil
		})
		return err
	})
	return created, res, err
}

// UpdatePlant mutates a plant using the provided mutator.
func (s *Service) UpdatePlant(ctx context.Context, id string, mutator func(*Plant) error) (Plant, Result, error) {
	var updated Plant
	var res Result
	err := s.instrument(ctx, "update_plant", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdatePlant(id, mutator)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// DeactivatePlant soft-deletes a plant: the active flag is cleared and its
// pending tasks removed, but the record and its history survive.
func (s *Service) DeactivatePlant(ctx context.Context, id string) (Plant, Result, error) {
	var updated Plant
	var res Result
	err := s.instrument(ctx, "deactivate_plant", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdatePlant(id, func(p *Plant) error {
				p.Active = false
				return nil
			})
			if txErr != nil {
				return txErr
			}
			_, txErr = tx.DeletePendingTasks(id)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// ConfirmStage records a manually confirmed growth stage for a plant,
// deletes its pending tasks, and re-transpiles the protocol from the
// confirmed stage. Confirming a stage on a nonexistent plant is fatal to the
// call. Pending-task deletion and regeneration happen in one transaction so
// regenerated tasks cannot collide with displaced ones.
func (s *Service) ConfirmStage(ctx context.Context, plantID string, stage StageName, at time.Time) (Plant, Result, error) {
	var updated Plant
	var res Result
	err := s.instrument(ctx, "confirm_stage", func(ctx context.Context) error {
		if at.IsZero() {
			at = s.nowFn()
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindPlant(plantID); !ok {
				return ErrNotFound{Entity: EntityPlant, ID: plantID}
			}
			var txErr error
			updated, txErr = tx.UpdatePlant(plantID, func(p *Plant) error {
				confirmed := stage
				confirmedAt := at
				p.ConfirmedStage = &confirmed
				p.ConfirmedAt = &confirmedAt
				return nil
			})
			if txErr != nil {
				return txErr
			}
			if _, txErr = tx.DeletePendingTasks(plantID); txErr != nil {
				return txErr
			}
			variety, ok := s.lookupVariety(ctx, updated)
			if !ok {
				return nil
			}
			if _, txErr = tx.CreateScheduledTasks(Transpile(updated, variety, stage)); txErr != nil {
				return txErr
			}
			return nil
		})
		return err
	})
	return updated, res, err
}

// LogActivity appends a single immutable care activity and resolves the
// earliest matching pending task, recording the completion variance. Store
// failures surface unmodified for retry or display.
func (s *Service) LogActivity(ctx context.Context, activity CareActivity) (CareActivity, Result, error) {
	var created CareActivity
	var res Result
	err := s.instrument(ctx, "log_activity", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = s.logActivityTx(tx, activity)
			return txErr
		})
		return err
	})
	return created, res, err
}

// logActivityTx holds the shared single-activity logic used by LogActivity
// and the bulk fan-out.
func (s *Service) logActivityTx(tx Transaction, activity CareActivity) (CareActivity, error) {
	if _, ok := tx.FindPlant(activity.PlantID); !ok {
		return CareActivity{}, ErrNotFound{Entity: EntityPlant, ID: activity.PlantID}
	}
	if activity.PerformedAt.IsZero() {
		activity.PerformedAt = s.nowFn()
	}
	if activity.Category == "" && activity.Details != nil {
		activity.Category = activity.Details.DetailCategory()
	}
	if activity.Category == "" {
		return CareActivity{}, fmt.Errorf("activity for plant %s has no category", activity.PlantID)
	}
	created, err := tx.CreateCareActivity(activity)
	if err != nil {
		return CareActivity{}, err
	}

	// Earliest-due matching pending task is satisfied by this activity.
	pending := tx.ListPendingTasks(activity.PlantID)
	for _, task := range pending {
		if task.Category != activity.Category {
			continue
		}
		completed, err := tx.UpdateScheduledTask(task.ID, func(t *ScheduledTask) error {
			t.Status = TaskStatusCompleted
			return nil
		})
		if err != nil {
			return CareActivity{}, err
		}
		record := CompletionRecord{
			PlantID:           activity.PlantID,
			Category:          activity.Category,
			ScheduledFor:      completed.DueAt,
			CompletedAt:       created.PerformedAt,
			VarianceDays:      signedDays(completed.DueAt, created.PerformedAt),
			StageAtCompletion: completed.Provenance.Stage,
		}
		if _, err := tx.CreateCompletionRecord(record); err != nil {
			return CareActivity{}, err
		}
		break
	}
	return created, nil
}

// SkipTask marks a pending task skipped. Skipped is terminal and written
// once; any other current status is an error.
func (s *Service) SkipTask(ctx context.Context, taskID string) (ScheduledTask, Result, error) {
	var updated ScheduledTask
	var res Result
	err := s.instrument(ctx, "skip_task", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateScheduledTask(taskID, func(t *ScheduledTask) error {
				if t.Status != TaskStatusPending {
					return fmt.Errorf("task %s is %s, not pending", taskID, t.Status)
				}
				t.Status = TaskStatusSkipped
				return nil
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// UpcomingTasks returns the prioritized, grouped task list within the horizon
// (cfg.HorizonDays when horizonDays <= 0). Due dates of dynamic-eligible
// tasks are shifted by the analyzer's recommended adjustment before grouping.
// Groups are recomputed from current state on every call.
func (s *Service) UpcomingTasks(ctx context.Context, horizonDays int) ([]GroupedTask, error) {
	if horizonDays <= 0 {
		horizonDays = s.cfg.HorizonDays
	}
	now := s.nowFn()
	cutoff := now.AddDate(0, 0, horizonDays)
	var groups []GroupedTask
	err := s.instrument(ctx, "upcoming_tasks", func(ctx context.Context) error {
		return s.store.View(ctx, func(view TransactionView) error {
			plants := view.ListPlants()
			tasksByPlant := make(map[string][]ScheduledTask, len(plants))
			type adjustmentKey struct {
				plantID  string
				category CareCategory
			}
			adjustments := make(map[adjustmentKey]int)
			for _, plant := range plants {
				if !plant.Active {
					continue
				}
				var kept []ScheduledTask
				for _, task := range view.ListPendingTasks(plant.ID) {
					due := task.DueAt
					if task.Provenance.Dynamic {
						ak := adjustmentKey{plantID: plant.ID, category: task.Category}
						adj, ok := adjustments[ak]
						if !ok {
							records := view.ListCompletionRecords(plant.ID, task.Category, now.AddDate(0, 0, -s.cfg.LookbackDays))
							adj = AnalyzePattern(records, s.cfg).RecommendedAdjustment
							adjustments[ak] = adj
						}
						due = due.AddDate(0, 0, adj)
					}
					if due.After(cutoff) {
						continue
					}
					task.DueAt = due
					kept = append(kept, task)
				}
				tasksByPlant[plant.ID] = kept
			}
			groups = PrioritizeGroups(GroupUpcoming(plants, tasksByPlant), now)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ActivityTemplate is the user-submitted payload fanned out to each member of
// a bulk completion.
type ActivityTemplate struct {
	Category    CareCategory `json:"category"`
	Details     CareDetails  `json:"-"`
	PerformedAt time.Time    `json:"performed_at"`
	Note        *string      `json:"note,omitempty"`
}

// BulkCompletionRequest targets either a grouped task or an explicit plant
// list. PlantIDs wins when both are set.
type BulkCompletionRequest struct {
	GroupID  string           `json:"group_id,omitempty"`
	PlantIDs []string         `json:"plant_ids,omitempty"`
	Template ActivityTemplate `json:"template"`
}

// BulkCompletionResult reports per-plant outcomes of a bulk completion.
type BulkCompletionResult struct {
	BatchID   string   `json:"batch_id"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// CompleteBulk fans one activity template out to every member of the target
// group, one immutable activity per plant. Each member commits independently:
// a failing member is logged and counted, never aborts the batch, and there
// is no cross-member rollback. The returned error covers only request-shape
// problems and group resolution.
func (s *Service) CompleteBulk(ctx context.Context, req BulkCompletionRequest) (BulkCompletionResult, error) {
	result := BulkCompletionResult{}
	err := s.instrument(ctx, "complete_bulk", func(ctx context.Context) error {
		if req.Template.Category == "" && req.Template.Details != nil {
			req.Template.Category = req.Template.Details.DetailCategory()
		}
		if req.Template.Category == "" {
			return fmt.Errorf("bulk completion template has no category")
		}
		members := req.PlantIDs
		if len(members) == 0 {
			if req.GroupID == "" {
				return fmt.Errorf("bulk completion requires a group id or explicit plant ids")
			}
			group, ok := s.findGroup(ctx, req.GroupID)
			if !ok {
				return ErrNotFound{Entity: EntityType("grouped_task"), ID: req.GroupID}
			}
			members = group.PlantIDs
		}

		batchID := uuid.NewString()
		result.BatchID = batchID
		performedAt := req.Template.PerformedAt
		if performedAt.IsZero() {
			performedAt = s.nowFn()
		}
		for _, plantID := range members {
			activity := CareActivity{
				PlantID:     plantID,
				Category:    req.Template.Category,
				PerformedAt: performedAt,
				Details:     req.Template.Details,
				BatchID:     &batchID,
				Note:        req.Template.Note,
			}
			_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
				_, txErr := s.logActivityTx(tx, activity)
				return txErr
			})
			if err != nil {
				s.anomalies.Anomaly(ctx, "bulk_completion", "plant %s failed in batch %s: %v", plantID, batchID, err)
				result.Failed++
				result.FailedIDs = append(result.FailedIDs, plantID)
				continue
			}
			result.Succeeded++
		}
		return nil
	})
	if err != nil {
		return BulkCompletionResult{}, err
	}
	return result, nil
}

// findGroup re-derives current groups and locates the one with the ID. Group
// membership always reflects current state; IDs are stable across reads for
// unchanged key fields.
func (s *Service) findGroup(ctx context.Context, groupID string) (GroupedTask, bool) {
	var found GroupedTask
	ok := false
	_ = s.store.View(ctx, func(view TransactionView) error {
		plants := view.ListPlants()
		tasksByPlant := make(map[string][]ScheduledTask, len(plants))
		for _, plant := range plants {
			tasksByPlant[plant.ID] = view.ListPendingTasks(plant.ID)
		}
		for _, group := range GroupUpcoming(plants, tasksByPlant) {
			if group.GroupID == groupID {
				found = group
				ok = true
				break
			}
		}
		return nil
	})
	return found, ok
}

// MissedOpportunities returns catch-up candidates for one plant, or for every
// active plant when plantID is empty. Plants with unresolvable varieties are
// skipped and logged, never raised. lookbackDays <= 0 selects the configured
// default.
func (s *Service) MissedOpportunities(ctx context.Context, plantID string, lookbackDays int) ([]MissedOpportunity, error) {
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.CatchUpLookbackDays
	}
	now := s.nowFn()
	var out []MissedOpportunity
	err := s.instrument(ctx, "missed_opportunities", func(ctx context.Context) error {
		return s.store.View(ctx, func(view TransactionView) error {
			var plants []Plant
			if plantID != "" {
				plant, ok := view.FindPlant(plantID)
				if !ok {
					return ErrNotFound{Entity: EntityPlant, ID: plantID}
				}
				plants = []Plant{plant}
			} else {
				plants = view.ListPlants()
			}
			for _, plant := range plants {
				if !plant.Active {
					continue
				}
				if _, ok := s.lookupVariety(ctx, plant); !ok {
					continue
				}
				out = append(out, FindMissedOpportunities(view, plant.ID, lookbackDays, now)...)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ResolvePlantStage resolves the plant's current growth stage. An unknown
// variety degrades to StageUnknown after logging.
func (s *Service) ResolvePlantStage(ctx context.Context, plantID string) (StageName, error) {
	plant, ok := s.store.GetPlant(plantID)
	if !ok {
		return StageUnknown, ErrNotFound{Entity: EntityPlant, ID: plantID}
	}
	variety, ok := s.lookupVariety(ctx, plant)
	if !ok {
		return StageUnknown, nil
	}
	return ResolveStage(plant, variety, s.nowFn()), nil
}

// AnalyzeCompletionPattern runs the variance analyzer over the plant's recent
// completion history for one category.
func (s *Service) AnalyzeCompletionPattern(ctx context.Context, plantID string, category CareCategory) (PatternSummary, error) {
	var summary PatternSummary
	err := s.instrument(ctx, "analyze_pattern", func(ctx context.Context) error {
		since := s.nowFn().AddDate(0, 0, -s.cfg.LookbackDays)
		records := s.store.ListCompletionRecords(plantID, category, since)
		summary = AnalyzePattern(records, s.cfg)
		return nil
	})
	return summary, err
}

// NextDue computes when care of the category is next due for the plant.
func (s *Service) NextDue(ctx context.Context, plantID string, category CareCategory) (time.Time, error) {
	plant, ok := s.store.GetPlant(plantID)
	if !ok {
		return time.Time{}, ErrNotFound{Entity: EntityPlant, ID: plantID}
	}
	summary, err := s.AnalyzeCompletionPattern(ctx, plantID, category)
	if err != nil {
		return time.Time{}, err
	}
	var due time.Time
	err = s.store.View(ctx, func(view TransactionView) error {
		due = NextDueDate(view, plant, category, summary, s.cfg, s.nowFn())
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return due, nil
}

// signedDays returns whole days from scheduled to actual; positive when the
// actual date is late.
func signedDays(scheduled, actual time.Time) int {
	return int(actual.Sub(scheduled) / (24 * time.Hour))
}

// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by plantcore.
package domain

import (
	"encoding/json"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityPlant identifies an individual plant record.
	EntityPlant EntityType = "plant"
	// EntityCareActivity identifies an immutable care activity record.
	EntityCareActivity EntityType = "care_activity"
	// EntityScheduledTask identifies a scheduled care task record.
	EntityScheduledTask EntityType = "scheduled_task"
	// EntityCompletionRecord identifies a derived task completion fact.
	EntityCompletionRecord EntityType = "completion_record"
)

// CareCategory partitions care work into the protocol's top-level buckets.
type CareCategory string

// Care categories recognised by protocols, activities, and scheduled tasks.
const (
	CareWatering   CareCategory = "watering"
	CareFeeding    CareCategory = "feeding"
	CareInspection CareCategory = "inspection"
)

// StageName is a growth stage label. Stage names are variety-defined, not a
// fixed global set; only the unknown sentinel is shared.
type StageName string

// StageUnknown is returned when a plant's variety or timeline cannot be
// resolved. Reminders remain available for unknown-stage plants.
const StageUnknown StageName = "unknown"

// TaskStatus enumerates the scheduled task state machine.
type TaskStatus string

// Task statuses. Pending is initial; completed and skipped are terminal and
// written once by the resolving user action. Superseded marks pending tasks
// displaced by stage re-confirmation; in the current design those rows are
// removed outright rather than resting in the status.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusSkipped    TaskStatus = "skipped"
	TaskStatusSuperseded TaskStatus = "superseded"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Plant represents an individual plant tracked by the system.
type Plant struct {
	Base
	Name           string     `json:"name"`
	VarietyID      string     `json:"variety_id"`
	VarietyName    string     `json:"variety_name"`
	PlantedAt      time.Time  `json:"planted_at"`
	Location       string     `json:"location"`
	Container      string     `json:"container"`
	SoilMix        string     `json:"soil_mix"`
	BedSection     *string    `json:"bed_section,omitempty"`
	ConfirmedStage *StageName `json:"confirmed_stage,omitempty"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
	Active         bool       `json:"active"`
}

// CareActivity is an immutable record of care performed on a plant. Activities
// are created singly or as members of a bulk batch and are never mutated; the
// persistence contract exposes no update or delete for them.
type CareActivity struct {
	Base
	PlantID     string       `json:"plant_id"`
	Category    CareCategory `json:"category"`
	PerformedAt time.Time    `json:"performed_at"`
	Details     CareDetails  `json:"-"`
	BatchID     *string      `json:"batch_id,omitempty"`
	Note        *string      `json:"note,omitempty"`
}

// Provenance records the generating stage and template of a scheduled task,
// plus its eligibility for dynamic due-date adjustment.
type Provenance struct {
	Stage             StageName `json:"stage"`
	OriginalStartDays int       `json:"original_start_days"`
	Repetition        int       `json:"repetition"`
	Dynamic           bool      `json:"dynamic"`
}

// ScheduledTask is a concrete dated care task compiled from a variety protocol.
type ScheduledTask struct {
	Base
	PlantID    string       `json:"plant_id"`
	Name       string       `json:"name"`
	Category   CareCategory `json:"category"`
	Details    CareDetails  `json:"-"`
	DueAt      time.Time    `json:"due_at"`
	Status     TaskStatus   `json:"status"`
	Provenance Provenance   `json:"provenance"`
}

// CompletionRecord is a derived fact pairing a task's scheduled date with the
// actual completion date. Variance is always actual minus scheduled in whole
// days. Records are immutable and feed only statistical analysis.
type CompletionRecord struct {
	Base
	PlantID           string       `json:"plant_id"`
	Category          CareCategory `json:"category"`
	ScheduledFor      time.Time    `json:"scheduled_for"`
	CompletedAt       time.Time    `json:"completed_at"`
	VarianceDays      int          `json:"variance_days"`
	StageAtCompletion StageName    `json:"stage_at_completion"`
}

type careActivityAlias CareActivity

// MarshalJSON serialises the activity with its detail union in envelope form.
func (a CareActivity) MarshalJSON() ([]byte, error) {
	raw, err := MarshalCareDetails(a.Details)
	if err != nil {
		return nil, err
	}
	type payload struct {
		careActivityAlias
		Details json.RawMessage `json:"details,omitempty"`
	}
	return json.Marshal(payload{careActivityAlias: careActivityAlias(a), Details: raw})
}

// UnmarshalJSON hydrates the activity's detail union from the JSON envelope.
func (a *CareActivity) UnmarshalJSON(data []byte) error {
	type payload struct {
		careActivityAlias
		Details json.RawMessage `json:"details"`
	}
	var aux payload
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	details, err := UnmarshalCareDetails(aux.Details)
	if err != nil {
		return err
	}
	*a = CareActivity(aux.careActivityAlias)
	a.Details = details
	return nil
}

type scheduledTaskAlias ScheduledTask

// MarshalJSON serialises the task with its detail union in envelope form.
func (t ScheduledTask) MarshalJSON() ([]byte, error) {
	raw, err := MarshalCareDetails(t.Details)
	if err != nil {
		return nil, err
	}
	type payload struct {
		scheduledTaskAlias
		Details json.RawMessage `json:"details,omitempty"`
	}
	return json.Marshal(payload{scheduledTaskAlias: scheduledTaskAlias(t), Details: raw})
}

// UnmarshalJSON hydrates the task's detail union from the JSON envelope.
func (t *ScheduledTask) UnmarshalJSON(data []byte) error {
	type payload struct {
		scheduledTaskAlias
		Details json.RawMessage `json:"details"`
	}
	var aux payload
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	details, err := UnmarshalCareDetails(aux.Details)
	if err != nil {
		return err
	}
	*t = ScheduledTask(aux.scheduledTaskAlias)
	t.Details = details
	return nil
}

// GroupedTask is a read-time aggregate over pending scheduled tasks whose
// plants share identical grouping key fields. It is recomputed on every query
// and never persisted or cached across mutations.
type GroupedTask struct {
	GroupID     string       `json:"group_id"`
	Name        string       `json:"name"`
	Category    CareCategory `json:"category"`
	Stage       StageName    `json:"stage"`
	Details     CareDetails  `json:"-"`
	DueAt       time.Time    `json:"due_at"`
	VarietyName string       `json:"variety_name"`
	Container   string       `json:"container"`
	Location    string       `json:"location"`
	SoilMix     string       `json:"soil_mix"`
	BedSection  *string      `json:"bed_section,omitempty"`
	PlantedOn   string       `json:"planted_on"`
	PlantCount  int          `json:"plant_count"`
	PlantIDs    []string     `json:"plant_ids"`
	TaskIDs     []string     `json:"task_ids"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported operations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}

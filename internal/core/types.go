package core

import "plantcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	CareCategory       = domain.CareCategory
	StageName          = domain.StageName
	TaskStatus         = domain.TaskStatus
	Severity           = domain.Severity
	Base               = domain.Base
	Plant              = domain.Plant
	Variety            = domain.Variety
	CareActivity       = domain.CareActivity
	ScheduledTask      = domain.ScheduledTask
	CompletionRecord   = domain.CompletionRecord
	GroupedTask        = domain.GroupedTask
	CareDetails        = domain.CareDetails
	StagePhase         = domain.StagePhase
	CareProtocol       = domain.CareProtocol
	TaskTemplate       = domain.TaskTemplate
	Provenance         = domain.Provenance
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityPlant            = domain.EntityPlant
	EntityCareActivity     = domain.EntityCareActivity
	EntityScheduledTask    = domain.EntityScheduledTask
	EntityCompletionRecord = domain.EntityCompletionRecord
)

const (
	CareWatering   = domain.CareWatering
	CareFeeding    = domain.CareFeeding
	CareInspection = domain.CareInspection
)

const (
	TaskStatusPending    = domain.TaskStatusPending
	TaskStatusCompleted  = domain.TaskStatusCompleted
	TaskStatusSkipped    = domain.TaskStatusSkipped
	TaskStatusSuperseded = domain.TaskStatusSuperseded
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

const StageUnknown = domain.StageUnknown

// careCategories lists the categories in protocol iteration order so that
// transpilation output is deterministic.
var careCategories = []CareCategory{CareWatering, CareFeeding, CareInspection}

package core

import "plantcore/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
// The variety lookup feeds the stage-confirmation rule; it may be nil when no
// catalog is available, which disables that rule's checks.
func NewDefaultRulesEngine(lookup VarietyLookup) *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewPendingTaskUniquenessRule())
	engine.Register(NewPlantReferenceRule())
	engine.Register(NewKnownStageRule(lookup))
	return engine
}

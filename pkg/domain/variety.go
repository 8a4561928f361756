package domain

import (
	"encoding/json"
	"time"
)

// StagePhase is one named phase in a variety's ordered growth timeline.
// DurationDays is the expected dwell time; the final phase is terminal and
// absorbs all remaining time regardless of its duration.
type StagePhase struct {
	Name         StageName `json:"name"`
	DurationDays int       `json:"duration_days"`
}

// TaskTemplate is one declarative care instruction within a variety protocol.
// StartDays offsets the first occurrence from stage entry; RepeatCount > 1
// fans out additional occurrences spaced FrequencyDays apart.
type TaskTemplate struct {
	Name          string      `json:"name"`
	StartDays     int         `json:"start_days"`
	RepeatCount   int         `json:"repeat_count"`
	FrequencyDays int         `json:"frequency_days"`
	Details       CareDetails `json:"-"`
}

type taskTemplateAlias TaskTemplate

// MarshalJSON serialises the template with its detail union in envelope form.
func (t TaskTemplate) MarshalJSON() ([]byte, error) {
	raw, err := MarshalCareDetails(t.Details)
	if err != nil {
		return nil, err
	}
	type payload struct {
		taskTemplateAlias
		Details json.RawMessage `json:"details,omitempty"`
	}
	return json.Marshal(payload{taskTemplateAlias: taskTemplateAlias(t), Details: raw})
}

// UnmarshalJSON hydrates the template's detail union from the JSON envelope.
func (t *TaskTemplate) UnmarshalJSON(data []byte) error {
	type payload struct {
		taskTemplateAlias
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
	*t = TaskTemplate(aux.taskTemplateAlias)
	t.Details = details
	return nil
}

// CareProtocol indexes ordered task templates by care category and stage.
// Absence of a category or stage is not an error; it simply contributes no
// tasks.
type CareProtocol map[CareCategory]map[StageName][]TaskTemplate

// Variety is a read-only reference entity describing a plant variety, its
// growth timeline, and its care protocol. Varieties are served by the catalog
// and never written through the persistence layer.
type Variety struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Category string       `json:"category"`
	Timeline []StagePhase `json:"timeline"`
	Protocol CareProtocol `json:"protocol,omitempty"`
}

// StageIndex returns the position of the named stage in the timeline, or -1
// when the stage is absent.
func (v Variety) StageIndex(stage StageName) int {
	for i, phase := range v.Timeline {
		if phase.Name == stage {
			return i
		}
	}
	return -1
}

// TerminalStage returns the final timeline stage, or StageUnknown for an
// empty timeline.
func (v Variety) TerminalStage() StageName {
	if len(v.Timeline) == 0 {
		return StageUnknown
	}
	return v.Timeline[len(v.Timeline)-1].Name
}

// TemplatesFor returns the ordered templates for a category at a stage.
// Missing categories and stages yield nil.
func (v Variety) TemplatesFor(category CareCategory, stage StageName) []TaskTemplate {
	stages, ok := v.Protocol[category]
	if !ok {
		return nil
	}
	return stages[stage]
}

// StageEntryDate returns the anchor date for protocol transpilation: the later
// of the plant's planted date and its stage confirmation date.
func StageEntryDate(p Plant) time.Time {
	if p.ConfirmedAt != nil && p.ConfirmedAt.After(p.PlantedAt) {
		return *p.ConfirmedAt
	}
	return p.PlantedAt
}

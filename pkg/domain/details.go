package domain

import (
	"encoding/json"
	"fmt"
)

// CareDetails is the closed union of category-specific care payloads. Each
// category has exactly one concrete detail type; callers switch exhaustively
// on the concrete type rather than inspecting runtime maps.
type CareDetails interface {
	DetailCategory() CareCategory
}

// WateringDetails carries watering-specific task and activity data.
type WateringDetails struct {
	VolumeML int    `json:"volume_ml"`
	Method   string `json:"method,omitempty"`
}

// DetailCategory implements CareDetails.
func (WateringDetails) DetailCategory() CareCategory { return CareWatering }

// FeedingDetails carries fertilization-specific task and activity data.
type FeedingDetails struct {
	Product           string `json:"product"`
	NPK               string `json:"npk,omitempty"`
	DilutionML        int    `json:"dilution_ml"`
	ApplicationMethod string `json:"application_method,omitempty"`
}

// DetailCategory implements CareDetails.
func (FeedingDetails) DetailCategory() CareCategory { return CareFeeding }

// InspectionDetails carries observation-specific task and activity data.
type InspectionDetails struct {
	Focus string `json:"focus,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// DetailCategory implements CareDetails.
func (InspectionDetails) DetailCategory() CareCategory { return CareInspection }

type detailEnvelope struct {
	Category CareCategory    `json:"category"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// MarshalCareDetails encodes a detail union value into its tagged envelope.
// A nil value encodes as null.
func MarshalCareDetails(d CareDetails) (json.RawMessage, error) {
	if d == nil {
		return nil, nil
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode %s details: %w", d.DetailCategory(), err)
	}
	return json.Marshal(detailEnvelope{Category: d.DetailCategory(), Payload: payload})
}

// UnmarshalCareDetails decodes a tagged envelope back into the detail union.
// Empty or null input yields nil details.
func UnmarshalCareDetails(raw json.RawMessage) (CareDetails, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var env detailEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode detail envelope: %w", err)
	}
	switch env.Category {
	case CareWatering:
		var d WateringDetails
		if err := json.Unmarshal(env.Payload, &d); err != nil {
			return nil, fmt.Errorf("decode watering details: %w", err)
		}
		return d, nil
	case CareFeeding:
		var d FeedingDetails
		if err := json.Unmarshal(env.Payload, &d); err != nil {
			return nil, fmt.Errorf("decode feeding details: %w", err)
		}
		return d, nil
	case CareInspection:
		var d InspectionDetails
		if err := json.Unmarshal(env.Payload, &d); err != nil {
			return nil, fmt.Errorf("decode inspection details: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown care detail category %q", env.Category)
	}
}

package api

import (
	"encoding/json"

	"chorus/internal/services"
)

// ClipRequest saves a clip. EndTime is optional.
type ClipRequest struct {
	StartTime *float64 `json:"start_time"`
	EndTime   *float64 `json:"end_time,omitempty"`
}

type clipRequestWire struct {
	StartTime       *float64 `json:"start_time"`
	EndTime         *float64 `json:"end_time"`
	LegacyStartTime *float64 `json:"startTime"`
	LegacyEndTime   *float64 `json:"endTime"`
}

// UnmarshalJSON accepts both snake_case and the legacy camelCase names.
func (r *ClipRequest) UnmarshalJSON(data []byte) error {
	var wire clipRequestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.StartTime = wire.StartTime
	if r.StartTime == nil {
		r.StartTime = wire.LegacyStartTime
	}
	r.EndTime = wire.EndTime
	if r.EndTime == nil {
		r.EndTime = wire.LegacyEndTime
	}
	return nil
}

// Validate reports a missing start time as services.ErrValidation.
func (r ClipRequest) Validate() error {
	if r.StartTime == nil {
		return services.Wrap(services.ErrValidation, "api", "validate clip", "start_time is required", nil)
	}
	return nil
}

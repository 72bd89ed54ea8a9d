package api

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"chorus/internal/services"
)

// Request asks for the preview offset of one track.
//
// A zero RequestedDuration means "use the configured default".
type Request struct {
	Identifier        string  `json:"identifier"`
	RequestedDuration float64 `json:"requested_duration,omitempty"`
}

type requestWire struct {
	Identifier        string   `json:"identifier"`
	BVID              string   `json:"bvid"`
	RequestedDuration *float64 `json:"requested_duration"`
	Duration          *float64 `json:"duration"`
}

// UnmarshalJSON accepts both the current and the legacy field names.
func (r *Request) UnmarshalJSON(data []byte) error {
	var wire requestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.Identifier = wire.Identifier
	if r.Identifier == "" {
		r.Identifier = wire.BVID
	}
	r.RequestedDuration = 0
	switch {
	case wire.RequestedDuration != nil:
		r.RequestedDuration = *wire.RequestedDuration
	case wire.Duration != nil:
		r.RequestedDuration = *wire.Duration
	}
	return nil
}

// WithDefaults fills an unset duration with defaultDuration and trims the identifier.
func (r Request) WithDefaults(defaultDuration float64) Request {
	r.Identifier = strings.TrimSpace(r.Identifier)
	if r.RequestedDuration == 0 {
		r.RequestedDuration = defaultDuration
	}
	return r
}

// Validate reports request shape problems as services.ErrValidation.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Identifier) == "" {
		return services.Wrap(services.ErrValidation, "api", "validate request", "identifier is required", nil)
	}
	if math.IsNaN(r.RequestedDuration) || math.IsInf(r.RequestedDuration, 0) || r.RequestedDuration <= 0 {
		return services.Wrap(services.ErrValidation, "api", "validate request",
			fmt.Sprintf("requested_duration must be positive, got %v", r.RequestedDuration), nil)
	}
	return nil
}

package models

import "time"

// WeightChangeEvent is the audit record emitted when an instrument's
// base-weight configuration is changed.
type WeightChangeEvent struct {
	Instrument string             `json:"instrument"`
	Action     string             `json:"action"` // "set" or "reset"
	Weights    map[string]float64 `json:"weights"`
	ChangedBy  string             `json:"changed_by,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

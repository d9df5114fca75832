package models

import "time"

// ConnectionPhase names a state of the connectivity state machine.
type ConnectionPhase string

const (
	PhaseIdle         ConnectionPhase = "IDLE"
	PhaseConnecting   ConnectionPhase = "CONNECTING"
	PhaseConnected    ConnectionPhase = "CONNECTED"
	PhaseFailed       ConnectionPhase = "FAILED"
	PhaseProvisioning ConnectionPhase = "PROVISIONING"
)

// ConnectionState is a snapshot of the state machine.
// StartedAt and Deadline are set only while Phase == PhaseConnecting.
type ConnectionState struct {
	Phase     ConnectionPhase `json:"phase"`
	NetworkID string          `json:"network_id,omitempty"`
	StartedAt time.Time       `json:"started_at,omitempty"`
	Deadline  time.Time       `json:"deadline,omitempty"`
	Since     time.Time       `json:"since"`
}

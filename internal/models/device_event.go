package models

import "time"

// Event types appended to the device log.
const (
	EventBoot         = "BOOT"
	EventFactoryReset = "FACTORY_RESET"
	EventStateChange  = "STATE_CHANGE"
	EventProvisioned  = "PROVISIONED"
	EventPoll         = "POLL"
)

// DeviceEvent is a single log entry.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // BOOT | FACTORY_RESET | STATE_CHANGE | PROVISIONED | POLL
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

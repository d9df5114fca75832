package models

import "time"

// DeviceState is the read-only view served by the API.
type DeviceState struct {
	Connection ConnectionState `json:"connection"`
	Status     DeviceStatus    `json:"status"`
	Color      string          `json:"color"`
	BootCount  int             `json:"boot_count"`
	LastPollAt time.Time       `json:"last_poll_at,omitempty"`
	Monitors   []Monitor       `json:"monitors,omitempty"`
}

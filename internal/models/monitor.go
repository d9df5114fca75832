package models

// Monitor is one entry reported by the health source.
type Monitor struct {
	Name         string `json:"name"`
	OverallState string `json:"overall_state"` // ok | warn | alert | no data | ...
}

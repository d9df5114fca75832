package models

// Field limits for a stored network identity.
const (
	MaxNetworkIDBytes = 32
	MaxSecretBytes    = 64
)

// Credentials is the single persisted network identity.
// An empty Secret is a valid open network, not a missing record.
type Credentials struct {
	NetworkID string `json:"network_id"`
	Secret    string `json:"-"`
}

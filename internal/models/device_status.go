package models

import "strings"

// DeviceStatus is the single health value shown on the strip.
type DeviceStatus int32

const (
	StatusUnknown DeviceStatus = iota
	StatusOk
	StatusWarn
	StatusAlert
	StatusNoData
	StatusProvisioning
)

var statusNames = map[DeviceStatus]string{
	StatusUnknown:      "unknown",
	StatusOk:           "ok",
	StatusWarn:         "warn",
	StatusAlert:        "alert",
	StatusNoData:       "no_data",
	StatusProvisioning: "provisioning",
}

func (s DeviceStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusUnknown]
}

// MarshalText lets the status appear as a name in JSON payloads.
func (s DeviceStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText; anything else is Unknown.
func (s *DeviceStatus) UnmarshalText(b []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(b)))
	for st, name := range statusNames {
		if name == want {
			*s = st
			return nil
		}
	}
	*s = StatusUnknown
	return nil
}

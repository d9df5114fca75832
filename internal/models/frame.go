package models

import "fmt"

// Color is a 24-bit RGB pixel value.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Frame is one rendered image of the strip. It is not persisted.
type Frame struct {
	Offset int          `json:"offset"`
	Status DeviceStatus `json:"status"`
	Pixels []Color      `json:"pixels"`
}

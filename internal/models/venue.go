package models

// Venue represents a named campus location with known coordinates.
// Many listings reference one venue by code; the reference is weak and an
// unresolvable code degrades gracefully rather than erroring.
type Venue struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Aliases   []string `json:"aliases,omitempty"`
}

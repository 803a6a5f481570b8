package entity

// Vendor is a pre-registered known entity used for high-confidence
// substring matching during fusion. Confidence is a stored prior, not
// recomputed at match time.
type Vendor struct {
	Name       string         `json:"name"`
	Confidence float64        `json:"confidence"`
	Code       string         `json:"code,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

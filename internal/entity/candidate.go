package entity

// FieldCandidate is a possibly-ambiguous field detection with provenance.
// PageNumber is always a valid index into the page sequence that produced
// the candidate. Candidates are never mutated after creation; ambiguity
// (several candidates per field name) is preserved, not resolved, here.
type FieldCandidate struct {
	FieldName  string         `json:"field_name"`
	Value      string         `json:"value"`
	Confidence float64        `json:"confidence"`
	PageNumber int            `json:"page_number"`
	Snippet    string         `json:"snippet,omitempty"`
	BBox       *BBox          `json:"bbox,omitempty"`
	Source     string         `json:"source"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

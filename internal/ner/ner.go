package ner

import "context"

// Entity is one recognized span of text with a label and optional score.
type Entity struct {
	Text  string  `json:"text"`
	Label string  `json:"label"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score,omitempty"`
}

// Recognizer defines the optional entity-recognition capability consumed by
// the fusion parser. Absence of a recognizer simply skips the recognition
// pass.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
	// Close releases backend resources.
	Close() error
}

package entity

// ParsedField is the fusion layer's single resolved value for a named field,
// as opposed to the generator's raw multi-candidate output.
type ParsedField struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Reasoning  string  `json:"reasoning"`
}

// LineItem is one detected <description quantity price> row.
type LineItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
}

// ReasoningStep is one entry in the ordered, append-only reasoning trail.
type ReasoningStep struct {
	Field  string `json:"field"`
	Method string `json:"method"`
	Detail string `json:"detail"`
}

// ParseResult aggregates the fused fields for one document run. Nil fields
// mean no match was found; an entirely empty result is a valid low-signal
// outcome, not an error.
type ParseResult struct {
	Vendor             *ParsedField    `json:"vendor"`
	InvoiceID          *ParsedField    `json:"invoice_id"`
	InvoiceDate        *ParsedField    `json:"invoice_date"`
	Total              *ParsedField    `json:"total"`
	LineItems          []LineItem      `json:"line_items"`
	AdditionalEntities []ParsedField   `json:"additional_entities"`
	ReasoningSteps     []ReasoningStep `json:"reasoning_steps"`
}

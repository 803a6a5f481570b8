package constants

// Canonical field names produced by the extraction and parsing layers.
const (
	FieldVendor      = "vendor"
	FieldInvoiceID   = "invoice_id"
	FieldInvoiceDate = "invoice_date"
	FieldTotal       = "total"
	FieldLineItems   = "line_items"
)

// Candidate provenance tags. Stored on FieldCandidate.Source and
// ParsedField.Source; stable strings, do not rename.
const (
	SourceRegex       = "regex"
	SourceHeader      = "header"
	SourceKnownEntity = "known_entity"
	SourceModel       = "model"
)

// Reasoning-trail method tags.
const (
	MethodKnownEntity = "known-entity"
	MethodRegex       = "regex"
	MethodModelNER    = "model-ner"
	MethodRegexTable  = "regex-table"
)

// Acquisition tier names, used in logs and page provenance.
const (
	TierDirect  = "direct"
	TierGeneric = "generic"
	TierOCR     = "ocr"
)

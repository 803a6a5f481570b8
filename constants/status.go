package constants

// RunStatus is the canonical status for rows in the document_run table.
type RunStatus string

// Stable values (store these exact strings in the DB).
const (
	RunStatusRunning   RunStatus = "RUNNING"    // in progress
	RunStatusExtractOK RunStatus = "EXTRACT_OK" // stage 1 completed (pages + candidates)
	RunStatusParseOK   RunStatus = "PARSE_OK"   // stage 2 completed (fields fused)
	RunStatusFailed    RunStatus = "FAILED"     // terminal failure
)

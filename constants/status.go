package constants

// DocumentStatus is the canonical processing status for rows in documents.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending    DocumentStatus = "PENDING"    // reserved; no code path assigns it
	StatusProcessing DocumentStatus = "PROCESSING" // assigned at creation
	StatusCompleted  DocumentStatus = "COMPLETED"  // terminal: extraction persisted
	StatusFailed     DocumentStatus = "FAILED"     // terminal: error_message holds the cause
)

// Terminal reports whether s is a terminal status.
func Terminal(s DocumentStatus) bool {
	return s == StatusCompleted || s == StatusFailed
}

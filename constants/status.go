package constants

// AnalysisStatus is the canonical lifecycle status for an analysis.
type AnalysisStatus string

// Stable values (serialized as these exact strings).
const (
	StatusPending    AnalysisStatus = "PENDING"     // created, not yet submitted
	StatusInProgress AnalysisStatus = "IN_PROGRESS" // submitted, awaiting terminal event
	StatusCompleted  AnalysisStatus = "COMPLETED"   // reconciled successfully
	StatusFailed     AnalysisStatus = "FAILED"      // terminal failure
)

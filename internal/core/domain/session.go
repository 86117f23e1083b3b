package domain

// UploadState tracks the ingestion state machine of a session.
type UploadState string

const (
	UploadIdle      UploadState = "IDLE"
	UploadParsing   UploadState = "PARSING"
	UploadSucceeded UploadState = "SUCCEEDED"
	UploadFailed    UploadState = "FAILED"
)

// Session ties an uploaded ledger to its owner and the owner's interaction state.
// Ledger holds the last successful upload; a failed re-upload leaves it untouched.
type Session struct {
	SessionID     string           `json:"sessionID"`
	OwnerID       string           `json:"ownerID"`
	SourceName    string           `json:"sourceName"`
	Fingerprint   string           `json:"fingerprint,omitempty"`
	State         UploadState      `json:"state"`
	FailureReason string           `json:"failureReason,omitempty"`
	Ledger        *Ledger          `json:"ledger,omitempty"`
	Interaction   InteractionState `json:"interaction"`
	AuditFields
}

// HasStatement reports whether a successful upload is available for reporting.
func (s *Session) HasStatement() bool {
	return s.Ledger != nil && len(s.Ledger.Entries) > 0
}

// DefaultYear returns the most recent fiscal year of the ledger, or "".
func (s *Session) DefaultYear() string {
	if s.Ledger == nil || len(s.Ledger.FiscalYears) == 0 {
		return ""
	}
	return s.Ledger.FiscalYears[0]
}

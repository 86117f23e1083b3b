package models

// Session is the row stored in the sessions table. Ledger and Interaction are JSON documents.
type Session struct {
	SessionID     string  `db:"session_id"`
	OwnerID       string  `db:"owner_id"`
	SourceName    string  `db:"source_name"`
	Fingerprint   string  `db:"fingerprint"`
	State         string  `db:"state"`
	FailureReason *string `db:"failure_reason"`
	Ledger        []byte  `db:"ledger"` // nil until the first successful upload
	Interaction   []byte  `db:"interaction"`
	AuditFields
}

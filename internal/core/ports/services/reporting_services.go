package services

import (
	"context"

	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UploadOutcome is the result of a successful upload: the stored session and its first statement.
type UploadOutcome struct {
	Session   *domain.Session
	Statement *domain.ProcessedStatement
}

// SessionUploaderSvc defines operations that create or replace the ledger of a session
type SessionUploaderSvc interface {
	// Upload ingests a file into a new session owned by ownerID. On an ingestion failure the
	// session is still stored in the FAILED state and returned together with the error.
	Upload(ctx context.Context, ownerID, fileName string, data []byte) (*UploadOutcome, error)

	// Reupload replaces the ledger of an existing session. A failed re-upload keeps the
	// previous ledger and statement authoritative.
	Reupload(ctx context.Context, ownerID, sessionID, fileName string, data []byte) (*UploadOutcome, error)

	// LoadDemo creates a session from the generated demo ledger.
	LoadDemo(ctx context.Context, ownerID, language string) (*UploadOutcome, error)
}

// SessionReaderSvc defines read operations on sessions
type SessionReaderSvc interface {
	GetSession(ctx context.Context, ownerID, sessionID string) (*domain.Session, error)
	GetStatement(ctx context.Context, ownerID, sessionID string) (*domain.ProcessedStatement, error)
}

// InteractionSvc defines the statement editing commands. Each returns the statement
// recomputed from the new interaction state.
type InteractionSvc interface {
	Reorder(ctx context.Context, ownerID, sessionID string, bucket domain.Bucket, order []string) (*domain.ProcessedStatement, error)
	MoveItem(ctx context.Context, ownerID, sessionID, description string, from, to domain.Bucket) (*domain.ProcessedStatement, error)
	SelectYear(ctx context.Context, ownerID, sessionID, year string) (*domain.ProcessedStatement, error)
	SetImmaterialFilter(ctx context.Context, ownerID, sessionID string, enabled bool, threshold *decimal.Decimal) (*domain.ProcessedStatement, error)
	ResetInteraction(ctx context.Context, ownerID, sessionID string) (*domain.ProcessedStatement, error)
}

// SessionMaintenanceSvc defines housekeeping operations
type SessionMaintenanceSvc interface {
	// EvictIdleSessions removes sessions idle for longer than the configured TTL.
	EvictIdleSessions(ctx context.Context) (int, error)
}

// ReportingSvcFacade combines all reporting service interfaces
type ReportingSvcFacade interface {
	SessionUploaderSvc
	SessionReaderSvc
	InteractionSvc
	SessionMaintenanceSvc
}

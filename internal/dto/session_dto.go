package dto

import (
	"time"

	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ReorderRequest sets the manual item order of one statement section.
type ReorderRequest struct {
	Bucket domain.Bucket `json:"bucket" binding:"required,bucket"`
	Order  []string      `json:"order"` // empty clears the manual order
}

// MoveItemRequest reassigns every entry with the given description to another section.
type MoveItemRequest struct {
	Description string        `json:"description" binding:"required"`
	FromBucket  domain.Bucket `json:"fromBucket" binding:"omitempty,bucket"`
	ToBucket    domain.Bucket `json:"toBucket" binding:"required,bucket"`
}

// SelectYearRequest selects the fiscal year shown in the statement. An empty year selects all.
type SelectYearRequest struct {
	Year string `json:"year" binding:"omitempty,len=4,numeric"`
}

// ImmaterialFilterRequest toggles the immaterial-amount filter and optionally changes its threshold.
type ImmaterialFilterRequest struct {
	Enabled   bool             `json:"enabled"`
	Threshold *decimal.Decimal `json:"threshold,omitempty"`
}

// SessionResponse is the status view of a session, without its raw ledger.
type SessionResponse struct {
	SessionID     string                  `json:"sessionID"`
	SourceName    string                  `json:"sourceName"`
	State         domain.UploadState      `json:"state"`
	FailureReason string                  `json:"failureReason,omitempty"`
	Metadata      domain.Metadata         `json:"metadata"`
	FiscalYears   []string                `json:"fiscalYears"`
	EntryCount    int                     `json:"entryCount"`
	Interaction   domain.InteractionState `json:"interaction"`
	CreatedAt     time.Time               `json:"createdAt"`
	LastUpdatedAt time.Time               `json:"lastUpdatedAt"`
}

// UploadResponse is returned by the upload endpoints. Statement is absent when ingestion failed.
type UploadResponse struct {
	Session   SessionResponse            `json:"session"`
	Statement *domain.ProcessedStatement `json:"statement,omitempty"`
}

// SummaryResponse carries the generated narrative of a statement.
type SummaryResponse struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

// ToSessionResponse converts a domain.Session to its status view.
func ToSessionResponse(s *domain.Session) SessionResponse {
	resp := SessionResponse{
		SessionID:     s.SessionID,
		SourceName:    s.SourceName,
		State:         s.State,
		FailureReason: s.FailureReason,
		FiscalYears:   []string{},
		Interaction:   s.Interaction,
		CreatedAt:     s.CreatedAt,
		LastUpdatedAt: s.LastUpdatedAt,
	}
	if s.Ledger != nil {
		resp.Metadata = s.Ledger.Metadata
		resp.EntryCount = len(s.Ledger.Entries)
		if s.Ledger.FiscalYears != nil {
			resp.FiscalYears = s.Ledger.FiscalYears
		}
	}
	return resp
}

// ToUploadResponse converts the upload result into the response payload.
func ToUploadResponse(session *domain.Session, statement *domain.ProcessedStatement) UploadResponse {
	return UploadResponse{
		Session:   ToSessionResponse(session),
		Statement: statement,
	}
}

// RegisterValidators adds the custom binding tags used by the request DTOs to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("bucket", func(fl validator.FieldLevel) bool {
		return domain.Bucket(fl.Field().String()).IsValid()
	})
}

package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finanalysis/internal/core/domain"
)

// SessionReader defines read operations for reporting sessions
type SessionReader interface {
	// FindSessionByID retrieves a session. Returns apperrors.ErrNotFound when absent.
	FindSessionByID(ctx context.Context, sessionID string) (*domain.Session, error)
}

// SessionWriter defines write operations for reporting sessions
type SessionWriter interface {
	// SaveSession persists a new session.
	SaveSession(ctx context.Context, session domain.Session) error

	// UpdateSession replaces a stored session. Returns apperrors.ErrNotFound when absent.
	UpdateSession(ctx context.Context, session domain.Session) error
}

// SessionEvictor removes sessions that have been idle too long
type SessionEvictor interface {
	// DeleteSessionsIdleSince deletes sessions last updated before cutoff and returns how many were removed.
	DeleteSessionsIdleSince(ctx context.Context, cutoff time.Time) (int, error)
}

// SessionRepositoryFacade combines all session-related repository interfaces
type SessionRepositoryFacade interface {
	SessionReader
	SessionWriter
	SessionEvictor
}

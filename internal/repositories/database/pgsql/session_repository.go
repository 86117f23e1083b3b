package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/SscSPs/finanalysis/internal/core/domain"
	portsrepo "github.com/SscSPs/finanalysis/internal/core/ports/repositories"
	"github.com/SscSPs/finanalysis/internal/models"
	"github.com/SscSPs/finanalysis/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgxSessionRepository struct {
	BaseRepository
}

// newPgxSessionRepository creates a new repository for reporting sessions.
func newPgxSessionRepository(pool *pgxpool.Pool) portsrepo.SessionRepositoryFacade {
	return &PgxSessionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.SessionRepositoryFacade = (*PgxSessionRepository)(nil)

// SaveSession inserts a new session.
func (r *PgxSessionRepository) SaveSession(ctx context.Context, session domain.Session) error {
	m, err := mapping.ToModelSession(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (session_id, owner_id, source_name, fingerprint, state, failure_reason,
			ledger, interaction, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = r.Pool.Exec(ctx, query,
		m.SessionID,
		m.OwnerID,
		m.SourceName,
		m.Fingerprint,
		m.State,
		m.FailureReason,
		m.Ledger,
		m.Interaction,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: session %s already exists", apperrors.ErrDuplicate, m.SessionID)
		}
		return fmt.Errorf("failed to save session %s: %w", m.SessionID, err)
	}
	return nil
}

// FindSessionByID retrieves a session by its ID.
func (r *PgxSessionRepository) FindSessionByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id, owner_id, source_name, fingerprint, state, failure_reason,
			ledger, interaction, created_at, created_by, last_updated_at, last_updated_by
		FROM sessions
		WHERE session_id = $1;
	`
	var m models.Session
	err := r.Pool.QueryRow(ctx, query, sessionID).Scan(
		&m.SessionID,
		&m.OwnerID,
		&m.SourceName,
		&m.Fingerprint,
		&m.State,
		&m.FailureReason,
		&m.Ledger,
		&m.Interaction,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find session %s: %w", sessionID, err)
	}

	session, err := mapping.ToDomainSession(m)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSession overwrites the mutable columns of a session.
func (r *PgxSessionRepository) UpdateSession(ctx context.Context, session domain.Session) error {
	m, err := mapping.ToModelSession(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE sessions
		SET source_name = $2, fingerprint = $3, state = $4, failure_reason = $5,
			ledger = $6, interaction = $7, last_updated_at = $8, last_updated_by = $9
		WHERE session_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.SessionID,
		m.SourceName,
		m.Fingerprint,
		m.State,
		m.FailureReason,
		m.Ledger,
		m.Interaction,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", m.SessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteSessionsIdleSince removes sessions whose last update is older than cutoff.
func (r *PgxSessionRepository) DeleteSessionsIdleSince(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM sessions WHERE last_updated_at < $1;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

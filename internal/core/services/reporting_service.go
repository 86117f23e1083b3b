package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/SscSPs/finanalysis/internal/core/domain"
	portsrepo "github.com/SscSPs/finanalysis/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finanalysis/internal/core/ports/services"
	"github.com/SscSPs/finanalysis/internal/core/statement"
	"github.com/SscSPs/finanalysis/internal/ingestion"
	"github.com/SscSPs/finanalysis/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultSessionTTL = 24 * time.Hour

// reportingService implements the ReportingSvcFacade interface
type reportingService struct {
	BaseService
	sessionRepo portsrepo.SessionRepositoryFacade
	engine      *statement.Engine
	locks       *sessionLocks
	now         func() time.Time
	newID       func() string
	demoSeed    func() int64
	threshold   decimal.Decimal
	sessionTTL  time.Duration
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithKeywords replaces the built-in classification vocabulary.
func WithKeywords(kw statement.Keywords) ReportingServiceOption {
	return func(s *reportingService) {
		s.engine = statement.NewEngine(kw)
	}
}

// WithImmaterialThreshold sets the threshold new sessions start with.
func WithImmaterialThreshold(threshold decimal.Decimal) ReportingServiceOption {
	return func(s *reportingService) {
		s.threshold = threshold
	}
}

// WithSessionTTL sets how long a session may stay idle before it is evicted.
func WithSessionTTL(ttl time.Duration) ReportingServiceOption {
	return func(s *reportingService) {
		s.sessionTTL = ttl
	}
}

// WithClock overrides the time source. "Today" for undated rows comes from it.
func WithClock(now func() time.Time) ReportingServiceOption {
	return func(s *reportingService) {
		s.now = now
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(newID func() string) ReportingServiceOption {
	return func(s *reportingService) {
		s.newID = newID
	}
}

// WithDemoSeed fixes the random source of generated demo ledgers.
func WithDemoSeed(seed int64) ReportingServiceOption {
	return func(s *reportingService) {
		s.demoSeed = func() int64 { return seed }
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.SessionRepositoryFacade, options ...ReportingServiceOption) portssvc.ReportingSvcFacade {
	svc := &reportingService{
		sessionRepo: repo,
		engine:      statement.NewEngine(statement.DefaultKeywords()),
		locks:       newSessionLocks(),
		now:         time.Now,
		newID:       uuid.NewString,
		threshold:   domain.DefaultImmaterialThreshold,
		sessionTTL:  defaultSessionTTL,
	}
	svc.demoSeed = func() int64 { return svc.now().UnixNano() }

	for _, option := range options {
		option(svc)
	}

	return svc
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// Upload ingests a file into a new session.
func (s *reportingService) Upload(ctx context.Context, ownerID, fileName string, data []byte) (*portssvc.UploadOutcome, error) {
	now := s.now()
	session := domain.Session{
		SessionID:   s.newID(),
		OwnerID:     ownerID,
		SourceName:  fileName,
		Fingerprint: utils.Fingerprint(data),
		State:       domain.UploadParsing,
		Interaction: domain.NewInteractionState(s.threshold),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}

	// Parse the file; a rejected file is stored as a FAILED session
	result, ingestErr := ingestion.IngestFile(fileName, data, now)
	if ingestErr != nil {
		session.State = domain.UploadFailed
		session.FailureReason = ingestErr.Error()
		if err := s.sessionRepo.SaveSession(ctx, session); err != nil {
			s.LogError(ctx, err, "Failed to save failed upload session", slog.String("session_id", session.SessionID))
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		s.LogInfo(ctx, "Upload rejected",
			slog.String("session_id", session.SessionID),
			slog.String("file", fileName),
			slog.String("reason", ingestErr.Error()))
		return &portssvc.UploadOutcome{Session: &session}, fmt.Errorf("failed to ingest %s: %w", fileName, ingestErr)
	}

	s.logIngestion(ctx, session.SessionID, fileName, result)
	return s.storeNewSession(ctx, session, result.Ledger)
}

// LoadDemo creates a session from a generated ledger.
func (s *reportingService) LoadDemo(ctx context.Context, ownerID, language string) (*portssvc.UploadOutcome, error) {
	if language != "nl" && language != "en" {
		return nil, fmt.Errorf("%w: unsupported language %q", apperrors.ErrValidation, language)
	}
	now := s.now()
	ledger := GenerateDemoLedger(language, rand.New(rand.NewSource(s.demoSeed())), now)
	session := domain.Session{
		SessionID:   s.newID(),
		OwnerID:     ownerID,
		SourceName:  "demo-" + language,
		State:       domain.UploadParsing,
		Interaction: domain.NewInteractionState(s.threshold),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}
	s.LogInfo(ctx, "Demo ledger generated", slog.String("session_id", session.SessionID), slog.String("language", language))
	return s.storeNewSession(ctx, session, ledger)
}

func (s *reportingService) storeNewSession(ctx context.Context, session domain.Session, ledger domain.Ledger) (*portssvc.UploadOutcome, error) {
	session.Ledger = &ledger
	session.State = domain.UploadSucceeded
	// Most recent fiscal year is selected by default
	session.Interaction.SelectedYear = session.DefaultYear()

	st, err := s.engine.Recompute(statement.Input{Ledger: session.Ledger, Interaction: session.Interaction})
	if err != nil {
		s.LogError(ctx, err, "Failed to compute statement", slog.String("session_id", session.SessionID))
		return nil, fmt.Errorf("failed to compute statement: %w", err)
	}
	if err := s.sessionRepo.SaveSession(ctx, session); err != nil {
		s.LogError(ctx, err, "Failed to save session", slog.String("session_id", session.SessionID))
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return &portssvc.UploadOutcome{Session: &session, Statement: st}, nil
}

// Reupload replaces the ledger of an existing session. Uploading the identical file again
// keeps the current interaction state.
func (s *reportingService) Reupload(ctx context.Context, ownerID, sessionID, fileName string, data []byte) (*portssvc.UploadOutcome, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.findOwnedSession(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	// Same bytes as the current ledger: nothing to re-ingest
	fingerprint := utils.Fingerprint(data)
	if session.HasStatement() && session.State == domain.UploadSucceeded && session.Fingerprint == fingerprint {
		s.LogInfo(ctx, "Identical file uploaded again, keeping current statement", slog.String("session_id", sessionID))
		st, err := s.recompute(ctx, session)
		if err != nil {
			return nil, err
		}
		return &portssvc.UploadOutcome{Session: session, Statement: st}, nil
	}

	now := s.now()
	session.LastUpdatedAt = now
	session.LastUpdatedBy = ownerID

	result, ingestErr := ingestion.IngestFile(fileName, data, now)
	if ingestErr != nil {
		// The previous ledger stays in place so its statement remains authoritative.
		session.State = domain.UploadFailed
		session.FailureReason = ingestErr.Error()
		if err := s.sessionRepo.UpdateSession(ctx, *session); err != nil {
			s.LogError(ctx, err, "Failed to update session", slog.String("session_id", sessionID))
			return nil, fmt.Errorf("failed to update session: %w", err)
		}
		s.LogInfo(ctx, "Re-upload rejected", slog.String("session_id", sessionID), slog.String("reason", ingestErr.Error()))
		return &portssvc.UploadOutcome{Session: session}, fmt.Errorf("failed to ingest %s: %w", fileName, ingestErr)
	}

	// Swap in the new ledger and start over with a fresh interaction state
	s.logIngestion(ctx, sessionID, fileName, result)
	ledger := result.Ledger
	session.Ledger = &ledger
	session.SourceName = fileName
	session.Fingerprint = fingerprint
	session.State = domain.UploadSucceeded
	session.FailureReason = ""
	session.Interaction = session.Interaction.Reset(session.DefaultYear(), s.threshold)

	st, err := s.recompute(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.UpdateSession(ctx, *session); err != nil {
		s.LogError(ctx, err, "Failed to update session", slog.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return &portssvc.UploadOutcome{Session: session, Statement: st}, nil
}

// GetSession returns a session owned by ownerID.
func (s *reportingService) GetSession(ctx context.Context, ownerID, sessionID string) (*domain.Session, error) {
	return s.findOwnedSession(ctx, ownerID, sessionID)
}

// GetStatement recomputes the statement of a session from its stored state.
func (s *reportingService) GetStatement(ctx context.Context, ownerID, sessionID string) (*domain.ProcessedStatement, error) {
	session, err := s.findOwnedSession(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.recompute(ctx, session)
}

// Reorder sets the manual item order of one section.
func (s *reportingService) Reorder(ctx context.Context, ownerID, sessionID string, bucket domain.Bucket, order []string) (*domain.ProcessedStatement, error) {
	return s.applyInteraction(ctx, ownerID, sessionID, "reorder", func(session *domain.Session) (domain.InteractionState, error) {
		return session.Interaction.Reorder(bucket, order)
	})
}

// MoveItem overrides the bucket of every entry with the given description.
func (s *reportingService) MoveItem(ctx context.Context, ownerID, sessionID, description string, from, to domain.Bucket) (*domain.ProcessedStatement, error) {
	return s.applyInteraction(ctx, ownerID, sessionID, "move_item", func(session *domain.Session) (domain.InteractionState, error) {
		return session.Interaction.MoveItem(description, from, to)
	})
}

// SelectYear restricts the statement to one fiscal year.
func (s *reportingService) SelectYear(ctx context.Context, ownerID, sessionID, year string) (*domain.ProcessedStatement, error) {
	return s.applyInteraction(ctx, ownerID, sessionID, "select_year", func(session *domain.Session) (domain.InteractionState, error) {
		return session.Interaction.SelectYear(year)
	})
}

// SetImmaterialFilter toggles the immaterial-amount filter, optionally changing its threshold.
func (s *reportingService) SetImmaterialFilter(ctx context.Context, ownerID, sessionID string, enabled bool, threshold *decimal.Decimal) (*domain.ProcessedStatement, error) {
	return s.applyInteraction(ctx, ownerID, sessionID, "immaterial_filter", func(session *domain.Session) (domain.InteractionState, error) {
		state := session.Interaction
		if threshold != nil {
			var err error
			if state, err = state.SetImmaterialThreshold(*threshold); err != nil {
				return state, err
			}
		}
		return state.ToggleImmaterialFilter(enabled), nil
	})
}

// ResetInteraction discards overrides, ordering and filters.
func (s *reportingService) ResetInteraction(ctx context.Context, ownerID, sessionID string) (*domain.ProcessedStatement, error) {
	return s.applyInteraction(ctx, ownerID, sessionID, "reset", func(session *domain.Session) (domain.InteractionState, error) {
		return session.Interaction.Reset(session.DefaultYear(), s.threshold), nil
	})
}

// applyInteraction runs one command under the session lock. The new state is only stored once
// its statement has been computed, so a stored version always has a valid statement.
func (s *reportingService) applyInteraction(
	ctx context.Context,
	ownerID, sessionID, command string,
	apply func(*domain.Session) (domain.InteractionState, error),
) (*domain.ProcessedStatement, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.findOwnedSession(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	// Commands need a ledger to work on
	if !session.HasStatement() {
		return nil, apperrors.ErrNoStatement
	}

	// Build the next state; invalid commands leave the stored version untouched
	next, err := apply(session)
	if err != nil {
		s.LogDebug(ctx, "Interaction command rejected",
			slog.String("session_id", sessionID),
			slog.String("command", command),
			slog.String("error", err.Error()))
		return nil, err
	}
	session.Interaction = next
	st, err := s.recompute(ctx, session)
	if err != nil {
		return nil, err
	}

	// Persist state and touch the session so the sweeper keeps it alive
	session.LastUpdatedAt = s.now()
	session.LastUpdatedBy = ownerID
	if err := s.sessionRepo.UpdateSession(ctx, *session); err != nil {
		s.LogError(ctx, err, "Failed to store interaction state",
			slog.String("session_id", sessionID),
			slog.String("command", command))
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	s.LogInfo(ctx, "Interaction applied",
		slog.String("session_id", sessionID),
		slog.String("command", command),
		slog.Int64("version", next.Version))
	return st, nil
}

// EvictIdleSessions deletes sessions not updated within the session TTL.
func (s *reportingService) EvictIdleSessions(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.sessionTTL)
	n, err := s.sessionRepo.DeleteSessionsIdleSince(ctx, cutoff)
	if err != nil {
		s.LogError(ctx, err, "Failed to evict idle sessions", slog.Time("cutoff", cutoff))
		return 0, fmt.Errorf("failed to evict idle sessions: %w", err)
	}
	if n > 0 {
		s.LogInfo(ctx, "Evicted idle sessions", slog.Int("count", n), slog.Time("cutoff", cutoff))
	}
	return n, nil
}

func (s *reportingService) findOwnedSession(ctx context.Context, ownerID, sessionID string) (*domain.Session, error) {
	session, err := s.sessionRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		// Not found is an expected outcome, only log real failures
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load session", slog.String("session_id", sessionID))
		}
		return nil, fmt.Errorf("failed to find session %s: %w", sessionID, err)
	}
	if err := s.AuthorizeOwner(ctx, session, ownerID); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *reportingService) recompute(ctx context.Context, session *domain.Session) (*domain.ProcessedStatement, error) {
	st, err := s.engine.Recompute(statement.Input{Ledger: session.Ledger, Interaction: session.Interaction})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNoStatement) {
			s.LogError(ctx, err, "Failed to compute statement", slog.String("session_id", session.SessionID))
		}
		return nil, err
	}
	return st, nil
}

func (s *reportingService) logIngestion(ctx context.Context, sessionID, fileName string, result *ingestion.Result) {
	s.LogInfo(ctx, "File ingested",
		slog.String("session_id", sessionID),
		slog.String("file", fileName),
		slog.Int("rows_read", result.RowsRead),
		slog.Int("entries", len(result.Ledger.Entries)),
		slog.Int("reported_totals", len(result.Ledger.ReportedTotals)),
		slog.String("layout_mode", string(result.Mode)))
}

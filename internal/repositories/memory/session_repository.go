// Package memory keeps sessions in process memory. It is used when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/SscSPs/finanalysis/internal/core/domain"
	portsrepo "github.com/SscSPs/finanalysis/internal/core/ports/repositories"
)

// SessionRepository stores session values. Ledgers and interaction states are immutable once
// built, so storing a copy of the Session struct is enough to isolate callers.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.Session)}
}

var _ portsrepo.SessionRepositoryFacade = (*SessionRepository)(nil)

// NewRepositoryProvider wires the in-memory repositories.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{SessionRepo: NewSessionRepository()}
}

func (r *SessionRepository) SaveSession(ctx context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.SessionID]; exists {
		return fmt.Errorf("%w: session %s already exists", apperrors.ErrDuplicate, session.SessionID)
	}
	r.sessions[session.SessionID] = session
	return nil
}

func (r *SessionRepository) FindSessionByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &session, nil
}

func (r *SessionRepository) UpdateSession(ctx context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.SessionID]; !ok {
		return apperrors.ErrNotFound
	}
	r.sessions[session.SessionID] = session
	return nil
}

func (r *SessionRepository) DeleteSessionsIdleSince(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.LastUpdatedAt.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

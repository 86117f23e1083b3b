package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/SscSPs/finanalysis/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(id string, updated time.Time) domain.Session {
	return domain.Session{
		SessionID:   id,
		OwnerID:     "owner-1",
		State:       domain.UploadSucceeded,
		Interaction: domain.NewInteractionState(domain.DefaultImmaterialThreshold),
		AuditFields: domain.AuditFields{CreatedAt: updated, LastUpdatedAt: updated},
	}
}

func TestSessionRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	s := newSession("s1", time.Now())

	require.NoError(t, repo.SaveSession(ctx, s))
	assert.ErrorIs(t, repo.SaveSession(ctx, s), apperrors.ErrDuplicate)

	found, err := repo.FindSessionByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", found.OwnerID)

	_, err = repo.FindSessionByID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionRepository_ReturnedCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	require.NoError(t, repo.SaveSession(ctx, newSession("s1", time.Now())))

	found, err := repo.FindSessionByID(ctx, "s1")
	require.NoError(t, err)
	found.State = domain.UploadFailed

	again, err := repo.FindSessionByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.UploadSucceeded, again.State)
}

func TestSessionRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	s := newSession("s1", time.Now())

	assert.ErrorIs(t, repo.UpdateSession(ctx, s), apperrors.ErrNotFound)

	require.NoError(t, repo.SaveSession(ctx, s))
	s.FailureReason = "file is empty"
	require.NoError(t, repo.UpdateSession(ctx, s))

	found, err := repo.FindSessionByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "file is empty", found.FailureReason)
}

func TestSessionRepository_DeleteSessionsIdleSince(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveSession(ctx, newSession("old", now.Add(-48*time.Hour))))
	require.NoError(t, repo.SaveSession(ctx, newSession("fresh", now.Add(-time.Hour))))

	n, err := repo.DeleteSessionsIdleSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repo.FindSessionByID(ctx, "old")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.FindSessionByID(ctx, "fresh")
	assert.NoError(t, err)
}

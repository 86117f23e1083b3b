package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/SscSPs/finanalysis/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeOwner checks that the session belongs to ownerID. Sessions of other owners are
// reported as forbidden.
func (s *BaseService) AuthorizeOwner(ctx context.Context, session *domain.Session, ownerID string) error {
	if session.OwnerID != ownerID {
		s.LogDebug(ctx, "Session access denied",
			slog.String("session_id", session.SessionID),
			slog.String("owner_id", ownerID))
		return apperrors.ErrForbidden
	}
	return nil
}

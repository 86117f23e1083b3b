package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	portssvc "github.com/SscSPs/finanalysis/internal/core/ports/services"
	"github.com/SscSPs/finanalysis/internal/dto"
	"github.com/SscSPs/finanalysis/internal/middleware"
	"github.com/SscSPs/finanalysis/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

const uploadFormField = "file"

// sessionHandler handles HTTP requests for ledger sessions and their statements
type sessionHandler struct {
	reportingService portssvc.ReportingSvcFacade
	summaryService   portssvc.SummarySvc
	posthogClient    *utils.PosthogClientWrapper
	maxUploadBytes   int64
}

// newSessionHandler creates a new sessionHandler
func newSessionHandler(rs portssvc.ReportingSvcFacade, ss portssvc.SummarySvc, posthogClient *utils.PosthogClientWrapper, maxUploadBytes int64) *sessionHandler {
	return &sessionHandler{
		reportingService: rs,
		summaryService:   ss,
		posthogClient:    posthogClient,
		maxUploadBytes:   maxUploadBytes,
	}
}

// registerSessionRoutes registers session routes. Uploads are rate limited when uploadLimiter is set.
func registerSessionRoutes(rg *gin.RouterGroup, h *sessionHandler, uploadLimiter *limiter.Limiter) {
	uploadChain := []gin.HandlerFunc{}
	if uploadLimiter != nil {
		uploadChain = append(uploadChain, middleware.RateLimit(uploadLimiter))
	}

	sessions := rg.Group("/sessions")
	{
		sessions.POST("", append(uploadChain, h.uploadLedger)...)
		sessions.POST("/demo", h.loadDemo)

		// Routes specific to a single session (identified by sessionID)
		sessionGroup := sessions.Group("/:sessionID")
		{
			sessionGroup.GET("", h.getSession)
			sessionGroup.PUT("/file", append(uploadChain, h.reuploadLedger)...)
			sessionGroup.GET("/statement", h.getStatement)
			sessionGroup.PUT("/sort-order", h.reorder)
			sessionGroup.POST("/moves", h.moveItem)
			sessionGroup.PUT("/year", h.selectYear)
			sessionGroup.PUT("/immaterial-filter", h.setImmaterialFilter)
			sessionGroup.DELETE("/interaction", h.resetInteraction)
			sessionGroup.GET("/summary", h.getSummary)
		}
	}
}

// uploadLedger godoc
// @Summary Upload a ledger file
// @Description Ingests a CSV, XLSX or XLS general-ledger export into a new session and returns the first statement
// @Tags sessions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Ledger export (.csv, .xlsx, .xls)"
// @Success 201 {object} dto.UploadResponse
// @Failure 400 {object} map[string]string "Empty or unsupported file"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 413 {object} map[string]string "File too large"
// @Failure 422 {object} map[string]string "No valid entries found"
// @Failure 429 {object} map[string]string "Too many uploads"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /sessions [post]
func (h *sessionHandler) uploadLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	// Get user ID from context (set by auth middleware)
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Read the multipart file (size limit enforced here)
	fileName, data, ok := h.readUpload(c, logger)
	if !ok {
		return
	}

	outcome, err := h.reportingService.Upload(c.Request.Context(), userID, fileName, data)
	if err != nil {
		h.respondUploadFailure(c, logger, outcome, err)
		return
	}

	// Track upload with entry count
	middleware.PosthogEvent(c, h.posthogClient, "ledger_uploaded", map[string]any{
		"session_id":  outcome.Session.SessionID,
		"entry_count": outcome.Statement.EntryCount,
	})
	c.JSON(http.StatusCreated, dto.ToUploadResponse(outcome.Session, outcome.Statement))
}

// reuploadLedger godoc
// @Summary Replace the ledger of a session
// @Description Ingests a new file into an existing session. A failed re-upload keeps the previous statement.
// @Tags sessions
// @Accept multipart/form-data
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param file formData file true "Ledger export (.csv, .xlsx, .xls)"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} map[string]string "Empty or unsupported file"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 413 {object} map[string]string "File too large"
// @Failure 422 {object} map[string]string "No valid entries found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /sessions/{sessionID}/file [put]
func (h *sessionHandler) reuploadLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	// Get user ID from context (set by auth middleware)
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	sessionID := c.Param("sessionID")

	fileName, data, ok := h.readUpload(c, logger)
	if !ok {
		return
	}

	outcome, err := h.reportingService.Reupload(c.Request.Context(), userID, sessionID, fileName, data)
	if err != nil {
		h.respondUploadFailure(c, logger, outcome, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUploadResponse(outcome.Session, outcome.Statement))
}

// loadDemo godoc
// @Summary Load demo data
// @Description Creates a session from a generated demo ledger
// @Tags sessions
// @Produce json
// @Param language query string false "Language of account names (nl or en)" default(nl)
// @Success 201 {object} dto.UploadResponse
// @Failure 400 {object} map[string]string "Unsupported language"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /sessions/demo [post]
func (h *sessionHandler) loadDemo(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	language := c.DefaultQuery("language", "nl")
	outcome, err := h.reportingService.LoadDemo(c.Request.Context(), userID, language)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to load demo data")
		return
	}
	c.JSON(http.StatusCreated, dto.ToUploadResponse(outcome.Session, outcome.Statement))
}

// getSession godoc
// @Summary Get session status
// @Description Returns the upload state, metadata, fiscal years and interaction state of a session
// @Tags sessions
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /sessions/{sessionID} [get]
func (h *sessionHandler) getSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session, err := h.reportingService.GetSession(c.Request.Context(), userID, c.Param("sessionID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get session")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// getStatement godoc
// @Summary Get the processed statement
// @Description Returns the statement computed from the session's ledger and interaction state
// @Tags statements
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} domain.ProcessedStatement
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "No statement available"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /sessions/{sessionID}/statement [get]
func (h *sessionHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	st, err := h.reportingService.GetStatement(c.Request.Context(), userID, c.Param("sessionID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get statement")
		return
	}
	c.JSON(http.StatusOK, st)
}

// reorder godoc
// @Summary Reorder a statement section
// @Tags statements
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param order body dto.ReorderRequest true "Section and item order"
// @Success 200 {object} domain.ProcessedStatement
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "No statement available"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /sessions/{sessionID}/sort-order [put]
func (h *sessionHandler) reorder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for reorder", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	st, err := h.reportingService.Reorder(c.Request.Context(), userID, c.Param("sessionID"), req.Bucket, req.Order)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reorder section")
		return
	}
	c.JSON(http.StatusOK, st)
}

// moveItem godoc
// @Summary Move an item to another section
// @Description Overrides the classification of every entry with the given description
// @Tags statements
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param move body dto.MoveItemRequest true "Item and target section"
// @Success 200 {object} domain.ProcessedStatement
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "No statement available"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /sessions/{sessionID}/moves [post]
func (h *sessionHandler) moveItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Bind and validate the move (target bucket is required)
	var req dto.MoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for moveItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	st, err := h.reportingService.MoveItem(c.Request.Context(), userID, c.Param("sessionID"), req.Description, req.FromBucket, req.ToBucket)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to move item")
		return
	}
	c.JSON(http.StatusOK, st)
}

// selectYear godoc
// @Summary Select the fiscal year
// @Tags statements
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param year body dto.SelectYearRequest true "Fiscal year, empty for all years"
// @Success 200 {object} domain.ProcessedStatement
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "No statement available"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /sessions/{sessionID}/year [put]
func (h *sessionHandler) selectYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.SelectYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for selectYear", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	st, err := h.reportingService.SelectYear(c.Request.Context(), userID, c.Param("sessionID"), req.Year)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to select year")
		return
	}
	c.JSON(http.StatusOK, st)
}

// setImmaterialFilter godoc
// @Summary Configure the immaterial-amount filter
// @Tags statements
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param filter body dto.ImmaterialFilterRequest true "Filter toggle and optional threshold"
// @Success 200 {object} domain.ProcessedStatement
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "No statement available"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /sessions/{sessionID}/immaterial-filter [put]
func (h *sessionHandler) setImmaterialFilter(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Threshold is optional; nil keeps the current one
	var req dto.ImmaterialFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for setImmaterialFilter", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	st, err := h.reportingService.SetImmaterialFilter(c.Request.Context(), userID, c.Param("sessionID"), req.Enabled, req.Threshold)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update immaterial filter")
		return
	}
	c.JSON(http.StatusOK, st)
}

// resetInteraction godoc
// @Summary Reset statement edits
// @Description Clears overrides and manual ordering and restores the default year
// @Tags statements
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} domain.ProcessedStatement
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "No statement available"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /sessions/{sessionID}/interaction [delete]
func (h *sessionHandler) resetInteraction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	st, err := h.reportingService.ResetInteraction(c.Request.Context(), userID, c.Param("sessionID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reset statement")
		return
	}
	c.JSON(http.StatusOK, st)
}

// getSummary godoc
// @Summary Summarize the statement
// @Description Returns a short generated narrative of the statement. Falls back to a fixed text when generation is unavailable.
// @Tags statements
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param language query string false "Summary language (en or nl)" default(en)
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} map[string]string "Unsupported language"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "No statement available"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /sessions/{sessionID}/summary [get]
func (h *sessionHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	language := c.DefaultQuery("language", "en")
	text, err := h.summaryService.Summarize(c.Request.Context(), userID, c.Param("sessionID"), language)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to summarize statement")
		return
	}
	c.JSON(http.StatusOK, dto.SummaryResponse{Language: language, Text: text})
}

// readUpload reads the multipart file, writing the error response itself when it fails.
func (h *sessionHandler) readUpload(c *gin.Context, logger *slog.Logger) (string, []byte, bool) {
	if h.maxUploadBytes > 0 {
		// Reject early when the declared length is already too large
		if c.Request.ContentLength > h.maxUploadBytes {
			logger.Warn("Upload exceeds size limit", slog.Int64("limit", h.maxUploadBytes), slog.Int64("contentLength", c.Request.ContentLength))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("File exceeds the limit of %d bytes", h.maxUploadBytes)})
			return "", nil, false
		}
		// chunked bodies have no declared length
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	header, err := c.FormFile(uploadFormField)
	if err != nil {
		// MaxBytesReader surfaces through the multipart parser
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("Upload exceeds size limit", slog.Int64("limit", tooLarge.Limit))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("File exceeds the limit of %d bytes", tooLarge.Limit)})
			return "", nil, false
		}
		logger.Warn("Missing upload file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file is required in form field '" + uploadFormField + "'"})
		return "", nil, false
	}

	f, err := header.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return "", nil, false
	}
	return header.Filename, data, true
}

// respondUploadFailure writes an ingestion failure. The FAILED session is included when one was stored.
func (h *sessionHandler) respondUploadFailure(c *gin.Context, logger *slog.Logger, outcome *portssvc.UploadOutcome, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error("Upload failed", slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Failed to process upload"})
		return
	}
	// Client errors carry the reason and the stored session
	logger.Warn("Upload rejected", slog.String("error", err.Error()))
	body := gin.H{"error": err.Error()}
	if outcome != nil && outcome.Session != nil {
		body["session"] = dto.ToSessionResponse(outcome.Session)
	}
	c.JSON(status, body)
}

// respondServiceError maps a service error to its HTTP status. Internal errors are logged and masked.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, internalMessage string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error(internalMessage, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": internalMessage})
		return
	}
	logger.Warn(internalMessage, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrEmptyFile),
		errors.Is(err, apperrors.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNoValidEntries):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNoStatement):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

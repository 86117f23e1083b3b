package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/finanalysis/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains paths that are never tracked
var pathsToSkip = map[string]bool{
	"/health": true,
}

// PosthogMiddleware tracks successful API calls as PostHog events named after the route,
// e.g. "/api/v1/sessions/:sessionID/moves" -> "api_v1_sessions_moves".
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip if PostHog is not initialized or path is in skip list
		if posthogClient == nil || !posthogClient.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		// Process request first
		c.Next()

		// Only successful requests become events
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		// Get user ID from context (set by auth middleware)
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		// Skip if event name is empty (e.g., for 404s)
		eventName := routeEventName(c.FullPath())
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
		}
		// Session id is the only route parameter worth tracking
		if sessionID := c.Param("sessionID"); sessionID != "" {
			props["session_id"] = sessionID
		}
		posthogClient.Enqueue(userID, eventName, props)
	}
}

// PosthogEvent sends a custom event for the authenticated user.
func PosthogEvent(c *gin.Context, posthogClient *utils.PosthogClientWrapper, eventName string, properties map[string]any) {
	if posthogClient == nil || !posthogClient.IsInitialized() {
		return
	}
	userID, exists := GetUserIDFromContext(c)
	if !exists {
		return
	}
	// Ensure properties is not nil
	if properties == nil {
		properties = make(map[string]any)
	}
	properties["method"] = c.Request.Method
	posthogClient.Enqueue(userID, eventName, properties)
}

func routeEventName(fullPath string) string {
	parts := strings.Split(strings.Trim(fullPath, "/"), "/")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || strings.HasPrefix(p, ":") || strings.HasPrefix(p, "*") {
			continue
		}
		kept = append(kept, strings.ReplaceAll(p, "-", "_"))
	}
	return strings.Join(kept, "_")
}

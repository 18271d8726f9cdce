package server

import (
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neo/debatearena_backend/internal/logging"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// ErrorHandler middleware for handling errors attached to the context
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			status := c.Writer.Status()
			if status < 400 {
				status = http.StatusInternalServerError
			}

			errorResponse := ErrorResponse{
				Status:    status,
				Message:   "An error occurred while processing your request",
				Path:      c.Request.URL.Path,
				Timestamp: time.Now(),
				RequestID: c.GetString("RequestID"),
			}

			// Add details in development mode
			if os.Getenv("APP_ENV") == "development" {
				errorResponse.Details = err.Error()
			}

			logging.Error("Request failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			c.JSON(status, gin.H{"error": errorResponse})
		}
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := fmt.Sprintf("%d", time.Now().UnixNano())
		c.Set("RequestID", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// LoggingMiddleware logs all requests
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logging.LogHTTPRequest(
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			map[string]interface{}{
				"request_id": c.GetString("RequestID"),
			},
		)
	}
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logging.Error("Panic in request handler", map[string]interface{}{
					"path":  c.Request.URL.Path,
					"panic": fmt.Sprintf("%v", err),
					"stack": string(debug.Stack()),
				})

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": ErrorResponse{
					Status:    http.StatusInternalServerError,
					Message:   "An unexpected error occurred",
					Path:      c.Request.URL.Path,
					Timestamp: time.Now(),
					RequestID: c.GetString("RequestID"),
				}})
			}
		}()
		c.Next()
	}
}

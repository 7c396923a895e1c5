package transport

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/internal/logger"
	"github.com/anime-shed/ratemylooks/internal/service"
	"github.com/anime-shed/ratemylooks/pkg/models"
)

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.WithFields(fields).Warn("Request completed with server error")
			return
		}
		logger.WithFields(fields).Info("Request completed")
	}
}

// securityHeaders sets the usual hardening headers. Resources stay loadable cross-origin so a
// separately hosted frontend can embed responses.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		h.Set("X-XSS-Protection", "0")
		c.Next()
	}
}

// respondError writes the failure payload. Analysis failures carry their id and elapsed time.
func respondError(c *gin.Context, err error) {
	status := apperrors.GetStatusCode(err)
	resp := models.ErrorResponse{
		Success:   false,
		Error:     "Analysis failed",
		Code:      apperrors.GetCode(err),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if appErr, ok := apperrors.As(err); ok {
		resp.Error = appErr.Message
		if len(appErr.Details) > 1 {
			resp.Details = appErr.Details
		}
	}

	var failed *service.FailedAnalysis
	if errors.As(err, &failed) {
		resp.AnalysisID = failed.AnalysisID
		ms := failed.ProcessingTime.Milliseconds()
		resp.ProcessingTime = &ms
	}

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"status_code": status,
		"code":        resp.Code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(status, resp)
}

func formatMB(bytes int64) string {
	return fmt.Sprintf("%dMB", bytes/(1024*1024))
}

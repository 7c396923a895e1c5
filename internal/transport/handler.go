package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/ratemylooks/internal/config"
	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/internal/logger"
	"github.com/anime-shed/ratemylooks/internal/observer"
	"github.com/anime-shed/ratemylooks/internal/service"
	"github.com/anime-shed/ratemylooks/pkg/models"
	"github.com/anime-shed/ratemylooks/pkg/validation"
)

// multipartOverhead is allowed on top of the upload cap for form boundaries and fields
const multipartOverhead = 1024 * 1024

var formatRecommendations = []string{
	"Use high-quality images for best results",
	"Ensure good lighting and clear facial features",
	"Avoid heavily filtered or edited photos",
	"Front-facing photos work best for analysis",
}

var serviceNames = map[string]string{
	config.ProviderGrok:   "Grok",
	config.ProviderOpenAI: "OpenAI",
	config.ProviderGemini: "Gemini",
}

// StatsSource exposes aggregated analysis metrics
type StatsSource interface {
	GetMetrics() observer.Stats
}

type handler struct {
	svc       service.AnalysisService
	validator *validation.ImageValidator
	stats     StatsSource
	cfg       *config.Config
	started   time.Time
	now       func() time.Time
}

// Option customizes the HTTP handler
type Option func(*handler)

// WithClock replaces the time source used for uptime and rate limiting
func WithClock(now func() time.Time) Option {
	return func(h *handler) { h.now = now }
}

// NewHandler builds the gin engine with every route and middleware registered
func NewHandler(svc service.AnalysisService, validator *validation.ImageValidator, stats StatsSource, cfg *config.Config, opts ...Option) http.Handler {
	if validator == nil {
		validator = validation.NewImageValidatorWithOptions(cfg.MaxUploadSize, validation.AllowedFormats)
	}
	h := &handler{
		svc:       svc,
		validator: validator,
		stats:     stats,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.started = h.now()

	limits := newRateLimits(cfg, h.now)
	uploadLimit := cfg.MaxUploadSize + multipartOverhead
	// base64 inflates the payload by a third
	jsonLimit := cfg.MaxUploadSize*4/3 + multipartOverhead

	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestLogger(),
		securityHeaders(),
		rateLimit(limits.general),
	)

	r.GET("/", h.root)
	r.GET("/health", h.healthCheck)

	api := r.Group("/api")
	{
		api.GET("/test-ai", h.testAI)
		api.GET("/analyze/formats", h.formats)
		api.GET("/analyze/limits", h.limits)
		api.GET("/analyze/stats", h.analysisStats)

		analyze := api.Group("/analyze", rateLimit(limits.burst, limits.analysis))
		analyze.POST("", requestSizeLimiter(uploadLimit), h.analyzeUpload)
		analyze.POST("/base64", requestSizeLimiter(jsonLimit), h.analyzeBase64)
		analyze.POST("/url", requestSizeLimiter(multipartOverhead), h.analyzeURL)
	}

	r.NoRoute(notFound)

	return r
}

func (h *handler) analyzeUpload(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	img, err := readUpload(c, h.validator.MaxFileSize())
	if err != nil {
		respondError(c, err)
		return
	}

	logger.WithFields(logrus.Fields{
		"ip":       c.ClientIP(),
		"filename": uploadName(img),
	}).Info("Processing upload analysis request")

	result, err := h.svc.AnalyzeUpload(ctx, img, formOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) analyzeBase64(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.Base64AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err, apperrors.CodeInvalidImageData, h.validator.MaxFileSize()))
		return
	}

	result, err := h.svc.AnalyzeBase64(ctx, req.ImageData, req.Options)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) analyzeURL(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.URLAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err, apperrors.CodeInvalidURL, h.validator.MaxFileSize()))
		return
	}

	logger.WithFields(logrus.Fields{
		"ip":  c.ClientIP(),
		"url": req.ImageURL,
	}).Info("Processing URL analysis request")

	result, err := h.svc.AnalyzeURL(ctx, req.ImageURL, req.Options)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) testAI(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	result := h.svc.TestConnection(ctx)
	name, ok := serviceNames[h.svc.Provider()]
	if !ok {
		name = h.svc.Provider()
	}
	c.JSON(http.StatusOK, models.TestAIResponse{
		Success:          result.Connected,
		Service:          name,
		ConnectionResult: result,
	})
}

func (h *handler) formats(c *gin.Context) {
	c.JSON(http.StatusOK, models.FormatsResponse{
		Success:          true,
		SupportedFormats: h.validator.AllowedFormats(),
		MaxFileSize:      h.validator.MaxFileSize(),
		MaxFileSizeMB:    h.validator.MaxFileSize() / (1024 * 1024),
		Recommendations:  formatRecommendations,
		Timestamp:        h.timestamp(),
	})
}

func (h *handler) limits(c *gin.Context) {
	c.JSON(http.StatusOK, models.LimitsResponse{
		Success:         true,
		AnalysisPerHour: h.cfg.RateLimitAnalysis,
		RequestsPerHour: h.cfg.RateLimitGeneral,
		BurstPerMinute:  h.cfg.RateLimitBurst,
		MaxFileSize:     formatMB(h.validator.MaxFileSize()),
		Timestamp:       h.timestamp(),
	})
}

func (h *handler) analysisStats(c *gin.Context) {
	if h.stats == nil {
		respondError(c, apperrors.NewNotFoundError("Statistics are not enabled", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"stats":     h.stats.GetMetrics(),
		"timestamp": h.timestamp(),
	})
}

func (h *handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "RateMyLooks.ai API Server",
		"version": config.Version,
		"status":  "running",
	})
}

func (h *handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:      "healthy",
		Timestamp:   h.timestamp(),
		Uptime:      h.now().Sub(h.started).Seconds(),
		Environment: h.cfg.Environment,
	})
}

func (h *handler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success":   false,
		"error":     "Route not found",
		"code":      apperrors.CodeNotFound,
		"path":      c.Request.URL.Path,
		"method":    c.Request.Method,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// readUpload returns nil without error when the image field is absent so the pipeline reports
// MISSING_IMAGE under an analysis id
func readUpload(c *gin.Context, maxFileSize int64) (*models.UploadedImage, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if isBodyTooLarge(err) {
			return nil, fileTooLarge(maxFileSize, err)
		}
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidImageData, "Uploaded file could not be read", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidImageData, "Uploaded file could not be read", err)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "application/octet-stream" {
		contentType = ""
	}
	return &models.UploadedImage{
		Data:        data,
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
	}, nil
}

func formOptions(c *gin.Context) models.AnalysisOptions {
	opts := models.AnalysisOptions{AnalysisType: c.PostForm("analysisType")}
	if raw := c.PostForm("focusAreas"); raw != "" {
		opts.FocusAreas = strings.Split(raw, ",")
	}
	advice := c.PostForm("includeAdvice") != "false"
	opts.IncludeAdvice = &advice
	return opts
}

func bindError(err error, code string, maxFileSize int64) error {
	if isBodyTooLarge(err) {
		return fileTooLarge(maxFileSize, err)
	}
	return apperrors.NewValidationError(code, "Invalid request body", err)
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

func fileTooLarge(maxFileSize int64, cause error) error {
	return apperrors.NewValidationError(apperrors.CodeFileTooLarge, "File too large. Maximum size is "+formatMB(maxFileSize), cause)
}

func uploadName(img *models.UploadedImage) string {
	if img == nil {
		return ""
	}
	return img.Filename
}

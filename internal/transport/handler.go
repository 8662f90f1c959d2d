package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/photo-scorer-go/internal/config"
	apperrors "github.com/anime-shed/photo-scorer-go/internal/errors"
	"github.com/anime-shed/photo-scorer-go/internal/logger"
	"github.com/anime-shed/photo-scorer-go/internal/observer"
	"github.com/anime-shed/photo-scorer-go/internal/service"
	"github.com/anime-shed/photo-scorer-go/pkg/models"
)

const (
	formImage           = "image"
	formDetections      = "detections"
	formClassifications = "classifications"
	formExposureTime    = "exposure_time"
)

// NewHandler builds the gin router. metrics may be nil.
func NewHandler(svc service.PhotoAnalysisService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", metricsSnapshot(svc, metrics))
	r.POST("/analyze", analyzeUpload(svc, cfg))
	r.POST("/analyze/url", analyzeURL(svc, cfg))

	return r
}

func analyzeUpload(svc service.PhotoAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		input, err := readUpload(c)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid upload", err)
			return
		}

		result, err := svc.AnalyzeUpload(ctx, input)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "photo analysis failed", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func analyzeURL(svc service.PhotoAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.AnalyzeURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if isBodyTooLarge(err) {
				tooLarge := apperrors.NewPayloadTooLargeError("request body too large", err)
				respondError(c, apperrors.GetStatusCode(tooLarge), "invalid request format", tooLarge)
				return
			}
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		result, err := svc.AnalyzeURL(ctx, req)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "photo analysis failed", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// readUpload pulls the photo and its optional side inputs out of a
// multipart form. Detections and classifications are JSON arrays.
func readUpload(c *gin.Context) (service.AnalyzeUploadInput, error) {
	var input service.AnalyzeUploadInput

	fileHeader, err := c.FormFile(formImage)
	if err != nil {
		if isBodyTooLarge(err) {
			return input, apperrors.NewPayloadTooLargeError("request body too large", err)
		}
		return input, apperrors.NewValidationError("multipart field \"image\" is required", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return input, apperrors.NewValidationError("failed to open uploaded image", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return input, apperrors.NewValidationError("failed to read uploaded image", err)
	}
	input.FileName = fileHeader.Filename
	input.Data = data

	if raw := strings.TrimSpace(c.PostForm(formDetections)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Detections); err != nil {
			return input, apperrors.NewValidationError("detections must be a JSON array", err)
		}
	}
	if raw := strings.TrimSpace(c.PostForm(formClassifications)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Classifications); err != nil {
			return input, apperrors.NewValidationError("classifications must be a JSON array", err)
		}
	}
	if raw := strings.TrimSpace(c.PostForm(formExposureTime)); raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return input, apperrors.NewValidationError("exposure_time must be a number of seconds", err)
		}
		input.ExposureTime = &seconds
	}
	return input, nil
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func metricsSnapshot(svc service.PhotoAnalysisService, metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"worker_pool": svc.Stats()}
		if metrics != nil {
			body["analyses"] = metrics.GetMetrics()
		}
		c.JSON(http.StatusOK, body)
	}
}

// Middleware and helper functions
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"component":   "transport",
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"user_agent":  c.Request.UserAgent(),
			"ip":          c.ClientIP(),
		}).Info("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func respondError(c *gin.Context, code int, message string, err error) {
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"component":   "transport",
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}

package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-shipment-verifier/internal/config"
	apperrors "go-shipment-verifier/internal/errors"
	"go-shipment-verifier/internal/logger"
	"go-shipment-verifier/internal/observer"
	"go-shipment-verifier/internal/service"
	"go-shipment-verifier/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler builds the HTTP surface over the verification service.
func NewHandler(svc service.VerificationService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	r.GET("/health", healthCheck(cfg))
	r.GET("/metrics", metricsEndpoint(metrics))
	r.POST("/compare", comparePair(svc, cfg))
	r.POST("/compare/multi-angle", compareMultiAngle(svc, cfg))
	r.POST("/compare/local", compareLocal(svc, cfg))

	return r
}

func comparePair(svc service.VerificationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CompareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		ctx, cancel := analysisContext(c, cfg)
		defer cancel()

		report, err := svc.ComparePair(ctx, &req)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "comparison failed", err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func compareMultiAngle(svc service.VerificationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.MultiAngleCompareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		ctx, cancel := analysisContext(c, cfg)
		defer cancel()

		report, err := svc.CompareMultiAngle(ctx, &req)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "multi-angle comparison failed", err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func compareLocal(svc service.VerificationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CompareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		ctx, cancel := analysisContext(c, cfg)
		defer cancel()

		report, err := svc.CompareLocal(ctx, &req)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "local comparison failed", err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func healthCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode := "remote"
		if !cfg.VisionConfigured() {
			mode = "local_fallback"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":        "available",
			"analysis_mode": mode,
			"time":          time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func metricsEndpoint(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

// Middleware and helper functions

func analysisContext(c *gin.Context, cfg *config.Config) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), cfg.AnalysisTimeout)
}

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
		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		}).Info("Request handled")
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	// Oversized bodies surface as MaxBytesError from the JSON binder
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		code = http.StatusRequestEntityTooLarge
	}

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}

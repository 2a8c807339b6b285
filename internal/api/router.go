// internal/api/router.go
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"medadmit-workers/internal/admissions"
	"medadmit-workers/internal/common/logger"
	"medadmit-workers/internal/common/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const RequestIDHeader = "X-Request-ID"

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

type Options struct {
	Service         *admissions.Service
	Logger          logger.Logger
	AllowedOrigins  []string
	Version         string
	DatasetVersion  string
	ReadinessChecks map[string]ReadinessCheck
}

// NewRouter wires the HTTP surface of the prediction service.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), instrument(log))

	corsConfig := cors.DefaultConfig()
	if allowsAll(opts.AllowedOrigins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", RequestIDHeader}
	router.Use(cors.New(corsConfig))

	h := NewHandler(opts.Service, log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"service":        "medadmit-workers",
			"version":        opts.Version,
			"datasetVersion": opts.DatasetVersion,
		})
	})
	router.GET("/ready", readiness(opts.ReadinessChecks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/predict", h.Predict)
		api.GET("/schools", h.ListSchools)
		api.POST("/schools/probabilities", h.AllSchoolProbabilities)
		api.POST("/schools/:id/probability", h.SchoolProbability)
	}

	return router
}

func allowsAll(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func instrument(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()

		log.Debug("request handled", map[string]interface{}{
			"requestId": c.GetString("requestId"),
			"method":    c.Request.Method,
			"route":     route,
			"status":    status,
			"duration":  time.Since(start).String(),
		})
	}
}

func readiness(checks map[string]ReadinessCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				ready = false
				continue
			}
			results[name] = "ok"
		}

		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"ready": ready, "checks": results})
	}
}

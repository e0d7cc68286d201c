// Package server exposes the recommendation pipeline over HTTP.
package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/ingestion"
	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/pipeline"
)

// Recommender is the part of the pipeline the handlers need.
type Recommender interface {
	FromProfile(ctx context.Context, profile *jobs.Profile) (*pipeline.Result, error)
	FromDocument(ctx context.Context, doc *ingestion.Document) (*pipeline.Result, error)
	ExtractDocument(ctx context.Context, doc *ingestion.Document) (*jobs.Profile, error)
}

// SetupRouter configures the gin engine with all routes.
func SetupRouter(recommender Recommender, logger *zap.Logger, version string) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.MaxMultipartMemory = ingestion.MaxDocumentSize

	handler := NewHandler(recommender, logger, version)

	r.GET("/health", handler.HealthCheck)

	v1 := r.Group("/api/v1")
	{
		recommendations := v1.Group("/recommendations")
		{
			recommendations.POST("/manual", handler.RecommendManual)
			recommendations.POST("/resume", handler.RecommendResume)
		}

		v1.POST("/profile/extract", handler.ExtractProfile)
	}

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

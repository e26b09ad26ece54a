package controllers

import (
	"IDMS/metrics"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// rootHandler handles requests to the root path
func rootHandler(c *gin.Context) {
	c.Status(http.StatusOK)
	if _, err := c.Writer.Write([]byte("IDMS symptom checker API")); err != nil {
		log.Error().Err(err).Msg("error writing root response")
	}
}

// healthHandler reports whether the database answers a ping.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			log.Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// SetupRootRoute registers the public routes: welcome, health check and metrics.
func SetupRootRoute(router *gin.Engine, db *gorm.DB, m *metrics.Metrics) {
	router.GET("/", rootHandler)
	router.GET("/healthz", healthHandler(db))
	router.GET("/metrics", gin.WrapH(m.Handler()))
}

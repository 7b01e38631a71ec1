package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/config"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/handler"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/middleware"
)

func newRouter(cfg *config.Config, auth *handler.AuthHandler, plans *handler.PlanHandler) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(noCacheMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limit := middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	api := router.Group("/api")
	{
		api.POST("/auth/login", limit, auth.Login)
	}

	// Limited after auth so each operator gets a separate budget
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth), limit)
	{
		protected.GET("/auth/me", auth.GetCurrentUser)
		protected.POST("/workorders/import", plans.Import)
		protected.POST("/workorders/manual", plans.Manual)
		protected.GET("/plans", plans.List)
		protected.GET("/plans/:id", plans.Get)
		protected.DELETE("/plans/:id", plans.Delete)
		protected.GET("/plans/:id/pdf", plans.Document)
	}

	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, accept, origin, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition, "+handler.ArtifactURLHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// noCacheMiddleware keeps API responses, plan documents included, out of caches
func noCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}

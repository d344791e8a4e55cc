package main

import (
	"ceartscore-platform/internal/auth"
	"ceartscore-platform/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, authz auth.Authorizer, h httpapi.Handlers) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Everything under /v1 requires a validated session token. The CSRF
	// guard sits on the same chain; it only inspects state-changing methods.
	v1 := r.Group("/v1")
	v1.Use(authz.RequireSession())
	v1.Use(authz.RequireCSRF())
	{
		v1.GET("/me", h.Me)

		files := v1.Group("/files")
		{
			files.POST("", h.UploadFile)
			files.GET("", h.ListFiles)
			files.DELETE("/:file_id", h.DeleteFile)
		}

		projects := v1.Group("/projects")
		{
			projects.GET("/:project_id/score", h.ProjectScore)
		}
	}
}

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marmgroup/atlas-best-practices/internal/config"
	"github.com/marmgroup/atlas-best-practices/internal/handler"
	"github.com/marmgroup/atlas-best-practices/internal/middleware"
	"github.com/marmgroup/atlas-best-practices/internal/repository"
	"github.com/marmgroup/atlas-best-practices/internal/service"
)

// SetupRouter wires repositories, services and handlers into the HTTP API.
func SetupRouter(cfg *config.Config, db *sql.DB) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(300, time.Minute))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Atlas residence API is running",
		})
	})

	fixRepo := repository.NewFixRepository(db)
	patchRepo := repository.NewPatchRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	fixHandler := handler.NewFixHandler(service.NewFixService(fixRepo))
	patchHandler := handler.NewPatchHandler(service.NewPatchService(patchRepo))
	taskHandler := handler.NewTaskHandler(service.NewTaskService(taskRepo, db, cfg.Workers))

	auth := middleware.Auth(cfg.JWTSecret)

	api := r.Group("/api/v1")
	{
		fixes := api.Group("/fixes")
		{
			fixes.GET("", fixHandler.GetFixes)
			fixes.GET("/tags", fixHandler.GetTags)
			fixes.POST("", auth, fixHandler.ImportFixes)
			fixes.POST("/import", auth, fixHandler.ImportFixesCSV)
		}

		patches := api.Group("/patches")
		{
			patches.GET("", patchHandler.GetPatches)
			patches.GET("/:id", patchHandler.GetPatchByID)
			patches.GET("/:id/spatial", patchHandler.GetPatchSpatial)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:uuid", taskHandler.GetTask)
			tasks.POST("", auth, taskHandler.CreateTask)
		}
	}

	return r
}

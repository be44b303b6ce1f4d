package routes

import (
	"github.com/gin-gonic/gin"

	"taskmanager/internal/handlers"
)

func SetupRoutes(
	r *gin.Engine,
	taskHandler *handlers.TaskHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {

	r.GET("/healthz", healthHandler.Check)

	// TASKS
	tasks := r.Group("/api/tasks")
	{
		tasks.POST("", taskHandler.Create)
		tasks.GET("", taskHandler.GetAll)
		tasks.GET("/stats", taskHandler.Stats)
		tasks.GET("/stats/report", taskHandler.StatsReport)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.PATCH("/:id/status", taskHandler.ChangeStatus)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	return r
}

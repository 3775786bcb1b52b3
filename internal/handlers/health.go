package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/internal/services"
)

// HealthHandler reports subsystem health.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
// GET /api/health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// In-flight lifecycle transitions
	var transitioning int64
	models.GetDB().Model(&models.ContainerService{}).
		Where("status IN ?", []string{models.ServiceStatusStarting, models.ServiceStatusStopping}).
		Count(&transitioning)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "solconf",
		"components": gin.H{
			"database":               dbStatus,
			"queue_mode":             queueMode,
			"transitioning_services": transitioning,
		},
	})
}

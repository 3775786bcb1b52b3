package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/solconf/solconf/internal/middleware"
	"github.com/solconf/solconf/internal/services"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

type ContainerServiceHandler struct {
	serviceService *services.ContainerServiceService
}

func NewContainerServiceHandler(db *gorm.DB, queue services.TaskQueue) *ContainerServiceHandler {
	return &ContainerServiceHandler{
		serviceService: services.NewContainerServiceService(db, queue),
	}
}

func (h *ContainerServiceHandler) serviceID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid service id")
		return 0, false
	}
	return uint(id), true
}

// List returns all container services
// GET /api/services
func (h *ContainerServiceHandler) List(c *gin.Context) {
	services, err := h.serviceService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, services)
}

// Get returns one container service
// GET /api/services/:id
func (h *ContainerServiceHandler) Get(c *gin.Context) {
	id, ok := h.serviceID(c)
	if !ok {
		return
	}
	svc, err := h.serviceService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, svc)
}

// Create registers a new container service
// POST /api/services
func (h *ContainerServiceHandler) Create(c *gin.Context) {
	var req services.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	svc, err := h.serviceService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, svc)
}

// Delete removes a stopped container service
// DELETE /api/services/:id
func (h *ContainerServiceHandler) Delete(c *gin.Context) {
	id, ok := h.serviceID(c)
	if !ok {
		return
	}
	if err := h.serviceService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "service deleted"})
}

// Start requests an asynchronous service start
// POST /api/services/:id/start
func (h *ContainerServiceHandler) Start(c *gin.Context) {
	id, ok := h.serviceID(c)
	if !ok {
		return
	}
	svc, err := h.serviceService.Start(id, middleware.GetUsername(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, svc)
}

// Stop requests an asynchronous service stop
// POST /api/services/:id/stop
func (h *ContainerServiceHandler) Stop(c *gin.Context) {
	id, ok := h.serviceID(c)
	if !ok {
		return
	}
	svc, err := h.serviceService.Stop(id, middleware.GetUsername(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, svc)
}

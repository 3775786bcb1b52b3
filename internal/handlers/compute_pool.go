package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/solconf/solconf/internal/services"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

type ComputePoolHandler struct {
	poolService *services.ComputePoolService
}

func NewComputePoolHandler(db *gorm.DB) *ComputePoolHandler {
	return &ComputePoolHandler{poolService: services.NewComputePoolService(db)}
}

func (h *ComputePoolHandler) poolID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid pool id")
		return 0, false
	}
	return uint(id), true
}

// List returns all compute pools
// GET /api/pools
func (h *ComputePoolHandler) List(c *gin.Context) {
	pools, err := h.poolService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pools)
}

// Get returns one compute pool
// GET /api/pools/:id
func (h *ComputePoolHandler) Get(c *gin.Context) {
	id, ok := h.poolID(c)
	if !ok {
		return
	}
	pool, err := h.poolService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pool)
}

// Create registers a new compute pool
// POST /api/pools
func (h *ComputePoolHandler) Create(c *gin.Context) {
	var req services.CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pool, err := h.poolService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pool)
}

// Update modifies pool sizing and suspend policy
// PUT /api/pools/:id
func (h *ComputePoolHandler) Update(c *gin.Context) {
	id, ok := h.poolID(c)
	if !ok {
		return
	}

	var req services.UpdatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pool, err := h.poolService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pool)
}

// Delete removes an unused compute pool
// DELETE /api/pools/:id
func (h *ComputePoolHandler) Delete(c *gin.Context) {
	id, ok := h.poolID(c)
	if !ok {
		return
	}
	if err := h.poolService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "pool deleted"})
}

// Suspend idles the pool
// POST /api/pools/:id/suspend
func (h *ComputePoolHandler) Suspend(c *gin.Context) {
	id, ok := h.poolID(c)
	if !ok {
		return
	}
	pool, err := h.poolService.Suspend(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pool)
}

// Resume activates the pool
// POST /api/pools/:id/resume
func (h *ComputePoolHandler) Resume(c *gin.Context) {
	id, ok := h.poolID(c)
	if !ok {
		return
	}
	pool, err := h.poolService.Resume(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pool)
}

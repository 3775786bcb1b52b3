package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/solconf/solconf/internal/services"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

type ParameterHandler struct {
	parameterService *services.ParameterService
	configService    *services.SystemConfigService
}

func NewParameterHandler(db *gorm.DB) *ParameterHandler {
	return &ParameterHandler{
		parameterService: services.NewParameterService(db),
		configService:    services.NewSystemConfigService(db),
	}
}

// List returns all parameters with their tags
// GET /api/parameters
func (h *ParameterHandler) List(c *gin.Context) {
	params, err := h.parameterService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, params)
}

// Get returns one parameter
// GET /api/parameters/:id
func (h *ParameterHandler) Get(c *gin.Context) {
	param, err := h.parameterService.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, param)
}

// Create adds a new parameter
// POST /api/parameters
func (h *ParameterHandler) Create(c *gin.Context) {
	var req services.CreateParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.IsSecret && !h.configService.GetFeatureFlags().SecretParameters {
		response.Forbidden(c, "secret parameters are disabled")
		return
	}

	param, err := h.parameterService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, param)
}

// Update modifies a parameter
// PUT /api/parameters/:id
func (h *ParameterHandler) Update(c *gin.Context) {
	var req services.UpdateParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	param, err := h.parameterService.Update(c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, param)
}

// Delete removes a parameter
// DELETE /api/parameters/:id
func (h *ParameterHandler) Delete(c *gin.Context) {
	if err := h.parameterService.Delete(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "parameter deleted"})
}

// Unassigned lists parameters with no owning solution
// GET /api/parameters/unassigned
func (h *ParameterHandler) Unassigned(c *gin.Context) {
	params, err := h.parameterService.Unassigned()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, params)
}

// Search filters parameters by solution, key substring, secret flag and tags
// POST /api/parameters/search
func (h *ParameterHandler) Search(c *gin.Context) {
	var req services.SearchParametersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	params, err := h.parameterService.Search(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, params)
}

// Bulk applies delete/tag/untag to a set of parameters
// POST /api/parameters/bulk
func (h *ParameterHandler) Bulk(c *gin.Context) {
	if !h.configService.GetFeatureFlags().BulkOperations {
		response.Forbidden(c, "bulk operations are disabled")
		return
	}

	var req services.BulkOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.parameterService.Bulk(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

type AssignParameterRequest struct {
	SolutionID string `json:"solution_id" binding:"required"`
}

// Assign attaches a parameter to a solution
// POST /api/parameters/:id/assign
func (h *ParameterHandler) Assign(c *gin.Context) {
	var req AssignParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	param, err := h.parameterService.Assign(c.Param("id"), req.SolutionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, param)
}

// Unassign detaches a parameter from its solution
// POST /api/parameters/:id/unassign
func (h *ParameterHandler) Unassign(c *gin.Context) {
	param, err := h.parameterService.Unassign(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, param)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/solconf/solconf/internal/services"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

type SolutionHandler struct {
	solutionService *services.SolutionService
	exportService   *services.ExportService
	configService   *services.SystemConfigService
}

func NewSolutionHandler(db *gorm.DB) *SolutionHandler {
	return &SolutionHandler{
		solutionService: services.NewSolutionService(db),
		exportService:   services.NewExportService(db),
		configService:   services.NewSystemConfigService(db),
	}
}

// List returns all solutions
// GET /api/solutions
func (h *SolutionHandler) List(c *gin.Context) {
	solutions, err := h.solutionService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, solutions)
}

// Get returns one solution with its parameters
// GET /api/solutions/:id
func (h *SolutionHandler) Get(c *gin.Context) {
	solution, err := h.solutionService.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, solution)
}

// Create adds a new solution
// POST /api/solutions
func (h *SolutionHandler) Create(c *gin.Context) {
	var req services.CreateSolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	solution, err := h.solutionService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, solution)
}

// Update modifies a solution
// PUT /api/solutions/:id
func (h *SolutionHandler) Update(c *gin.Context) {
	var req services.UpdateSolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	solution, err := h.solutionService.Update(c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, solution)
}

// Delete removes a solution; its parameters become unassigned
// DELETE /api/solutions/:id
func (h *SolutionHandler) Delete(c *gin.Context) {
	if err := h.solutionService.Delete(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "solution deleted"})
}

// Export renders the solution's configuration in the requested format
// GET /api/solutions/:id/export?format=json|yaml|env|properties
func (h *SolutionHandler) Export(c *gin.Context) {
	if !h.configService.GetFeatureFlags().SolutionExport {
		response.Forbidden(c, "solution export is disabled")
		return
	}

	result, err := h.exportService.Export(c.Param("id"), c.DefaultQuery("format", "json"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(200, result.ContentType, result.Content)
}

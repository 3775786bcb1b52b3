package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/solconf/solconf/internal/services"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(db *gorm.DB) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService: services.NewSystemConfigService(db),
	}
}

// GET /api/config/app
func (h *SystemConfigHandler) GetAppSettings(c *gin.Context) {
	response.Success(c, h.configService.GetAppSettings())
}

// PUT /api/config/app
func (h *SystemConfigHandler) UpdateAppSettings(c *gin.Context) {
	var req services.UpdateAppSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.configService.UpdateAppSettings(&req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.configService.GetAppSettings())
}

// GET /api/config/database
func (h *SystemConfigHandler) GetDatabaseSettings(c *gin.Context) {
	response.Success(c, h.configService.GetDatabaseSettings())
}

// PUT /api/config/database
func (h *SystemConfigHandler) UpdateDatabaseSettings(c *gin.Context) {
	var req services.UpdateDatabaseSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.configService.UpdateDatabaseSettings(&req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.configService.GetDatabaseSettings())
}

// GET /api/config/api
func (h *SystemConfigHandler) GetAPISettings(c *gin.Context) {
	response.Success(c, h.configService.GetAPISettings())
}

// PUT /api/config/api
func (h *SystemConfigHandler) UpdateAPISettings(c *gin.Context) {
	var req services.UpdateAPISettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.configService.UpdateAPISettings(&req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.configService.GetAPISettings())
}

// GET /api/config/features
func (h *SystemConfigHandler) GetFeatureFlags(c *gin.Context) {
	response.Success(c, h.configService.GetFeatureFlags())
}

// PUT /api/config/features
func (h *SystemConfigHandler) UpdateFeatureFlags(c *gin.Context) {
	var req services.UpdateFeatureFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.configService.UpdateFeatureFlags(&req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.configService.GetFeatureFlags())
}

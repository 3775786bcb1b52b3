package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/solconf/solconf/internal/services"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

type APIKeyHandler struct {
	apiKeyService *services.APIKeyService
}

func NewAPIKeyHandler(db *gorm.DB) *APIKeyHandler {
	return &APIKeyHandler{apiKeyService: services.NewAPIKeyService(db)}
}

// Create issues a new API key for a solution. The raw key appears in
// this response and nowhere else.
// POST /api/solutions/:id/api-keys
func (h *APIKeyHandler) Create(c *gin.Context) {
	var req services.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	created, err := h.apiKeyService.Create(c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List returns a solution's API keys with previews only
// GET /api/solutions/:id/api-keys
func (h *APIKeyHandler) List(c *gin.Context) {
	keys, err := h.apiKeyService.List(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, keys)
}

// Delete revokes an API key permanently
// DELETE /api/solutions/:id/api-keys/:keyID
func (h *APIKeyHandler) Delete(c *gin.Context) {
	if err := h.apiKeyService.Delete(c.Param("id"), c.Param("keyID")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "api key deleted"})
}

// Toggle enables or disables an API key
// PATCH /api/solutions/:id/api-keys/:keyID/toggle?is_active=true|false
func (h *APIKeyHandler) Toggle(c *gin.Context) {
	active, err := strconv.ParseBool(c.Query("is_active"))
	if err != nil {
		response.BadRequest(c, "is_active must be true or false")
		return
	}

	if err := h.apiKeyService.Toggle(c.Param("id"), c.Param("keyID"), active); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "api key updated"})
}

// PublicConfig serves a solution's configuration to API key holders,
// no session required. Secret values are redacted.
// GET /api/public/solutions/config?api_key=...&format=json|yaml|env|properties
func (h *APIKeyHandler) PublicConfig(c *gin.Context) {
	rawKey := c.Query("api_key")
	if rawKey == "" {
		response.BadRequest(c, "api_key is required")
		return
	}

	result, err := h.apiKeyService.PublicConfig(rawKey, c.DefaultQuery("format", "json"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(200, result.ContentType, result.Content)
}

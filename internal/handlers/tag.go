package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/solconf/solconf/internal/services"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

type TagHandler struct {
	tagService *services.TagService
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{tagService: services.NewTagService(db)}
}

// List returns all tags
// GET /api/tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tags)
}

// Create adds a new tag
// POST /api/tags
func (h *TagHandler) Create(c *gin.Context) {
	var req services.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tag, err := h.tagService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tag)
}

// Usage returns the number of parameters carrying the tag
// GET /api/tags/:id/usage
func (h *TagHandler) Usage(c *gin.Context) {
	tag, err := h.tagService.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	count, err := h.tagService.UsageCount(tag.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"tag": tag, "usage_count": count})
}

// Delete removes a tag and detaches it from all parameters
// DELETE /api/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	if err := h.tagService.Delete(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "tag deleted"})
}

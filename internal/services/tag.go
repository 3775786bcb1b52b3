package services

import (
	"errors"
	"regexp"

	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

// Tag names are limited to letters, digits, underscores and hyphens.
var tagNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)

// ValidateTagName reports whether name is an acceptable tag name.
func ValidateTagName(name string) bool {
	return tagNamePattern.MatchString(name)
}

type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *TagService) List() ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *TagService) Get(id string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("tag not found")
		}
		return nil, err
	}
	return &tag, nil
}

func (s *TagService) Create(req *CreateTagRequest) (*models.Tag, error) {
	if !ValidateTagName(req.Name) {
		return nil, response.NewBadRequest("invalid tag name: only letters, numbers, underscores and hyphens are allowed")
	}

	var count int64
	s.db.Model(&models.Tag{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return nil, response.NewBadRequest("Tag name already exists")
	}

	tag := models.Tag{Name: req.Name}
	if err := s.db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// UsageCount returns the number of parameters carrying the tag.
func (s *TagService) UsageCount(id string) (int64, error) {
	var count int64
	err := s.db.Table("parameter_tags").Where("tag_id = ?", id).Count(&count).Error
	return count, err
}

// Delete removes the tag and detaches it from every parameter.
func (s *TagService) Delete(id string) error {
	tag, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM parameter_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, "id = ?", tag.ID).Error
	})
}

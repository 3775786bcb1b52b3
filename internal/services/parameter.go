package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

type ParameterService struct {
	db *gorm.DB
}

func NewParameterService(db *gorm.DB) *ParameterService {
	return &ParameterService{db: db}
}

type CreateParameterRequest struct {
	Key         string   `json:"key" binding:"required"`
	Value       string   `json:"value"`
	Description string   `json:"description"`
	IsSecret    bool     `json:"is_secret"`
	SolutionID  *string  `json:"solution_id"`
	Tags        []string `json:"tags"`
}

type UpdateParameterRequest struct {
	Value       *string  `json:"value"`
	Description *string  `json:"description"`
	IsSecret    *bool    `json:"is_secret"`
	Tags        []string `json:"tags"`
}

type SearchParametersRequest struct {
	SolutionID *string  `json:"solution_id" form:"solution_id"`
	KeyPattern string   `json:"key_pattern" form:"key_pattern"`
	IsSecret   *bool    `json:"is_secret" form:"is_secret"`
	Tags       []string `json:"tags" form:"tags"`
}

// BulkOperationRequest applies one operation to a set of parameters.
// Op is one of delete, tag, untag. TagName is required for tag/untag.
type BulkOperationRequest struct {
	ParameterIDs []string `json:"parameter_ids" binding:"required"`
	Op           string   `json:"op" binding:"required"`
	TagName      string   `json:"tag_name"`
}

type BulkOperationResult struct {
	Affected int      `json:"affected"`
	Errors   []string `json:"errors,omitempty"`
}

func (s *ParameterService) List() ([]models.Parameter, error) {
	var params []models.Parameter
	if err := s.db.Preload("Tags").Order("key").Find(&params).Error; err != nil {
		return nil, err
	}
	return params, nil
}

func (s *ParameterService) Get(id string) (*models.Parameter, error) {
	var param models.Parameter
	if err := s.db.Preload("Tags").First(&param, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("parameter not found")
		}
		return nil, err
	}
	return &param, nil
}

func (s *ParameterService) Create(req *CreateParameterRequest) (*models.Parameter, error) {
	var count int64
	s.db.Model(&models.Parameter{}).Where("`key` = ?", req.Key).Count(&count)
	if count > 0 {
		return nil, response.NewBadRequest("parameter key already exists")
	}

	if req.SolutionID != nil {
		if err := s.checkSolutionExists(*req.SolutionID); err != nil {
			return nil, err
		}
	}

	tags, err := s.resolveTags(req.Tags)
	if err != nil {
		return nil, err
	}

	param := models.Parameter{
		Key:         req.Key,
		Value:       req.Value,
		Description: req.Description,
		IsSecret:    req.IsSecret,
		SolutionID:  req.SolutionID,
		Tags:        tags,
	}
	if err := s.db.Create(&param).Error; err != nil {
		return nil, err
	}
	return s.Get(param.ID)
}

func (s *ParameterService) Update(id string, req *UpdateParameterRequest) (*models.Parameter, error) {
	param, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Value != nil {
		updates["value"] = *req.Value
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsSecret != nil {
		updates["is_secret"] = *req.IsSecret
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Parameter{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if req.Tags != nil {
		tags, err := s.resolveTags(req.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(param).Association("Tags").Replace(tags); err != nil {
			return nil, err
		}
	}

	return s.Get(id)
}

func (s *ParameterService) Delete(id string) error {
	param, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM parameter_tags WHERE parameter_id = ?", param.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Parameter{}, "id = ?", param.ID).Error
	})
}

// Unassigned lists parameters not attached to any solution.
func (s *ParameterService) Unassigned() ([]models.Parameter, error) {
	var params []models.Parameter
	if err := s.db.Preload("Tags").Where("solution_id IS NULL").Order("key").Find(&params).Error; err != nil {
		return nil, err
	}
	return params, nil
}

// Search filters parameters by owning solution, key substring, secret flag
// and tag names. A parameter must carry every requested tag to match.
func (s *ParameterService) Search(req *SearchParametersRequest) ([]models.Parameter, error) {
	query := s.db.Model(&models.Parameter{}).Preload("Tags")

	if req.SolutionID != nil {
		if *req.SolutionID == "" {
			query = query.Where("solution_id IS NULL")
		} else {
			query = query.Where("solution_id = ?", *req.SolutionID)
		}
	}
	if req.KeyPattern != "" {
		query = query.Where("`key` LIKE ?", "%"+req.KeyPattern+"%")
	}
	if req.IsSecret != nil {
		query = query.Where("is_secret = ?", *req.IsSecret)
	}
	for _, tagName := range req.Tags {
		name := strings.TrimSpace(tagName)
		if name == "" {
			continue
		}
		query = query.Where(
			"id IN (SELECT parameter_id FROM parameter_tags pt JOIN tags t ON pt.tag_id = t.id WHERE t.name = ?)",
			name,
		)
	}

	var params []models.Parameter
	if err := query.Order("key").Find(&params).Error; err != nil {
		return nil, err
	}
	return params, nil
}

// Bulk applies delete, tag or untag to each parameter in the request.
// Failures on individual parameters are collected, not fatal.
func (s *ParameterService) Bulk(req *BulkOperationRequest) (*BulkOperationResult, error) {
	switch req.Op {
	case "delete", "tag", "untag":
	default:
		return nil, response.NewBadRequest("unsupported bulk operation: " + req.Op)
	}

	var tag *models.Tag
	if req.Op == "tag" || req.Op == "untag" {
		if req.TagName == "" {
			return nil, response.NewBadRequest("tag_name is required for tag/untag operations")
		}
		t, err := s.getOrCreateTag(req.TagName)
		if err != nil {
			return nil, err
		}
		tag = t
	}

	result := &BulkOperationResult{}
	for _, id := range req.ParameterIDs {
		param, err := s.Get(id)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: not found", id))
			continue
		}

		var opErr error
		switch req.Op {
		case "delete":
			opErr = s.Delete(param.ID)
		case "tag":
			opErr = s.db.Model(param).Association("Tags").Append(tag)
		case "untag":
			opErr = s.db.Model(param).Association("Tags").Delete(tag)
		}
		if opErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, opErr))
			continue
		}
		result.Affected++
	}
	return result, nil
}

// Assign attaches the parameter to a solution, replacing any previous owner.
func (s *ParameterService) Assign(paramID, solutionID string) (*models.Parameter, error) {
	if _, err := s.Get(paramID); err != nil {
		return nil, err
	}
	if err := s.checkSolutionExists(solutionID); err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Parameter{}).
		Where("id = ?", paramID).
		Update("solution_id", solutionID).Error; err != nil {
		return nil, err
	}
	return s.Get(paramID)
}

// Unassign detaches the parameter from its solution.
func (s *ParameterService) Unassign(paramID string) (*models.Parameter, error) {
	if _, err := s.Get(paramID); err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Parameter{}).
		Where("id = ?", paramID).
		Update("solution_id", nil).Error; err != nil {
		return nil, err
	}
	return s.Get(paramID)
}

func (s *ParameterService) checkSolutionExists(id string) error {
	var count int64
	s.db.Model(&models.Solution{}).Where("id = ?", id).Count(&count)
	if count == 0 {
		return response.NewNotFound("solution not found")
	}
	return nil
}

func (s *ParameterService) getOrCreateTag(name string) (*models.Tag, error) {
	if !ValidateTagName(name) {
		return nil, response.NewBadRequest("invalid tag name: only letters, numbers, underscores and hyphens are allowed")
	}

	var tag models.Tag
	err := s.db.Where("name = ?", name).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tag = models.Tag{Name: name}
		if err := s.db.Create(&tag).Error; err != nil {
			return nil, err
		}
		return &tag, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *ParameterService) resolveTags(names []string) ([]models.Tag, error) {
	var tags []models.Tag
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tag, err := s.getOrCreateTag(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

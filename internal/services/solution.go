package services

import (
	"errors"

	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

type SolutionService struct {
	db *gorm.DB
}

func NewSolutionService(db *gorm.DB) *SolutionService {
	return &SolutionService{db: db}
}

type CreateSolutionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateSolutionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *SolutionService) List() ([]models.Solution, error) {
	var solutions []models.Solution
	if err := s.db.Order("name").Find(&solutions).Error; err != nil {
		return nil, err
	}
	return solutions, nil
}

// Get returns a solution with its parameters and their tags preloaded.
func (s *SolutionService) Get(id string) (*models.Solution, error) {
	var solution models.Solution
	err := s.db.Preload("Parameters.Tags").First(&solution, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("solution not found")
		}
		return nil, err
	}
	return &solution, nil
}

func (s *SolutionService) Create(req *CreateSolutionRequest) (*models.Solution, error) {
	var count int64
	s.db.Model(&models.Solution{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return nil, response.NewBadRequest("solution name already exists")
	}

	solution := models.Solution{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.db.Create(&solution).Error; err != nil {
		return nil, err
	}
	return &solution, nil
}

func (s *SolutionService) Update(id string, req *UpdateSolutionRequest) (*models.Solution, error) {
	solution, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != solution.Name {
		var count int64
		s.db.Model(&models.Solution{}).Where("name = ? AND id <> ?", *req.Name, id).Count(&count)
		if count > 0 {
			return nil, response.NewBadRequest("solution name already exists")
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Solution{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(id)
}

// Delete removes the solution. Parameters assigned to it become unassigned
// rather than being deleted with it.
func (s *SolutionService) Delete(id string) error {
	solution, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Parameter{}).
			Where("solution_id = ?", solution.ID).
			Update("solution_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Solution{}, "id = ?", solution.ID).Error
	})
}

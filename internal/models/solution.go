package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Solution is a named grouping of configuration parameters.
type Solution struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	Name        string      `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Parameters  []Parameter `gorm:"foreignKey:SolutionID" json:"parameters,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (Solution) TableName() string { return "solutions" }

func (s *Solution) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

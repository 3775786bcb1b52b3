package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Parameter is a key/value configuration entry, optionally secret.
// A parameter belongs to at most one solution and may carry any number of tags.
type Parameter struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	SolutionID  *string   `gorm:"size:36;index" json:"solution_id"`
	Key         string    `gorm:"uniqueIndex;size:255;not null" json:"key"`
	Value       string    `gorm:"type:text" json:"value"`
	Description string    `gorm:"type:text" json:"description"`
	IsSecret    bool      `gorm:"default:false" json:"is_secret"`
	Tags        []Tag     `gorm:"many2many:parameter_tags" json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Parameter) TableName() string { return "parameters" }

func (p *Parameter) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

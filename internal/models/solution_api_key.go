package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SolutionAPIKey grants unauthenticated read access to one solution's
// rendered configuration through the public config endpoint. The raw
// key is shown once at creation and never serialized afterwards.
type SolutionAPIKey struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	SolutionID string     `gorm:"size:36;not null;index" json:"solution_id"`
	KeyName    string     `gorm:"size:255;not null" json:"key_name"`
	APIKey     string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	IsActive   bool       `json:"is_active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsed   *time.Time `json:"last_used,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (SolutionAPIKey) TableName() string { return "solution_api_keys" }

func (k *SolutionAPIKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}

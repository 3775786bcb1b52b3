package models

import "time"

// Container service lifecycle states.
const (
	ServiceStatusPending   = "PENDING"
	ServiceStatusStarting  = "STARTING"
	ServiceStatusRunning   = "RUNNING"
	ServiceStatusStopping  = "STOPPING"
	ServiceStatusSuspended = "SUSPENDED"
	ServiceStatusFailed    = "FAILED"
)

// ContainerService is a containerized workload running on a compute pool.
// Start/stop requests are processed asynchronously by the lifecycle worker.
type ContainerService struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"uniqueIndex;size:255;not null" json:"name"`
	ComputePool  string     `gorm:"size:255;not null;index" json:"compute_pool"`
	Status       string     `gorm:"size:20;default:PENDING" json:"status"`
	Spec         string     `gorm:"type:text" json:"spec"` // YAML service specification
	MinInstances int        `gorm:"default:1" json:"min_instances"`
	MaxInstances int        `gorm:"default:1" json:"max_instances"`
	EndpointURL  string     `gorm:"size:500" json:"endpoint_url,omitempty"`
	DNSName      string     `gorm:"size:255" json:"dns_name,omitempty"`
	LastError    string     `gorm:"size:500" json:"last_error,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (ContainerService) TableName() string { return "container_services" }

package models

import "time"

// Compute pool states.
const (
	PoolStateActive    = "ACTIVE"
	PoolStateStarting  = "STARTING"
	PoolStateStopping  = "STOPPING"
	PoolStateSuspended = "SUSPENDED"
)

// ComputePool is a named set of compute nodes that container services run on.
// Pools with AutoSuspendSecs > 0 are suspended by the idle sweep once no
// service has been active on them past the deadline.
type ComputePool struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"uniqueIndex;size:255;not null" json:"name"`
	State           string     `gorm:"size:20;default:SUSPENDED" json:"state"`
	MinNodes        int        `gorm:"default:1" json:"min_nodes"`
	MaxNodes        int        `gorm:"default:1" json:"max_nodes"`
	InstanceFamily  string     `gorm:"size:100" json:"instance_family"`
	// No default tag here: gorm drops zero-value fields that carry one
	// from the INSERT, which would make auto_resume=false unstorable.
	// The create path sets the value explicitly.
	AutoResume      bool       `json:"auto_resume"`
	AutoSuspendSecs int        `gorm:"default:0" json:"auto_suspend_secs"` // 0 disables auto-suspend
	LastActiveAt    *time.Time `json:"last_active_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (ComputePool) TableName() string { return "compute_pools" }

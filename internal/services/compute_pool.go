package services

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/pkg/logger"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

type ComputePoolService struct {
	db *gorm.DB
}

func NewComputePoolService(db *gorm.DB) *ComputePoolService {
	return &ComputePoolService{db: db}
}

type CreatePoolRequest struct {
	Name            string `json:"name" binding:"required"`
	MinNodes        int    `json:"min_nodes"`
	MaxNodes        int    `json:"max_nodes"`
	InstanceFamily  string `json:"instance_family"`
	AutoResume      *bool  `json:"auto_resume"`
	AutoSuspendSecs int    `json:"auto_suspend_secs"`
}

type UpdatePoolRequest struct {
	MinNodes        *int  `json:"min_nodes"`
	MaxNodes        *int  `json:"max_nodes"`
	AutoResume      *bool `json:"auto_resume"`
	AutoSuspendSecs *int  `json:"auto_suspend_secs"`
}

func (s *ComputePoolService) List() ([]models.ComputePool, error) {
	var pools []models.ComputePool
	if err := s.db.Order("name").Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}

func (s *ComputePoolService) Get(id uint) (*models.ComputePool, error) {
	var pool models.ComputePool
	if err := s.db.First(&pool, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("compute pool not found")
		}
		return nil, err
	}
	return &pool, nil
}

func (s *ComputePoolService) GetByName(name string) (*models.ComputePool, error) {
	var pool models.ComputePool
	if err := s.db.Where("name = ?", name).First(&pool).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("compute pool not found")
		}
		return nil, err
	}
	return &pool, nil
}

func (s *ComputePoolService) Create(req *CreatePoolRequest) (*models.ComputePool, error) {
	var count int64
	s.db.Model(&models.ComputePool{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return nil, response.NewBadRequest("compute pool name already exists")
	}

	minNodes := req.MinNodes
	if minNodes <= 0 {
		minNodes = 1
	}
	maxNodes := req.MaxNodes
	if maxNodes < minNodes {
		maxNodes = minNodes
	}
	autoResume := true
	if req.AutoResume != nil {
		autoResume = *req.AutoResume
	}

	pool := models.ComputePool{
		Name:            req.Name,
		State:           models.PoolStateSuspended,
		MinNodes:        minNodes,
		MaxNodes:        maxNodes,
		InstanceFamily:  req.InstanceFamily,
		AutoResume:      autoResume,
		AutoSuspendSecs: req.AutoSuspendSecs,
	}
	if err := s.db.Create(&pool).Error; err != nil {
		return nil, err
	}
	return &pool, nil
}

func (s *ComputePoolService) Update(id uint, req *UpdatePoolRequest) (*models.ComputePool, error) {
	pool, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.MinNodes != nil && *req.MinNodes > 0 {
		updates["min_nodes"] = *req.MinNodes
	}
	if req.MaxNodes != nil && *req.MaxNodes > 0 {
		updates["max_nodes"] = *req.MaxNodes
	}
	if req.AutoResume != nil {
		updates["auto_resume"] = *req.AutoResume
	}
	if req.AutoSuspendSecs != nil {
		updates["auto_suspend_secs"] = *req.AutoSuspendSecs
	}

	if len(updates) > 0 {
		if err := s.db.Model(pool).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(id)
}

// Delete refuses when any container service still references the pool.
func (s *ComputePoolService) Delete(id uint) error {
	pool, err := s.Get(id)
	if err != nil {
		return err
	}

	var count int64
	s.db.Model(&models.ContainerService{}).Where("compute_pool = ?", pool.Name).Count(&count)
	if count > 0 {
		return response.NewBadRequest("compute pool is in use by container services")
	}

	return s.db.Delete(&models.ComputePool{}, pool.ID).Error
}

// Suspend refuses while services are running or starting on the pool.
func (s *ComputePoolService) Suspend(id uint) (*models.ComputePool, error) {
	pool, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if pool.State == models.PoolStateSuspended {
		return pool, nil
	}

	var active int64
	s.db.Model(&models.ContainerService{}).
		Where("compute_pool = ? AND status IN ?", pool.Name,
			[]string{models.ServiceStatusRunning, models.ServiceStatusStarting}).
		Count(&active)
	if active > 0 {
		return nil, response.NewBadRequest("compute pool has active services")
	}

	if err := s.db.Model(pool).Update("state", models.PoolStateSuspended).Error; err != nil {
		return nil, err
	}
	pool.State = models.PoolStateSuspended
	return pool, nil
}

func (s *ComputePoolService) Resume(id uint) (*models.ComputePool, error) {
	pool, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if pool.State == models.PoolStateActive {
		return pool, nil
	}

	now := time.Now()
	if err := s.db.Model(pool).Updates(map[string]interface{}{
		"state":          models.PoolStateActive,
		"last_active_at": now,
	}).Error; err != nil {
		return nil, err
	}
	pool.State = models.PoolStateActive
	pool.LastActiveAt = &now
	return pool, nil
}

// TouchActivity records pool activity so the idle sweep does not
// suspend a pool that recently did work. Errors are deliberately
// swallowed; activity tracking is best effort.
func (s *ComputePoolService) TouchActivity(name string) {
	now := time.Now()
	s.db.Model(&models.ComputePool{}).
		Where("name = ?", name).
		Update("last_active_at", now)
}

// SweepIdlePools suspends active pools whose auto-suspend deadline has
// passed and which have no running or starting services. Returns the
// number of pools suspended.
func (s *ComputePoolService) SweepIdlePools() (int, error) {
	var pools []models.ComputePool
	if err := s.db.Where("state = ? AND auto_suspend_secs > 0", models.PoolStateActive).Find(&pools).Error; err != nil {
		return 0, err
	}

	suspended := 0
	now := time.Now()
	for _, pool := range pools {
		lastActive := pool.UpdatedAt
		if pool.LastActiveAt != nil {
			lastActive = *pool.LastActiveAt
		}
		deadline := lastActive.Add(time.Duration(pool.AutoSuspendSecs) * time.Second)
		if now.Before(deadline) {
			continue
		}

		var active int64
		s.db.Model(&models.ContainerService{}).
			Where("compute_pool = ? AND status IN ?", pool.Name,
				[]string{models.ServiceStatusRunning, models.ServiceStatusStarting}).
			Count(&active)
		if active > 0 {
			continue
		}

		if err := s.db.Model(&pool).Update("state", models.PoolStateSuspended).Error; err != nil {
			logger.Infof("[PoolSweep] Failed to suspend pool %s: %v", pool.Name, err)
			continue
		}
		logger.Infof("[PoolSweep] Pool %s suspended after %ds idle", pool.Name, pool.AutoSuspendSecs)
		suspended++
	}
	return suspended, nil
}

// StartPoolSweepScheduler runs the idle sweep once a minute.
func StartPoolSweepScheduler(db *gorm.DB) *cron.Cron {
	svc := NewComputePoolService(db)
	c := cron.New()
	c.AddFunc("* * * * *", func() {
		if _, err := svc.SweepIdlePools(); err != nil {
			logger.Infof("[PoolSweep] Sweep failed: %v", err)
		}
	})
	c.Start()
	return c
}

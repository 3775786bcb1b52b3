package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/pkg/logger"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
	"gopkg.in/yaml.v3"
)

type ContainerServiceService struct {
	db      *gorm.DB
	queue   TaskQueue
	poolSvc *ComputePoolService
}

func NewContainerServiceService(db *gorm.DB, queue TaskQueue) *ContainerServiceService {
	return &ContainerServiceService{
		db:      db,
		queue:   queue,
		poolSvc: NewComputePoolService(db),
	}
}

type CreateServiceRequest struct {
	Name         string `json:"name" binding:"required"`
	ComputePool  string `json:"compute_pool" binding:"required"`
	Spec         string `json:"spec"`
	MinInstances int    `json:"min_instances"`
	MaxInstances int    `json:"max_instances"`
}

func (s *ContainerServiceService) List() ([]models.ContainerService, error) {
	var services []models.ContainerService
	if err := s.db.Order("name").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (s *ContainerServiceService) Get(id uint) (*models.ContainerService, error) {
	var svc models.ContainerService
	if err := s.db.First(&svc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("service not found")
		}
		return nil, err
	}
	return &svc, nil
}

func (s *ContainerServiceService) GetByName(name string) (*models.ContainerService, error) {
	var svc models.ContainerService
	if err := s.db.Where("name = ?", name).First(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("service not found")
		}
		return nil, err
	}
	return &svc, nil
}

func (s *ContainerServiceService) Create(req *CreateServiceRequest) (*models.ContainerService, error) {
	// Service names follow DNS label rules internally, so hyphens in
	// user input are normalized to underscores for the stored name.
	name := strings.ReplaceAll(strings.TrimSpace(req.Name), "-", "_")
	if name == "" {
		return nil, response.NewBadRequest("service name is required")
	}

	if _, err := s.poolSvc.GetByName(req.ComputePool); err != nil {
		return nil, err
	}

	if req.Spec != "" {
		var parsed map[string]interface{}
		if err := yaml.Unmarshal([]byte(req.Spec), &parsed); err != nil {
			return nil, response.NewBadRequest("invalid service spec: " + err.Error())
		}
	}

	var count int64
	s.db.Model(&models.ContainerService{}).Where("name = ?", name).Count(&count)
	if count > 0 {
		return nil, response.NewBadRequest("service name already exists")
	}

	minInstances := req.MinInstances
	if minInstances <= 0 {
		minInstances = 1
	}
	maxInstances := req.MaxInstances
	if maxInstances < minInstances {
		maxInstances = minInstances
	}

	svc := models.ContainerService{
		Name:         name,
		ComputePool:  req.ComputePool,
		Status:       models.ServiceStatusPending,
		Spec:         req.Spec,
		MinInstances: minInstances,
		MaxInstances: maxInstances,
	}
	if err := s.db.Create(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *ContainerServiceService) Delete(id uint) error {
	svc, err := s.Get(id)
	if err != nil {
		return err
	}
	if svc.Status == models.ServiceStatusRunning || svc.Status == models.ServiceStatusStarting {
		return response.NewBadRequest("service must be stopped before deletion")
	}
	return s.db.Delete(&models.ContainerService{}, svc.ID).Error
}

// Start requests an async start of the service. The actual state change
// is applied by the lifecycle processor.
func (s *ContainerServiceService) Start(id uint, requestedBy string) (*models.ContainerService, error) {
	svc, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	switch svc.Status {
	case models.ServiceStatusRunning, models.ServiceStatusStarting:
		return nil, response.NewBadRequest("service is already " + strings.ToLower(svc.Status))
	}

	if err := s.db.Model(svc).Updates(map[string]interface{}{
		"status":     models.ServiceStatusStarting,
		"last_error": "",
	}).Error; err != nil {
		return nil, err
	}
	svc.Status = models.ServiceStatusStarting

	if err := s.queue.Enqueue(&LifecycleTask{
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Op:          LifecycleOpStart,
		RequestedBy: requestedBy,
	}); err != nil {
		return nil, err
	}
	return svc, nil
}

// Stop requests an async stop of the service.
func (s *ContainerServiceService) Stop(id uint, requestedBy string) (*models.ContainerService, error) {
	svc, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	switch svc.Status {
	case models.ServiceStatusSuspended, models.ServiceStatusStopping, models.ServiceStatusPending:
		return nil, response.NewBadRequest("service is not running")
	}

	if err := s.db.Model(svc).Update("status", models.ServiceStatusStopping).Error; err != nil {
		return nil, err
	}
	svc.Status = models.ServiceStatusStopping

	if err := s.queue.Enqueue(&LifecycleTask{
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Op:          LifecycleOpStop,
		RequestedBy: requestedBy,
	}); err != nil {
		return nil, err
	}
	return svc, nil
}

// ProcessLifecycle applies a queued start/stop to the service record.
// It is invoked by the async worker or, without Redis, by the sync queue.
func (s *ContainerServiceService) ProcessLifecycle(ctx context.Context, task *LifecycleTask) error {
	svc, err := s.Get(task.ServiceID)
	if err != nil {
		return err
	}

	switch task.Op {
	case LifecycleOpStart:
		return s.applyStart(svc)
	case LifecycleOpStop:
		return s.applyStop(svc)
	default:
		return fmt.Errorf("unknown lifecycle op: %s", task.Op)
	}
}

func (s *ContainerServiceService) applyStart(svc *models.ContainerService) error {
	// Starting a service on a suspended pool resumes the pool first
	// when the pool allows auto-resume.
	pool, err := s.poolSvc.GetByName(svc.ComputePool)
	if err != nil {
		return s.markFailed(svc, "compute pool not found: "+svc.ComputePool)
	}
	if pool.State == models.PoolStateSuspended {
		if !pool.AutoResume {
			return s.markFailed(svc, "compute pool is suspended and auto-resume is disabled")
		}
		if _, err := s.poolSvc.Resume(pool.ID); err != nil {
			return s.markFailed(svc, "failed to resume compute pool: "+err.Error())
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.ServiceStatusRunning,
		"started_at":   now,
		"endpoint_url": fmt.Sprintf("https://%s.services.solconf.internal", svc.Name),
		"dns_name":     fmt.Sprintf("%s.%s.svc", svc.Name, strings.ToLower(svc.ComputePool)),
		"last_error":   "",
	}
	if err := s.db.Model(svc).Updates(updates).Error; err != nil {
		return err
	}

	s.poolSvc.TouchActivity(svc.ComputePool)
	logger.Infof("[Lifecycle] Service %s is running on pool %s", svc.Name, svc.ComputePool)
	return nil
}

func (s *ContainerServiceService) applyStop(svc *models.ContainerService) error {
	updates := map[string]interface{}{
		"status":       models.ServiceStatusSuspended,
		"endpoint_url": "",
		"started_at":   nil,
	}
	if err := s.db.Model(svc).Updates(updates).Error; err != nil {
		return err
	}

	s.poolSvc.TouchActivity(svc.ComputePool)
	logger.Infof("[Lifecycle] Service %s suspended", svc.Name)
	return nil
}

func (s *ContainerServiceService) markFailed(svc *models.ContainerService, reason string) error {
	logger.Infof("[Lifecycle] Service %s failed: %s", svc.Name, reason)
	return s.db.Model(svc).Updates(map[string]interface{}{
		"status":     models.ServiceStatusFailed,
		"last_error": reason,
	}).Error
}

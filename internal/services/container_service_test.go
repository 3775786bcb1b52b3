package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

// newLifecycleEnv wires a container service layer to a sync queue whose
// processor applies lifecycle transitions immediately, mirroring the
// no-Redis server configuration.
func newLifecycleEnv(t *testing.T) (*gorm.DB, *ContainerServiceService, *ComputePoolService) {
	t.Helper()
	db := newTestDB(t)
	queue := NewSyncQueue()
	svc := NewContainerServiceService(db, queue)
	queue.SetProcessor(func(ctx context.Context, task *LifecycleTask) error {
		return svc.ProcessLifecycle(ctx, task)
	})
	return db, svc, NewComputePoolService(db)
}

// waitForStatus polls until the sync queue's goroutine has applied the
// lifecycle transition.
func waitForStatus(t *testing.T, svc *ContainerServiceService, id uint, want string) *models.ContainerService {
	t.Helper()
	var got *models.ContainerService
	var err error
	for i := 0; i < 200; i++ {
		got, err = svc.Get(id)
		if err == nil && got.Status == want {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	t.Fatalf("service status = %q, want %q", got.Status, want)
	return nil
}

func TestContainerServiceService_CreateNormalizesName(t *testing.T) {
	_, svc, poolSvc := newLifecycleEnv(t)
	seedPool(t, poolSvc, &CreatePoolRequest{Name: "workers"})

	created, err := svc.Create(&CreateServiceRequest{Name: "billing-api", ComputePool: "workers"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Name != "billing_api" {
		t.Errorf("Name = %q, want hyphens normalized to underscores", created.Name)
	}
	if created.Status != models.ServiceStatusPending {
		t.Errorf("Status = %q, want %q", created.Status, models.ServiceStatusPending)
	}
	if created.MinInstances != 1 || created.MaxInstances != 1 {
		t.Errorf("instance bounds = %d/%d, want 1/1", created.MinInstances, created.MaxInstances)
	}
}

func TestContainerServiceService_CreateValidation(t *testing.T) {
	_, svc, poolSvc := newLifecycleEnv(t)
	seedPool(t, poolSvc, &CreatePoolRequest{Name: "workers"})

	t.Run("unknown pool", func(t *testing.T) {
		_, err := svc.Create(&CreateServiceRequest{Name: "a", ComputePool: "ghost"})
		var appErr *response.AppError
		if !errors.As(err, &appErr) || appErr.HTTPStatus != 404 {
			t.Errorf("unknown pool should yield a 404 AppError, got %v", err)
		}
	})

	t.Run("malformed spec", func(t *testing.T) {
		_, err := svc.Create(&CreateServiceRequest{
			Name:        "a",
			ComputePool: "workers",
			Spec:        "image: [unclosed",
		})
		var appErr *response.AppError
		if !errors.As(err, &appErr) || appErr.HTTPStatus != 400 {
			t.Errorf("malformed spec should yield a 400 AppError, got %v", err)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		if _, err := svc.Create(&CreateServiceRequest{Name: "dup", ComputePool: "workers"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		_, err := svc.Create(&CreateServiceRequest{Name: "dup", ComputePool: "workers"})
		var appErr *response.AppError
		if !errors.As(err, &appErr) || appErr.HTTPStatus != 400 {
			t.Errorf("duplicate name should yield a 400 AppError, got %v", err)
		}
	})
}

func TestContainerServiceService_StartStopLifecycle(t *testing.T) {
	_, svc, poolSvc := newLifecycleEnv(t)
	pool := seedPool(t, poolSvc, &CreatePoolRequest{Name: "workers"})
	if _, err := poolSvc.Resume(pool.ID); err != nil {
		t.Fatalf("Resume: %v", err)
	}

	created, err := svc.Create(&CreateServiceRequest{Name: "billing_api", ComputePool: "workers"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Start(created.ID, "admin"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	running := waitForStatus(t, svc, created.ID, models.ServiceStatusRunning)
	if running.EndpointURL == "" || running.DNSName == "" {
		t.Errorf("running service should expose endpoint and dns name, got %+v", running)
	}
	if running.StartedAt == nil {
		t.Error("running service should record StartedAt")
	}

	// A second start while running is refused
	if _, err := svc.Start(created.ID, "admin"); err == nil {
		t.Error("starting a running service should be refused")
	}

	if _, err := svc.Stop(created.ID, "admin"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	stopped := waitForStatus(t, svc, created.ID, models.ServiceStatusSuspended)
	if stopped.EndpointURL != "" {
		t.Errorf("suspended service should not keep an endpoint, got %q", stopped.EndpointURL)
	}
	if stopped.StartedAt != nil {
		t.Error("suspended service should clear StartedAt")
	}

	// Stopping an already suspended service is refused
	if _, err := svc.Stop(created.ID, "admin"); err == nil {
		t.Error("stopping a suspended service should be refused")
	}
}

func TestContainerServiceService_StartResumesSuspendedPool(t *testing.T) {
	_, svc, poolSvc := newLifecycleEnv(t)
	pool := seedPool(t, poolSvc, &CreatePoolRequest{Name: "workers"})
	if pool.State != models.PoolStateSuspended {
		t.Fatalf("pool should start suspended, got %q", pool.State)
	}

	created, err := svc.Create(&CreateServiceRequest{Name: "billing_api", ComputePool: "workers"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Start(created.ID, "admin"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForStatus(t, svc, created.ID, models.ServiceStatusRunning)

	pool, err = poolSvc.Get(pool.ID)
	if err != nil {
		t.Fatalf("Get pool: %v", err)
	}
	if pool.State != models.PoolStateActive {
		t.Errorf("pool state = %q, start should auto-resume the pool", pool.State)
	}
}

func TestContainerServiceService_StartFailsWithoutAutoResume(t *testing.T) {
	_, svc, poolSvc := newLifecycleEnv(t)
	autoResume := false
	seedPool(t, poolSvc, &CreatePoolRequest{Name: "workers", AutoResume: &autoResume})

	created, err := svc.Create(&CreateServiceRequest{Name: "billing_api", ComputePool: "workers"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Start(created.ID, "admin"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	failed := waitForStatus(t, svc, created.ID, models.ServiceStatusFailed)
	if failed.LastError == "" {
		t.Error("failed service should record the failure reason")
	}
}

func TestContainerServiceService_DeleteRefusedWhileActive(t *testing.T) {
	db, svc, poolSvc := newLifecycleEnv(t)
	seedPool(t, poolSvc, &CreatePoolRequest{Name: "workers"})

	created, err := svc.Create(&CreateServiceRequest{Name: "billing_api", ComputePool: "workers"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := db.Model(created).Update("status", models.ServiceStatusRunning).Error; err != nil {
		t.Fatalf("force running: %v", err)
	}

	err = svc.Delete(created.ID)
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 400 {
		t.Errorf("deleting a running service should yield a 400 AppError, got %v", err)
	}

	if err := db.Model(created).Update("status", models.ServiceStatusSuspended).Error; err != nil {
		t.Fatalf("force suspended: %v", err)
	}
	if err := svc.Delete(created.ID); err != nil {
		t.Errorf("Delete after stop: %v", err)
	}
}

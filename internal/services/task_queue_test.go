package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestTaskTypeLifecycle_Constant(t *testing.T) {
	if TaskTypeLifecycle != "service:lifecycle" {
		t.Errorf("TaskTypeLifecycle = %q, expected %q", TaskTypeLifecycle, "service:lifecycle")
	}
}

func TestLifecycleTask_Structure(t *testing.T) {
	task := LifecycleTask{
		ServiceID:   7,
		ServiceName: "billing_api",
		Op:          LifecycleOpStart,
		RequestedBy: "admin",
	}

	if task.ServiceID != 7 {
		t.Errorf("ServiceID = %d, expected 7", task.ServiceID)
	}
	if task.ServiceName != "billing_api" {
		t.Errorf("ServiceName = %q, expected %q", task.ServiceName, "billing_api")
	}
	if task.Op != "start" {
		t.Errorf("Op = %q, expected %q", task.Op, "start")
	}
	if task.RequestedBy != "admin" {
		t.Errorf("RequestedBy = %q, expected %q", task.RequestedBy, "admin")
	}
}

func TestSyncQueue_New(t *testing.T) {
	queue := NewSyncQueue()
	if queue == nil {
		t.Error("NewSyncQueue should not return nil")
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	queue := NewSyncQueue()
	if queue.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
}

func TestSyncQueue_Close(t *testing.T) {
	queue := NewSyncQueue()
	err := queue.Close()
	if err != nil {
		t.Errorf("SyncQueue.Close() should return nil, got %v", err)
	}
}

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	queue := NewSyncQueue()
	task := &LifecycleTask{ServiceID: 1, Op: LifecycleOpStop}

	err := queue.Enqueue(task)
	if err != nil {
		t.Errorf("Enqueue without processor should not error, got %v", err)
	}
}

func TestSyncQueue_EnqueueRunsProcessor(t *testing.T) {
	queue := NewSyncQueue()

	var mu sync.Mutex
	var got *LifecycleTask
	done := make(chan struct{})

	queue.SetProcessor(func(ctx context.Context, task *LifecycleTask) error {
		mu.Lock()
		got = task
		mu.Unlock()
		close(done)
		return nil
	})

	if err := queue.Enqueue(&LifecycleTask{ServiceID: 3, Op: LifecycleOpStart}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processor was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if got == nil || got.ServiceID != 3 || got.Op != LifecycleOpStart {
		t.Errorf("processor received %+v", got)
	}
}

func TestAsyncQueue_IsAsync(t *testing.T) {
	queue := &AsyncQueue{}
	if !queue.IsAsync() {
		t.Error("AsyncQueue.IsAsync() should return true")
	}
}

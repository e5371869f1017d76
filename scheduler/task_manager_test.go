package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pricelens/models"
)

func waitForTask(t *testing.T, tm *TaskManager, id string) *models.ComparisonTask {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		task, ok := tm.GetTask(id)
		if !ok {
			t.Fatalf("task %s disappeared", id)
		}
		if task.IsCompleted() {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %s did not complete in time", id)
	return nil
}

func TestTaskManagerCompletesTask(t *testing.T) {
	compare := func(_ context.Context, brand, product string) (*models.ComparisonResult, error) {
		return &models.ComparisonResult{
			ID:          "cmp_test",
			BrandName:   brand,
			ProductName: product,
			Entries: map[string]models.RegionalPriceEntry{
				"US": {RegionCode: "US", Price: 98.00},
			},
		}, nil
	}

	tm := NewTaskManager(compare, 2)
	defer tm.Stop()

	task := tm.SubmitTask("Lululemon", "Align Leggings")
	if task.Status != models.TaskStatusQueued && task.Status != models.TaskStatusProcessing {
		t.Fatalf("fresh task status = %s", task.Status)
	}

	done := waitForTask(t, tm, task.ID)
	if done.Status != models.TaskStatusCompleted {
		t.Fatalf("task status = %s, want completed (error: %s)", done.Status, done.Error)
	}
	if done.Result == nil || done.Result.BrandName != "Lululemon" {
		t.Fatalf("task result missing or wrong: %+v", done.Result)
	}
	if done.Progress != 100 {
		t.Fatalf("completed task progress = %d, want 100", done.Progress)
	}
}

func TestTaskManagerRecordsFailure(t *testing.T) {
	compare := func(_ context.Context, _, _ string) (*models.ComparisonResult, error) {
		return nil, errors.New("no reachable sites")
	}

	tm := NewTaskManager(compare, 1)
	defer tm.Stop()

	task := tm.SubmitTask("Nonexistent", "Anything")
	done := waitForTask(t, tm, task.ID)

	if done.Status != models.TaskStatusFailed {
		t.Fatalf("task status = %s, want failed", done.Status)
	}
	if done.Error == "" {
		t.Fatalf("failed task has no error message")
	}
	if done.Result != nil {
		t.Fatalf("failed task should not carry a result")
	}
}

func TestTaskManagerUnknownTask(t *testing.T) {
	tm := NewTaskManager(func(_ context.Context, _, _ string) (*models.ComparisonResult, error) {
		return nil, nil
	}, 1)
	defer tm.Stop()

	if _, ok := tm.GetTask("task_missing"); ok {
		t.Fatalf("expected lookup miss for unknown task")
	}
}

func TestTaskManagerConcurrentPollingDuringProcessing(t *testing.T) {
	compare := func(_ context.Context, brand, product string) (*models.ComparisonResult, error) {
		time.Sleep(5 * time.Millisecond)
		return &models.ComparisonResult{BrandName: brand, ProductName: product}, nil
	}

	tm := NewTaskManager(compare, 3)
	defer tm.Stop()

	var ids []string
	for i := 0; i < 6; i++ {
		task := tm.SubmitTask("Acme", "Widget")
		ids = append(ids, task.ID)
	}

	// Hammer the read paths while workers mutate task state.
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(taskID string) {
			defer wg.Done()
			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				task, ok := tm.GetTask(taskID)
				if !ok {
					t.Errorf("task %s disappeared", taskID)
					return
				}
				tm.GetStats()
				tm.GetActiveTasks()
				if task.IsCompleted() {
					return
				}
				time.Sleep(time.Millisecond)
			}
			t.Errorf("task %s did not finish", taskID)
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		done, ok := tm.GetTask(id)
		if !ok || done.Status != models.TaskStatusCompleted {
			t.Fatalf("task %s not completed: %+v", id, done)
		}
	}
}

func TestTaskManagerStats(t *testing.T) {
	tm := NewTaskManager(func(_ context.Context, brand, product string) (*models.ComparisonResult, error) {
		return &models.ComparisonResult{BrandName: brand, ProductName: product}, nil
	}, 2)
	defer tm.Stop()

	task := tm.SubmitTask("Acme", "Widget")
	waitForTask(t, tm, task.ID)

	stats := tm.GetStats()
	if stats["total_tasks"].(int) != 1 {
		t.Fatalf("total_tasks = %v, want 1", stats["total_tasks"])
	}
	if stats["max_workers"].(int) != 2 {
		t.Fatalf("max_workers = %v, want 2", stats["max_workers"])
	}
}

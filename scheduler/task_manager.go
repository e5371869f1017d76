package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"pricelens/models"
)

// CompareFunc runs one cross-region comparison.
type CompareFunc func(ctx context.Context, brand, product string) (*models.ComparisonResult, error)

// TaskManager runs async comparison tasks on a bounded worker pool.
// Comparisons take minutes, so the HTTP layer submits tasks and polls.
type TaskManager struct {
	tasks       map[string]*models.ComparisonTask
	taskQueue   chan *models.ComparisonTask
	workers     int
	maxWorkers  int
	compareFunc CompareFunc
	mutex       sync.RWMutex
	stopChan    chan bool
}

// NewTaskManager creates a task manager and starts its dispatch loop.
func NewTaskManager(compareFunc CompareFunc, maxWorkers int) *TaskManager {
	tm := &TaskManager{
		tasks:       make(map[string]*models.ComparisonTask),
		taskQueue:   make(chan *models.ComparisonTask, 100),
		maxWorkers:  maxWorkers,
		compareFunc: compareFunc,
		stopChan:    make(chan bool),
	}

	go tm.processTasks()
	log.Printf("🚀 Task manager started with %d max workers", maxWorkers)
	return tm
}

// SubmitTask queues a new comparison task.
func (tm *TaskManager) SubmitTask(brand, product string) *models.ComparisonTask {
	task := models.NewComparisonTask(brand, product)

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	select {
	case tm.taskQueue <- task:
		log.Printf("📝 Task %s submitted for %s / %s", task.ID, brand, product)
	default:
		tm.mutateTask(task, func(t *models.ComparisonTask) {
			t.Fail("Task queue is full")
		})
		log.Printf("❌ Failed to submit task %s - queue full", task.ID)
	}

	return tm.snapshot(task)
}

// GetTask returns a copy of a task by ID. Workers keep mutating the
// stored task, so callers get a snapshot safe to encode.
func (tm *TaskManager) GetTask(taskID string) (*models.ComparisonTask, bool) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	if !exists {
		return nil, false
	}
	snapshot := *task
	return &snapshot, true
}

// GetActiveTasks returns copies of all queued or running tasks.
func (tm *TaskManager) GetActiveTasks() []*models.ComparisonTask {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	var activeTasks []*models.ComparisonTask
	for _, task := range tm.tasks {
		if task.IsActive() {
			snapshot := *task
			activeTasks = append(activeTasks, &snapshot)
		}
	}

	return activeTasks
}

// mutateTask applies a state change to the stored task under the lock.
func (tm *TaskManager) mutateTask(task *models.ComparisonTask, fn func(*models.ComparisonTask)) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	fn(task)
}

// snapshot copies the task's current state under the lock.
func (tm *TaskManager) snapshot(task *models.ComparisonTask) *models.ComparisonTask {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()
	copied := *task
	return &copied
}

// CleanupOldTasks removes completed tasks older than maxAge.
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for taskID, task := range tm.tasks {
		if task.IsCompleted() && task.CreatedAt.Before(cutoff) {
			delete(tm.tasks, taskID)
			log.Printf("🧹 Cleaned up old task: %s", taskID)
		}
	}
}

func (tm *TaskManager) processTasks() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case task := <-tm.taskQueue:
			if tm.claimWorker() {
				go tm.worker(task)
			} else {
				// At capacity; give a worker a moment to finish, then re-queue.
				go func() {
					time.Sleep(1 * time.Second)
					select {
					case tm.taskQueue <- task:
						log.Printf("🔄 Re-queued task %s (max workers reached)", task.ID)
					default:
						tm.mutateTask(task, func(t *models.ComparisonTask) {
							t.Fail("System overloaded, unable to process task")
						})
						log.Printf("❌ Failed to re-queue task %s", task.ID)
					}
				}()
			}

		case <-ticker.C:
			tm.CleanupOldTasks(1 * time.Hour)

		case <-tm.stopChan:
			log.Println("🛑 Task manager stopped")
			return
		}
	}
}

// claimWorker reserves a worker slot, reporting whether one was free.
func (tm *TaskManager) claimWorker() bool {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	if tm.workers >= tm.maxWorkers {
		return false
	}
	tm.workers++
	return true
}

func (tm *TaskManager) releaseWorker() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	tm.workers--
	log.Printf("👷 Worker finished, active workers: %d", tm.workers)
}

func (tm *TaskManager) worker(task *models.ComparisonTask) {
	defer tm.releaseWorker()

	log.Printf("👷 Worker started processing task %s (%s / %s)", task.ID, task.BrandName, task.ProductName)

	tm.mutateTask(task, func(t *models.ComparisonTask) {
		t.Start()
		t.UpdateProgress(10, "Discovering regional sites...")
	})

	result, err := tm.compareFunc(context.Background(), task.BrandName, task.ProductName)
	if err != nil {
		tm.mutateTask(task, func(t *models.ComparisonTask) {
			t.Fail("Comparison failed: " + err.Error())
		})
		return
	}

	tm.mutateTask(task, func(t *models.ComparisonTask) {
		t.Complete(result)
	})
	log.Printf("✅ Task %s completed with %d regional prices", task.ID, len(result.Entries))
}

// Stop stops the dispatch loop.
func (tm *TaskManager) Stop() {
	close(tm.stopChan)
	log.Println("🛑 Task manager stopping...")
}

// GetStats returns task manager statistics.
func (tm *TaskManager) GetStats() map[string]interface{} {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	stats := map[string]interface{}{
		"total_tasks":    len(tm.tasks),
		"active_workers": tm.workers,
		"max_workers":    tm.maxWorkers,
		"queue_size":     len(tm.taskQueue),
	}

	statusCounts := make(map[string]int)
	for _, task := range tm.tasks {
		statusCounts[string(task.Status)]++
	}
	stats["tasks_by_status"] = statusCounts

	return stats
}

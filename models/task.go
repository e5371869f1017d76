package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// TaskStatus represents the status of an async comparison task.
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// ComparisonTask tracks one async cross-region comparison.
type ComparisonTask struct {
	ID          string            `json:"id"`
	BrandName   string            `json:"brand"`
	ProductName string            `json:"product"`
	Status      TaskStatus        `json:"status"`
	Progress    int               `json:"progress"` // 0-100
	Message     string            `json:"message"`
	Result      *ComparisonResult `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// NewComparisonTask creates a queued comparison task.
func NewComparisonTask(brand, product string) *ComparisonTask {
	return &ComparisonTask{
		ID:          generateTaskID(),
		BrandName:   brand,
		ProductName: product,
		Status:      TaskStatusQueued,
		Message:     "Task queued for processing",
		CreatedAt:   time.Now(),
	}
}

// UpdateProgress updates the task progress.
func (t *ComparisonTask) UpdateProgress(progress int, message string) {
	t.Progress = progress
	t.Message = message
}

// Start marks the task as processing.
func (t *ComparisonTask) Start() {
	t.Status = TaskStatusProcessing
	t.Progress = 0
	t.Message = "Starting price comparison..."
	now := time.Now()
	t.StartedAt = &now
}

// Complete marks the task as completed with the comparison result.
func (t *ComparisonTask) Complete(result *ComparisonResult) {
	t.Status = TaskStatusCompleted
	t.Progress = 100
	t.Message = "Comparison completed successfully"
	t.Result = result
	now := time.Now()
	t.CompletedAt = &now
}

// Fail marks the task as failed.
func (t *ComparisonTask) Fail(errMsg string) {
	t.Status = TaskStatusFailed
	t.Message = "Comparison failed"
	t.Error = errMsg
	now := time.Now()
	t.CompletedAt = &now
}

// IsCompleted returns true if the task is in a final state.
func (t *ComparisonTask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsActive returns true if the task is still queued or running.
func (t *ComparisonTask) IsActive() bool {
	return t.Status == TaskStatusQueued || t.Status == TaskStatusProcessing
}

func generateTaskID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "task_" + time.Now().Format("20060102150405")
	}
	return "task_" + hex.EncodeToString(buf)
}

package domain

import (
	"strings"
	"time"
)

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeDistribute fans a published version out to a set of tenants
	TaskTypeDistribute TaskType = "distribute"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task represents a background job to be processed by workers.
// Distribution tasks are safely retryable: tenants that already received
// their copy are skipped on the next attempt.
type Task struct {
	ID string `json:"id"`

	Type TaskType `json:"type"`

	// Payload contains task-specific data.
	// For distribute: {"document_id": ..., "version_id": ...,
	// "company_ids": "a,b,c", "actor": ...}
	Payload map[string]string `json:"payload"`

	Status TaskStatus `json:"status"`

	// Priority determines processing order (higher = more urgent)
	Priority int `json:"priority"`

	// Attempts is how many times this task has been attempted
	Attempts int `json:"attempts"`

	// MaxAttempts is the maximum retry count before giving up
	MaxAttempts int `json:"max_attempts"`

	// Error contains the last error message if failed
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ScheduledFor is when the task should be processed (for delayed tasks)
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewTask creates a new task with default values
func NewTask(taskType TaskType, payload map[string]string) *Task {
	now := time.Now()
	return &Task{
		ID:           GenerateID(),
		Type:         taskType,
		Payload:      payload,
		Status:       TaskStatusPending,
		MaxAttempts:  3,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// NewDistributeTask creates a task to distribute a published version to the
// given companies.
func NewDistributeTask(documentID, versionID string, companyIDs []string, actor string) *Task {
	return NewTask(TaskTypeDistribute, map[string]string{
		"document_id": documentID,
		"version_id":  versionID,
		"company_ids": strings.Join(companyIDs, ","),
		"actor":       actor,
	})
}

// DocumentID returns the document id from a distribute payload.
func (t *Task) DocumentID() string {
	return t.Payload["document_id"]
}

// VersionID returns the version id from a distribute payload.
func (t *Task) VersionID() string {
	return t.Payload["version_id"]
}

// Actor returns the acting user from a distribute payload.
func (t *Task) Actor() string {
	return t.Payload["actor"]
}

// CompanyIDs returns the recipient set from a distribute payload.
func (t *Task) CompanyIDs() []string {
	raw := t.Payload["company_ids"]
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// CanRetry reports whether the task has retry budget left.
func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// IsReady reports whether the task is due for processing.
func (t *Task) IsReady() bool {
	return t.Status == TaskStatusPending && time.Now().After(t.ScheduledFor)
}

// MarkProcessing updates the task to processing state
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.StartedAt = &now
	t.UpdatedAt = now
	t.Attempts++
}

// MarkCompleted updates the task to completed state
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.Error = ""
}

// MarkFailed updates the task to failed state
func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.UpdatedAt = now
	t.Error = err
}

// Retry resets the task for retry with exponential backoff
func (t *Task) Retry(err string) {
	now := time.Now()
	t.Status = TaskStatusPending
	t.UpdatedAt = now
	t.Error = err

	backoff := time.Duration(1<<t.Attempts) * time.Second
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute
	}
	t.ScheduledFor = now.Add(backoff)
}

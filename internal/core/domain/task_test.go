package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeDistribute, map[string]string{"document_id": "d-1"})

	require.NotEmpty(t, task.ID)
	assert.Equal(t, TaskTypeDistribute, task.Type)
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Equal(t, 0, task.Attempts)
	assert.Equal(t, 3, task.MaxAttempts)
	assert.False(t, task.ScheduledFor.After(time.Now()))
}

func TestNewDistributeTask(t *testing.T) {
	task := NewDistributeTask("doc-1", "ver-2", []string{"acme", "globex"}, "admin-1")

	assert.Equal(t, "doc-1", task.DocumentID())
	assert.Equal(t, "ver-2", task.VersionID())
	assert.Equal(t, "admin-1", task.Actor())
	assert.Equal(t, []string{"acme", "globex"}, task.CompanyIDs())
}

func TestCompanyIDs_Empty(t *testing.T) {
	task := NewDistributeTask("doc-1", "ver-1", nil, "admin-1")
	assert.Nil(t, task.CompanyIDs())
}

func TestMarkProcessing(t *testing.T) {
	task := NewTask(TaskTypeDistribute, nil)

	task.MarkProcessing()

	assert.Equal(t, TaskStatusProcessing, task.Status)
	assert.Equal(t, 1, task.Attempts)
	require.NotNil(t, task.StartedAt)
}

func TestMarkCompleted_ClearsError(t *testing.T) {
	task := NewTask(TaskTypeDistribute, nil)
	task.MarkProcessing()
	task.Error = "transient failure"

	task.MarkCompleted()

	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.Empty(t, task.Error)
	require.NotNil(t, task.CompletedAt)
}

func TestMarkFailed(t *testing.T) {
	task := NewTask(TaskTypeDistribute, nil)
	task.MarkProcessing()

	task.MarkFailed("company not found")

	assert.Equal(t, TaskStatusFailed, task.Status)
	assert.Equal(t, "company not found", task.Error)
}

func TestCanRetry(t *testing.T) {
	task := NewTask(TaskTypeDistribute, nil)

	for i := 0; i < task.MaxAttempts; i++ {
		assert.True(t, task.CanRetry(), "attempt %d should be retryable", i)
		task.MarkProcessing()
	}
	assert.False(t, task.CanRetry())
}

func TestRetry_BacksOffExponentially(t *testing.T) {
	task := NewTask(TaskTypeDistribute, nil)
	task.MarkProcessing()
	task.MarkProcessing()

	before := time.Now()
	task.Retry("still failing")

	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Equal(t, "still failing", task.Error)

	// Two attempts means a 4s backoff.
	delay := task.ScheduledFor.Sub(before)
	assert.GreaterOrEqual(t, delay, 3*time.Second)
	assert.LessOrEqual(t, delay, 5*time.Second)
}

func TestRetry_BackoffIsCapped(t *testing.T) {
	task := NewTask(TaskTypeDistribute, nil)
	task.Attempts = 20

	before := time.Now()
	task.Retry("still failing")

	delay := task.ScheduledFor.Sub(before)
	assert.LessOrEqual(t, delay, 5*time.Minute+time.Second)
}

func TestIsReady(t *testing.T) {
	task := NewTask(TaskTypeDistribute, nil)
	task.ScheduledFor = time.Now().Add(-time.Second)
	assert.True(t, task.IsReady())

	task.ScheduledFor = time.Now().Add(time.Hour)
	assert.False(t, task.IsReady())

	task.ScheduledFor = time.Now().Add(-time.Second)
	task.MarkProcessing()
	assert.False(t, task.IsReady())
}

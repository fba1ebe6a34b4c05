package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
)

// mockTaskQueue implements driven.TaskQueue for testing
type mockTaskQueue struct {
	mu           sync.Mutex
	tasks        []*domain.Task
	dequeueDelay time.Duration
	ackFn        func(string) error
	nackFn       func(string, string) error
	pingFn       func() error
}

func newMockTaskQueue() *mockTaskQueue {
	return &mockTaskQueue{
		tasks: make([]*domain.Task, 0),
	}
}

func (m *mockTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *mockTaskQueue) EnqueueBatch(ctx context.Context, tasks []*domain.Task) error {
	for _, t := range tasks {
		if err := m.Enqueue(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockTaskQueue) Dequeue(ctx context.Context) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tasks) == 0 {
		return nil, nil
	}
	task := m.tasks[0]
	m.tasks = m.tasks[1:]
	return task, nil
}

func (m *mockTaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	if m.dequeueDelay > 0 {
		select {
		case <-time.After(m.dequeueDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.Dequeue(ctx)
}

func (m *mockTaskQueue) Ack(ctx context.Context, taskID string) error {
	if m.ackFn != nil {
		return m.ackFn(taskID)
	}
	return nil
}

func (m *mockTaskQueue) Nack(ctx context.Context, taskID string, reason string) error {
	if m.nackFn != nil {
		return m.nackFn(taskID, reason)
	}
	return nil
}

func (m *mockTaskQueue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTaskQueue) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn()
	}
	return nil
}

func (m *mockTaskQueue) Close() error {
	return nil
}

// mockDistribution implements driving.DistributionService for testing
type mockDistribution struct {
	mu    sync.Mutex
	calls []distributeCall
	fn    func(documentID, versionID string, companyIDs []string) (*domain.DistributionReport, error)
}

type distributeCall struct {
	actor      string
	documentID string
	versionID  string
	companyIDs []string
}

func (m *mockDistribution) Distribute(ctx context.Context, actor, documentID, versionID string, companyIDs []string) (*domain.DistributionReport, error) {
	m.mu.Lock()
	m.calls = append(m.calls, distributeCall{actor, documentID, versionID, companyIDs})
	m.mu.Unlock()

	if m.fn != nil {
		return m.fn(documentID, versionID, companyIDs)
	}
	return &domain.DistributionReport{
		DocumentID: documentID,
		VersionID:  versionID,
		Created:    companyIDs,
		Failed:     map[string]string{},
	}, nil
}

func (m *mockDistribution) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func TestNewWorker(t *testing.T) {
	queue := newMockTaskQueue()

	w := NewWorker(Config{
		TaskQueue:      queue,
		Distribution:   &mockDistribution{},
		Logger:         slog.Default(),
		Concurrency:    2,
		DequeueTimeout: 5,
	})

	if w == nil {
		t.Fatal("expected non-nil worker")
	}
	if w.concurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", w.concurrency)
	}
	if w.dequeueTimeout != 5 {
		t.Errorf("expected dequeue timeout 5, got %d", w.dequeueTimeout)
	}
}

func TestNewWorker_Defaults(t *testing.T) {
	queue := newMockTaskQueue()

	w := NewWorker(Config{
		TaskQueue:      queue,
		Concurrency:    0, // Should default to 1
		DequeueTimeout: 0, // Should default to 5
	})

	if w.concurrency != 1 {
		t.Errorf("expected default concurrency 1, got %d", w.concurrency)
	}
	if w.dequeueTimeout != 5 {
		t.Errorf("expected default dequeue timeout 5, got %d", w.dequeueTimeout)
	}
	if w.logger == nil {
		t.Error("expected default logger")
	}
}

func TestWorker_StartStop(t *testing.T) {
	queue := newMockTaskQueue()
	// Add delay so workers don't spin too fast
	queue.dequeueDelay = 100 * time.Millisecond

	w := NewWorker(Config{
		TaskQueue:      queue,
		Distribution:   &mockDistribution{},
		Concurrency:    1,
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := w.Start(ctx)
	if err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	health := w.Health(ctx)
	if !health.Running {
		t.Error("expected worker to be running")
	}

	// Start again should be no-op
	err = w.Start(ctx)
	if err != nil {
		t.Errorf("second start should not error: %v", err)
	}

	w.Stop()

	health = w.Health(ctx)
	if health.Running {
		t.Error("expected worker to be stopped")
	}

	w.Stop() // Should not panic
}

func TestWorker_Health(t *testing.T) {
	queue := newMockTaskQueue()

	w := NewWorker(Config{
		TaskQueue:   queue,
		Concurrency: 1,
	})

	ctx := context.Background()

	health := w.Health(ctx)
	if health.Running {
		t.Error("expected not running")
	}
	if !health.QueueHealth {
		t.Error("expected queue to be healthy")
	}
}

func TestWorker_Health_QueueError(t *testing.T) {
	queue := newMockTaskQueue()
	queue.pingFn = func() error {
		return errors.New("connection failed")
	}

	w := NewWorker(Config{
		TaskQueue:   queue,
		Concurrency: 1,
	})

	ctx := context.Background()

	health := w.Health(ctx)
	if health.QueueHealth {
		t.Error("expected queue to be unhealthy")
	}
	if health.Error != "connection failed" {
		t.Errorf("expected error message, got %q", health.Error)
	}
}

func TestWorker_ProcessTask_Distribute(t *testing.T) {
	queue := newMockTaskQueue()

	var acked []string
	queue.ackFn = func(taskID string) error {
		acked = append(acked, taskID)
		return nil
	}

	dist := &mockDistribution{}
	task := domain.NewDistributeTask("doc-1", "v-2", []string{"company-a", "company-b"}, "admin-1")

	w := NewWorker(Config{
		TaskQueue:    queue,
		Distribution: dist,
		Concurrency:  1,
	})

	w.processTask(context.Background(), task, slog.Default())

	if dist.callCount() != 1 {
		t.Fatalf("expected 1 distribute call, got %d", dist.callCount())
	}
	call := dist.calls[0]
	if call.documentID != "doc-1" || call.versionID != "v-2" {
		t.Errorf("unexpected distribute args: %+v", call)
	}
	if call.actor != "admin-1" {
		t.Errorf("expected actor admin-1, got %s", call.actor)
	}
	if len(call.companyIDs) != 2 {
		t.Errorf("expected 2 companies, got %v", call.companyIDs)
	}
	if len(acked) != 1 || acked[0] != task.ID {
		t.Errorf("expected task to be acked, got %v", acked)
	}
}

func TestWorker_ProcessTask_DistributeFailure(t *testing.T) {
	queue := newMockTaskQueue()

	var nacked []string
	queue.nackFn = func(taskID, reason string) error {
		nacked = append(nacked, taskID)
		return nil
	}

	dist := &mockDistribution{
		fn: func(documentID, versionID string, companyIDs []string) (*domain.DistributionReport, error) {
			return &domain.DistributionReport{
				DocumentID: documentID,
				VersionID:  versionID,
				Failed:     map[string]string{"company-a": "db down"},
			}, errors.New("1 companies failed")
		},
	}
	task := domain.NewDistributeTask("doc-1", "v-2", []string{"company-a"}, "admin-1")

	w := NewWorker(Config{
		TaskQueue:    queue,
		Distribution: dist,
		Concurrency:  1,
	})

	w.processTask(context.Background(), task, slog.Default())

	if len(nacked) != 1 {
		t.Errorf("expected task to be nacked for retry, got %v", nacked)
	}
}

func TestWorker_ProcessTask_MissingPayload(t *testing.T) {
	queue := newMockTaskQueue()

	var nacked []string
	queue.nackFn = func(taskID, reason string) error {
		nacked = append(nacked, taskID)
		return nil
	}

	task := &domain.Task{
		ID:      "task-123",
		Type:    domain.TaskTypeDistribute,
		Payload: map[string]string{},
	}

	w := NewWorker(Config{
		TaskQueue:    queue,
		Distribution: &mockDistribution{},
		Concurrency:  1,
	})

	w.processTask(context.Background(), task, slog.Default())

	if len(nacked) != 1 {
		t.Errorf("expected nack for missing payload, got %d", len(nacked))
	}
}

func TestWorker_ProcessTask_UnknownType(t *testing.T) {
	queue := newMockTaskQueue()

	var nacked []string
	queue.nackFn = func(taskID, reason string) error {
		nacked = append(nacked, taskID)
		return nil
	}

	task := &domain.Task{
		ID:   "task-123",
		Type: domain.TaskType("unknown_type"),
	}

	w := NewWorker(Config{
		TaskQueue:    queue,
		Distribution: &mockDistribution{},
		Concurrency:  1,
	})

	w.processTask(context.Background(), task, slog.Default())

	if len(nacked) != 1 {
		t.Errorf("expected 1 nack for unknown type, got %d", len(nacked))
	}
}

func TestWorker_ProcessesEnqueuedTask(t *testing.T) {
	queue := newMockTaskQueue()
	queue.dequeueDelay = 10 * time.Millisecond

	ackCh := make(chan string, 1)
	queue.ackFn = func(taskID string) error {
		ackCh <- taskID
		return nil
	}

	dist := &mockDistribution{}
	task := domain.NewDistributeTask("doc-1", "v-1", []string{"company-a"}, "admin-1")
	_ = queue.Enqueue(context.Background(), task)

	w := NewWorker(Config{
		TaskQueue:      queue,
		Distribution:   dist,
		Concurrency:    1,
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer w.Stop()

	select {
	case got := <-ackCh:
		if got != task.ID {
			t.Errorf("expected ack for %s, got %s", task.ID, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for task to be processed")
	}

	if dist.callCount() != 1 {
		t.Errorf("expected 1 distribute call, got %d", dist.callCount())
	}
}

package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingExecutor records executed tasks and can fail a number of times
type recordingExecutor struct {
	mu        sync.Mutex
	executed  []*Task
	failTimes int
	done      chan struct{}
}

func newRecordingExecutor(failTimes int) *recordingExecutor {
	return &recordingExecutor{
		failTimes: failTimes,
		done:      make(chan struct{}, 100),
	}
}

func (e *recordingExecutor) Execute(ctx context.Context, task *Task) error {
	e.mu.Lock()
	e.executed = append(e.executed, task)
	shouldFail := len(e.executed) <= e.failTimes
	e.mu.Unlock()

	e.done <- struct{}{}

	if shouldFail {
		return errors.New("boom")
	}
	return nil
}

func (e *recordingExecutor) executedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.executed)
}

func (e *recordingExecutor) waitForExecutions(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-e.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for execution %d of %d", i+1, n)
		}
	}
}

func testConfig() Config {
	return Config{
		Enabled:       true,
		Workers:       2,
		TaskTimeout:   time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
}

func TestScheduler_ExecutesSubmittedTask(t *testing.T) {
	executor := newRecordingExecutor(0)
	s := NewScheduler(testConfig(), executor, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	task := NewTask(TaskTypeProductsSearchVector, 0)
	require.NoError(t, s.SubmitTask(task))

	executor.waitForExecutions(t, 1)
	assert.Equal(t, 1, executor.executedCount())
}

func TestScheduler_RetriesFailedTask(t *testing.T) {
	// Fails twice, then succeeds on the final attempt
	executor := newRecordingExecutor(2)
	s := NewScheduler(testConfig(), executor, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	task := NewTask(TaskTypeProductsSearchVector, 2)
	require.NoError(t, s.SubmitTask(task))

	executor.waitForExecutions(t, 3)
	assert.Equal(t, 3, executor.executedCount())
}

func TestScheduler_RejectsWhenStopped(t *testing.T) {
	executor := newRecordingExecutor(0)
	s := NewScheduler(testConfig(), executor, zap.NewNop())

	err := s.SubmitTask(NewTask(TaskTypeProductsSearchVector, 0))
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestScheduler_EnqueueHelpers(t *testing.T) {
	executor := newRecordingExecutor(0)
	s := NewScheduler(testConfig(), executor, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	productID := uuid.New()
	promotionID := uuid.New()

	require.NoError(t, s.EnqueueProductPricing(productID))
	require.NoError(t, s.EnqueuePromotionPricing(promotionID))
	require.NoError(t, s.EnqueueSearchIndexRebuild())

	executor.waitForExecutions(t, 3)

	executor.mu.Lock()
	defer executor.mu.Unlock()
	types := make(map[TaskType]*Task)
	for _, task := range executor.executed {
		types[task.Type] = task
	}
	require.Len(t, types, 3)
	require.NotNil(t, types[TaskTypeProductDiscountedPrice].ProductID)
	assert.Equal(t, productID, *types[TaskTypeProductDiscountedPrice].ProductID)
	require.NotNil(t, types[TaskTypePromotionDiscountedPrices].PromotionID)
	assert.Equal(t, promotionID, *types[TaskTypePromotionDiscountedPrices].PromotionID)
}

func TestTask_RetryBookkeeping(t *testing.T) {
	task := NewTask(TaskTypeProductDiscountedPrice, 2)
	assert.Equal(t, TaskStatusPending, task.Status)

	task.Start()
	assert.Equal(t, TaskStatusRunning, task.Status)
	require.NotNil(t, task.StartedAt)

	task.Fail("boom")
	assert.Equal(t, TaskStatusFailed, task.Status)
	assert.True(t, task.ShouldRetry())

	task.ScheduleRetry(time.Minute)
	assert.Equal(t, 1, task.RetryCount)
	assert.Equal(t, TaskStatusPending, task.Status)
	require.NotNil(t, task.NextRetryAt)

	task.Fail("boom again")
	task.ScheduleRetry(time.Minute)
	task.Fail("boom final")
	assert.False(t, task.ShouldRetry())
}

func TestCatalogTaskExecutor_ValidatesTargets(t *testing.T) {
	executor := NewCatalogTaskExecutor(nil, nil)

	err := executor.Execute(context.Background(), NewTask(TaskTypeProductDiscountedPrice, 0))
	assert.ErrorIs(t, err, ErrMissingTaskTarget)

	err = executor.Execute(context.Background(), NewTask(TaskTypePromotionDiscountedPrices, 0))
	assert.ErrorIs(t, err, ErrMissingTaskTarget)

	err = executor.Execute(context.Background(), NewTask(TaskType("UNKNOWN"), 0))
	assert.ErrorIs(t, err, ErrInvalidTaskType)
}

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskStatus represents the status of a background task
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "PENDING"
	TaskStatusRunning TaskStatus = "RUNNING"
	TaskStatusSuccess TaskStatus = "SUCCESS"
	TaskStatusFailed  TaskStatus = "FAILED"
)

// TaskType represents the type of background task
type TaskType string

const (
	// TaskTypeProductDiscountedPrice recomputes one product's discounted price
	TaskTypeProductDiscountedPrice TaskType = "PRODUCT_DISCOUNTED_PRICE"
	// TaskTypePromotionDiscountedPrices recomputes prices for every product a promotion targets
	TaskTypePromotionDiscountedPrices TaskType = "PROMOTION_DISCOUNTED_PRICES"
	// TaskTypeProductsSearchVector rebuilds search vectors for dirty products
	TaskTypeProductsSearchVector TaskType = "PRODUCTS_SEARCH_VECTOR"
)

// Task represents a queued background task
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	ProductID   *uuid.UUID // set for PRODUCT_DISCOUNTED_PRICE
	PromotionID *uuid.UUID // set for PROMOTION_DISCOUNTED_PRICES
	Status      TaskStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewTask creates a new task instance
func NewTask(taskType TaskType, maxRetries int) *Task {
	return &Task{
		ID:         uuid.New(),
		Type:       taskType,
		Status:     TaskStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the task as running
func (t *Task) Start() {
	now := time.Now()
	t.Status = TaskStatusRunning
	t.StartedAt = &now
	t.Error = ""
}

// Complete marks the task as successful
func (t *Task) Complete() {
	now := time.Now()
	t.Status = TaskStatusSuccess
	t.CompletedAt = &now
}

// Fail marks the task as failed
func (t *Task) Fail(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.CompletedAt = &now
	t.Error = err
}

// ShouldRetry returns true if the task should be retried
func (t *Task) ShouldRetry() bool {
	return t.Status == TaskStatusFailed && t.RetryCount < t.MaxRetries
}

// ScheduleRetry schedules the task for retry
func (t *Task) ScheduleRetry(delay time.Duration) {
	t.RetryCount++
	t.Status = TaskStatusPending
	nextRetry := time.Now().Add(delay)
	t.NextRetryAt = &nextRetry
	t.Error = ""
}

// TaskExecutor is the interface for executing background tasks
type TaskExecutor interface {
	Execute(ctx context.Context, task *Task) error
}

// Config holds scheduler configuration
type Config struct {
	Enabled       bool
	Workers       int
	TaskTimeout   time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Workers:       2,
		TaskTimeout:   10 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    time.Minute,
	}
}

// Scheduler runs catalog background tasks on a worker pool
type Scheduler struct {
	config   Config
	executor TaskExecutor
	logger   *zap.Logger

	tasks     chan *Task
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, executor TaskExecutor, logger *zap.Logger) *Scheduler {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		tasks:    make(chan *Task, 100),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Task scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("task_timeout", s.config.TaskTimeout),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	close(s.tasks)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Task scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Task scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitTask submits a task for execution
func (s *Scheduler) SubmitTask(task *Task) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	select {
	case s.tasks <- task:
		s.logger.Debug("Task submitted",
			zap.String("task_id", task.ID.String()),
			zap.String("task_type", string(task.Type)),
		)
		return nil
	default:
		return ErrTaskQueueFull
	}
}

// EnqueueProductPricing queues a discounted price recalculation for one product
func (s *Scheduler) EnqueueProductPricing(productID uuid.UUID) error {
	task := NewTask(TaskTypeProductDiscountedPrice, s.config.RetryAttempts)
	task.ProductID = &productID
	return s.SubmitTask(task)
}

// EnqueuePromotionPricing queues a price recalculation for all products of a promotion
func (s *Scheduler) EnqueuePromotionPricing(promotionID uuid.UUID) error {
	task := NewTask(TaskTypePromotionDiscountedPrices, s.config.RetryAttempts)
	task.PromotionID = &promotionID
	return s.SubmitTask(task)
}

// EnqueueSearchIndexRebuild queues a search vector rebuild pass
func (s *Scheduler) EnqueueSearchIndexRebuild() error {
	return s.SubmitTask(NewTask(TaskTypeProductsSearchVector, s.config.RetryAttempts))
}

// worker processes tasks from the queue
func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	s.logger.Debug("Worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Worker stopping", zap.Int("worker_id", workerID))
			return
		case task, ok := <-s.tasks:
			if !ok {
				s.logger.Debug("Task channel closed", zap.Int("worker_id", workerID))
				return
			}
			s.processTask(ctx, task, workerID)
		}
	}
}

// processTask executes a single task
func (s *Scheduler) processTask(ctx context.Context, task *Task, workerID int) {
	// Retried tasks wait for their backoff window
	if task.NextRetryAt != nil && time.Now().Before(*task.NextRetryAt) {
		select {
		case s.tasks <- task:
		default:
			s.logger.Warn("Failed to re-queue task for retry",
				zap.String("task_id", task.ID.String()),
			)
		}
		return
	}

	task.Start()
	s.logger.Info("Processing task",
		zap.Int("worker_id", workerID),
		zap.String("task_id", task.ID.String()),
		zap.String("task_type", string(task.Type)),
	)

	taskCtx, cancel := context.WithTimeout(ctx, s.config.TaskTimeout)
	defer cancel()

	err := s.executor.Execute(taskCtx, task)
	if err != nil {
		task.Fail(err.Error())
		s.logger.Error("Task failed",
			zap.Int("worker_id", workerID),
			zap.String("task_id", task.ID.String()),
			zap.String("task_type", string(task.Type)),
			zap.Error(err),
		)

		if task.ShouldRetry() {
			task.ScheduleRetry(s.config.RetryDelay)
			s.logger.Info("Task scheduled for retry",
				zap.String("task_id", task.ID.String()),
				zap.Int("retry_count", task.RetryCount),
				zap.Int("max_retries", task.MaxRetries),
			)
			select {
			case s.tasks <- task:
			default:
				s.logger.Warn("Failed to re-queue task for retry",
					zap.String("task_id", task.ID.String()),
				)
			}
		}
		return
	}

	task.Complete()
	s.logger.Info("Task completed successfully",
		zap.Int("worker_id", workerID),
		zap.String("task_id", task.ID.String()),
		zap.String("task_type", string(task.Type)),
	)
}

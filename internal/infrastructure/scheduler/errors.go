package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a task to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrTaskQueueFull is returned when the task queue is full
	ErrTaskQueueFull = errors.New("task queue is full")

	// ErrInvalidTaskType is returned for unknown task types
	ErrInvalidTaskType = errors.New("invalid task type")

	// ErrMissingTaskTarget is returned when a task lacks its product or promotion id
	ErrMissingTaskTarget = errors.New("task is missing its target id")
)

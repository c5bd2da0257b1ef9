package jobs

import (
	"context"
	"time"
)

// Store persists job executions and cron schedules.
type Store interface {
	// CreateExecution inserts a new Running execution row and returns its ID.
	CreateExecution(ctx context.Context, jobKey string, startTime time.Time) (string, error)

	// CompleteExecution records the terminal status of an execution.
	CompleteExecution(ctx context.Context, executionID string, status Status, endTime time.Time, errMessage *string) error

	// ListExecutions returns a page of executions ordered by most recent
	// start time first, along with the total matching count.
	ListExecutions(ctx context.Context, page, pageSize int) ([]*Execution, int, error)

	// ListScheduledJobs returns every enabled scheduled job.
	ListScheduledJobs(ctx context.Context) ([]*ScheduledJob, error)

	// MarkScheduleRun updates lastRun/nextRun for a scheduled job after a
	// successful launch; a failed launch does not call it.
	MarkScheduleRun(ctx context.Context, scheduledJobID int, lastRun, nextRun time.Time) error
}

// Package jobs implements the background job engine: a registry of
// derived-data jobs, at-most-one-running-per-key execution tracking, and a
// cron-driven scheduler that starts jobs automatically (§4.4, §4.5).
package jobs

import (
	"context"
	"time"
)

// Mode selects whether a job processes only posts missing derived data, or
// recomputes it for every eligible post.
type Mode string

const (
	ModeMissing Mode = "missing"
	ModeAll     Mode = "all"
)

// Status is the lifecycle state of one job execution. Transitions are
// monotonic: Queued -> Running -> one of Completed, Failed, Cancelled.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Execution is one recorded run of a job, persisted on start and updated on
// completion.
type Execution struct {
	ID           string     `json:"id"`
	JobKey       string     `json:"job_key"`
	Status       Status     `json:"status"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
}

// ScheduledJob is a cron-triggered binding of a job key to a schedule.
type ScheduledJob struct {
	ID             int        `json:"id"`
	JobKey         string     `json:"job_key"`
	CronExpression string     `json:"cron_expression"`
	IsEnabled      bool       `json:"is_enabled"`
	LastRun        *time.Time `json:"last_run,omitempty"`
	NextRun        *time.Time `json:"next_run,omitempty"`
}

// State is the progress payload a running job reports through Reporter.
// ProgressCurrent/ProgressTotal are pointers so a job can explicitly clear
// them (nil) when moving from a determinate phase back to an indeterminate
// one; FinalText is set only on the last update before the job returns.
type State struct {
	ActivityText   string
	ProgressCurrent *int
	ProgressTotal   *int
	FinalText       *string
}

// Reporter receives progress updates from a running job. The engine
// coalesces calls to roughly 5Hz before mirroring them to GetActiveJobs;
// Update itself never blocks the caller.
type Reporter interface {
	Update(s State)
}

// Context is passed to every job's Execute function. It embeds
// context.Context so jobs can select on ctx.Done() for cancellation between
// batches.
type Context struct {
	context.Context
	Mode     Mode
	Reporter Reporter
}

// Descriptor registers one runnable job under a stable key.
type Descriptor struct {
	Key             string
	DisplayName     string
	Description     string
	SupportsAllMode bool
	DisplayOrder    int
	Execute         func(jobCtx *Context) (summary string, err error)
}

// Info describes a job available to be started, independent of whether it
// is currently running.
type Info struct {
	Key             string `json:"key"`
	DisplayName     string `json:"display_name"`
	Description     string `json:"description"`
	SupportsAllMode bool   `json:"supports_all_mode"`
	DisplayOrder    int    `json:"display_order"`
}

// ActiveJob describes an execution still held in the engine's running set,
// as surfaced by GetActiveJobs.
type ActiveJob struct {
	ID          string     `json:"id"`
	ExecutionID string     `json:"execution_id"`
	Key         string     `json:"key"`
	DisplayName string     `json:"display_name"`
	Status      Status     `json:"status"`
	State       State      `json:"state"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

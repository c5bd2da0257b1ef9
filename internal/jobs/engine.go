package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/booruoss/booru/internal/platform/apperr"
)

// progressFlushInterval bounds how often a running job's reported progress
// is copied into the state visible to GetActiveJobs (§4.4's "~5 Hz").
const progressFlushInterval = 200 * time.Millisecond

// Engine runs registered jobs, enforcing at-most-one-running-per-key and
// recording execution history through Store.
type Engine struct {
	store  Store
	logger *slog.Logger

	mu          sync.Mutex
	descriptors map[string]Descriptor
	running     map[string]*runningJob
}

func NewEngine(store Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:       store,
		logger:      logger,
		descriptors: make(map[string]Descriptor),
		running:     make(map[string]*runningJob),
	}
}

// Register adds a job to the set StartJob can launch. Call before the
// engine is exposed to the scheduler or any HTTP handler.
func (e *Engine) Register(d Descriptor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.descriptors[d.Key] = d
}

type runningJob struct {
	executionID string
	key         string
	displayName string
	startTime   time.Time

	cancel           context.CancelFunc
	cancelRequested  atomic.Bool
	done             chan struct{}

	mu       sync.Mutex
	status   Status
	state    State
	endTime  *time.Time
}

// liveReporter is handed to a job's Execute function. Update is cheap and
// non-blocking; a background ticker copies the latest value into the
// runningJob's visible state at a bounded rate.
type liveReporter struct {
	pending atomic.Pointer[State]
}

func (r *liveReporter) Update(s State) {
	r.pending.Store(&s)
}

// GetAvailableJobs lists every registered job, independent of run state.
func (e *Engine) GetAvailableJobs() []Info {
	e.mu.Lock()
	defer e.mu.Unlock()

	infos := make([]Info, 0, len(e.descriptors))
	for _, d := range e.descriptors {
		infos = append(infos, Info{
			Key:             d.Key,
			DisplayName:     d.DisplayName,
			Description:     d.Description,
			SupportsAllMode: d.SupportsAllMode,
			DisplayOrder:    d.DisplayOrder,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].DisplayOrder < infos[j].DisplayOrder })
	return infos
}

// GetActiveJobs lists every currently running execution with its latest
// coalesced progress state.
func (e *Engine) GetActiveJobs() []ActiveJob {
	e.mu.Lock()
	jobs := make([]*runningJob, 0, len(e.running))
	for _, rj := range e.running {
		jobs = append(jobs, rj)
	}
	e.mu.Unlock()

	active := make([]ActiveJob, 0, len(jobs))
	for _, rj := range jobs {
		rj.mu.Lock()
		active = append(active, ActiveJob{
			ID:          rj.executionID,
			ExecutionID: rj.executionID,
			Key:         rj.key,
			DisplayName: rj.displayName,
			Status:      rj.status,
			State:       rj.state,
			StartTime:   rj.startTime,
			EndTime:     rj.endTime,
		})
		rj.mu.Unlock()
	}
	return active
}

// GetJobHistory returns a page of past executions, most recent first.
func (e *Engine) GetJobHistory(ctx context.Context, page, pageSize int) ([]*Execution, int, error) {
	return e.store.ListExecutions(ctx, page, pageSize)
}

// StartJob launches the job registered under key, returning its execution
// ID. It fails with NotFound if the key is unregistered and Conflict if the
// same key is already running.
func (e *Engine) StartJob(ctx context.Context, key string, mode Mode) (string, error) {
	e.mu.Lock()
	desc, ok := e.descriptors[key]
	if !ok {
		e.mu.Unlock()
		return "", apperr.NotFound("job")
	}
	if _, running := e.running[key]; running {
		e.mu.Unlock()
		return "", apperr.Conflict("job already running")
	}

	// The lock stays held until the job is in e.running, so a concurrent
	// StartJob for the same key cannot pass the check above in between.
	startTime := time.Now()
	executionID, err := e.store.CreateExecution(ctx, key, startTime)
	if err != nil {
		e.mu.Unlock()
		return "", err
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	rj := &runningJob{
		executionID: executionID,
		key:         key,
		displayName: desc.DisplayName,
		startTime:   startTime,
		cancel:      cancel,
		done:        make(chan struct{}),
		status:      StatusRunning,
	}

	e.running[key] = rj
	e.mu.Unlock()

	reporter := &liveReporter{}
	flushDone := make(chan struct{})
	go e.flushProgress(rj, reporter, flushDone)

	go e.run(jobCtx, rj, desc, mode, reporter, flushDone)

	return executionID, nil
}

// CancelJob requests cancellation of the execution matching executionID.
// It is idempotent: canceling an unknown or already-finished execution is
// a no-op.
func (e *Engine) CancelJob(executionID string) {
	e.mu.Lock()
	var target *runningJob
	for _, rj := range e.running {
		if rj.executionID == executionID {
			target = rj
			break
		}
	}
	e.mu.Unlock()

	if target == nil {
		return
	}
	target.cancelRequested.Store(true)
	target.cancel()
}

func (e *Engine) flushProgress(rj *runningJob, reporter *liveReporter, done chan struct{}) {
	ticker := time.NewTicker(progressFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if s := reporter.pending.Load(); s != nil {
				rj.mu.Lock()
				rj.state = *s
				rj.mu.Unlock()
			}
		case <-done:
			if s := reporter.pending.Load(); s != nil {
				rj.mu.Lock()
				rj.state = *s
				rj.mu.Unlock()
			}
			return
		}
	}
}

func (e *Engine) run(jobCtx context.Context, rj *runningJob, desc Descriptor, mode Mode, reporter *liveReporter, flushDone chan struct{}) {
	defer close(rj.done)
	defer close(flushDone)
	defer func() {
		e.mu.Lock()
		delete(e.running, rj.key)
		e.mu.Unlock()
	}()

	summary, err := desc.Execute(&Context{Context: jobCtx, Mode: mode, Reporter: reporter})
	endTime := time.Now()

	var status Status
	var errMsg *string
	switch {
	case err != nil && rj.cancelRequested.Load() && errors.Is(jobCtx.Err(), context.Canceled):
		status = StatusCancelled
	case err != nil:
		status = StatusFailed
		msg := err.Error()
		errMsg = &msg
	default:
		status = StatusCompleted
	}

	rj.mu.Lock()
	rj.status = status
	rj.endTime = &endTime
	rj.mu.Unlock()

	if completeErr := e.store.CompleteExecution(context.Background(), rj.executionID, status, endTime, errMsg); completeErr != nil {
		e.logger.Error("job_history_update_failed",
			slog.String("job_key", rj.key), slog.String("execution_id", rj.executionID), slog.Any("error", completeErr))
	}

	e.logger.Info("job_finished",
		slog.String("job_key", rj.key),
		slog.String("execution_id", rj.executionID),
		slog.String("status", string(status)),
		slog.String("summary", summary),
		slog.Duration("duration", endTime.Sub(rj.startTime)))
}

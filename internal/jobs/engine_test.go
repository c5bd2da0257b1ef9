package jobs

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/booruoss/booru/internal/platform/apperr"
)

// fakeStore is an in-memory jobs.Store sufficient for engine tests.
type fakeStore struct {
	mu         sync.Mutex
	nextID     int
	executions map[string]*Execution
}

func newFakeStore() *fakeStore {
	return &fakeStore{executions: map[string]*Execution{}}
}

func (s *fakeStore) CreateExecution(_ context.Context, jobKey string, startTime time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := string(rune('a' + s.nextID))
	s.executions[id] = &Execution{ID: id, JobKey: jobKey, Status: StatusRunning, StartTime: startTime}
	return id, nil
}

func (s *fakeStore) CompleteExecution(_ context.Context, executionID string, status Status, endTime time.Time, errMessage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.executions[executionID]; ok {
		e.Status = status
		e.EndTime = &endTime
		e.ErrorMessage = errMessage
	}
	return nil
}

func (s *fakeStore) ListExecutions(_ context.Context, page, pageSize int) ([]*Execution, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Execution, 0, len(s.executions))
	for _, e := range s.executions {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (s *fakeStore) ListScheduledJobs(context.Context) ([]*ScheduledJob, error) { return nil, nil }
func (s *fakeStore) MarkScheduleRun(context.Context, int, time.Time, time.Time) error {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEngine_StartJob_RejectsUnknownKey(t *testing.T) {
	e := NewEngine(newFakeStore(), testLogger())
	_, err := e.StartJob(context.Background(), "does-not-exist", ModeMissing)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected a NotFound error, got %v", err)
	}
}

func TestEngine_StartJob_RejectsConcurrentRunOfSameKey(t *testing.T) {
	e := NewEngine(newFakeStore(), testLogger())
	release := make(chan struct{})
	started := make(chan struct{})

	e.Register(Descriptor{
		Key:         "slow",
		DisplayName: "Slow job",
		Execute: func(jobCtx *Context) (string, error) {
			close(started)
			<-release
			return "done", nil
		},
	})

	if _, err := e.StartJob(context.Background(), "slow", ModeMissing); err != nil {
		t.Fatalf("first StartJob: %v", err)
	}
	<-started

	if _, err := e.StartJob(context.Background(), "slow", ModeMissing); err == nil {
		t.Fatal("expected starting the same job key twice concurrently to fail")
	}

	close(release)
}

func TestEngine_StartJob_CompletesAndRecordsHistory(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, testLogger())

	done := make(chan struct{})
	e.Register(Descriptor{
		Key: "quick",
		Execute: func(jobCtx *Context) (string, error) {
			return "ok", nil
		},
	})

	executionID, err := e.StartJob(context.Background(), "quick", ModeMissing)
	if err != nil {
		t.Fatalf("StartJob: %v", err)
	}

	// run() closes rj.done when finished; poll GetActiveJobs until the job
	// leaves the running set rather than racing on an internal channel.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		active := e.GetActiveJobs()
		found := false
		for _, a := range active {
			if a.ExecutionID == executionID {
				found = true
			}
		}
		if !found {
			close(done)
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	<-done

	execs, total, err := e.GetJobHistory(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("GetJobHistory: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 recorded execution, got %d", total)
	}
	if execs[0].Status != StatusCompleted {
		t.Fatalf("expected StatusCompleted, got %s", execs[0].Status)
	}
}

func TestEngine_CancelJob_IsIdempotentForUnknownExecution(t *testing.T) {
	e := NewEngine(newFakeStore(), testLogger())
	// Must not panic or block on an execution ID that was never started.
	e.CancelJob("nonexistent")
}

package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler reads enabled ScheduledJob rows and fires JobEngine.StartJob at
// each one's next occurrence (§4.5).
type Scheduler struct {
	store  Store
	engine *Engine
	logger *slog.Logger
	parser cron.Parser

	stop chan struct{}
	done chan struct{}
}

func NewScheduler(store Store, engine *Engine, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		engine: engine,
		logger: logger,
		parser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins polling for due scheduled jobs until Stop is called. It
// reloads the enabled schedule set every pollInterval, so a row added or
// toggled via the API takes effect without restarting the process.
func (s *Scheduler) Start(pollInterval time.Duration) {
	go s.loop(pollInterval)
}

func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) loop(pollInterval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	nextRun := make(map[int]time.Time)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.tick(nextRun)
		}
	}
}

func (s *Scheduler) tick(nextRun map[int]time.Time) {
	ctx := context.Background()

	schedules, err := s.store.ListScheduledJobs(ctx)
	if err != nil {
		s.logger.Error("scheduler_list_failed", slog.Any("error", err))
		return
	}

	now := time.Now()
	seen := make(map[int]bool, len(schedules))

	for _, sched := range schedules {
		seen[sched.ID] = true

		schedule, err := s.parser.Parse(sched.CronExpression)
		if err != nil {
			s.logger.Error("scheduler_parse_failed",
				slog.Int("scheduled_job_id", sched.ID), slog.String("expression", sched.CronExpression), slog.Any("error", err))
			continue
		}

		due, ok := nextRun[sched.ID]
		if !ok {
			due = schedule.Next(now)
			nextRun[sched.ID] = due
			continue
		}
		if now.Before(due) {
			continue
		}

		if _, err := s.engine.StartJob(ctx, sched.JobKey, ModeMissing); err != nil {
			s.logger.Warn("scheduled_job_start_failed",
				slog.String("job_key", sched.JobKey), slog.Any("error", err))
		} else if err := s.store.MarkScheduleRun(ctx, sched.ID, now, schedule.Next(now)); err != nil {
			s.logger.Error("scheduler_mark_run_failed", slog.Int("scheduled_job_id", sched.ID), slog.Any("error", err))
		}

		nextRun[sched.ID] = schedule.Next(now)
	}

	for id := range nextRun {
		if !seen[id] {
			delete(nextRun, id)
		}
	}
}

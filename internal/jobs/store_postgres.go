package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/booruoss/booru/internal/platform/database/schema"
	"github.com/booruoss/booru/internal/platform/dberr"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateExecution(ctx context.Context, jobKey string, startTime time.Time) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
	`, schema.JobExecution.Table, schema.JobExecution.ID, schema.JobExecution.JobName,
		schema.JobExecution.Status, schema.JobExecution.StartTime)

	if _, err := s.db.Exec(ctx, query, id.String(), jobKey, StatusRunning, startTime); err != nil {
		return "", dberr.Wrap(err, "create job execution")
	}
	return id.String(), nil
}

func (s *PostgresStore) CompleteExecution(ctx context.Context, executionID string, status Status, endTime time.Time, errMessage *string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1
	`, schema.JobExecution.Table, schema.JobExecution.Status, schema.JobExecution.EndTime,
		schema.JobExecution.ErrorMessage, schema.JobExecution.ID)

	if _, err := s.db.Exec(ctx, query, executionID, status, endTime, errMessage); err != nil {
		return dberr.Wrap(err, "complete job execution")
	}
	return nil
}

func (s *PostgresStore) ListExecutions(ctx context.Context, page, pageSize int) ([]*Execution, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.JobExecution.Table)
	var total int
	if err := s.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count job executions")
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s ORDER BY %s DESC LIMIT $1 OFFSET $2
	`, schema.JobExecution.ID, schema.JobExecution.JobName, schema.JobExecution.Status,
		schema.JobExecution.StartTime, schema.JobExecution.EndTime, schema.JobExecution.ErrorMessage,
		schema.JobExecution.Table, schema.JobExecution.StartTime)

	rows, err := s.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list job executions")
	}
	defer rows.Close()

	executions := make([]*Execution, 0)
	for rows.Next() {
		e := &Execution{}
		if err := rows.Scan(&e.ID, &e.JobKey, &e.Status, &e.StartTime, &e.EndTime, &e.ErrorMessage); err != nil {
			return nil, 0, dberr.Wrap(err, "scan job execution")
		}
		executions = append(executions, e)
	}
	return executions, total, rows.Err()
}

func (s *PostgresStore) ListScheduledJobs(ctx context.Context) ([]*ScheduledJob, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = true
	`, schema.ScheduledJob.ID, schema.ScheduledJob.JobName, schema.ScheduledJob.CronExpression,
		schema.ScheduledJob.IsEnabled, schema.ScheduledJob.LastRun, schema.ScheduledJob.NextRun,
		schema.ScheduledJob.Table, schema.ScheduledJob.IsEnabled)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list scheduled jobs")
	}
	defer rows.Close()

	jobs := make([]*ScheduledJob, 0)
	for rows.Next() {
		j := &ScheduledJob{}
		if err := rows.Scan(&j.ID, &j.JobKey, &j.CronExpression, &j.IsEnabled, &j.LastRun, &j.NextRun); err != nil {
			return nil, dberr.Wrap(err, "scan scheduled job")
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) MarkScheduleRun(ctx context.Context, scheduledJobID int, lastRun, nextRun time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1
	`, schema.ScheduledJob.Table, schema.ScheduledJob.LastRun, schema.ScheduledJob.NextRun, schema.ScheduledJob.ID)

	if _, err := s.db.Exec(ctx, query, scheduledJobID, lastRun, nextRun); err != nil {
		return dberr.Wrap(err, "mark schedule run")
	}
	return nil
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	domainJob "github.com/moveline/leadgate/domains/job"
)

const (
	defaultMaxAttempts = 5
	maxStoredErrorLen  = 2000
)

type jobQueue struct {
	db         *gorm.DB
	isPostgres bool
}

// NewJobQueue returns the gorm-backed durable job queue. The claim path
// uses FOR UPDATE SKIP LOCKED on Postgres and a plain transaction on
// SQLite, where the single-connection pool already serializes writers.
func NewJobQueue(db *gorm.DB) domainJob.IQueue {
	return &jobQueue{
		db:         db,
		isPostgres: db.Dialector.Name() == "postgres",
	}
}

func (q *jobQueue) Enqueue(ctx context.Context, tenantID, jobType string, payload map[string]any, opts domainJob.EnqueueOptions) (string, error) {
	if opts.IdempotencyKey != "" {
		if payload == nil {
			payload = map[string]any{}
		}
		payload["idempotency_key"] = opts.IdempotencyKey

		var existing JobModel
		err := q.db.WithContext(ctx).
			Where("idempotency_key = ?", opts.IdempotencyKey).
			First(&existing).Error
		if err == nil {
			return existing.ID, nil
		}
		if err != gorm.ErrRecordNotFound {
			return "", fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize job payload: %w", err)
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	now := time.Now().UTC()

	m := JobModel{
		ID:             uuid.NewString(),
		TenantID:       tenantID,
		JobType:        jobType,
		Payload:        string(data),
		IdempotencyKey: opts.IdempotencyKey,
		Status:         domainJob.StatusPending,
		Priority:       opts.Priority,
		MaxAttempts:    maxAttempts,
		RunAt:          now.Add(opts.Delay),
	}
	if err := q.db.WithContext(ctx).Create(&m).Error; err != nil {
		if opts.IdempotencyKey != "" && isUniqueViolation(err) {
			var existing JobModel
			lookupErr := q.db.WithContext(ctx).
				Where("idempotency_key = ?", opts.IdempotencyKey).
				First(&existing).Error
			if lookupErr != nil {
				return "", fmt.Errorf("failed to resolve idempotent enqueue: %w", lookupErr)
			}
			return existing.ID, nil
		}
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	logrus.Debugf("[JOB_QUEUE] enqueued %s job %s (priority=%d, delay=%s)", jobType, m.ID, opts.Priority, opts.Delay)
	return m.ID, nil
}

func (q *jobQueue) Claim(ctx context.Context, jobTypes []string, batch int) ([]domainJob.Job, error) {
	if batch <= 0 {
		batch = 5
	}
	if len(jobTypes) == 0 {
		return nil, nil
	}
	if q.isPostgres {
		return q.claimPostgres(ctx, jobTypes, batch)
	}
	return q.claimSerialized(ctx, jobTypes, batch)
}

// claimPostgres claims atomically under concurrent workers. The locking
// subquery skips rows held by other claimers instead of blocking on them.
func (q *jobQueue) claimPostgres(ctx context.Context, jobTypes []string, batch int) ([]domainJob.Job, error) {
	var models []JobModel
	err := q.db.WithContext(ctx).Raw(`
		WITH claimed AS (
			SELECT id FROM jobs
			WHERE status = 'pending'
			  AND run_at <= now()
			  AND job_type IN ?
			ORDER BY priority DESC, created_at ASC
			LIMIT ?
			FOR UPDATE SKIP LOCKED
		)
		UPDATE jobs
		SET status = 'running', attempts = attempts + 1, updated_at = now()
		WHERE id IN (SELECT id FROM claimed)
		RETURNING *`,
		jobTypes, batch,
	).Scan(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to claim jobs: %w", err)
	}
	return jobsFromModels(models)
}

// claimSerialized does the same select-then-update inside one transaction.
// Correct on SQLite because the pool is capped at one connection.
func (q *jobQueue) claimSerialized(ctx context.Context, jobTypes []string, batch int) ([]domainJob.Job, error) {
	var models []JobModel
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidates []JobModel
		err := tx.
			Where("status = ? AND run_at <= ? AND job_type IN ?", domainJob.StatusPending, time.Now().UTC(), jobTypes).
			Order("priority DESC, created_at ASC").
			Limit(batch).
			Find(&candidates).Error
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}

		ids := make([]string, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.ID)
		}
		err = tx.Model(&JobModel{}).
			Where("id IN ? AND status = ?", ids, domainJob.StatusPending).
			Updates(map[string]any{
				"status":     domainJob.StatusRunning,
				"attempts":   gorm.Expr("attempts + 1"),
				"updated_at": time.Now().UTC(),
			}).Error
		if err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Order("priority DESC, created_at ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim jobs: %w", err)
	}
	return jobsFromModels(models)
}

func (q *jobQueue) Complete(ctx context.Context, jobID string) error {
	err := q.db.WithContext(ctx).Model(&JobModel{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":     domainJob.StatusCompleted,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return nil
}

// Fail reschedules or buries the job in a single UPDATE so a crash between
// two statements cannot leave it half-failed. Attempts were already counted
// at claim time.
func (q *jobQueue) Fail(ctx context.Context, jobID string, errMsg string, backoff time.Duration) error {
	if len(errMsg) > maxStoredErrorLen {
		errMsg = errMsg[:maxStoredErrorLen]
	}
	now := time.Now().UTC()
	res := q.db.WithContext(ctx).Exec(`
		UPDATE jobs
		SET status = CASE WHEN attempts >= max_attempts THEN 'failed' ELSE 'pending' END,
		    run_at = CASE WHEN attempts >= max_attempts THEN run_at ELSE ? END,
		    last_error = ?,
		    updated_at = ?
		WHERE id = ?`,
		now.Add(backoff), errMsg, now, jobID,
	)
	if res.Error != nil {
		return fmt.Errorf("failed to record job failure: %w", res.Error)
	}
	return nil
}

// FailPermanently buries the job immediately. Used for errors that would
// fail identically on every retry (provider auth, closed template window).
func (q *jobQueue) FailPermanently(ctx context.Context, jobID string, errMsg string) error {
	if len(errMsg) > maxStoredErrorLen {
		errMsg = errMsg[:maxStoredErrorLen]
	}
	res := q.db.WithContext(ctx).Exec(`
		UPDATE jobs
		SET status = 'failed', last_error = ?, updated_at = ?
		WHERE id = ?`,
		errMsg, time.Now().UTC(), jobID,
	)
	if res.Error != nil {
		return fmt.Errorf("failed to bury job: %w", res.Error)
	}
	return nil
}

func (q *jobQueue) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Cnt    int64
	}
	err := q.db.WithContext(ctx).Model(&JobModel{}).
		Select("status, count(*) as cnt").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Cnt
	}
	return counts, nil
}

func (q *jobQueue) GetRecent(ctx context.Context, limit int) ([]domainJob.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []JobModel
	err := q.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobsFromModels(models)
}

func (q *jobQueue) CleanupCompleted(ctx context.Context, olderThan time.Duration) (int64, error) {
	return q.cleanupStatus(ctx, domainJob.StatusCompleted, olderThan)
}

func (q *jobQueue) CleanupFailed(ctx context.Context, olderThan time.Duration) (int64, error) {
	return q.cleanupStatus(ctx, domainJob.StatusFailed, olderThan)
}

func (q *jobQueue) cleanupStatus(ctx context.Context, status string, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res := q.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", status, cutoff).
		Delete(&JobModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to cleanup %s jobs: %w", status, res.Error)
	}
	if res.RowsAffected > 0 {
		logrus.Infof("[JOB_QUEUE] cleaned up %d %s jobs older than %s", res.RowsAffected, status, olderThan)
	}
	return res.RowsAffected, nil
}

func (q *jobQueue) ResetStale(ctx context.Context, staleAfter time.Duration) (int64, error) {
	now := time.Now().UTC()
	res := q.db.WithContext(ctx).Model(&JobModel{}).
		Where("status = ? AND updated_at < ?", domainJob.StatusRunning, now.Add(-staleAfter)).
		Updates(map[string]any{
			"status":     domainJob.StatusPending,
			"run_at":     now,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reset stale jobs: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		logrus.Warnf("[JOB_QUEUE] reset %d stale running jobs (stuck > %s)", res.RowsAffected, staleAfter)
	}
	return res.RowsAffected, nil
}

func jobsFromModels(models []JobModel) ([]domainJob.Job, error) {
	jobs := make([]domainJob.Job, 0, len(models))
	for _, m := range models {
		j := domainJob.Job{
			ID:          m.ID,
			TenantID:    m.TenantID,
			JobType:     m.JobType,
			Status:      m.Status,
			Priority:    m.Priority,
			Attempts:    m.Attempts,
			MaxAttempts: m.MaxAttempts,
			RunAt:       m.RunAt,
			CreatedAt:   m.CreatedAt,
			UpdatedAt:   m.UpdatedAt,
			LastError:   m.LastError,
		}
		if m.Payload != "" {
			if err := json.Unmarshal([]byte(m.Payload), &j.Payload); err != nil {
				return nil, fmt.Errorf("failed to parse payload of job %s: %w", m.ID, err)
			}
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

package job

import (
	"context"
	"errors"
	"time"
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job type names handled by the worker.
const (
	TypeOutboundReply  = "outbound_reply"
	TypeProcessMedia   = "process_media"
	TypeNotifyOperator = "notify_operator"
	TypeNotifyCrew     = "notify_crew_fallback"
	TypeMediaCleanup   = "media_cleanup"
)

// Job is one durable unit of background work.
type Job struct {
	ID          string
	TenantID    string
	JobType     string
	Payload     map[string]any
	Status      string
	Priority    int
	Attempts    int
	MaxAttempts int
	RunAt       time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastError   string
}

// EnqueueOptions tune a single enqueue call.
type EnqueueOptions struct {
	Priority    int
	Delay       time.Duration
	MaxAttempts int
	// IdempotencyKey makes the enqueue a no-op when a job with the same
	// key was already enqueued (payload field "idempotency_key").
	IdempotencyKey string
}

// IQueue is the durable relational job queue.
type IQueue interface {
	Enqueue(ctx context.Context, tenantID, jobType string, payload map[string]any, opts EnqueueOptions) (string, error)
	// Claim atomically moves up to batch pending due jobs of the given
	// types to running (attempts incremented) and returns them. Ordering
	// is priority DESC, created_at ASC.
	Claim(ctx context.Context, jobTypes []string, batch int) ([]Job, error)
	Complete(ctx context.Context, jobID string) error
	// Fail reschedules with backoff while attempts remain, otherwise
	// marks the job failed. The error text is truncated for storage.
	Fail(ctx context.Context, jobID string, errMsg string, backoff time.Duration) error
	// FailPermanently buries the job regardless of remaining attempts.
	FailPermanently(ctx context.Context, jobID string, errMsg string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
	GetRecent(ctx context.Context, limit int) ([]Job, error)
	CleanupCompleted(ctx context.Context, olderThan time.Duration) (int64, error)
	CleanupFailed(ctx context.Context, olderThan time.Duration) (int64, error)
	// ResetStale returns running jobs stuck longer than the threshold to
	// pending so a crashed worker cannot strand them.
	ResetStale(ctx context.Context, staleAfter time.Duration) (int64, error)
}

// PermanentError wraps a handler error that must not be retried, e.g. a
// provider 4xx that will fail identically on every attempt.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as not retryable. A nil err stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether any error in the chain is a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Handler processes one claimed job.
type Handler func(ctx context.Context, j Job) error

// RoleJobTypes maps a worker role to the job types it handles.
func RoleJobTypes(role string) []string {
	core := []string{TypeOutboundReply, TypeProcessMedia, TypeNotifyOperator, TypeMediaCleanup}
	dispatch := []string{TypeNotifyCrew}
	switch role {
	case "core":
		return core
	case "dispatch":
		return dispatch
	default:
		return append(append([]string{}, core...), dispatch...)
	}
}

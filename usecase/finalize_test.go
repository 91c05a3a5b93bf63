package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainJob "github.com/moveline/leadgate/domains/job"
	domainLead "github.com/moveline/leadgate/domains/lead"
)

type enqueuedJob struct {
	tenantID string
	jobType  string
	payload  map[string]any
	opts     domainJob.EnqueueOptions
}

type recordingQueue struct {
	jobs []enqueuedJob
}

func (q *recordingQueue) Enqueue(_ context.Context, tenantID, jobType string, payload map[string]any, opts domainJob.EnqueueOptions) (string, error) {
	q.jobs = append(q.jobs, enqueuedJob{tenantID: tenantID, jobType: jobType, payload: payload, opts: opts})
	return jobType, nil
}

func (q *recordingQueue) Claim(context.Context, []string, int) ([]domainJob.Job, error) {
	return nil, nil
}
func (q *recordingQueue) Complete(context.Context, string) error                    { return nil }
func (q *recordingQueue) Fail(context.Context, string, string, time.Duration) error { return nil }
func (q *recordingQueue) FailPermanently(context.Context, string, string) error     { return nil }
func (q *recordingQueue) CountByStatus(context.Context) (map[string]int64, error) {
	return nil, nil
}
func (q *recordingQueue) GetRecent(context.Context, int) ([]domainJob.Job, error) { return nil, nil }
func (q *recordingQueue) CleanupCompleted(context.Context, time.Duration) (int64, error) {
	return 0, nil
}
func (q *recordingQueue) CleanupFailed(context.Context, time.Duration) (int64, error) {
	return 0, nil
}
func (q *recordingQueue) ResetStale(context.Context, time.Duration) (int64, error) { return 0, nil }

func TestFinalizeEnqueuesOperatorNotification(t *testing.T) {
	sessions := newFakeSessionStore()
	leads := &fakeLeadRepo{}
	queue := &recordingQueue{}
	cfg := testConfig()

	f := NewLeadFinalizer(cfg, leads, sessions, queue, nil)

	payload := domainLead.Payload{TenantID: "default", LeadID: "lead-1", ChatID: "chat-1"}
	require.NoError(t, f.Finalize(context.Background(), "default", "lead-1", "chat-1", payload))

	require.Len(t, leads.saved, 1)
	require.Len(t, queue.jobs, 1)

	job := queue.jobs[0]
	assert.Equal(t, domainJob.TypeNotifyOperator, job.jobType)
	assert.Equal(t, "default", job.tenantID)
	assert.Equal(t, 10, job.opts.Priority)
	assert.Equal(t, "lead-1:notify_operator_v1", job.opts.IdempotencyKey)
	assert.EqualValues(t, 1, job.payload["lead_seq"])

	// The persisted payload carries the sequence number for formatting.
	saved := job.payload["payload"].(domainLead.Payload)
	assert.Equal(t, "1", saved.Data.GetExt("lead_number"))
}

func TestFinalizeClearsSession(t *testing.T) {
	sessions := newFakeSessionStore()
	queue := &recordingQueue{}
	f := NewLeadFinalizer(testConfig(), &fakeLeadRepo{}, sessions, queue, nil)

	require.NoError(t, f.Finalize(context.Background(), "default", "lead-1", "chat-1", domainLead.Payload{}))
	assert.Equal(t, 1, sessions.deleteCalls)
}

func TestFinalizeCrewFallbackDelayed(t *testing.T) {
	cfg := testConfig()
	cfg.Dispatch.CrewFallbackEnabled = true
	cfg.Dispatch.CrewFallbackDelayMs = 1500

	queue := &recordingQueue{}
	f := NewLeadFinalizer(cfg, &fakeLeadRepo{}, newFakeSessionStore(), queue, nil)

	require.NoError(t, f.Finalize(context.Background(), "default", "lead-1", "chat-1", domainLead.Payload{}))
	require.Len(t, queue.jobs, 2)

	crew := queue.jobs[1]
	assert.Equal(t, domainJob.TypeNotifyCrew, crew.jobType)
	assert.Equal(t, 1500*time.Millisecond, crew.opts.Delay)
	assert.Equal(t, "lead-1:crew_fallback_v1", crew.opts.IdempotencyKey)
}

func TestFinalizeCrewFallbackDisabledByDefault(t *testing.T) {
	queue := &recordingQueue{}
	f := NewLeadFinalizer(testConfig(), &fakeLeadRepo{}, newFakeSessionStore(), queue, nil)

	require.NoError(t, f.Finalize(context.Background(), "default", "lead-1", "chat-1", domainLead.Payload{}))
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, domainJob.TypeNotifyOperator, queue.jobs[0].jobType)
}

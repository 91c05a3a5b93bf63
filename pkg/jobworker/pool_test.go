package jobworker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainJob "github.com/moveline/leadgate/domains/job"
)

// fakeQueue is a minimal in-memory IQueue for driving the pool.
type fakeQueue struct {
	mu          sync.Mutex
	pending     []domainJob.Job
	completed   []string
	failed      map[string]string
	failBackoff map[string]time.Duration
	buried      map[string]string
	staleResets int64
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{
		failed:      map[string]string{},
		failBackoff: map[string]time.Duration{},
		buried:      map[string]string{},
	}
}

func (q *fakeQueue) push(j domainJob.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, j)
}

func (q *fakeQueue) Enqueue(_ context.Context, tenantID, jobType string, payload map[string]any, _ domainJob.EnqueueOptions) (string, error) {
	q.push(domainJob.Job{ID: jobType, TenantID: tenantID, JobType: jobType, Payload: payload})
	return jobType, nil
}

func (q *fakeQueue) Claim(_ context.Context, jobTypes []string, batch int) ([]domainJob.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	allowed := map[string]bool{}
	for _, t := range jobTypes {
		allowed[t] = true
	}

	var claimed []domainJob.Job
	var rest []domainJob.Job
	for _, j := range q.pending {
		if len(claimed) < batch && allowed[j.JobType] {
			j.Attempts++
			claimed = append(claimed, j)
		} else {
			rest = append(rest, j)
		}
	}
	q.pending = rest
	return claimed, nil
}

func (q *fakeQueue) Complete(_ context.Context, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.completed = append(q.completed, jobID)
	return nil
}

func (q *fakeQueue) Fail(_ context.Context, jobID string, errMsg string, backoff time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed[jobID] = errMsg
	q.failBackoff[jobID] = backoff
	return nil
}

func (q *fakeQueue) FailPermanently(_ context.Context, jobID string, errMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buried[jobID] = errMsg
	return nil
}

func (q *fakeQueue) CountByStatus(context.Context) (map[string]int64, error) { return nil, nil }
func (q *fakeQueue) GetRecent(context.Context, int) ([]domainJob.Job, error) { return nil, nil }
func (q *fakeQueue) CleanupCompleted(context.Context, time.Duration) (int64, error) {
	return 0, nil
}
func (q *fakeQueue) CleanupFailed(context.Context, time.Duration) (int64, error) { return 0, nil }
func (q *fakeQueue) ResetStale(context.Context, time.Duration) (int64, error) {
	atomic.AddInt64(&q.staleResets, 1)
	return 0, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestPoolExecutesAndCompletes(t *testing.T) {
	q := newFakeQueue()
	q.push(domainJob.Job{ID: "j1", JobType: domainJob.TypeOutboundReply, Payload: map[string]any{"text": "hi"}})

	var handled int64
	p := NewPool(q, "core", Options{PollInterval: 10 * time.Millisecond})
	p.Register(domainJob.TypeOutboundReply, func(_ context.Context, j domainJob.Job) error {
		assert.Equal(t, "hi", j.Payload["text"])
		atomic.AddInt64(&handled, 1)
		return nil
	})

	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.completed) == 1
	})
	assert.Equal(t, int64(1), atomic.LoadInt64(&handled))

	stats := p.Stats()
	assert.True(t, stats.Running)
	assert.Equal(t, int64(1), stats.TotalClaimed)
	assert.Equal(t, int64(1), stats.TotalCompleted)
	assert.Zero(t, stats.TotalFailed)
}

func TestPoolFailsOnHandlerError(t *testing.T) {
	q := newFakeQueue()
	q.push(domainJob.Job{ID: "j1", JobType: domainJob.TypeNotifyOperator})

	p := NewPool(q, "core", Options{PollInterval: 10 * time.Millisecond})
	p.Register(domainJob.TypeNotifyOperator, func(context.Context, domainJob.Job) error {
		return errors.New("send timeout")
	})

	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.failed) == 1
	})
	q.mu.Lock()
	assert.Equal(t, "send timeout", q.failed["j1"])
	assert.Greater(t, q.failBackoff["j1"], time.Duration(0))
	q.mu.Unlock()
	assert.Equal(t, int64(1), p.Stats().TotalFailed)
}

func TestPoolBuriesPermanentFailures(t *testing.T) {
	q := newFakeQueue()
	q.push(domainJob.Job{ID: "j1", JobType: domainJob.TypeOutboundReply})

	p := NewPool(q, "core", Options{PollInterval: 10 * time.Millisecond})
	p.Register(domainJob.TypeOutboundReply, func(context.Context, domainJob.Job) error {
		return domainJob.Permanent(errors.New("telegram API returned HTTP 403: forbidden"))
	})

	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.buried) == 1
	})
	q.mu.Lock()
	assert.Contains(t, q.buried["j1"], "HTTP 403")
	assert.Empty(t, q.failed, "permanent failures skip the retry path")
	q.mu.Unlock()
	assert.Equal(t, int64(1), p.Stats().TotalFailed)
}

func TestPoolLeavesUnknownJobTypeForOtherWorkers(t *testing.T) {
	q := newFakeQueue()
	q.push(domainJob.Job{ID: "j1", JobType: domainJob.TypeProcessMedia})

	// No handler registered for process_media.
	p := NewPool(q, "core", Options{PollInterval: 10 * time.Millisecond})
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool {
		return p.Stats().TotalUnknown >= 1
	})

	// The job is neither failed nor buried; the stale sweep will hand it
	// back to a worker with the handler.
	q.mu.Lock()
	assert.Empty(t, q.failed)
	assert.Empty(t, q.buried)
	assert.Empty(t, q.completed)
	q.mu.Unlock()
}

func TestPoolRecoversFromHandlerPanic(t *testing.T) {
	q := newFakeQueue()
	q.push(domainJob.Job{ID: "boom", JobType: domainJob.TypeOutboundReply})
	q.push(domainJob.Job{ID: "ok", JobType: domainJob.TypeOutboundReply})

	p := NewPool(q, "core", Options{PollInterval: 10 * time.Millisecond, BatchSize: 1})
	p.Register(domainJob.TypeOutboundReply, func(_ context.Context, j domainJob.Job) error {
		if j.ID == "boom" {
			panic("bad payload")
		}
		return nil
	})

	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.failed) == 1 && len(q.completed) == 1
	})
	q.mu.Lock()
	assert.Contains(t, q.failed["boom"], "handler panic")
	assert.Equal(t, []string{"ok"}, q.completed)
	q.mu.Unlock()
}

func TestPoolRoleFiltersJobTypes(t *testing.T) {
	q := newFakeQueue()
	q.push(domainJob.Job{ID: "crew", JobType: domainJob.TypeNotifyCrew})
	q.push(domainJob.Job{ID: "reply", JobType: domainJob.TypeOutboundReply})

	var handled []string
	var mu sync.Mutex
	p := NewPool(q, "dispatch", Options{PollInterval: 10 * time.Millisecond})
	p.Register(domainJob.TypeNotifyCrew, func(_ context.Context, j domainJob.Job) error {
		mu.Lock()
		handled = append(handled, j.ID)
		mu.Unlock()
		return nil
	})

	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.completed) == 1
	})

	mu.Lock()
	assert.Equal(t, []string{"crew"}, handled)
	mu.Unlock()

	// The outbound_reply job stays queued for a core worker.
	q.mu.Lock()
	require.Len(t, q.pending, 1)
	assert.Equal(t, "reply", q.pending[0].JobType)
	q.mu.Unlock()
}

func TestPoolStopIsGracefulAndIdempotent(t *testing.T) {
	q := newFakeQueue()
	p := NewPool(q, "core", Options{PollInterval: 10 * time.Millisecond})
	p.Start(context.Background())

	p.Stop()
	p.Stop()
	assert.False(t, p.Stats().Running)
}

func TestRetryDelayBounds(t *testing.T) {
	p := NewPool(newFakeQueue(), "core", Options{
		BaseRetryDelay: time.Second,
		MaxRetryDelay:  time.Minute,
	})

	for attempts := 0; attempts < 20; attempts++ {
		d := p.retryDelay(attempts)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, 90*time.Second)
	}

	// Deep retries clamp to the cap before jitter.
	d := p.retryDelay(50)
	assert.LessOrEqual(t, d, 90*time.Second)
	assert.GreaterOrEqual(t, d, 30*time.Second)
}

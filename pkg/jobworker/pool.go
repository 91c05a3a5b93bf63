// Package jobworker polls the durable job queue and routes claimed jobs to
// registered handlers. One pool per process role; the queue itself arbitrates
// between concurrent pools via its claim semantics.
package jobworker

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	domainJob "github.com/moveline/leadgate/domains/job"
)

const (
	DefaultPollInterval   = 1 * time.Second
	DefaultBatchSize      = 5
	DefaultBaseRetryDelay = 5 * time.Second
	DefaultMaxRetryDelay  = 10 * time.Minute
	DefaultStaleTimeout   = 5 * time.Minute

	// staleSweepEvery is measured in poll loops, so roughly one sweep per
	// minute at the default poll interval.
	staleSweepEvery = 60

	maxHandlerErrorLen = 500
)

// Options tune a worker pool. Zero values fall back to the defaults above.
type Options struct {
	PollInterval   time.Duration
	BatchSize      int
	BaseRetryDelay time.Duration
	MaxRetryDelay  time.Duration
	StaleTimeout   time.Duration
}

// PoolStats is a point-in-time snapshot for the admin surface.
type PoolStats struct {
	Running        bool     `json:"running"`
	JobTypes       []string `json:"job_types"`
	TotalClaimed   int64    `json:"total_claimed"`
	TotalCompleted int64    `json:"total_completed"`
	TotalFailed    int64    `json:"total_failed"`
	TotalUnknown   int64    `json:"total_unknown"`
	LoopCount      int64    `json:"loop_count"`
}

// Pool is a polling worker bound to a set of job types.
type Pool struct {
	queue    domainJob.IQueue
	jobTypes []string
	opts     Options

	handlersMu sync.RWMutex
	handlers   map[string]domainJob.Handler

	running  int32
	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup

	totalClaimed   int64
	totalCompleted int64
	totalFailed    int64
	totalUnknown   int64
	loopCount      int64
}

// NewPool creates a pool for the job types of the given worker role.
func NewPool(queue domainJob.IQueue, role string, opts Options) *Pool {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BaseRetryDelay <= 0 {
		opts.BaseRetryDelay = DefaultBaseRetryDelay
	}
	if opts.MaxRetryDelay <= 0 {
		opts.MaxRetryDelay = DefaultMaxRetryDelay
	}
	if opts.StaleTimeout <= 0 {
		opts.StaleTimeout = DefaultStaleTimeout
	}
	return &Pool{
		queue:    queue,
		jobTypes: domainJob.RoleJobTypes(role),
		opts:     opts,
		handlers: make(map[string]domainJob.Handler),
		stopCh:   make(chan struct{}),
	}
}

// Register binds a handler to a job type. Safe before and after Start.
func (p *Pool) Register(jobType string, h domainJob.Handler) {
	p.handlersMu.Lock()
	p.handlers[jobType] = h
	p.handlersMu.Unlock()
}

// Start launches the poll loop. Call Stop for a graceful shutdown.
func (p *Pool) Start(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&p.running, 0, 1) {
		return
	}
	p.wg.Add(1)
	go p.loop(ctx)

	p.handlersMu.RLock()
	registered := make([]string, 0, len(p.handlers))
	for t := range p.handlers {
		registered = append(registered, t)
	}
	p.handlersMu.RUnlock()
	logrus.Infof("[JOB_WORKER] started: poll=%s batch=%d types=%v handlers=%v",
		p.opts.PollInterval, p.opts.BatchSize, p.jobTypes, registered)
}

// Stop halts polling and waits for the in-flight batch to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.running, 0)
		close(p.stopCh)
		p.wg.Wait()
		logrus.Info("[JOB_WORKER] stopped")
	})
}

func (p *Pool) loop(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		default:
		}

		n := atomic.AddInt64(&p.loopCount, 1)
		if n%staleSweepEvery == 0 {
			if _, err := p.queue.ResetStale(ctx, p.opts.StaleTimeout); err != nil {
				logrus.WithError(err).Warn("[JOB_WORKER] stale job reset failed")
			}
		}

		jobs, err := p.queue.Claim(ctx, p.jobTypes, p.opts.BatchSize)
		if err != nil {
			logrus.WithError(err).Error("[JOB_WORKER] claim failed")
			p.sleep(ctx, p.opts.PollInterval*2)
			continue
		}

		if len(jobs) == 0 {
			p.sleep(ctx, p.opts.PollInterval)
			continue
		}

		atomic.AddInt64(&p.totalClaimed, int64(len(jobs)))
		batch := pool.New().WithMaxGoroutines(len(jobs))
		for _, j := range jobs {
			batch.Go(func() {
				p.execute(ctx, j)
			})
		}
		batch.Wait()

		// Brief pause between busy batches so the DB gets some air.
		p.sleep(ctx, 100*time.Millisecond)
	}
}

func (p *Pool) execute(ctx context.Context, j domainJob.Job) {
	p.handlersMu.RLock()
	handler := p.handlers[j.JobType]
	p.handlersMu.RUnlock()

	if handler == nil {
		atomic.AddInt64(&p.totalUnknown, 1)
		// Leave the job claimed untouched; the stale sweep returns it to
		// pending for a worker that knows the type.
		logrus.Errorf("[JOB_WORKER] no handler registered for job type %s (job %s)", j.JobType, j.ID)
		return
	}

	err := p.runHandler(ctx, handler, j)
	if err == nil {
		if cErr := p.queue.Complete(ctx, j.ID); cErr != nil {
			logrus.WithError(cErr).Errorf("[JOB_WORKER] failed to complete job %s", j.ID)
			return
		}
		atomic.AddInt64(&p.totalCompleted, 1)
		logrus.Infof("[JOB_WORKER] job completed: id=%s type=%s attempt=%d", shortID(j.ID), j.JobType, j.Attempts)
		return
	}

	atomic.AddInt64(&p.totalFailed, 1)
	errMsg := err.Error()
	if len(errMsg) > maxHandlerErrorLen {
		errMsg = errMsg[:maxHandlerErrorLen]
	}
	if domainJob.IsPermanent(err) {
		if fErr := p.queue.FailPermanently(ctx, j.ID, errMsg); fErr != nil {
			logrus.WithError(fErr).Errorf("[JOB_WORKER] failed to bury job %s", j.ID)
		}
		logrus.Warnf("[JOB_WORKER] job failed permanently: id=%s type=%s error=%s", shortID(j.ID), j.JobType, errMsg)
		return
	}
	if fErr := p.queue.Fail(ctx, j.ID, errMsg, p.retryDelay(j.Attempts)); fErr != nil {
		logrus.WithError(fErr).Errorf("[JOB_WORKER] failed to record failure of job %s", j.ID)
	}
	logrus.Warnf("[JOB_WORKER] job failed: id=%s type=%s attempt=%d error=%s", shortID(j.ID), j.JobType, j.Attempts, errMsg)
}

// runHandler converts handler panics into ordinary errors so one bad job
// cannot take the loop down.
func (p *Pool) runHandler(ctx context.Context, handler domainJob.Handler, j domainJob.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, j)
}

// retryDelay is exponential in the attempts already spent, capped, then
// jittered by a uniform factor in [0.5, 1.5) to spread retry bursts.
func (p *Pool) retryDelay(attempts int) time.Duration {
	shift := attempts
	if shift > 16 {
		shift = 16
	}
	d := p.opts.BaseRetryDelay << shift
	if d > p.opts.MaxRetryDelay || d <= 0 {
		d = p.opts.MaxRetryDelay
	}
	return time.Duration(float64(d) * (0.5 + rand.Float64()))
}

func (p *Pool) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-p.stopCh:
	case <-t.C:
	}
}

// Stats returns a snapshot for the admin endpoint.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Running:        atomic.LoadInt32(&p.running) == 1,
		JobTypes:       append([]string{}, p.jobTypes...),
		TotalClaimed:   atomic.LoadInt64(&p.totalClaimed),
		TotalCompleted: atomic.LoadInt64(&p.totalCompleted),
		TotalFailed:    atomic.LoadInt64(&p.totalFailed),
		TotalUnknown:   atomic.LoadInt64(&p.totalUnknown),
		LoopCount:      atomic.LoadInt64(&p.loopCount),
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

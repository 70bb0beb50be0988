package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/raphaelgruber/docpipe/internal/config"
	"github.com/raphaelgruber/docpipe/internal/models"
)

var (
	// ErrQueueFull is returned by Submit under the reject admission policy
	// when the queue has no free slot.
	ErrQueueFull = errors.New("job queue is full")

	// ErrPoolClosed is returned by Submit after Close.
	ErrPoolClosed = errors.New("worker pool is closed")
)

// JobProcessor runs one job to completion.
type JobProcessor interface {
	Process(ctx context.Context, job *models.Job) Outcome
}

// PoolConfig configures a worker pool.
type PoolConfig struct {
	Workers   int    // Default 5
	QueueSize int    // Default 100
	Admission string // config.AdmissionBlock (default) or config.AdmissionReject

	// OnOutcome, if set, is called from the worker goroutine after each job.
	OnOutcome func(Outcome)
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.Workers <= 0 {
		c.Workers = 5
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 100
	}
	if c.Admission != config.AdmissionReject {
		c.Admission = config.AdmissionBlock
	}
	return c
}

// Stats is a point-in-time view of pool progress.
type Stats struct {
	Submitted int
	Queued    int
	Running   int
	Completed int // Persisted with status Completed
	Failed    int // Persisted with status Failed, or persistence error
	Skipped   int // Duplicate document name
	Dropped   int // No record written
}

// Done returns the number of jobs that have finished.
func (s Stats) Done() int {
	return s.Completed + s.Failed + s.Skipped + s.Dropped
}

// Pool runs jobs on a fixed number of workers fed by a bounded FIFO queue.
type Pool struct {
	processor JobProcessor
	cfg       PoolConfig
	logger    *slog.Logger

	jobs chan *models.Job
	wg   sync.WaitGroup

	// mu guards closed and the send side of jobs.
	mu     sync.RWMutex
	closed bool

	startOnce sync.Once
	closeOnce sync.Once

	submitted atomic.Int64
	running   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
	dropped   atomic.Int64
}

// NewPool creates a pool. Call Start before submitting under the block policy.
func NewPool(processor JobProcessor, cfg PoolConfig, logger *slog.Logger) *Pool {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		processor: processor,
		cfg:       cfg,
		logger:    logger,
		jobs:      make(chan *models.Job, cfg.QueueSize),
	}
}

// Start launches the workers. Jobs run with a context detached from ctx's
// cancellation, so in-flight and queued jobs finish on shutdown.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		jobCtx := context.WithoutCancel(ctx)
		p.logger.Info("starting worker pool",
			"workers", p.cfg.Workers,
			"queue_size", p.cfg.QueueSize,
			"admission", p.cfg.Admission,
		)
		for i := 0; i < p.cfg.Workers; i++ {
			p.wg.Add(1)
			go p.worker(jobCtx, i)
		}
	})
}

func (p *Pool) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.running.Add(1)
		out := p.run(ctx, workerID, job)
		p.running.Add(-1)
		p.count(out)
		if p.cfg.OnOutcome != nil {
			p.cfg.OnOutcome(out)
		}
	}
}

// run shields the worker from a processor that panics.
func (p *Pool) run(ctx context.Context, workerID int, job *models.Job) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("processor panicked", "worker", workerID, "job_id", job.ID, "panic", r)
			out = Outcome{JobID: job.ID, State: StateDropped}
		}
	}()
	p.logger.Debug("processing job", "worker", workerID, "job_id", job.ID, "file", job.Path)
	return p.processor.Process(ctx, job)
}

func (p *Pool) count(out Outcome) {
	switch {
	case out.State == StateDropped:
		p.dropped.Add(1)
	case out.Skipped:
		p.skipped.Add(1)
	case out.State == StatePersisted && out.Record != nil && out.Record.Status == models.StatusCompleted:
		p.completed.Add(1)
	default:
		p.failed.Add(1)
	}
}

// Submit enqueues a job for path. Under the block policy it waits for a free
// slot or ctx cancellation; under the reject policy it returns ErrQueueFull
// immediately when the queue is full.
func (p *Pool) Submit(ctx context.Context, path string, declaredPages int) (*models.Job, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	job := models.NewJob(path, declaredPages)

	if p.cfg.Admission == config.AdmissionReject {
		select {
		case p.jobs <- job:
		default:
			p.logger.Warn("queue full, rejecting job", "file", path)
			return nil, ErrQueueFull
		}
	} else {
		select {
		case p.jobs <- job:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.submitted.Add(1)
	p.logger.Debug("job submitted", "job_id", job.ID, "file", path, "declared_pages", job.DeclaredPages)
	return job, nil
}

// Close stops accepting jobs, lets the workers drain the queue and waits for
// them to exit. A pool that was never started is started here so accepted
// jobs still get processed.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
	})
	p.Start(context.Background())
	p.wg.Wait()

	s := p.Stats()
	p.logger.Info("worker pool stopped",
		"submitted", s.Submitted,
		"completed", s.Completed,
		"failed", s.Failed,
		"skipped", s.Skipped,
		"dropped", s.Dropped,
	)
}

// Stats returns current counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: int(p.submitted.Load()),
		Queued:    len(p.jobs),
		Running:   int(p.running.Load()),
		Completed: int(p.completed.Load()),
		Failed:    int(p.failed.Load()),
		Skipped:   int(p.skipped.Load()),
		Dropped:   int(p.dropped.Load()),
	}
}

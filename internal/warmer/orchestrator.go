// Package warmer keeps the page cache fresh by re-rendering posts on a
// schedule and on demand.
package warmer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("warmer stopped")

// Config sizes the worker pool.
type Config struct {
	WorkerCount         int
	MaxQueueSize        int
	MaxConcurrentRender int
	JobTTL              time.Duration
	// Interval between scheduled full revalidations. Zero disables them.
	Interval time.Duration
}

// Orchestrator manages the revalidation queue and workers.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	pub   Publisher
	log   *slog.Logger
	cfg   Config

	mu      sync.Mutex
	stopped bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the warmer. Call Start to run it.
func NewOrchestrator(cfg Config, pub Publisher, log *slog.Logger) *Orchestrator {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxQueueSize < 1 {
		cfg.MaxQueueSize = 16
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		pub:   pub,
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines and queues an initial full warm.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.pub, o.log, o.cfg.MaxConcurrentRender)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()

	if err := o.Submit(NewJob("", "startup")); err != nil {
		o.log.Warn("initial warm not queued", "error", err)
	}

	if o.cfg.Interval > 0 {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			ticker := time.NewTicker(o.cfg.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-workerCtx.Done():
					return
				case <-ticker.C:
					if err := o.Submit(NewJob("", "scheduled")); err != nil {
						o.log.Warn("scheduled warm not queued", "error", err)
					}
				}
			}
		}()
	}
}

// Stop gracefully shuts down the workers.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		job.SetStatus(StatusFailed, "stopped")
		return ErrStopped
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

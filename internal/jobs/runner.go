package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/MeKo-Tech/pdiff/internal/compare"
)

// ErrQueueFull is returned by Enqueue when the job queue is at capacity.
var ErrQueueFull = errors.New("job queue is full")

// Runner executes queued comparison jobs on a fixed pool of workers.
type Runner struct {
	store    *Store
	comparer *compare.Comparer
	queue    chan *Job
	workers  int
	wg       sync.WaitGroup
}

// NewRunner creates a runner backed by the given store and comparer.
// workers and queueSize fall back to 1 and 16 when non-positive.
func NewRunner(store *Store, comparer *compare.Comparer, workers, queueSize int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Runner{
		store:    store,
		comparer: comparer,
		queue:    make(chan *Job, queueSize),
		workers:  workers,
	}
}

// Start launches the worker goroutines. Workers exit when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	for i := range r.workers {
		r.wg.Add(1)
		go func(worker int) {
			defer r.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-r.queue:
					slog.Debug("job picked up", "job_id", job.ID, "worker", worker)
					r.run(ctx, job)
				}
			}
		}(i)
	}
}

// Wait blocks until all workers have exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Enqueue registers the job in the store and schedules it for execution.
func (r *Runner) Enqueue(job *Job) error {
	r.store.Put(job)
	select {
	case r.queue <- job:
		return nil
	default:
		job.Fail(ErrQueueFull.Error())
		return ErrQueueFull
	}
}

func (r *Runner) run(ctx context.Context, job *Job) {
	job.SetStatus(StatusRunning)

	comparer := r.comparer.WithProgress(&jobProgress{job: job})
	res, artifacts, err := comparer.CompareToArchive(ctx, job.LeftPath, job.RightPath, job.OutDir)
	if err != nil {
		slog.Error("comparison failed", "job_id", job.ID, "error", err)
		job.Fail(err.Error())
		return
	}

	job.Complete(res, artifacts)
	slog.Info("comparison finished", "job_id", job.ID, "archive", artifacts.Archive)
}

// jobProgress mirrors comparer progress into the job record.
type jobProgress struct {
	job *Job
}

func (p *jobProgress) OnStart(total int) {
	p.job.SetProgress(Progress{Current: 0, Total: total})
}

func (p *jobProgress) OnStep(current, total int, step string) {
	p.job.SetProgress(Progress{Current: current, Total: total, Step: step})
}

func (p *jobProgress) OnComplete() {}

func (p *jobProgress) OnError(step string, err error) {}

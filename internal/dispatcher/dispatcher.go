package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"papermill/internal/jobs"
	"papermill/internal/logging"
	"papermill/internal/services"
)

// Runner executes a single job to a terminal state.
type Runner interface {
	Run(ctx context.Context, jobID int64)
}

// Dispatcher owns the bounded worker pool that drives conversions.
type Dispatcher struct {
	store   *jobs.Store
	runner  Runner
	workers int
	queue   chan int64
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a dispatcher with the given worker count and queue capacity.
func New(store *jobs.Store, runner Runner, workers, queueCapacity int, logger *slog.Logger) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("jobs store is required")
	}
	if runner == nil {
		return nil, errors.New("job runner is required")
	}
	if workers <= 0 {
		workers = 1
	}
	if queueCapacity <= 0 {
		queueCapacity = workers * 16
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{
		store:   store,
		runner:  runner,
		workers: workers,
		queue:   make(chan int64, queueCapacity),
		logger:  logging.NewComponentLogger(logger, "dispatcher"),
	}, nil
}

// Start launches the worker pool and recovers state left by a previous run:
// jobs stuck in processing are failed, jobs still pending are re-enqueued.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return errors.New("dispatcher already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running = true
	d.wg.Add(d.workers)
	d.mu.Unlock()

	for i := 0; i < d.workers; i++ {
		go d.runWorker(runCtx)
	}

	if err := d.recover(runCtx); err != nil {
		d.logger.Warn("startup recovery incomplete", logging.Error(err))
	}
	return nil
}

// Stop terminates background processing and waits for in-flight jobs.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	cancel := d.cancel
	d.running = false
	d.cancel = nil
	d.mu.Unlock()

	cancel()
	d.wg.Wait()
}

// Submit records a new pending job and hands it to the pool. Jobs that cannot
// be queued are failed immediately so they are never left stuck pending.
func (d *Dispatcher) Submit(ctx context.Context, originalFilename, convertedFilename string, kind jobs.Kind) (*jobs.Job, error) {
	job, err := d.store.Create(ctx, originalFilename, convertedFilename, kind)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if err := d.enqueue(job.ID); err != nil {
		failMsg := "Conversion failed: service is overloaded, try again later"
		if failErr := d.store.SetFailed(ctx, job.ID, failMsg); failErr != nil {
			d.logger.Error("mark overflow job failed", logging.Error(failErr))
		}
		job.Status = jobs.StatusFailed
		job.ErrorMessage = failMsg
		d.logger.Warn("job rejected",
			logging.Int64(logging.FieldJobID, job.ID),
			logging.Error(err),
		)
		return job, nil
	}

	d.logger.Info("job queued",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String("kind", string(kind)),
	)
	return job, nil
}

func (d *Dispatcher) enqueue(jobID int64) error {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if !running {
		return errors.New("dispatcher stopped")
	}
	select {
	case d.queue <- jobID:
		return nil
	default:
		return errors.New("job queue full")
	}
}

func (d *Dispatcher) runWorker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-d.queue:
			d.runner.Run(services.WithJobID(ctx, jobID), jobID)
		}
	}
}

func (d *Dispatcher) recover(ctx context.Context) error {
	failed, err := d.store.FailStuckProcessing(ctx, jobs.RestartStopReason)
	if err != nil {
		return fmt.Errorf("fail stuck processing: %w", err)
	}
	if failed > 0 {
		d.logger.Warn("failed jobs left mid-processing by previous run",
			logging.Int64("count", failed),
		)
	}

	pending, err := d.store.PendingIDs(ctx)
	if err != nil {
		return fmt.Errorf("list pending jobs: %w", err)
	}
	for _, id := range pending {
		if err := d.enqueue(id); err != nil {
			failMsg := "Conversion failed: service is overloaded, try again later"
			if failErr := d.store.SetFailed(ctx, id, failMsg); failErr != nil {
				d.logger.Error("mark unrecovered job failed", logging.Error(failErr))
			}
			continue
		}
		d.logger.Info("re-queued pending job", logging.Int64(logging.FieldJobID, id))
	}
	return nil
}

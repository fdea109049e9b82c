package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"papermill/internal/config"
	"papermill/internal/dispatcher"
	"papermill/internal/httpapi"
	"papermill/internal/jobs"
	"papermill/internal/logging"
	"papermill/internal/staging"
)

// staleUploadAge is how long an orphaned upload may linger before the
// startup sweep reclaims it.
const staleUploadAge = 24 * time.Hour

// Daemon coordinates the conversion services and enforces single-instance
// execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *jobs.Store
	area       *staging.Area
	dispatcher *dispatcher.Dispatcher
	api        *httpapi.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	JobsDBPath   string
	LockFilePath string
	Jobs         jobs.HealthSummary
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *jobs.Store, area *staging.Area, disp *dispatcher.Dispatcher, api *httpapi.Server, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || area == nil || disp == nil || api == nil {
		return nil, errors.New("daemon requires config, store, staging area, dispatcher, and api server")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "papermilld.lock")
	return &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      store,
		area:       area,
		dispatcher: disp,
		api:        api,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, launches the worker pool, and binds the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another papermill daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	staging.CleanStale(runCtx, d.area.UploadDir(), staleUploadAge, d.logger)

	if err := d.dispatcher.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start dispatcher: %w", err)
	}
	if err := d.api.Start(runCtx); err != nil {
		d.dispatcher.Stop()
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("papermill daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API and worker pool, then releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.Stop()
	d.dispatcher.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("papermill daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddr reports the bound API listener address once started.
func (d *Daemon) APIAddr() string {
	return d.api.Addr()
}

// Running reports whether the daemon is started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status summarizes the daemon and job queue state.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		JobsDBPath:   d.store.Path(),
		LockFilePath: d.lockPath,
	}
	if health, err := d.store.Health(ctx); err == nil {
		status.Jobs = health
	}
	return status
}

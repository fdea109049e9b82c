package dispatcher_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"papermill/internal/dispatcher"
	"papermill/internal/jobs"
	"papermill/internal/logging"
	"papermill/internal/testsupport"
)

type recordingRunner struct {
	mu      sync.Mutex
	ids     []int64
	started int
	block   chan struct{}
	store   *jobs.Store
}

func (r *recordingRunner) Run(ctx context.Context, jobID int64) {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return
		}
	}
	r.mu.Lock()
	r.ids = append(r.ids, jobID)
	r.mu.Unlock()
	if r.store != nil {
		_ = r.store.SetProcessing(ctx, jobID)
		_ = r.store.SetCompleted(ctx, jobID, time.Now().UTC())
	}
}

func (r *recordingRunner) startedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSubmitRunsJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	runner := &recordingRunner{store: store}
	d, err := dispatcher.New(store, runner, 2, 8, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	job, err := d.Submit(context.Background(), "report.pdf", "r.docx", jobs.KindPDFToWord)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if job.Status != jobs.StatusPending {
		t.Fatalf("expected pending on submit, got %q", job.Status)
	}

	waitFor(t, func() bool {
		current, err := store.GetByID(context.Background(), job.ID)
		return err == nil && current != nil && current.Status == jobs.StatusCompleted
	})
}

func TestSubmitFailsWhenQueueFull(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	block := make(chan struct{})
	runner := &recordingRunner{block: block}
	d, err := dispatcher.New(store, runner, 1, 1, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		close(block)
		d.Stop()
	}()

	// First job occupies the single worker, second fills the queue slot.
	if _, err := d.Submit(context.Background(), "a.pdf", "a.docx", jobs.KindPDFToWord); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	waitFor(t, func() bool { return runner.startedCount() == 1 })
	if _, err := d.Submit(context.Background(), "b.pdf", "b.docx", jobs.KindPDFToWord); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	overflow, err := d.Submit(context.Background(), "c.pdf", "c.docx", jobs.KindPDFToWord)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if overflow.Status != jobs.StatusFailed {
		t.Fatalf("expected overflow job failed, got %q", overflow.Status)
	}
	current, err := store.GetByID(context.Background(), overflow.ID)
	if err != nil || current == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.Status != jobs.StatusFailed {
		t.Fatalf("expected overflow persisted as failed, got %q", current.Status)
	}
}

func TestSubmitFailsWhenStopped(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	runner := &recordingRunner{}
	d, err := dispatcher.New(store, runner, 1, 4, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	job, err := d.Submit(context.Background(), "late.pdf", "l.docx", jobs.KindPDFToWord)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if job.Status != jobs.StatusFailed {
		t.Fatalf("expected failed when dispatcher not running, got %q", job.Status)
	}
}

func TestStartRecoversPreviousRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stuck := testsupport.NewJob(t, store, "stuck.pdf", "s.docx", jobs.KindPDFToWord)
	if err := store.SetProcessing(ctx, stuck.ID); err != nil {
		t.Fatalf("SetProcessing failed: %v", err)
	}
	waiting := testsupport.NewJob(t, store, "waiting.pdf", "w.docx", jobs.KindPDFToWord)

	runner := &recordingRunner{store: store}
	d, err := dispatcher.New(store, runner, 1, 4, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	waitFor(t, func() bool {
		current, err := store.GetByID(ctx, waiting.ID)
		return err == nil && current != nil && current.Status == jobs.StatusCompleted
	})

	failed, err := store.GetByID(ctx, stuck.ID)
	if err != nil || failed == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if failed.Status != jobs.StatusFailed {
		t.Fatalf("expected stuck job failed, got %q", failed.Status)
	}
	if failed.ErrorMessage != jobs.RestartStopReason {
		t.Fatalf("unexpected recovery message: %q", failed.ErrorMessage)
	}
}

func TestStartTwiceErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	d, err := dispatcher.New(store, &recordingRunner{}, 1, 4, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected error on second Start")
	}
}

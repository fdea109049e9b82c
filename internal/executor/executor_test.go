package executor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"papermill/internal/executor"
	"papermill/internal/jobs"
	"papermill/internal/logging"
	"papermill/internal/services"
	"papermill/internal/staging"
	"papermill/internal/testsupport"
)

type stubConverter struct {
	err   error
	calls int
	wrote string
}

func (s *stubConverter) Convert(ctx context.Context, inputPath, targetFormat, outDir string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	path := filepath.Join(outDir, base+"."+targetFormat)
	if err := os.WriteFile(path, []byte("artifact"), 0o644); err != nil {
		return "", err
	}
	s.wrote = path
	return path, nil
}

type fixture struct {
	store *jobs.Store
	area  *staging.Area
	job   *jobs.Job
	input string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	area, err := staging.NewArea(cfg)
	if err != nil {
		t.Fatalf("NewArea failed: %v", err)
	}

	name, err := area.StageUpload(strings.NewReader("%PDF-1.4"), "pdf")
	if err != nil {
		t.Fatalf("StageUpload failed: %v", err)
	}
	converted := staging.ReserveOutputName(name, "docx")
	job := testsupport.NewJob(t, store, name, converted, jobs.KindPDFToWord)
	return &fixture{store: store, area: area, job: job, input: name}
}

func TestRunCompletesJob(t *testing.T) {
	fx := newFixture(t)
	conv := &stubConverter{}
	exec := executor.New(fx.store, fx.area, conv, 300*time.Second, logging.NewNop())

	exec.Run(context.Background(), fx.job.ID)

	current, err := fx.store.GetByID(context.Background(), fx.job.ID)
	if err != nil || current == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed, got %q (%s)", current.Status, current.ErrorMessage)
	}
	if current.CompletedAt == nil {
		t.Fatal("expected completed_at to be stamped")
	}
	if !fx.area.Exists(fx.area.OutputPath(fx.job.ConvertedFilename)) {
		t.Fatal("expected artifact under advertised name")
	}
	if fx.area.Exists(fx.area.InputPath(fx.input)) {
		t.Fatal("expected staged upload removed after success")
	}
	if conv.calls != 1 {
		t.Fatalf("expected single converter call, got %d", conv.calls)
	}
}

func TestRunToolFailureRecordsStderr(t *testing.T) {
	fx := newFixture(t)
	conv := &stubConverter{err: services.Wrap(services.ErrExternalTool, "", "", "source file could not be loaded", nil)}
	exec := executor.New(fx.store, fx.area, conv, 300*time.Second, logging.NewNop())

	exec.Run(context.Background(), fx.job.ID)

	current, err := fx.store.GetByID(context.Background(), fx.job.ID)
	if err != nil || current == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.Status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %q", current.Status)
	}
	want := "LibreOffice conversion failed: source file could not be loaded"
	if current.ErrorMessage != want {
		t.Fatalf("unexpected error message: %q", current.ErrorMessage)
	}
}

func TestRunTimeoutUsesFixedMessage(t *testing.T) {
	fx := newFixture(t)
	conv := &stubConverter{err: services.Wrap(services.ErrTimeout, "", "", "", context.DeadlineExceeded)}
	exec := executor.New(fx.store, fx.area, conv, 300*time.Second, logging.NewNop())

	exec.Run(context.Background(), fx.job.ID)

	current, err := fx.store.GetByID(context.Background(), fx.job.ID)
	if err != nil || current == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.Status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %q", current.Status)
	}
	if current.ErrorMessage != "Conversion timed out after 5 minutes" {
		t.Fatalf("unexpected timeout message: %q", current.ErrorMessage)
	}
}

func TestRunMissingJobIsSilent(t *testing.T) {
	fx := newFixture(t)
	conv := &stubConverter{}
	exec := executor.New(fx.store, fx.area, conv, 300*time.Second, logging.NewNop())

	exec.Run(context.Background(), 9999)
	if conv.calls != 0 {
		t.Fatal("converter must not run for missing jobs")
	}
}

func TestRunSkipsNonPendingJob(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	if err := fx.store.SetProcessing(ctx, fx.job.ID); err != nil {
		t.Fatalf("SetProcessing failed: %v", err)
	}
	if err := fx.store.SetFailed(ctx, fx.job.ID, "already finished"); err != nil {
		t.Fatalf("SetFailed failed: %v", err)
	}

	conv := &stubConverter{}
	exec := executor.New(fx.store, fx.area, conv, 300*time.Second, logging.NewNop())
	exec.Run(ctx, fx.job.ID)

	if conv.calls != 0 {
		t.Fatal("converter must not run for terminal jobs")
	}
	current, err := fx.store.GetByID(ctx, fx.job.ID)
	if err != nil || current == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.ErrorMessage != "already finished" {
		t.Fatalf("terminal state must be preserved, got %q", current.ErrorMessage)
	}
}

func TestRunMissingInputFails(t *testing.T) {
	fx := newFixture(t)
	if err := os.Remove(fx.area.InputPath(fx.input)); err != nil {
		t.Fatalf("remove staged input: %v", err)
	}

	conv := &stubConverter{}
	exec := executor.New(fx.store, fx.area, conv, 300*time.Second, logging.NewNop())
	exec.Run(context.Background(), fx.job.ID)

	current, err := fx.store.GetByID(context.Background(), fx.job.ID)
	if err != nil || current == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.Status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %q", current.Status)
	}
	if !strings.Contains(current.ErrorMessage, "uploaded file is missing") {
		t.Fatalf("unexpected error message: %q", current.ErrorMessage)
	}
	if conv.calls != 0 {
		t.Fatal("converter must not run without an input file")
	}
}

func TestRunOrchestrationErrorMessage(t *testing.T) {
	fx := newFixture(t)
	conv := &stubConverter{err: errors.New("disk full")}
	exec := executor.New(fx.store, fx.area, conv, 300*time.Second, logging.NewNop())

	exec.Run(context.Background(), fx.job.ID)

	current, err := fx.store.GetByID(context.Background(), fx.job.ID)
	if err != nil || current == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.Status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %q", current.Status)
	}
	if current.ErrorMessage != "Conversion failed: disk full" {
		t.Fatalf("unexpected error message: %q", current.ErrorMessage)
	}
}

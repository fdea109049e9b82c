package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"papermill/internal/fileutil"
	"papermill/internal/jobs"
	"papermill/internal/logging"
	"papermill/internal/services"
	"papermill/internal/services/soffice"
	"papermill/internal/staging"
)

// Executor drives a single conversion job from pending to a terminal state.
type Executor struct {
	store     *jobs.Store
	area      *staging.Area
	converter soffice.Converter
	timeout   time.Duration
	logger    *slog.Logger
}

// New constructs an executor. The timeout is only used to render the
// user-facing timeout message; the converter enforces the actual deadline.
func New(store *jobs.Store, area *staging.Area, converter soffice.Converter, timeout time.Duration, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		store:     store,
		area:      area,
		converter: converter,
		timeout:   timeout,
		logger:    logging.NewComponentLogger(logger, "executor"),
	}
}

// Run processes one job. Jobs that have vanished from the store are skipped
// silently; every other path ends in exactly one terminal status write.
func (e *Executor) Run(ctx context.Context, jobID int64) {
	ctx = services.WithJobID(ctx, jobID)
	logger := logging.WithContext(ctx, e.logger)

	job, err := e.store.GetByID(ctx, jobID)
	if err != nil {
		logger.Error("load job", logging.Error(err))
		return
	}
	if job == nil {
		return
	}
	if job.Status != jobs.StatusPending {
		logger.Warn("skipping job not in pending state", logging.String("status", string(job.Status)))
		return
	}

	if err := e.store.SetProcessing(ctx, jobID); err != nil {
		logger.Error("persist processing transition", logging.Error(err))
		e.finalizeFailed(ctx, logger, jobID, "Conversion failed: could not update job status")
		return
	}

	logger.Info("conversion started",
		logging.String("kind", string(job.Kind)),
		logging.String("original_filename", job.OriginalFilename),
	)

	inputPath := e.area.InputPath(job.OriginalFilename)
	if !e.area.Exists(inputPath) {
		e.finalizeFailed(ctx, logger, jobID, "Conversion failed: uploaded file is missing")
		return
	}

	produced, err := e.converter.Convert(ctx, inputPath, job.Kind.TargetFormat(), e.area.ConvertedDir())
	if err != nil {
		e.finalizeFailed(ctx, logger, jobID, e.failureMessage(err))
		return
	}

	finalPath := e.area.OutputPath(job.ConvertedFilename)
	if produced != finalPath {
		if err := fileutil.ReplaceFile(produced, finalPath); err != nil {
			e.finalizeFailed(ctx, logger, jobID, "Conversion failed: could not finalize output file")
			return
		}
	}

	if err := e.store.SetCompleted(ctx, jobID, time.Now().UTC()); err != nil {
		logger.Error("persist completed transition", logging.Error(err))
		return
	}
	if err := e.area.RemoveInput(job.OriginalFilename); err != nil {
		logger.Warn("remove staged upload", logging.Error(err))
	}

	logger.Info("conversion completed", logging.String("converted_filename", job.ConvertedFilename))
}

func (e *Executor) finalizeFailed(ctx context.Context, logger *slog.Logger, jobID int64, message string) {
	logger.Error("conversion failed", logging.String("error_message", message))
	if err := e.store.SetFailed(ctx, jobID, message); err != nil {
		logger.Error("persist failed transition", logging.Error(err))
	}
}

func (e *Executor) failureMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrTimeout):
		return timeoutMessage(e.timeout)
	case errors.Is(err, services.ErrExternalTool):
		detail := strings.TrimSpace(services.Message(err))
		if detail == "" {
			detail = "unknown error"
		}
		return "LibreOffice conversion failed: " + detail
	default:
		detail := strings.TrimSpace(services.Message(err))
		if detail == "" {
			detail = err.Error()
		}
		return "Conversion failed: " + detail
	}
}

func timeoutMessage(timeout time.Duration) string {
	minutes := int(timeout.Round(time.Minute) / time.Minute)
	if minutes <= 0 {
		return fmt.Sprintf("Conversion timed out after %d seconds", int(timeout/time.Second))
	}
	if minutes == 1 {
		return "Conversion timed out after 1 minute"
	}
	return fmt.Sprintf("Conversion timed out after %d minutes", minutes)
}

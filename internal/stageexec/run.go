package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"buildmsa/internal/fileutil"
	"buildmsa/internal/logging"
	"buildmsa/internal/manifest"
	"buildmsa/internal/services"
	"buildmsa/internal/stage"
)

// Options controls stage execution and manifest persistence behavior.
type Options struct {
	Logger  *slog.Logger
	Store   *manifest.Store
	Handler stage.Handler
	Ordinal int
	RunID   string
	// Digest records the artifact SHA256 on completion. Without it only the
	// size is stored.
	Digest bool
}

// Run executes a stage and applies manifest transitions: running before the
// handler starts, then completed with the artifact fingerprint or failed with
// the error message.
func Run(ctx context.Context, opts Options) error {
	if opts.Handler == nil {
		return errors.New("stage handler unavailable")
	}
	if opts.Store == nil {
		return errors.New("manifest store is required")
	}

	name := opts.Handler.Name()
	artifact := opts.Handler.Artifact()
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	if aware, ok := opts.Handler.(stage.LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("label", stage.Label(name)),
		logging.String(logging.FieldArtifact, artifact),
	)

	if err := opts.Store.MarkRunning(stageCtx, name, opts.Ordinal, artifact, opts.RunID); err != nil {
		return fmt.Errorf("persist running transition: %w", err)
	}

	started := time.Now()
	if err := opts.Handler.Prepare(stageCtx); err != nil {
		return handleFailure(stageCtx, stageLogger, opts.Store, name, err)
	}
	if err := opts.Handler.Execute(stageCtx); err != nil {
		return handleFailure(stageCtx, stageLogger, opts.Store, name, err)
	}

	size, digest, err := fingerprint(artifact, opts.Digest)
	if err != nil {
		return handleFailure(stageCtx, stageLogger, opts.Store, name, services.Wrap(
			services.ErrNotFound, name, "verify artifact",
			"stage finished without producing "+artifact, err))
	}
	if err := opts.Store.MarkCompleted(stageCtx, name, size, digest); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
		logging.Int64("size_bytes", size),
	)
	return nil
}

func fingerprint(path string, digest bool) (int64, string, error) {
	if digest {
		return fileutil.Fingerprint(path)
	}
	size, err := fileutil.Size(path)
	return size, "", err
}

func handleFailure(ctx context.Context, logger *slog.Logger, store *manifest.Store, stageName string, stageErr error) error {
	message := "stage failed"
	if stageErr != nil {
		message = strings.TrimSpace(stageErr.Error())
	}

	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_kind", services.Kind(stageErr)),
		logging.String(logging.FieldErrorHint, hintFor(stageErr)),
		logging.Error(stageErr),
	)
	// The caller's context may already be cancelled; the failure still has to land.
	persistCtx := context.WithoutCancel(ctx)
	if err := store.MarkFailed(persistCtx, stageName, message); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}
	return stageErr
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "run interrupted; rerun to resume from this stage"
	case errors.Is(err, services.ErrSubprocess):
		return "inspect the tool stderr above and buildmsa.log"
	case errors.Is(err, services.ErrNotFound):
		return "check database root and input paths"
	case errors.Is(err, services.ErrShapeMismatch):
		return "aligner output rows differ in length; rerun run_aligner"
	default:
		return "check buildmsa.log for details"
	}
}

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"buildmsa/internal/config"
	"buildmsa/internal/fileutil"
	"buildmsa/internal/logging"
	"buildmsa/internal/manifest"
	"buildmsa/internal/services"
	"buildmsa/internal/stageexec"
	"buildmsa/internal/tools"
	"buildmsa/internal/tools/clustalo"
	"buildmsa/internal/tools/mmseqs"
)

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithExecutor replaces the subprocess executor used by both tool clients.
func WithExecutor(exec tools.Executor) Option {
	return func(d *Driver) {
		d.exec = exec
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(d *Driver) {
		d.runID = strings.TrimSpace(id)
	}
}

// Driver runs, inspects and resets the pipeline for one output directory.
type Driver struct {
	cfg      *config.Config
	layout   Layout
	logger   *slog.Logger
	exec     tools.Executor
	runID    string
	mmseqs   *mmseqs.Client
	clustalo *clustalo.Client

	mu      sync.Mutex
	current string
}

// New constructs a driver for input under cfg. Input may be empty for
// drivers that only report status or reset.
func New(cfg *config.Config, input string, opts ...Option) (*Driver, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if input != "" {
		abs, err := config.ExpandPath(input)
		if err != nil {
			return nil, services.Wrap(services.ErrUsage, "pipeline", "resolve input", "invalid input path", err)
		}
		input = abs
	}

	d := &Driver{
		cfg:    cfg,
		layout: NewLayout(cfg, input),
		logger: logging.NewNop(),
		exec:   tools.CommandExecutor{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.runID == "" {
		d.runID = uuid.NewString()
	}
	d.logger = logging.NewComponentLogger(d.logger, "pipeline")

	timeout := time.Duration(cfg.Tools.TimeoutSeconds) * time.Second
	var err error
	d.mmseqs, err = mmseqs.New(cfg.MMseqsBinary(),
		mmseqs.WithExecutor(d.exec),
		mmseqs.WithOutput(d.toolOutput),
		mmseqs.WithTimeout(timeout),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init mmseqs", "tools.mmseqs_path", err)
	}
	d.clustalo, err = clustalo.New(cfg.ClustaloBinary(), cfg.Aligner.Threads,
		clustalo.WithExecutor(d.exec),
		clustalo.WithOutput(d.toolOutput),
		clustalo.WithTimeout(timeout),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init clustalo", "tools.clustalo_path", err)
	}
	return d, nil
}

// RunID returns the identifier recorded for this driver's run.
func (d *Driver) RunID() string { return d.runID }

// Layout returns the resolved artifact paths.
func (d *Driver) Layout() Layout { return d.layout }

// Run executes every stage that is not already complete. The first failing
// stage aborts the run.
func (d *Driver) Run(ctx context.Context) (err error) {
	if d.layout.Input == "" {
		return services.Wrap(services.ErrUsage, "pipeline", "run", "an input FASTA path is required", nil)
	}
	if _, statErr := os.Stat(d.layout.Input); statErr != nil {
		return services.Wrap(services.ErrNotFound, "pipeline", "run", "input "+d.layout.Input+" is not readable", statErr)
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrIO, "pipeline", "run", "prepare directories", err)
	}

	unlock, err := d.acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	store, err := manifest.OpenDir(d.layout.OutputDir)
	if err != nil {
		return services.Wrap(services.ErrIO, "pipeline", "open manifest", "", err)
	}
	defer store.Close()

	ctx = services.WithRunID(ctx, d.runID)
	ctx = services.WithRequestID(ctx, d.runID)
	logger := logging.WithContext(ctx, d.logger)

	if err := store.BeginRun(ctx, d.runID, d.layout.Input); err != nil {
		return services.Wrap(services.ErrIO, "pipeline", "record run", "", err)
	}
	defer func() {
		status, message := manifest.StatusCompleted, ""
		if err != nil {
			status, message = manifest.StatusFailed, err.Error()
		}
		if finishErr := store.FinishRun(context.WithoutCancel(ctx), d.runID, status, message); finishErr != nil {
			logger.Warn("failed to record run result", logging.Error(finishErr))
		}
	}()

	logger.Info("pipeline started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("input", d.layout.Input),
		logging.String("output_dir", d.layout.OutputDir),
		logging.String("nr_db", d.cfg.Databases.NR),
		logging.String("redundant_db", d.cfg.Databases.Redundant),
	)

	started := time.Now()
	steps := d.buildSteps()
	decisions := make(map[string]decision, len(steps))
	decide := func(s *step) (decision, error) {
		if dec, ok := decisions[s.name]; ok {
			return dec, nil
		}
		dec, err := d.evaluate(ctx, store, s)
		if err == nil {
			decisions[s.name] = dec
		}
		return dec, err
	}

	covered := map[string]bool{}
	for _, s := range steps {
		names, ok := coveredBy[s.name]
		if !ok {
			continue
		}
		dec, err := decide(s)
		if err != nil {
			return err
		}
		if dec.skip {
			for _, name := range names {
				covered[name] = true
			}
		}
	}

	executed := 0
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if covered[s.name] {
			logger.Info("stage already complete",
				logging.String(logging.FieldStage, s.name),
				logging.String(logging.FieldEventType, "stage_skip"),
				logging.String("reason", "covered by later checkpoint"),
			)
			continue
		}
		dec, err := decide(s)
		if err != nil {
			return err
		}
		if dec.skip {
			logger.Info("stage already complete",
				logging.String(logging.FieldStage, s.name),
				logging.String(logging.FieldEventType, "stage_skip"),
				logging.String("reason", dec.reason),
				logging.String(logging.FieldArtifact, s.artifact),
			)
			continue
		}

		d.setCurrent(s.name)
		err = stageexec.Run(ctx, stageexec.Options{
			Logger:  logger,
			Store:   store,
			Handler: s,
			Ordinal: ordinal(s.name),
			RunID:   d.runID,
			Digest:  d.cfg.Checkpoint.Verify == config.VerifySHA256,
		})
		d.setCurrent("")
		if err != nil {
			return err
		}
		executed++
	}

	logger.Info("pipeline completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("stages_run", executed),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
		logging.String(logging.FieldArtifact, d.layout.MSA),
	)
	return nil
}

func (d *Driver) acquireLock() (func(), error) {
	lock := flock.New(d.layout.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "pipeline", "lock", "lock "+lock.Path(), err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "lock",
			"another buildmsa process is using "+d.layout.OutputDir, nil)
	}
	return func() { _ = lock.Unlock() }, nil
}

func (d *Driver) setCurrent(name string) {
	d.mu.Lock()
	d.current = name
	d.mu.Unlock()
}

func (d *Driver) toolOutput(stream tools.Stream, line string) {
	d.mu.Lock()
	current := d.current
	d.mu.Unlock()
	d.logger.Debug("tool output",
		logging.String(logging.FieldStage, current),
		logging.String("stream", string(stream)),
		logging.String("line", line),
	)
}

// removeStale deletes an artifact and its companions before a stage reruns.
func (d *Driver) removeStale(ctx context.Context, s *step, reason string) error {
	removed, err := fileutil.RemoveArtifact(s.artifact)
	if err != nil {
		return services.Wrap(services.ErrIO, s.name, "remove stale artifact", s.artifact, err)
	}
	if len(removed) > 0 {
		logging.WarnWithContext(logging.WithContext(ctx, d.logger), "discarding stale artifact", "artifact_discarded",
			logging.String(logging.FieldStage, s.name),
			logging.String(logging.FieldArtifact, s.artifact),
			logging.String("reason", reason),
			logging.Int("files", len(removed)),
			logging.String(logging.FieldErrorHint, "stage will be rebuilt"),
		)
	}
	return nil
}

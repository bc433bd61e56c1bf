package pipeline

import (
	"context"
	"slices"

	"buildmsa/internal/fileutil"
	"buildmsa/internal/logging"
	"buildmsa/internal/manifest"
	"buildmsa/internal/services"
)

// Reset marks from and every later stage pending and deletes their
// artifacts. An empty from resets the whole pipeline. It returns the removed
// paths.
func (d *Driver) Reset(ctx context.Context, from string) ([]string, error) {
	start := 0
	if from != "" {
		name, err := ParseStage(from)
		if err != nil {
			return nil, err
		}
		start = ordinal(name)
	}
	if !fileutil.Exists(d.layout.OutputDir) {
		return nil, services.Wrap(services.ErrNotFound, "pipeline", "reset", "output directory "+d.layout.OutputDir+" does not exist", nil)
	}

	unlock, err := d.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	store, err := manifest.OpenDir(d.layout.OutputDir)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "pipeline", "open manifest", "", err)
	}
	defer store.Close()

	var removed []string
	for _, name := range stageOrder[start:] {
		if err := store.MarkPending(ctx, name); err != nil {
			return removed, services.Wrap(services.ErrIO, name, "reset", "", err)
		}
		files, err := fileutil.RemoveArtifact(d.layout.Artifact(name))
		removed = append(removed, files...)
		if err != nil {
			return removed, services.Wrap(services.ErrIO, name, "reset", "remove artifact", err)
		}
	}
	slices.Sort(removed)

	d.logger.Info("pipeline reset",
		logging.String(logging.FieldEventType, "run_reset"),
		logging.String("from", stageOrder[start]),
		logging.Int("files_removed", len(removed)),
	)
	return removed, nil
}

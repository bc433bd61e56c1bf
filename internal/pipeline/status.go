package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"buildmsa/internal/fileutil"
	"buildmsa/internal/manifest"
	"buildmsa/internal/services"
	"buildmsa/internal/stage"
)

// Pseudo statuses for stages without a manifest row.
const (
	StatusUntracked = "untracked"
	StatusPending   = string(manifest.StatusPending)
)

// StageStatus describes one stage for reporting.
type StageStatus struct {
	Name      string
	Label     string
	Artifact  string
	Status    string
	Present   bool
	SizeBytes int64
	RunID     string
	Error     string
	UpdatedAt time.Time
}

// Report is the pipeline state of an output directory.
type Report struct {
	OutputDir string
	LastRun   *manifest.Run
	Stages    []StageStatus
}

// Status reads the manifest without taking the run lock. An output
// directory without a manifest reports every stage from disk alone.
func (d *Driver) Status(ctx context.Context) (*Report, error) {
	report := &Report{OutputDir: d.layout.OutputDir}
	rows := map[string]*manifest.Checkpoint{}

	if fileutil.Exists(filepath.Join(d.layout.OutputDir, manifest.FileName)) {
		store, err := manifest.OpenDir(d.layout.OutputDir)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "pipeline", "open manifest", "", err)
		}
		defer store.Close()

		list, err := store.List(ctx)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "pipeline", "status", "", err)
		}
		for _, cp := range list {
			rows[cp.Stage] = cp
		}
		if report.LastRun, err = store.LatestRun(ctx); err != nil {
			return nil, services.Wrap(services.ErrIO, "pipeline", "status", "", err)
		}
	}

	for _, name := range stageOrder {
		artifact := d.layout.Artifact(name)
		st := StageStatus{
			Name:     name,
			Label:    stage.Label(name),
			Artifact: artifact,
			Status:   StatusPending,
			Present:  fileutil.Exists(artifact),
		}
		if cp, ok := rows[name]; ok && cp.Artifact == artifact {
			st.Status = string(cp.Status)
			st.SizeBytes = cp.SizeBytes
			st.RunID = cp.RunID
			st.Error = cp.ErrorMessage
			st.UpdatedAt = cp.UpdatedAt
		} else if st.Present {
			st.Status = StatusUntracked
			st.SizeBytes, _ = fileutil.Size(artifact)
		}
		report.Stages = append(report.Stages, st)
	}
	return report, nil
}

// Complete reports whether the final artifact is committed.
func (r *Report) Complete() bool {
	if r == nil || len(r.Stages) == 0 {
		return false
	}
	last := r.Stages[len(r.Stages)-1]
	return last.Present && last.Status == string(manifest.StatusCompleted)
}

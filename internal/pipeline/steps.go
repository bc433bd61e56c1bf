package pipeline

import (
	"context"
	"log/slog"
	"os/exec"

	"buildmsa/internal/alignment"
	"buildmsa/internal/collect"
	"buildmsa/internal/fasta"
	"buildmsa/internal/fileutil"
	"buildmsa/internal/logging"
	"buildmsa/internal/stage"
	"buildmsa/internal/tools/mmseqs"
)

// step adapts one pipeline stage to stage.Handler.
type step struct {
	name     string
	artifact string
	inputs   []string
	// binary is checked by HealthCheck; empty for in-process stages.
	binary string
	// atomic stages write to artifact+".partial" and rename on success.
	atomic bool
	run    func(ctx context.Context, target string) error
	logger *slog.Logger
}

func (s *step) Name() string     { return s.name }
func (s *step) Artifact() string { return s.artifact }

func (s *step) SetLogger(logger *slog.Logger) { s.logger = logger }

func (s *step) Prepare(context.Context) error {
	return stage.RequireInputs(s.name, s.inputs...)
}

func (s *step) Execute(ctx context.Context) error {
	if !s.atomic {
		return s.run(ctx, s.artifact)
	}
	return fileutil.WriteAtomic(s.artifact, func(partial string) error {
		return s.run(ctx, partial)
	})
}

func (s *step) HealthCheck(context.Context) stage.Health {
	if s.binary == "" {
		return stage.Healthy(s.name)
	}
	resolved, err := exec.LookPath(s.binary)
	if err != nil {
		return stage.Unhealthy(s.name, "binary not found: "+s.binary)
	}
	return stage.HealthyTool(s.name, resolved)
}

func (d *Driver) buildSteps() []*step {
	l := d.layout
	search := mmseqs.SearchOptions{
		Threads:          d.cfg.Search.Threads,
		SplitMemoryLimit: d.cfg.Search.SplitMemoryLimit,
		NumIterations:    d.cfg.Search.NRIterations,
		MaxSeqs:          d.cfg.Search.MaxSeqs,
		Sensitivity:      d.cfg.Search.Sensitivity,
		MaxSeqID:         d.cfg.Search.MaxSeqID,
	}
	mm := d.mmseqs.Binary()

	return []*step{
		{
			name: StageCreateNRDB, artifact: l.NRQueryDB, inputs: []string{l.Input}, binary: mm,
			run: func(ctx context.Context, target string) error {
				return d.mmseqs.CreateDB(ctx, l.Input, target)
			},
		},
		{
			name: StageSearchNR, artifact: l.NRResult, inputs: []string{l.NRQueryDB, l.NRTarget}, binary: mm,
			run: func(ctx context.Context, target string) error {
				return d.mmseqs.SearchNR(ctx, l.NRQueryDB, l.NRTarget, target, l.ScratchDir, search)
			},
		},
		{
			name: StageProfileFromNR, artifact: l.ProfileDB, inputs: []string{l.NRQueryDB, l.NRTarget, l.NRResult}, binary: mm,
			run: func(ctx context.Context, target string) error {
				return d.mmseqs.ResultToProfile(ctx, l.NRQueryDB, l.NRTarget, l.NRResult, target)
			},
		},
		{
			name: StageSearchRedundant, artifact: l.RedundantResult, inputs: []string{l.ProfileDB, l.RedundantTarget}, binary: mm,
			run: func(ctx context.Context, target string) error {
				return d.mmseqs.SearchRedundant(ctx, l.ProfileDB, l.RedundantTarget, target, l.ScratchDir, search)
			},
		},
		{
			name: StageExtractFASTA, artifact: l.HitsFASTA, inputs: []string{l.RedundantTarget, l.RedundantResult}, binary: mm,
			run: func(ctx context.Context, target string) error {
				return d.mmseqs.CreateSeqFileDB(ctx, l.RedundantTarget, l.RedundantResult, target)
			},
		},
		{
			name: StageBuildMSAInput, artifact: l.AlignerInput, inputs: []string{l.Input, l.HitsFASTA}, atomic: true,
			run: d.buildAlignerInput,
		},
		{
			name: StageRunAligner, artifact: l.AlignerOutput, inputs: []string{l.AlignerInput}, binary: d.clustalo.Binary(),
			run: func(ctx context.Context, target string) error {
				return d.clustalo.Align(ctx, l.AlignerInput, target)
			},
		},
		{
			name: StageTrimMSA, artifact: l.MSA, inputs: []string{l.AlignerOutput}, atomic: true,
			run: func(_ context.Context, target string) error {
				return alignment.TrimFile(l.AlignerOutput, target)
			},
		},
	}
}

func (d *Driver) buildAlignerInput(_ context.Context, target string) error {
	records, err := collect.CollectFiles(d.layout.Input, d.layout.HitsFASTA, d.cfg.Collect.MaxSequences)
	if err != nil {
		return err
	}
	d.logger.Info("collected alignment candidates",
		logging.String(logging.FieldStage, StageBuildMSAInput),
		logging.Int("records", len(records)),
		logging.Int("max_sequences", d.cfg.Collect.MaxSequences),
	)
	return fasta.Append(target, records...)
}

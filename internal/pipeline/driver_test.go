package pipeline_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"buildmsa/internal/config"
	"buildmsa/internal/fileutil"
	"buildmsa/internal/logging"
	"buildmsa/internal/manifest"
	"buildmsa/internal/pipeline"
	"buildmsa/internal/services"
	"buildmsa/internal/testsupport"
)

const (
	queryFASTA = ">query desc\nmkv\n"
	hitsFASTA  = ">h1\nMKI\n>h2\nMKV\n>h3\nMRV\n"
	alignedMSA = ">query desc\nM-KV\n>h1\nMAKI\n>h3\nM-RV\n"
	wantInput  = ">query desc\nMKV\n>h1\nMKI\n>h3\nMRV\n"
	wantMSA    = ">query desc\nMKV\n>h1\nMKI\n>h3\nMRV\n"
)

var fullRun = []string{"createdb", "search", "result2profile", "search", "createseqfiledb", "clustalo"}

type fixture struct {
	cfg   *config.Config
	input string
	tools *testsupport.FakeTools
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	input := filepath.Join(testsupport.BaseDir(cfg), "query.fa")
	testsupport.WriteText(t, input, queryFASTA)
	return &fixture{
		cfg:   cfg,
		input: input,
		tools: &testsupport.FakeTools{Hits: hitsFASTA, Aligned: alignedMSA},
	}
}

func (f *fixture) driver(t *testing.T, extra ...pipeline.Option) *pipeline.Driver {
	t.Helper()
	opts := append([]pipeline.Option{
		pipeline.WithExecutor(f.tools),
		pipeline.WithLogger(logging.NewNop()),
	}, extra...)
	d, err := pipeline.New(f.cfg, f.input, opts...)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return d
}

func (f *fixture) run(t *testing.T) {
	t.Helper()
	f.tools.Reset()
	if err := f.driver(t).Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func (f *fixture) artifact(name string) string {
	return pipeline.NewLayout(f.cfg, f.input).Artifact(name)
}

func assertCalls(t *testing.T, f *fixture, want []string) {
	t.Helper()
	got := f.tools.Subcommands()
	if !slices.Equal(got, want) {
		t.Fatalf("tool calls = %v, want %v", got, want)
	}
}

func TestRunBuildsTrimmedAlignment(t *testing.T) {
	f := newFixture(t)
	f.run(t)

	assertCalls(t, f, fullRun)
	if got := testsupport.ReadText(t, f.artifact(pipeline.StageBuildMSAInput)); got != wantInput {
		t.Fatalf("aligner input = %q, want %q", got, wantInput)
	}
	if got := testsupport.ReadText(t, f.artifact(pipeline.StageTrimMSA)); got != wantMSA {
		t.Fatalf("msa = %q, want %q", got, wantMSA)
	}
	if fileutil.Exists(f.artifact(pipeline.StageTrimMSA) + fileutil.PartialSuffix) {
		t.Fatal("partial file left behind")
	}

	store := testsupport.MustOpenManifest(t, f.cfg.Paths.OutputDir)
	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != len(pipeline.Stages()) {
		t.Fatalf("expected %d checkpoints, got %d", len(pipeline.Stages()), len(list))
	}
	for i, cp := range list {
		if cp.Stage != pipeline.Stages()[i] || !cp.Completed() || cp.SHA256 == "" {
			t.Fatalf("unexpected checkpoint %d: %#v", i, cp)
		}
	}
	run, err := store.LatestRun(context.Background())
	if err != nil || run == nil || run.Status != manifest.StatusCompleted {
		t.Fatalf("unexpected run record %#v err=%v", run, err)
	}
}

func TestRunPassesConfiguredArguments(t *testing.T) {
	f := newFixture(t)
	f.run(t)

	calls := f.tools.Calls()
	l := pipeline.NewLayout(f.cfg, f.input)
	wantNR := strings.Join([]string{"mmseqs search", l.NRQueryDB, l.NRTarget, l.NRResult, l.ScratchDir,
		"--split-memory-limit 250000000000 --threads 2 --num-iterations 4"}, " ")
	if calls[1] != wantNR {
		t.Fatalf("NR search = %q\nwant        %q", calls[1], wantNR)
	}
	wantRed := strings.Join([]string{"mmseqs search", l.ProfileDB, l.RedundantTarget, l.RedundantResult, l.ScratchDir,
		"--max-seqs 1000000 --split-memory-limit 250000000000 --threads 2 -s 7.5 --max-seq-id 0.999"}, " ")
	if calls[3] != wantRed {
		t.Fatalf("redundant search = %q\nwant             %q", calls[3], wantRed)
	}
	wantAlign := "clustalo -i " + l.AlignerInput + " -o " + l.AlignerOutput + " --threads=2"
	if calls[5] != wantAlign {
		t.Fatalf("aligner = %q, want %q", calls[5], wantAlign)
	}
}

func TestRerunSkipsCompletedStages(t *testing.T) {
	f := newFixture(t)
	f.run(t)
	f.run(t)
	assertCalls(t, f, nil)
}

func TestResumeRebuildsOnlyMissingArtifact(t *testing.T) {
	f := newFixture(t)
	f.run(t)

	if _, err := fileutil.RemoveArtifact(f.artifact(pipeline.StageRunAligner)); err != nil {
		t.Fatal(err)
	}
	f.run(t)
	assertCalls(t, f, []string{"clustalo"})
}

func TestSwitchingRedundantDatabaseBackReusesArtifacts(t *testing.T) {
	f := newFixture(t)
	f.run(t)

	original := f.cfg.Databases.Redundant
	f.cfg.Databases.Redundant = "uniref90"
	db := f.cfg.DatabasePath("uniref90")
	for _, path := range []string{db, db + ".index", db + ".dbtype"} {
		testsupport.WriteFile(t, path, 16)
	}
	f.run(t)
	assertCalls(t, f, []string{"result2profile", "search", "createseqfiledb"})

	f.cfg.Databases.Redundant = original
	f.run(t)
	assertCalls(t, f, nil)
	for _, name := range []string{pipeline.StageProfileFromNR, pipeline.StageSearchRedundant, pipeline.StageExtractFASTA} {
		if !fileutil.Exists(f.artifact(name)) {
			t.Fatalf("%s artifact %s was removed", name, f.artifact(name))
		}
	}

	report, err := f.driver(t).Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	for _, st := range report.Stages {
		if st.Status != string(manifest.StatusCompleted) {
			t.Fatalf("stage %s = %q after switching back", st.Name, st.Status)
		}
	}
}

func TestCompletedProfileCoversNRStages(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteText(t, f.artifact(pipeline.StageProfileFromNR), "profile")

	f.run(t)
	assertCalls(t, f, []string{"search", "createseqfiledb", "clustalo"})
	if fileutil.Exists(f.artifact(pipeline.StageCreateNRDB)) {
		t.Fatal("NR query database should not have been built")
	}
}

func TestUntrackedArtifactRebuiltWhenAdoptionDisabled(t *testing.T) {
	f := newFixture(t, testsupport.WithAdoptUntracked(false))
	testsupport.WriteText(t, f.artifact(pipeline.StageProfileFromNR), "stale profile")

	f.run(t)
	assertCalls(t, f, fullRun)
}

func TestInterruptedStageIsDiscarded(t *testing.T) {
	f := newFixture(t)
	f.run(t)

	store := testsupport.MustOpenManifest(t, f.cfg.Paths.OutputDir)
	aligned := f.artifact(pipeline.StageRunAligner)
	if err := store.MarkRunning(context.Background(), pipeline.StageRunAligner, 6, aligned, "crashed-run"); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteText(t, aligned, ">query desc\nM-")

	f.run(t)
	assertCalls(t, f, []string{"clustalo"})
	if got := testsupport.ReadText(t, aligned); got != alignedMSA {
		t.Fatalf("aligner output = %q, want %q", got, alignedMSA)
	}
}

func TestChangedArtifactFailsVerification(t *testing.T) {
	tests := []struct {
		name   string
		verify string
		body   string
		rerun  bool
	}{
		{"sha256 same size", config.VerifySHA256, strings.Replace(wantInput, "MKI", "MKL", 1), true},
		{"size same size", config.VerifySize, strings.Replace(wantInput, "MKI", "MKL", 1), false},
		{"size grown", config.VerifySize, wantInput + ">x\nA\n", true},
		{"exists", config.VerifyExists, "junk", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, testsupport.WithVerify(tc.verify))
			f.run(t)

			path := f.artifact(pipeline.StageBuildMSAInput)
			testsupport.WriteText(t, path, tc.body)
			f.run(t)

			got := testsupport.ReadText(t, path)
			if tc.rerun && got != wantInput {
				t.Fatalf("expected rebuilt aligner input, got %q", got)
			}
			if !tc.rerun && got != tc.body {
				t.Fatalf("expected artifact to be trusted, got %q", got)
			}
			assertCalls(t, f, nil)
		})
	}
}

func TestToolFailureAbortsRun(t *testing.T) {
	f := newFixture(t)
	f.tools.FailOn = "clustalo"

	err := f.driver(t).Run(context.Background())
	if !errors.Is(err, services.ErrSubprocess) {
		t.Fatalf("expected subprocess error, got %v", err)
	}
	if fileutil.Exists(f.artifact(pipeline.StageTrimMSA)) {
		t.Fatal("trim stage should not run after a failure")
	}

	store := testsupport.MustOpenManifest(t, f.cfg.Paths.OutputDir)
	cp, err := store.Get(context.Background(), pipeline.StageRunAligner)
	if err != nil || cp == nil || cp.Status != manifest.StatusFailed {
		t.Fatalf("expected failed checkpoint, got %#v err=%v", cp, err)
	}
	run, _ := store.LatestRun(context.Background())
	if run == nil || run.Status != manifest.StatusFailed || run.ErrorMessage == "" {
		t.Fatalf("expected failed run, got %#v", run)
	}

	f.tools.FailOn = ""
	f.run(t)
	assertCalls(t, f, []string{"clustalo"})
}

func TestRunRequiresInput(t *testing.T) {
	f := newFixture(t)
	d, err := pipeline.New(f.cfg, "", pipeline.WithExecutor(f.tools))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Run(context.Background()); !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}

	f.input = filepath.Join(t.TempDir(), "missing.fa")
	if err := f.driver(t).Run(context.Background()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestRunRefusesLockedOutputDir(t *testing.T) {
	f := newFixture(t)
	d := f.driver(t)
	if err := f.cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	lock := flock.New(d.Layout().LockPath())
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock = %v, %v", locked, err)
	}
	defer lock.Unlock()

	if err := d.Run(context.Background()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected lock error, got %v", err)
	}
	assertCalls(t, f, nil)
}

func TestRunHonoursCancellation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.driver(t).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunIDIsRecorded(t *testing.T) {
	f := newFixture(t)
	d := f.driver(t, pipeline.WithRunID("fixed-run"))
	if d.RunID() != "fixed-run" {
		t.Fatalf("unexpected run id %q", d.RunID())
	}
	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	store := testsupport.MustOpenManifest(t, f.cfg.Paths.OutputDir)
	cp, _ := store.Get(context.Background(), pipeline.StageTrimMSA)
	if cp.RunID != "fixed-run" {
		t.Fatalf("checkpoint run id = %q", cp.RunID)
	}
}

func TestGeneratedRunIDsDiffer(t *testing.T) {
	f := newFixture(t)
	if f.driver(t).RunID() == f.driver(t).RunID() {
		t.Fatal("expected unique run ids")
	}
}

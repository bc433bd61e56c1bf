package pipeline_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"buildmsa/internal/fileutil"
	"buildmsa/internal/manifest"
	"buildmsa/internal/pipeline"
	"buildmsa/internal/services"
	"buildmsa/internal/testsupport"
)

func TestResetFromStage(t *testing.T) {
	f := newFixture(t)
	f.run(t)

	removed, err := f.driver(t).Reset(context.Background(), "run-aligner")
	if err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("expected two removed files, got %v", removed)
	}
	for _, name := range []string{pipeline.StageRunAligner, pipeline.StageTrimMSA} {
		if fileutil.Exists(f.artifact(name)) {
			t.Fatalf("%s artifact should be removed", name)
		}
	}
	if !fileutil.Exists(f.artifact(pipeline.StageBuildMSAInput)) {
		t.Fatal("earlier artifacts must survive reset")
	}

	store := testsupport.MustOpenManifest(t, f.cfg.Paths.OutputDir)
	cp, _ := store.Get(context.Background(), pipeline.StageTrimMSA)
	if cp.Status != manifest.StatusPending {
		t.Fatalf("expected pending checkpoint, got %#v", cp)
	}

	f.run(t)
	assertCalls(t, f, []string{"clustalo"})
}

func TestResetEverythingRemovesDatabases(t *testing.T) {
	f := newFixture(t)
	f.run(t)

	removed, err := f.driver(t).Reset(context.Background(), "")
	if err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	// Four mmseqs databases with index and dbtype companions, plus four FASTA files.
	if len(removed) != 4*3+4 {
		t.Fatalf("unexpected removed set (%d): %v", len(removed), removed)
	}
	f.run(t)
	assertCalls(t, f, fullRun)
}

func TestResetRejectsUnknownStage(t *testing.T) {
	f := newFixture(t)
	if _, err := f.driver(t).Reset(context.Background(), "align"); !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestResetMissingOutputDir(t *testing.T) {
	f := newFixture(t)
	if _, err := f.driver(t).Reset(context.Background(), ""); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestStatusReportsStages(t *testing.T) {
	f := newFixture(t)

	report, err := f.driver(t).Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if report.Complete() || report.LastRun != nil {
		t.Fatalf("fresh output dir should be incomplete: %#v", report)
	}
	for _, st := range report.Stages {
		if st.Status != pipeline.StatusPending || st.Present {
			t.Fatalf("unexpected fresh stage status %#v", st)
		}
	}
	if fileutil.Exists(f.cfg.Paths.OutputDir) {
		t.Fatal("status must not create the output directory")
	}

	f.run(t)
	report, err = f.driver(t).Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if !report.Complete() || report.LastRun == nil || report.LastRun.Status != manifest.StatusCompleted {
		t.Fatalf("expected complete report, got %#v", report)
	}
	if report.Stages[1].Label != "Search Nr" || report.Stages[1].SizeBytes == 0 {
		t.Fatalf("unexpected stage row %#v", report.Stages[1])
	}
}

func TestStatusMarksUntrackedArtifacts(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteText(t, f.artifact(pipeline.StageTrimMSA), wantMSA)

	report, err := f.driver(t).Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	last := report.Stages[len(report.Stages)-1]
	if last.Status != pipeline.StatusUntracked || !last.Present || last.SizeBytes != int64(len(wantMSA)) {
		t.Fatalf("unexpected untracked row %#v", last)
	}
}

func TestParseStage(t *testing.T) {
	name, err := pipeline.ParseStage(" Trim-MSA ")
	if err != nil || name != pipeline.StageTrimMSA {
		t.Fatalf("ParseStage = %q, %v", name, err)
	}
	if len(pipeline.Stages()) != 8 {
		t.Fatalf("expected 8 stages, got %v", pipeline.Stages())
	}
}

func TestHealthCheckFindsStubbedBinaries(t *testing.T) {
	f := newFixture(t, testsupport.WithStubbedBinaries())
	for _, h := range f.driver(t).HealthCheck(context.Background()) {
		if !h.Ready {
			t.Fatalf("expected %s ready, got %#v", h.Name, h)
		}
		inProcess := h.Name == pipeline.StageBuildMSAInput || h.Name == pipeline.StageTrimMSA
		if inProcess != (h.Tool == "") {
			t.Fatalf("unexpected tool for %s: %q", h.Name, h.Tool)
		}
		if h.Name == pipeline.StageRunAligner && filepath.Base(h.Tool) != "clustalo" {
			t.Fatalf("aligner resolved to %q", h.Tool)
		}
	}
}

package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"buildmsa/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Placeholder files stand in for the NR and redundant databases and their
// mmseqs companions.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Databases.Root = filepath.Join(base, "db")
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.ScratchDir = filepath.Join(base, "tmp")
	cfgVal.Search.Threads = 2
	cfgVal.Aligner.Threads = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	for _, name := range []string{builder.cfg.Databases.NR, builder.cfg.Databases.Redundant} {
		db := builder.cfg.DatabasePath(name)
		for _, path := range []string{db, db + ".index", db + ".dbtype"} {
			WriteFile(t, path, 16)
		}
	}
	return builder.cfg
}

// WithMaxSequences overrides the collector bound.
func WithMaxSequences(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Collect.MaxSequences = n
	}
}

// WithVerify sets the checkpoint verification mode.
func WithVerify(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Checkpoint.Verify = mode
	}
}

// WithAdoptUntracked toggles adoption of artifacts missing from the manifest.
func WithAdoptUntracked(adopt bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Checkpoint.AdoptUntracked = adopt
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, mmseqs and clustalo are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"mmseqs", "clustalo"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}

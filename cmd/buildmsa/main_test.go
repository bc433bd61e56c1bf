package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"buildmsa/internal/config"
	"buildmsa/internal/services"
	"buildmsa/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Chdir(base)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestRunRequiresInput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	requireContains(t, out, "Usage:")
	requireContains(t, out, "--input")
}

func TestRunMissingInputIsNotFound(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "-i", filepath.Join(env.baseDir, "absent.fa")}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRunRejectsSameDatabases(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "query.fa")
	testsupport.WriteText(t, input, ">q\nMKV\n")

	_, _, err := runCLI(t, []string{"run", "-i", input, "-n", "uniref50", "-r", "uniref50"}, env.configPath)
	if !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestRunFailsPreflightWithoutDatabases(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "query.fa")
	testsupport.WriteText(t, input, ">q\nMKV\n")

	_, stderr, err := runCLI(t, []string{"run", "-i", input, "-n", "missing50"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	requireContains(t, stderr, "NR database")
	if _, statErr := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "msa.fa")); statErr == nil {
		t.Fatal("run must not produce an alignment after failed preflight")
	}
}

func TestCheckReportsMissingDatabase(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.Remove(env.cfg.DatabasePath(env.cfg.Databases.Redundant) + ".index"); err != nil {
		t.Fatalf("remove index: %v", err)
	}

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	requireContains(t, out, "Redundant database")
	requireContains(t, out, "FAIL")
	requireContains(t, out, "Build Msa Input")
	requireContains(t, out, "in-process")
}

func TestTrimCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "aligned.fa")
	out := filepath.Join(dir, "msa.fa")
	testsupport.WriteText(t, in, ">q desc\nM-KV\n>h1\nMAKI\n")

	stdout, _, err := runCLI(t, []string{"trim", "-i", in, "-o", out}, "")
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	requireContains(t, stdout, out)
	if got, want := testsupport.ReadText(t, out), ">q desc\nMKV\n>h1\nMKI\n"; got != want {
		t.Fatalf("trimmed alignment = %q, want %q", got, want)
	}
}

func TestTrimDefaultOutputName(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "aligned.fa")
	testsupport.WriteText(t, in, ">q\nM-K\n>h\nMAK\n")

	if _, _, err := runCLI(t, []string{"trim", "-i", in}, ""); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if got := testsupport.ReadText(t, filepath.Join(dir, "aligned.trimmed.fa")); got != ">q\nMK\n>h\nMK\n" {
		t.Fatalf("unexpected trimmed output %q", got)
	}
}

func TestCollectCommandWritesPoolToStdout(t *testing.T) {
	env := setupCLITestEnv(t)
	query := filepath.Join(env.baseDir, "query.fa")
	hits := filepath.Join(env.baseDir, "hits.fa")
	testsupport.WriteText(t, query, ">q\nMKV\n")
	testsupport.WriteText(t, hits, ">h1\nMKI\n>h2\nMKV\n>h3\nMRV\n")

	out, _, err := runCLI(t, []string{"collect", "-i", query, "--from", hits, "-s", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if out != ">q\nMKV\n>h1\nMKI\n" {
		t.Fatalf("unexpected pool %q", out)
	}
}

func TestCollectRequiresHits(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"collect", "-i", "query.fa"}, env.configPath)
	if !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestExportCommandWrapsLines(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "msa.fa")
	out := filepath.Join(dir, "wrapped.fa")
	testsupport.WriteText(t, in, ">q desc\nMKVLA\n")

	if _, _, err := runCLI(t, []string{"export", "-i", in, "-o", out, "--width", "2"}, ""); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(testsupport.ReadText(t, out)), "\n")
	if len(lines) != 4 || lines[0] != ">q desc" {
		t.Fatalf("unexpected export %q", lines)
	}
	for _, line := range lines[1:] {
		if len(line) > 2 {
			t.Fatalf("line %q exceeds width", line)
		}
	}
}

func TestStatusAndReset(t *testing.T) {
	env := setupCLITestEnv(t)
	outDir := env.cfg.Paths.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	testsupport.WriteText(t, filepath.Join(outDir, "msa.fa"), ">q\nMKV\n")

	out, _, err := runCLI(t, []string{"status", "-o", outDir}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Trim Msa")
	requireContains(t, out, "untracked")
	requireContains(t, out, "pending")

	out, _, err = runCLI(t, []string{"reset", "-o", outDir, "--from", "trim-msa"}, env.configPath)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	requireContains(t, out, "msa.fa")
	if _, err := os.Stat(filepath.Join(outDir, "msa.fa")); !os.IsNotExist(err) {
		t.Fatalf("expected msa.fa removed, stat err=%v", err)
	}

	if _, _, err := runCLI(t, []string{"reset", "-o", outDir, "--from", "bogus"}, env.configPath); !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected usage error for unknown stage, got %v", err)
	}
}

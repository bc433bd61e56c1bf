package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Tools locates the external binaries.
type Tools struct {
	MMseqsPath     string `toml:"mmseqs_path"`
	ClustaloPath   string `toml:"clustalo_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Databases names the sequence databases and where they live.
type Databases struct {
	Root      string `toml:"root"`
	NR        string `toml:"nr"`
	Redundant string `toml:"redundant"`
}

// Paths contains output and scratch directories.
type Paths struct {
	OutputDir  string `toml:"output_dir"`
	ScratchDir string `toml:"scratch_dir"`
}

// Search contains mmseqs search tuning.
type Search struct {
	Threads          int     `toml:"threads"`
	SplitMemoryLimit string  `toml:"split_memory_limit"`
	NRIterations     int     `toml:"nr_iterations"`
	MaxSeqs          int     `toml:"max_seqs"`
	Sensitivity      float64 `toml:"sensitivity"`
	MaxSeqID         float64 `toml:"max_seq_id"`
}

// Aligner contains clustalo tuning.
type Aligner struct {
	Threads int `toml:"threads"`
}

// Collect bounds the candidate pool.
type Collect struct {
	MaxSequences int `toml:"max_sequences"`
}

// Checkpoint controls how stage artifacts are trusted on resume.
type Checkpoint struct {
	// Verify is one of "exists", "size" or "sha256".
	Verify string `toml:"verify"`
	// AdoptUntracked records artifacts found on disk without a manifest entry
	// as complete instead of rebuilding them.
	AdoptUntracked bool `toml:"adopt_untracked"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for buildmsa.
//
// Configuration sections by subsystem:
//   - Tools: mmseqs and clustalo binaries
//   - Databases: database root and identifiers
//   - Paths: output and scratch directories
//   - Search / Aligner: pass-through tool tuning
//   - Collect: candidate pool bound
//   - Checkpoint: resume verification policy
//   - Logging: log format and level
type Config struct {
	Tools      Tools      `toml:"tools"`
	Databases  Databases  `toml:"databases"`
	Paths      Paths      `toml:"paths"`
	Search     Search     `toml:"search"`
	Aligner    Aligner    `toml:"aligner"`
	Collect    Collect    `toml:"collect"`
	Checkpoint Checkpoint `toml:"checkpoint"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/buildmsa/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Finalize normalizes and validates c. Call it again after applying CLI
// overrides.
func (c *Config) Finalize() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("buildmsa.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and scratch directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.ScratchDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MMseqsBinary returns the mmseqs executable. A directory path resolves to
// the mmseqs binary inside it.
func (c *Config) MMseqsBinary() string {
	return resolveBinary(c.Tools.MMseqsPath, "mmseqs")
}

// ClustaloBinary returns the clustalo executable. A directory path resolves
// to the clustalo binary inside it.
func (c *Config) ClustaloBinary() string {
	return resolveBinary(c.Tools.ClustaloPath, "clustalo")
}

// DatabasePath returns the on-disk path of database name under the root.
func (c *Config) DatabasePath(name string) string {
	return filepath.Join(c.Databases.Root, name+".db")
}

func resolveBinary(value, name string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return name
	}
	if info, err := os.Stat(value); err == nil && info.IsDir() {
		return filepath.Join(value, name)
	}
	return value
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

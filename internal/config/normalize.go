package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeTools()
	if err := c.normalizeDatabases(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCheckpoint()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.MMseqsPath = strings.TrimSpace(c.Tools.MMseqsPath)
	if value, ok := os.LookupEnv("MMSEQS_PATH"); ok && (c.Tools.MMseqsPath == "" || c.Tools.MMseqsPath == "mmseqs") {
		c.Tools.MMseqsPath = strings.TrimSpace(value)
	}
	if c.Tools.MMseqsPath == "" {
		c.Tools.MMseqsPath = "mmseqs"
	}
	c.Tools.ClustaloPath = strings.TrimSpace(c.Tools.ClustaloPath)
	if value, ok := os.LookupEnv("CLUSTALO_PATH"); ok && (c.Tools.ClustaloPath == "" || c.Tools.ClustaloPath == "clustalo") {
		c.Tools.ClustaloPath = strings.TrimSpace(value)
	}
	if c.Tools.ClustaloPath == "" {
		c.Tools.ClustaloPath = "clustalo"
	}
	if c.Tools.TimeoutSeconds < 0 {
		c.Tools.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeDatabases() error {
	if value, ok := os.LookupEnv("BUILDMSA_DATABASE_ROOT"); ok && strings.TrimSpace(value) != "" {
		c.Databases.Root = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Databases.Root) == "" {
		c.Databases.Root = defaultDatabaseRoot
	}
	var err error
	if c.Databases.Root, err = expandPath(c.Databases.Root); err != nil {
		return fmt.Errorf("databases.root: %w", err)
	}
	c.Databases.NR = strings.TrimSpace(c.Databases.NR)
	if c.Databases.NR == "" {
		c.Databases.NR = defaultNRDatabase
	}
	c.Databases.Redundant = strings.TrimSpace(c.Databases.Redundant)
	if c.Databases.Redundant == "" {
		c.Databases.Redundant = defaultRedundantDB
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = defaultScratchDir
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCheckpoint() {
	c.Checkpoint.Verify = strings.ToLower(strings.TrimSpace(c.Checkpoint.Verify))
	if c.Checkpoint.Verify == "" {
		c.Checkpoint.Verify = defaultVerify
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
